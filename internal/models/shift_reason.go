package models

// ShiftReason classifies why a due date was advanced past a skip day.
type ShiftReason string

const (
	ShiftReasonWeekend ShiftReason = "WEEKEND"
	ShiftReasonHoliday ShiftReason = "HOLIDAY"
	ShiftReasonCustom  ShiftReason = "CUSTOM"
)

// Priority orders shift reasons so that the highest-priority condition
// encountered across a multi-day walk wins: CUSTOM > HOLIDAY > WEEKEND.
func (r ShiftReason) Priority() int {
	switch r {
	case ShiftReasonCustom:
		return 3
	case ShiftReasonHoliday:
		return 2
	case ShiftReasonWeekend:
		return 1
	}
	return 0
}

// MovedDateRecord records one shifted installment for reporting.
type MovedDateRecord struct {
	Provider      string      `json:"provider"`
	InstallmentNo int         `json:"installment_no"`
	OriginalDate  string      `json:"original_date"`
	ShiftedDate   string      `json:"shifted_date"`
	Reason        ShiftReason `json:"reason"`
}
