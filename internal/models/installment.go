package models

import "github.com/shopspring/decimal"

// DateLayout is the calendar-date format used for all due dates, paydays
// and skip dates throughout the pipeline.
const DateLayout = "2006-01-02"

// Installment represents a single BNPL installment obligation as supplied
// by the upstream normalizer. It is read-only to every pipeline stage.
type Installment struct {
	Provider      string          `json:"provider"`
	InstallmentNo int             `json:"installment_no"`
	DueDate       string          `json:"due_date"` // YYYY-MM-DD
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Autopay       bool            `json:"autopay"`
	LateFee       decimal.Decimal `json:"late_fee"`
}

// ShiftedInstallment is the derived copy produced by the business-day
// shifter. When no shift applied, the shift fields stay zero-valued and
// DueDate equals the source due date.
type ShiftedInstallment struct {
	Installment
	WasShifted      bool        `json:"was_shifted"`
	OriginalDueDate string      `json:"original_due_date,omitempty"`
	ShiftedDueDate  string      `json:"shifted_due_date,omitempty"`
	ShiftReason     ShiftReason `json:"shift_reason,omitempty"`
}

// NormalizedInstallment is the sparse output projection of an installment:
// shift fields are omitted entirely when the item was not shifted.
type NormalizedInstallment struct {
	Provider        string          `json:"provider"`
	DueDate         string          `json:"due_date"`
	Amount          decimal.Decimal `json:"amount"`
	WasShifted      bool            `json:"was_shifted,omitempty"`
	OriginalDueDate string          `json:"original_due_date,omitempty"`
	ShiftedDueDate  string          `json:"shifted_due_date,omitempty"`
	ShiftReason     ShiftReason     `json:"shift_reason,omitempty"`
}
