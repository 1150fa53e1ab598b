package models

import "github.com/shopspring/decimal"

// PlanRequest is a validated payment-plan generation request.
type PlanRequest struct {
	Items              []Installment   `json:"items"`
	Paydays            []string        `json:"paydays,omitempty"` // YYYY-MM-DD
	UseStoredPaydays   bool            `json:"use_stored_paydays,omitempty"`
	MinBuffer          decimal.Decimal `json:"min_buffer"`
	Timezone           string          `json:"timezone"`
	ShiftEnabled       bool            `json:"shift_enabled"`
	Country            string          `json:"country"` // "US" or "None"
	CustomSkipDates    []string        `json:"custom_skip_dates,omitempty"`
	IncludeClosureFeed bool            `json:"include_closure_feed,omitempty"`
	Save               bool            `json:"save,omitempty"`
}

// PlanResponse is the assembled pipeline output.
type PlanResponse struct {
	Summary       string                  `json:"summary"`
	WeeklyActions []string                `json:"weekly_actions"`
	RiskFlags     []string                `json:"risk_flags"`
	CalendarICS   string                  `json:"calendar_ics"` // base64 RFC 5545 body
	Installments  []NormalizedInstallment `json:"installments"`
	MovedDates    []MovedDateRecord       `json:"moved_dates"`
}

// StoredPlanConfig is a saved plan request joined with its owner, used by
// the weekly digest job.
type StoredPlanConfig struct {
	UserID   int64
	Username string
	Email    string
	Config   PlanRequest
}
