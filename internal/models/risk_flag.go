package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskType identifies a class of financial risk detected in a plan.
type RiskType string

const (
	RiskCollision         RiskType = "COLLISION"
	RiskCashCrunch        RiskType = "CASH_CRUNCH"
	RiskWeekendAutopay    RiskType = "WEEKEND_AUTOPAY"
	RiskShiftedToBusiness RiskType = "SHIFTED_NEXT_BUSINESS_DAY"
)

// Severity grades a risk flag. Info is reserved for shift notices.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Rank maps a severity onto its sort order: high=3, medium=2, low=1, info=0.
// The second return is false for a severity outside the enum.
func (s Severity) Rank() (int, bool) {
	switch s {
	case SeverityHigh:
		return 3, true
	case SeverityMedium:
		return 2, true
	case SeverityLow:
		return 1, true
	case SeverityInfo:
		return 0, true
	}
	return 0, false
}

// RiskFlag is one detected risk. Immutable once constructed.
type RiskFlag struct {
	Type     RiskType          `json:"type"`
	Severity Severity          `json:"severity"`
	Date     string            `json:"date"` // YYYY-MM-DD
	Message  string            `json:"message"`
	Amount   *decimal.Decimal  `json:"amount,omitempty"`
	Affected []string          `json:"affected_installments,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewRiskFlag builds a flag, rejecting unknown types and severities at
// construction time rather than letting them default to the lowest rank.
func NewRiskFlag(t RiskType, sev Severity, date, message string) (*RiskFlag, error) {
	switch t {
	case RiskCollision, RiskCashCrunch, RiskWeekendAutopay, RiskShiftedToBusiness:
	default:
		return nil, fmt.Errorf("unknown risk type %q", t)
	}
	if _, ok := sev.Rank(); !ok {
		return nil, fmt.Errorf("unknown risk severity %q", sev)
	}
	return &RiskFlag{Type: t, Severity: sev, Date: date, Message: message}, nil
}
