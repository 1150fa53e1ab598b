// Package actions turns a shifted schedule and its risk flags into the
// user-facing outputs: the weekly action list, the plan summary, the
// formatted risk strings and the normalized installment projection.
package actions

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/shopspring/decimal"
)

// WeeklyInstallments filters the schedule down to the inclusive window
// [today 00:00, today+7d 23:59:59] in the given timezone. Items whose
// due date cannot be parsed are excluded.
func WeeklyInstallments(items []models.ShiftedInstallment, loc *time.Location, now time.Time) []models.ShiftedInstallment {
	today := now.In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 7).Add(23*time.Hour + 59*time.Minute + 59*time.Second)

	weekly := make([]models.ShiftedInstallment, 0)
	for _, item := range items {
		due, err := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		if err != nil {
			continue
		}
		if !due.Before(start) && !due.After(end) {
			weekly = append(weekly, item)
		}
	}
	return weekly
}

// WeeklyActions renders one prioritized action line per installment due
// within the weekly window, ordered by late fee descending then amount
// ascending.
func WeeklyActions(items []models.ShiftedInstallment, loc *time.Location, now time.Time) []string {
	weekly := prioritized(WeeklyInstallments(items, loc, now))

	maxFee := decimal.Zero
	for _, item := range weekly {
		if item.LateFee.Cmp(maxFee) > 0 {
			maxFee = item.LateFee
		}
	}

	lines := make([]string, 0, len(weekly))
	maxMarked := false
	for _, item := range weekly {
		due, _ := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		line := fmt.Sprintf("%s: Pay %s $%s", due.Format("Monday Jan 2"), item.Provider, item.Amount.StringFixed(2))

		if item.LateFee.IsPositive() {
			if !maxMarked && item.LateFee.Equal(maxFee) {
				line += fmt.Sprintf(" (highest late fee $%s)", item.LateFee.StringFixed(2))
				maxMarked = true
			} else {
				line += fmt.Sprintf(" (late fee $%s)", item.LateFee.StringFixed(2))
			}
		}
		if item.Autopay && (due.Weekday() == time.Saturday || due.Weekday() == time.Sunday) {
			line += " ⚠️ autopay drafts on a weekend, confirm funds the Friday before"
		}
		lines = append(lines, line)
	}
	return lines
}

// Summary builds the natural-language plan summary: a totals line, an
// optional high-severity headline, collision and cash-crunch notes when
// the headline does not already cover them, the labeled top-3 payments
// and a closing line.
func Summary(all, weekly []models.ShiftedInstallment, flags []models.RiskFlag, loc *time.Location) string {
	if len(weekly) == 0 {
		return "No payments due in the next 7 days. Enjoy the breathing room!"
	}

	total := decimal.Zero
	for _, item := range weekly {
		total = total.Add(item.Amount)
	}

	lines := []string{fmt.Sprintf("You have %d payment(s) totaling $%s due in the next 7 days (%d in your full schedule).",
		len(weekly), total.StringFixed(2), len(all))}

	headline := firstHighSeverity(flags)
	if headline != nil {
		lines = append(lines, "⚠️ "+headline.Message)
	}
	if f := firstOfType(flags, models.RiskCollision); f != nil && (headline == nil || headline.Type != models.RiskCollision) {
		lines = append(lines, fmt.Sprintf("Several payments land together on %s; spacing them out could ease the hit.", f.Date))
	}
	if f := firstOfType(flags, models.RiskCashCrunch); f != nil && (headline == nil || headline.Type != models.RiskCashCrunch) {
		lines = append(lines, fmt.Sprintf("Payments cluster around your %s payday; watch your balance that week.", f.Date))
	}

	top := prioritized(weekly)
	if len(top) > 3 {
		top = top[:3]
	}
	labels := []string{"🔴 Priority", "🟡 Then", "🟢 Finally"}
	for i, item := range top {
		due, _ := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		lines = append(lines, fmt.Sprintf("%s: pay %s $%s by %s", labels[i], item.Provider, item.Amount.StringFixed(2), due.Format("Monday Jan 2")))
	}

	if headline != nil {
		defer3 := top[0]
		for _, item := range top[1:] {
			if item.LateFee.Cmp(defer3.LateFee) < 0 {
				defer3 = item
			}
		}
		lines = append(lines, fmt.Sprintf("If money is tight, %s is the safest to defer: it carries the lowest late fee of this week's priorities.", defer3.Provider))
	} else {
		lines = append(lines, "You're in good shape. Keep payments on schedule and this week takes care of itself.")
	}

	return strings.Join(lines, "\n")
}

// FormatRiskFlags renders each flag with its type-specific prefix.
func FormatRiskFlags(flags []models.RiskFlag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		switch f.Type {
		case models.RiskCollision:
			out = append(out, "⚠️ "+f.Message)
		case models.RiskCashCrunch:
			out = append(out, "💸 "+f.Message)
		case models.RiskWeekendAutopay:
			out = append(out, "📅 "+f.Message)
		case models.RiskShiftedToBusiness:
			out = append(out, "ℹ️ "+f.Message)
		default:
			out = append(out, f.Message)
		}
	}
	return out
}

// NormalizeOutput projects installments to the sparse response shape:
// shift fields appear only on items that were actually shifted.
func NormalizeOutput(items []models.ShiftedInstallment) []models.NormalizedInstallment {
	out := make([]models.NormalizedInstallment, 0, len(items))
	for _, item := range items {
		n := models.NormalizedInstallment{
			Provider: item.Provider,
			DueDate:  item.DueDate,
			Amount:   item.Amount,
		}
		if item.WasShifted {
			n.WasShifted = true
			n.OriginalDueDate = item.OriginalDueDate
			n.ShiftedDueDate = item.ShiftedDueDate
			n.ShiftReason = item.ShiftReason
		}
		out = append(out, n)
	}
	return out
}

// prioritized orders installments by late fee descending, then amount
// ascending. The input slice is left untouched.
func prioritized(items []models.ShiftedInstallment) []models.ShiftedInstallment {
	sorted := make([]models.ShiftedInstallment, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].LateFee.Cmp(sorted[j].LateFee); c != 0 {
			return c > 0
		}
		return sorted[i].Amount.Cmp(sorted[j].Amount) < 0
	})
	return sorted
}

func firstHighSeverity(flags []models.RiskFlag) *models.RiskFlag {
	for i := range flags {
		if flags[i].Severity == models.SeverityHigh {
			return &flags[i]
		}
	}
	return nil
}

func firstOfType(flags []models.RiskFlag, t models.RiskType) *models.RiskFlag {
	for i := range flags {
		if flags[i].Type == t {
			return &flags[i]
		}
	}
	return nil
}
