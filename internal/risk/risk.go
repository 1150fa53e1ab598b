// Package risk classifies financial risk in a shifted payment schedule:
// same-day collisions, payday cash crunches, weekend autopay hazards and
// business-day shift notices.
package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/shopspring/decimal"
)

// cashCrunchWindowDays is the payday proximity window, counted in
// calendar days either direction.
const cashCrunchWindowDays = 3

// highOverageThreshold splits cash-crunch severity: an overage at or
// above $250 is high, below is medium.
var highOverageThreshold = decimal.NewFromInt(250)

// Params configures one detection run.
type Params struct {
	Paydays         []string // YYYY-MM-DD
	MinBuffer       decimal.Decimal
	BusinessDayMode bool
	MovedDates      []models.MovedDateRecord
}

// Detect runs every detector over the schedule and returns the flags
// sorted by date ascending, then severity rank descending.
func Detect(items []models.ShiftedInstallment, loc *time.Location, p Params) ([]models.RiskFlag, error) {
	flags := make([]models.RiskFlag, 0)

	collisions, err := detectCollisions(items, loc)
	if err != nil {
		return nil, err
	}
	flags = append(flags, collisions...)

	crunches, err := detectCashCrunches(items, loc, p.Paydays, p.MinBuffer)
	if err != nil {
		return nil, err
	}
	flags = append(flags, crunches...)

	if !p.BusinessDayMode {
		weekend, err := detectWeekendAutopay(items, loc)
		if err != nil {
			return nil, err
		}
		flags = append(flags, weekend...)
	} else if len(p.MovedDates) > 0 {
		notices, err := shiftNotices(p.MovedDates, loc)
		if err != nil {
			return nil, err
		}
		flags = append(flags, notices...)
	}

	sort.SliceStable(flags, func(i, j int) bool {
		if flags[i].Date != flags[j].Date {
			return flags[i].Date < flags[j].Date
		}
		ri, _ := flags[i].Severity.Rank()
		rj, _ := flags[j].Severity.Rank()
		return ri > rj
	})

	return flags, nil
}

// detectCollisions emits exactly one flag per date carrying two or more
// installments: high when more than two collide, medium otherwise.
func detectCollisions(items []models.ShiftedInstallment, loc *time.Location) ([]models.RiskFlag, error) {
	byDate := make(map[string][]models.ShiftedInstallment)
	for _, item := range items {
		byDate[item.DueDate] = append(byDate[item.DueDate], item)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	flags := make([]models.RiskFlag, 0)
	for _, d := range dates {
		group := byDate[d]
		if len(group) < 2 {
			continue
		}

		day, err := time.ParseInLocation(models.DateLayout, d, loc)
		if err != nil {
			continue
		}

		sev := models.SeverityMedium
		if len(group) > 2 {
			sev = models.SeverityHigh
		}

		total := decimal.Zero
		affected := make([]string, 0, len(group))
		for _, item := range group {
			total = total.Add(item.Amount)
			affected = append(affected, fmt.Sprintf("%s #%d", item.Provider, item.InstallmentNo))
		}

		msg := fmt.Sprintf("%d payments totaling $%s all due on %s %s", len(group), total.StringFixed(2), day.Weekday(), d)
		flag, err := models.NewRiskFlag(models.RiskCollision, sev, d, msg)
		if err != nil {
			return nil, err
		}
		flag.Amount = &total
		flag.Affected = affected
		flags = append(flags, *flag)
	}
	return flags, nil
}

// detectCashCrunches flags each payday whose nearby installments sum to
// strictly more than the configured buffer. Skipped entirely when no
// paydays are supplied.
func detectCashCrunches(items []models.ShiftedInstallment, loc *time.Location, paydays []string, minBuffer decimal.Decimal) ([]models.RiskFlag, error) {
	if len(paydays) == 0 {
		return nil, nil
	}

	flags := make([]models.RiskFlag, 0)
	for _, payday := range paydays {
		pd, err := time.ParseInLocation(models.DateLayout, payday, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payday %q: %w", payday, err)
		}

		total := decimal.Zero
		affected := make([]string, 0)
		for _, item := range items {
			due, err := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
			if err != nil {
				continue
			}
			if calendarDaysApart(due, pd) <= cashCrunchWindowDays {
				total = total.Add(item.Amount)
				affected = append(affected, fmt.Sprintf("%s #%d", item.Provider, item.InstallmentNo))
			}
		}

		// Exactly meeting the buffer is fine; only a strict excess flags.
		if total.Cmp(minBuffer) <= 0 {
			continue
		}

		overage := total.Sub(minBuffer)
		sev := models.SeverityMedium
		if overage.Cmp(highOverageThreshold) >= 0 {
			sev = models.SeverityHigh
		}

		msg := fmt.Sprintf("$%s in payments fall within %d days of your %s payday, exceeding your $%s buffer by $%s",
			total.StringFixed(2), cashCrunchWindowDays, payday, minBuffer.StringFixed(2), overage.StringFixed(2))
		flag, err := models.NewRiskFlag(models.RiskCashCrunch, sev, payday, msg)
		if err != nil {
			return nil, err
		}
		flag.Amount = &total
		flag.Affected = affected
		flags = append(flags, *flag)
	}
	return flags, nil
}

// detectWeekendAutopay flags autopay installments whose raw due date
// lands on a weekend. Only meaningful when shifting is disabled, since
// shifting already removes the hazard.
func detectWeekendAutopay(items []models.ShiftedInstallment, loc *time.Location) ([]models.RiskFlag, error) {
	flags := make([]models.RiskFlag, 0)
	for _, item := range items {
		if !item.Autopay {
			continue
		}
		due, err := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		if err != nil {
			continue
		}
		if due.Weekday() != time.Saturday && due.Weekday() != time.Sunday {
			continue
		}

		msg := fmt.Sprintf("%s autopay of $%s drafts on %s %s; weekend drafts may process late or overdraft",
			item.Provider, item.Amount.StringFixed(2), due.Weekday(), item.DueDate)
		flag, err := models.NewRiskFlag(models.RiskWeekendAutopay, models.SeverityLow, item.DueDate, msg)
		if err != nil {
			return nil, err
		}
		flag.Affected = []string{fmt.Sprintf("%s #%d", item.Provider, item.InstallmentNo)}
		flags = append(flags, *flag)
	}
	return flags, nil
}

// shiftNotices emits one info flag per moved date naming the original
// weekday, the reason and the new date.
func shiftNotices(moved []models.MovedDateRecord, loc *time.Location) ([]models.RiskFlag, error) {
	flags := make([]models.RiskFlag, 0, len(moved))
	for _, m := range moved {
		orig, err := time.ParseInLocation(models.DateLayout, m.OriginalDate, loc)
		if err != nil {
			continue
		}

		msg := fmt.Sprintf("%s payment #%d moved from %s %s to the next business day %s (%s)",
			m.Provider, m.InstallmentNo, orig.Weekday(), m.OriginalDate, m.ShiftedDate, m.Reason)
		flag, err := models.NewRiskFlag(models.RiskShiftedToBusiness, models.SeverityInfo, m.ShiftedDate, msg)
		if err != nil {
			return nil, err
		}
		flag.Affected = []string{fmt.Sprintf("%s #%d", m.Provider, m.InstallmentNo)}
		flags = append(flags, *flag)
	}
	return flags, nil
}

// calendarDaysApart returns the absolute distance between two calendar
// dates in days, ignoring any DST-induced hour drift.
func calendarDaysApart(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ad.Sub(bd).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}
