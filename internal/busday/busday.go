// Package busday shifts installment due dates past weekends, US federal
// holidays and custom skip dates.
package busday

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/payplan-service/internal/holiday"
	"github.com/Dan9191/payplan-service/internal/models"
	"github.com/sirupsen/logrus"
)

// maxShiftWalk caps the shift walk. A real schedule never needs more
// than a handful of steps; hitting the cap means the skip configuration
// is corrupt (e.g. a year of consecutive custom skip dates).
const maxShiftWalk = 365

// Options configures one shift run.
type Options struct {
	Enabled         bool
	Country         string // "US" enables the federal holiday calendar
	CustomSkipDates []string
}

// Result carries the derived installments and the moved-date report,
// sorted by shifted date ascending.
type Result struct {
	Items      []models.ShiftedInstallment
	MovedDates []models.MovedDateRecord
}

// Shifter advances due dates to the next business day.
type Shifter struct {
	log *logrus.Logger
}

// NewShifter initializes a new shifter
func NewShifter(log *logrus.Logger) *Shifter {
	return &Shifter{log: log}
}

// Shift produces a business-day-adjusted copy of every installment. When
// disabled it returns the input unchanged with WasShifted=false on every
// record. An installment whose due date cannot be parsed is passed
// through un-shifted rather than aborting the batch.
func (s *Shifter) Shift(items []models.Installment, loc *time.Location, opts Options) (*Result, error) {
	res := &Result{
		Items:      make([]models.ShiftedInstallment, 0, len(items)),
		MovedDates: make([]models.MovedDateRecord, 0),
	}

	if !opts.Enabled {
		for _, item := range items {
			res.Items = append(res.Items, models.ShiftedInstallment{Installment: item})
		}
		return res, nil
	}

	ctx := holiday.NewSkipContext(opts.Country, opts.CustomSkipDates)

	for _, item := range items {
		due, err := time.ParseInLocation(models.DateLayout, item.DueDate, loc)
		if err != nil {
			s.log.Warnf("Unparseable due date %q for %s installment %d, leaving unshifted", item.DueDate, item.Provider, item.InstallmentNo)
			res.Items = append(res.Items, models.ShiftedInstallment{Installment: item})
			continue
		}

		shifted, reason, err := walk(due, ctx)
		if err != nil {
			s.log.Errorf("Business-day shift failed for %s installment %d (due %s): %v", item.Provider, item.InstallmentNo, item.DueDate, err)
			return nil, err
		}

		derived := models.ShiftedInstallment{Installment: item}
		if !shifted.Equal(due) {
			derived.WasShifted = true
			derived.OriginalDueDate = item.DueDate
			derived.ShiftedDueDate = shifted.Format(models.DateLayout)
			derived.ShiftReason = reason
			derived.DueDate = derived.ShiftedDueDate
			res.MovedDates = append(res.MovedDates, models.MovedDateRecord{
				Provider:      item.Provider,
				InstallmentNo: item.InstallmentNo,
				OriginalDate:  item.DueDate,
				ShiftedDate:   derived.ShiftedDueDate,
				Reason:        reason,
			})
		}
		res.Items = append(res.Items, derived)
	}

	sort.SliceStable(res.MovedDates, func(i, j int) bool {
		return res.MovedDates[i].ShiftedDate < res.MovedDates[j].ShiftedDate
	})

	return res, nil
}

// walk advances one day at a time until the date matches no skip
// condition, upgrading the accumulated reason to the highest-priority
// condition observed across the whole walk.
func walk(d time.Time, ctx *holiday.SkipContext) (time.Time, models.ShiftReason, error) {
	var reason models.ShiftReason
	cur := d
	for i := 0; ; i++ {
		r, skip := skipReason(cur, ctx)
		if !skip {
			return cur, reason, nil
		}
		if i >= maxShiftWalk {
			return time.Time{}, "", fmt.Errorf("shift walk exceeded %d iterations starting from %s", maxShiftWalk, d.Format(models.DateLayout))
		}
		if r.Priority() > reason.Priority() {
			reason = r
		}
		cur = cur.AddDate(0, 0, 1)
	}
}

// skipReason reports whether the date must be skipped and under which
// reason. A date matching several conditions reports the highest one.
func skipReason(d time.Time, ctx *holiday.SkipContext) (models.ShiftReason, bool) {
	if ctx.IsCustomSkip(d) {
		return models.ShiftReasonCustom, true
	}
	if ctx.IsHoliday(d) {
		return models.ShiftReasonHoliday, true
	}
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return models.ShiftReasonWeekend, true
	}
	return "", false
}

// IsBusinessDay reports whether the date is neither a weekend, an
// observed US federal holiday (when country is "US") nor a custom skip
// date.
func IsBusinessDay(d time.Time, country string, customSkipDates []string) bool {
	_, skip := skipReason(d, holiday.NewSkipContext(country, customSkipDates))
	return !skip
}

// NextBusinessDay returns the first business day strictly after d, under
// the same iteration cap as the batch path.
func NextBusinessDay(d time.Time, country string, customSkipDates []string) (time.Time, error) {
	next, _, err := walk(d.AddDate(0, 0, 1), holiday.NewSkipContext(country, customSkipDates))
	if err != nil {
		return time.Time{}, err
	}
	return next, nil
}
