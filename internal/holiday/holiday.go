// Package holiday computes the US federal holiday calendar and provides
// the per-run skip context consulted by the business-day shifter.
package holiday

import (
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
)

// ForYear computes the US federal holiday set for a year, keyed by
// YYYY-MM-DD and mapped to the holiday name. Fixed-date holidays are
// weekend-observed-adjusted, so an entry may fall in December of the
// prior year (Jan 1 on a Saturday is observed Dec 31).
func ForYear(year int) map[string]string {
	set := make(map[string]string, 11)

	fixed := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "New Year's Day"},
		{time.June, 19, "Juneteenth"},
		{time.July, 4, "Independence Day"},
		{time.November, 11, "Veterans Day"},
		{time.December, 25, "Christmas Day"},
	}
	for _, h := range fixed {
		d := observed(time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC))
		set[d.Format(models.DateLayout)] = h.name
	}

	set[nthWeekday(year, time.January, time.Monday, 3).Format(models.DateLayout)] = "Martin Luther King Jr. Day"
	set[nthWeekday(year, time.February, time.Monday, 3).Format(models.DateLayout)] = "Presidents' Day"
	set[lastWeekday(year, time.May, time.Monday).Format(models.DateLayout)] = "Memorial Day"
	set[nthWeekday(year, time.September, time.Monday, 1).Format(models.DateLayout)] = "Labor Day"
	set[nthWeekday(year, time.October, time.Monday, 2).Format(models.DateLayout)] = "Columbus Day"
	set[nthWeekday(year, time.November, time.Thursday, 4).Format(models.DateLayout)] = "Thanksgiving Day"

	return set
}

// observed maps a fixed-date holiday onto the weekday it is recognized:
// Saturday holidays are observed the preceding Friday, Sunday holidays
// the following Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the nth occurrence of a weekday within a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the final occurrence of a weekday within a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}
