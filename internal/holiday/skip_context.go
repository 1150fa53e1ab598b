package holiday

import (
	"time"

	"github.com/Dan9191/payplan-service/internal/models"
)

// SkipContext bundles the skip configuration for one shift run: country,
// custom skip dates and a lazy per-year holiday memo. It is created per
// call and never shared across concurrent runs.
type SkipContext struct {
	country string
	custom  map[string]struct{}
	years   map[int]map[string]string
}

// NewSkipContext builds a context for one run. Holiday checks are active
// only for country "US".
func NewSkipContext(country string, customSkipDates []string) *SkipContext {
	custom := make(map[string]struct{}, len(customSkipDates))
	for _, d := range customSkipDates {
		custom[d] = struct{}{}
	}
	return &SkipContext{
		country: country,
		custom:  custom,
		years:   make(map[int]map[string]string),
	}
}

// IsCustomSkip reports whether the date is in the custom skip list.
func (c *SkipContext) IsCustomSkip(d time.Time) bool {
	_, ok := c.custom[d.Format(models.DateLayout)]
	return ok
}

// IsHoliday reports whether the date is an observed US federal holiday.
// Both the date's own year and the next year are consulted, because an
// observed adjustment can land in the prior calendar year (Jan 1 on a
// Saturday is observed Dec 31).
func (c *SkipContext) IsHoliday(d time.Time) bool {
	if c.country != "US" {
		return false
	}
	key := d.Format(models.DateLayout)
	if _, ok := c.yearSet(d.Year())[key]; ok {
		return true
	}
	_, ok := c.yearSet(d.Year() + 1)[key]
	return ok
}

func (c *SkipContext) yearSet(year int) map[string]string {
	set, ok := c.years[year]
	if !ok {
		set = ForYear(year)
		c.years[year] = set
	}
	return set
}
