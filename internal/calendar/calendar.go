// Package calendar knows when the Shanghai Gold Exchange is closed. Closure
// dates come from a built-in table of the official announcements; weekends
// are computed. Consumers use it to tell a quiet market from a broken one
// and to announce holiday closures and reopenings.
package calendar

import (
	"time"
)

const dateLayout = "2006-01-02"

// Holiday is one announced closure: a run of consecutive closed dates and
// the first trading day after it.
type Holiday struct {
	Name            string
	Dates           []string
	FirstTradingDay string
}

// Official 2026 closures. Adjacent weekends are included in the announced
// ranges, which is why e.g. New Year runs through Jan 3.
var builtinHolidays = []Holiday{
	{
		Name:            "New Year's Day",
		Dates:           []string{"2026-01-01", "2026-01-02", "2026-01-03"},
		FirstTradingDay: "2026-01-05",
	},
	{
		Name: "Spring Festival",
		Dates: []string{
			"2026-02-15", "2026-02-16", "2026-02-17", "2026-02-18", "2026-02-19",
			"2026-02-20", "2026-02-21", "2026-02-22", "2026-02-23",
		},
		FirstTradingDay: "2026-02-24",
	},
	{
		Name:            "Qingming Festival",
		Dates:           []string{"2026-04-04", "2026-04-05", "2026-04-06"},
		FirstTradingDay: "2026-04-07",
	},
	{
		Name:            "Labour Day",
		Dates:           []string{"2026-05-01", "2026-05-02", "2026-05-03", "2026-05-04", "2026-05-05"},
		FirstTradingDay: "2026-05-06",
	},
	{
		Name:            "Dragon Boat Festival",
		Dates:           []string{"2026-06-19", "2026-06-20", "2026-06-21"},
		FirstTradingDay: "2026-06-22",
	},
	{
		Name:            "Mid-Autumn Festival",
		Dates:           []string{"2026-09-25", "2026-09-26", "2026-09-27"},
		FirstTradingDay: "2026-09-28",
	},
	{
		Name: "National Day",
		Dates: []string{
			"2026-10-01", "2026-10-02", "2026-10-03", "2026-10-04",
			"2026-10-05", "2026-10-06", "2026-10-07",
		},
		FirstTradingDay: "2026-10-08",
	},
}

// Calendar answers trading-day questions for the SGE.
type Calendar struct {
	byDate map[string]*Holiday
}

func New() *Calendar {
	c := &Calendar{byDate: make(map[string]*Holiday)}
	for i := range builtinHolidays {
		h := &builtinHolidays[i]
		for _, d := range h.Dates {
			c.byDate[d] = h
		}
	}
	return c
}

// HolidayOn returns the announced closure covering t, if any.
func (c *Calendar) HolidayOn(t time.Time) (Holiday, bool) {
	if h, ok := c.byDate[t.Format(dateLayout)]; ok {
		return *h, true
	}
	return Holiday{}, false
}

// IsTradingDay reports whether the exchange trades on t's date. Dates
// outside the built-in table fall back to the weekday rule.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, closed := c.byDate[t.Format(dateLayout)]
	return !closed
}

// NextHoliday returns the next announced closure on or after t and how many
// days until its first closed date. ok is false when the table has nothing
// ahead of t.
func (c *Calendar) NextHoliday(t time.Time) (Holiday, int, bool) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for i := 0; i < 366; i++ {
		d := day.AddDate(0, 0, i)
		if h, ok := c.byDate[d.Format(dateLayout)]; ok {
			return *h, i, true
		}
	}
	return Holiday{}, 0, false
}

// FirstTradingDayAfter returns the first trading day strictly after t,
// honoring both weekends and announced closures.
func (c *Calendar) FirstTradingDayAfter(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for {
		day = day.AddDate(0, 0, 1)
		if c.IsTradingDay(day) {
			return day
		}
	}
}
