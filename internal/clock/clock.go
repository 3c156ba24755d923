// Package clock centralizes all date arithmetic: week boundaries, period-key
// encoding, recurrence due dates, and urgency classification. Every
// computation happens in one configured timezone with one configured
// week-start day, fixed at construction.
package clock

import (
	"errors"
	"fmt"
	"time"

	"github.com/jingm4128/mcadence/internal/model"
)

const (
	DefaultTimezone = "America/New_York"
	periodKeyLayout = "20060102"
)

var ErrInvalidPeriodKey = errors.New("clock: invalid period key")

type Clock struct {
	loc          *time.Location
	weekStartDay time.Weekday
	now          func() time.Time
}

// New loads the named IANA timezone. weekStartDay follows time.Weekday
// (0=Sunday .. 6=Saturday); out-of-range values fall back to Monday.
func New(timezone string, weekStartDay int) (*Clock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("clock: load timezone %q: %w", timezone, err)
	}
	day := time.Monday
	if weekStartDay >= 0 && weekStartDay <= 6 {
		day = time.Weekday(weekStartDay)
	}
	return &Clock{loc: loc, weekStartDay: day, now: time.Now}, nil
}

// NewFixed pins "now" for tests.
func NewFixed(timezone string, weekStartDay int, at time.Time) (*Clock, error) {
	c, err := New(timezone, weekStartDay)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return at }
	return c, nil
}

func (c *Clock) Now() time.Time           { return c.now().In(c.loc) }
func (c *Clock) Location() *time.Location { return c.loc }
func (c *Clock) WeekStartDay() time.Weekday {
	return c.weekStartDay
}

// StartOfDay truncates t to midnight in the clock's zone.
func (c *Clock) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// EndOfDay is the final representable millisecond of t's day.
func (c *Clock) EndOfDay(t time.Time) time.Time {
	return c.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// WeekStart returns midnight of the first day of the week containing t,
// under the configured week-start convention.
func (c *Clock) WeekStart(t time.Time) time.Time {
	day := c.StartOfDay(t)
	diff := (int(day.Weekday()) - int(c.weekStartDay) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// WeekEnd is always exactly 6 days 23:59:59.999 after WeekStart.
func (c *Clock) WeekEnd(t time.Time) time.Time {
	return c.WeekStart(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}

// PeriodKeyFor encodes the due date (last day) of the period containing t
// for the given frequency as YYYYMMDD.
func (c *Clock) PeriodKeyFor(t time.Time, freq model.Frequency) string {
	t = t.In(c.loc)
	switch freq {
	case model.FrequencyWeekly:
		return c.WeekEnd(t).Format(periodKeyLayout)
	case model.FrequencyMonthly:
		y, m, _ := t.Date()
		lastDay := time.Date(y, m, 1, 0, 0, 0, 0, c.loc).AddDate(0, 1, -1)
		return lastDay.Format(periodKeyLayout)
	case model.FrequencyAnnually:
		return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, c.loc).Format(periodKeyLayout)
	default:
		return t.Format(periodKeyLayout)
	}
}

// CurrentPeriodKey is PeriodKeyFor at "now".
func (c *Clock) CurrentPeriodKey(freq model.Frequency) string {
	return c.PeriodKeyFor(c.Now(), freq)
}

// PeriodDueDate converts a period key back to an instant: midnight at the
// start of the day following the key. The period is due at the stroke of
// midnight after its last day.
func (c *Clock) PeriodDueDate(key string) (time.Time, error) {
	day, err := time.ParseInLocation(periodKeyLayout, key, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	return day.AddDate(0, 0, 1), nil
}

// IsPeriodPassed reports whether "now" is strictly after the end of the
// key's day. Malformed keys are treated as passed so reconciliation can
// retire them.
func (c *Clock) IsPeriodPassed(key string) bool {
	due, err := c.PeriodDueDate(key)
	if err != nil {
		return true
	}
	return !c.Now().Before(due)
}

// NextDue advances the anchor by interval periods using calendar-aligned
// boundaries rather than day-count addition: weekly results land on the
// configured week-start weekday, monthly on the 1st, annually on January 1.
func (c *Clock) NextDue(current time.Time, freq model.Frequency, interval int) time.Time {
	if interval < 1 {
		interval = 1
	}
	current = current.In(c.loc)
	switch freq {
	case model.FrequencyWeekly:
		return c.WeekStart(current).AddDate(0, 0, 7*interval)
	case model.FrequencyMonthly:
		y, m, _ := current.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, c.loc).AddDate(0, interval, 0)
	case model.FrequencyAnnually:
		return time.Date(current.Year()+interval, time.January, 1, 0, 0, 0, 0, c.loc)
	default:
		return c.StartOfDay(current).AddDate(0, 0, interval)
	}
}

// PeriodWindow returns the inclusive bounds of the period identified by key
// under freq: for weekly the configured week, for monthly the calendar
// month, for annually the calendar year, for daily the single day.
func (c *Clock) PeriodWindow(key string, freq model.Frequency) (start, end time.Time, err error) {
	day, parseErr := time.ParseInLocation(periodKeyLayout, key, c.loc)
	if parseErr != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}
	switch freq {
	case model.FrequencyWeekly:
		return c.WeekStart(day), c.WeekEnd(day), nil
	case model.FrequencyMonthly:
		y, m, _ := day.Date()
		start = time.Date(y, m, 1, 0, 0, 0, 0, c.loc)
		return start, start.AddDate(0, 1, 0).Add(-time.Millisecond), nil
	case model.FrequencyAnnually:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, c.loc)
		return start, start.AddDate(1, 0, 0).Add(-time.Millisecond), nil
	default:
		return c.StartOfDay(day), c.EndOfDay(day), nil
	}
}
