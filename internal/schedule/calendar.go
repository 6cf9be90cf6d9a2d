// Package schedule derives maintenance dates and expiration urgency.
//
// Month arithmetic clamps to the end of the target month: Jan 31 plus one
// month is Feb 28 (Feb 29 in leap years) and Feb 29 plus one year is Feb 28.
package schedule

import (
	"time"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

type Level string

const (
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
	LevelNotice   Level = "notice"
	LevelNormal   Level = "normal"
)

const NearExpirationDays = 15

// NextMaintenance returns lastMaintenance shifted by one period, at midnight in
// the location of lastMaintenance.
func NextMaintenance(lastMaintenance time.Time, p model.Periodicity) (time.Time, error) {
	months, err := p.Months()
	if err != nil {
		return time.Time{}, err
	}
	return addMonthsClamped(DateOnly(lastMaintenance), months), nil
}

// DaysToExpireAt counts civil days from today to next. Negative means overdue.
func DaysToExpireAt(next, today time.Time) int {
	return int(civilDay(next) - civilDay(today))
}

func Urgency(daysToExpire int) Level {
	switch {
	case daysToExpire <= 7:
		return LevelCritical
	case daysToExpire <= 15:
		return LevelWarning
	case daysToExpire <= 30:
		return LevelNotice
	default:
		return LevelNormal
	}
}

func NearExpiration(daysToExpire int) bool {
	return daysToExpire <= NearExpirationDays
}

func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// civilDay maps the calendar date of t onto a day number, ignoring its clock
// and zone offset.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// Calendar binds the pure functions to a wall clock and a location.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

type Option func(*Calendar)

func WithClock(now func() time.Time) Option {
	return func(c *Calendar) {
		c.now = now
	}
}

func NewCalendar(loc *time.Location, opts ...Option) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	c := &Calendar{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

func (c *Calendar) Today() time.Time {
	return DateOnly(c.now().In(c.loc))
}

func (c *Calendar) DaysToExpire(next time.Time) int {
	return DaysToExpireAt(next, c.Today())
}

// Derive computes both derived fields of a compliance item from the same inputs.
func (c *Calendar) Derive(lastMaintenance time.Time, p model.Periodicity) (time.Time, int, error) {
	next, err := NextMaintenance(lastMaintenance, p)
	if err != nil {
		return time.Time{}, 0, err
	}
	return next, c.DaysToExpire(next), nil
}
