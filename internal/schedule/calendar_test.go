package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/maintenance-tracker/internal/model"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return parsed
}

func fixedCalendar(t *testing.T, today string) *Calendar {
	t.Helper()
	now := date(t, today).Add(15*time.Hour + 42*time.Minute)
	return NewCalendar(time.UTC, WithClock(func() time.Time { return now }))
}

func TestNextMaintenance(t *testing.T) {
	tests := []struct {
		name string
		last string
		p    model.Periodicity
		want string
	}{
		{"monthly", "2025-05-10", model.PeriodicityMonthly, "2025-06-10"},
		{"annual", "2024-08-20", model.PeriodicityAnnual, "2025-08-20"},
		{"quarterly crosses year", "2025-11-15", model.PeriodicityQuarterly, "2026-02-15"},
		{"semiannual", "2025-01-01", model.PeriodicitySemiannual, "2025-07-01"},
		{"month end clamps", "2025-01-31", model.PeriodicityMonthly, "2025-02-28"},
		{"month end clamps in leap year", "2024-01-31", model.PeriodicityMonthly, "2024-02-29"},
		{"quarterly clamps", "2025-11-30", model.PeriodicityQuarterly, "2026-02-28"},
		{"leap day annual", "2024-02-29", model.PeriodicityAnnual, "2025-02-28"},
		{"thirty one to thirty", "2025-03-31", model.PeriodicitySemiannual, "2025-09-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextMaintenance(date(t, tt.last), tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestNextMaintenanceDropsTimeOfDay(t *testing.T) {
	last := time.Date(2025, 5, 10, 23, 59, 0, 0, time.UTC)
	got, err := NextMaintenance(last, model.PeriodicityMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestNextMaintenanceRejectsUnknownPeriodicity(t *testing.T) {
	_, err := NextMaintenance(date(t, "2025-05-10"), model.Periodicity("Quinzenal"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidPeriodicity)
}

func TestNextMaintenanceIsOrderedByPeriodicity(t *testing.T) {
	starts := []string{"2025-01-31", "2024-02-29", "2025-05-10", "2025-12-31"}
	for _, start := range starts {
		last := date(t, start)
		var previous time.Time
		for _, p := range model.Periodicities() {
			next, err := NextMaintenance(last, p)
			require.NoError(t, err)
			assert.True(t, next.After(last), "%s %s", start, p)
			if !previous.IsZero() {
				assert.True(t, next.After(previous), "%s %s", start, p)
			}
			again, err := NextMaintenance(last, p)
			require.NoError(t, err)
			assert.Equal(t, next, again)
			previous = next
		}
	}
}

func TestDaysToExpire(t *testing.T) {
	cal := fixedCalendar(t, "2025-05-20")

	assert.Equal(t, 21, cal.DaysToExpire(date(t, "2025-06-10")))
	assert.Equal(t, 0, cal.DaysToExpire(date(t, "2025-05-20")))
	assert.Equal(t, -5, cal.DaysToExpire(date(t, "2025-05-15")))
}

func TestDaysToExpireOfMonthlyFromTodayIsMonthLength(t *testing.T) {
	for _, today := range []string{"2025-01-15", "2025-02-10", "2024-02-10", "2025-04-30"} {
		cal := fixedCalendar(t, today)
		next, err := NextMaintenance(cal.Today(), model.PeriodicityMonthly)
		require.NoError(t, err)

		month := cal.Today()
		assert.Equal(t, daysIn(month.Year(), month.Month()), cal.DaysToExpire(next), today)
	}
}

func TestDaysToExpireAcrossDaylightSavingChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	today := time.Date(2025, 3, 8, 12, 0, 0, 0, loc)
	next := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysToExpireAt(next, today))
}

func TestCalendarDerive(t *testing.T) {
	cal := fixedCalendar(t, "2025-05-20")

	next, days, err := cal.Derive(date(t, "2025-05-05"), model.PeriodicityMonthly)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-05", next.Format("2006-01-02"))
	assert.Equal(t, 16, days)

	_, _, err = cal.Derive(date(t, "2025-05-05"), model.Periodicity("Biweekly"))
	assert.ErrorIs(t, err, model.ErrInvalidPeriodicity)
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, LevelCritical, Urgency(-3))
	assert.Equal(t, LevelCritical, Urgency(0))
	assert.Equal(t, LevelCritical, Urgency(7))
	assert.Equal(t, LevelWarning, Urgency(8))
	assert.Equal(t, LevelWarning, Urgency(15))
	assert.Equal(t, LevelNotice, Urgency(16))
	assert.Equal(t, LevelNotice, Urgency(30))
	assert.Equal(t, LevelNormal, Urgency(31))

	assert.True(t, NearExpiration(15))
	assert.False(t, NearExpiration(16))
}
