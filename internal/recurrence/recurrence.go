// Package recurrence computes the next occurrence of a recurring transaction.
package recurrence

import (
	"fmt"
	"time"

	"fintrack-backend/internal/models"
)

// Next advances anchor by one interval. Months and years are calendar
// units: a day that does not exist in the target month is clamped to the
// last day of that month (Jan 31 -> Feb 28, Feb 29 -> Feb 28).
func Next(anchor time.Time, interval models.RecurringInterval) (time.Time, error) {
	switch interval {
	case models.IntervalDaily:
		return anchor.AddDate(0, 0, 1), nil
	case models.IntervalWeekly:
		return anchor.AddDate(0, 0, 7), nil
	case models.IntervalMonthly:
		return addMonthsClamped(anchor, 1), nil
	case models.IntervalYearly:
		return addMonthsClamped(anchor, 12), nil
	}
	return time.Time{}, fmt.Errorf("unknown recurring interval %q", interval)
}

// NextFrom returns the next occurrence after anchor. When that lands before
// now it is recomputed once from now, so the result is never in the past.
func NextFrom(anchor time.Time, interval models.RecurringInterval, now time.Time) (time.Time, error) {
	next, err := Next(anchor, interval)
	if err != nil {
		return time.Time{}, err
	}
	if next.Before(now) {
		return Next(now, interval)
	}
	return next, nil
}

// Schedule returns the next recurring date to persist, nil for
// non-recurring transactions or when no interval is set.
func Schedule(isRecurring bool, interval *models.RecurringInterval, anchor, now time.Time) (*time.Time, error) {
	if !isRecurring || interval == nil {
		return nil, nil
	}
	next, err := NextFrom(anchor, *interval, now)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
