// Package daterange resolves named presets and custom from/to strings into
// concrete UTC boundaries. Ranges are inclusive: From is the first instant of
// the first day, To the last nanosecond of the last day.
package daterange

import (
	"strings"
	"time"
)

type Preset string

const (
	Today     Preset = "today"
	Yesterday Preset = "yesterday"
	ThisWeek  Preset = "this-week"
	LastWeek  Preset = "last-week"
	ThisMonth Preset = "this-month"
	LastMonth Preset = "last-month"
	ThisYear  Preset = "this-year"
	LastYear  Preset = "last-year"
	AllTime   Preset = "all-time"
	Custom    Preset = "custom"
)

const dateLayout = "2006-01-02"

var labels = map[Preset]string{
	Today:     "Today",
	Yesterday: "Yesterday",
	ThisWeek:  "This Week",
	LastWeek:  "Last Week",
	ThisMonth: "This Month",
	LastMonth: "Last Month",
	ThisYear:  "This Year",
	LastYear:  "Last Year",
	AllTime:   "All Time",
	Custom:    "Custom Range",
}

// Label returns the human readable name of p, or "" for unknown presets.
func (p Preset) Label() string {
	return labels[p]
}

// Range is a resolved date window. Nil bounds mean no date filter.
type Range struct {
	From  *time.Time `json:"from"`
	To    *time.Time `json:"to"`
	Value Preset     `json:"value"`
	Label string     `json:"label"`
}

func (r Range) IsAllTime() bool {
	return r.From == nil || r.To == nil
}

// IsYearly reports whether the prior comparison window is one calendar year back.
func (r Range) IsYearly() bool {
	return r.Value == ThisYear || r.Value == LastYear
}

func allTime() Range {
	return Range{Value: AllTime, Label: AllTime.Label()}
}

// Resolve turns the query parameters into a Range. A recognised preset wins
// over custom dates. Unknown presets and missing or malformed custom dates
// fall back to all-time.
func Resolve(preset, from, to string, now time.Time) Range {
	now = now.UTC()
	p := Preset(strings.ToLower(strings.TrimSpace(preset)))

	if p != "" && p != Custom {
		start, end, ok := presetBounds(p, now)
		if !ok {
			return allTime()
		}
		if p == AllTime {
			return allTime()
		}
		return Range{From: &start, To: &end, Value: p, Label: p.Label()}
	}

	if from == "" || to == "" {
		return allTime()
	}
	f, ok := ParseDate(from)
	if !ok {
		return allTime()
	}
	t, ok := ParseDate(to)
	if !ok {
		return allTime()
	}
	if t.Before(f) {
		f, t = t, f
	}
	start := StartOfDay(f)
	end := EndOfDay(t)
	return Range{From: &start, To: &end, Value: Custom, Label: Custom.Label()}
}

func presetBounds(p Preset, now time.Time) (time.Time, time.Time, bool) {
	today := StartOfDay(now)

	switch p {
	case Today:
		return today, EndOfDay(today), true
	case Yesterday:
		y := today.AddDate(0, 0, -1)
		return y, EndOfDay(y), true
	case ThisWeek:
		return startOfWeek(today), EndOfDay(today), true
	case LastWeek:
		start := startOfWeek(today).AddDate(0, 0, -7)
		return start, EndOfDay(start.AddDate(0, 0, 6)), true
	case ThisMonth:
		return startOfMonth(today), EndOfDay(today), true
	case LastMonth:
		start := startOfMonth(today).AddDate(0, -1, 0)
		return start, startOfMonth(today).Add(-time.Nanosecond), true
	case ThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), EndOfDay(today), true
	case LastYear:
		start := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), true
	case AllTime:
		return time.Time{}, time.Time{}, true
	case Custom:
		return time.Time{}, time.Time{}, false
	}
	return time.Time{}, time.Time{}, false
}

// ParseDate accepts "2006-01-02" or RFC 3339 and returns UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// weeks start on Monday
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfNextMonth is the first instant of the month after now, in UTC.
func StartOfNextMonth(now time.Time) time.Time {
	return startOfMonth(now.UTC()).AddDate(0, 1, 0)
}

// PreviousMonth returns the bounds of the calendar month before now and its
// label, e.g. "March 2026".
func PreviousMonth(now time.Time) (from, to time.Time, label string) {
	thisMonth := startOfMonth(now.UTC())
	from = thisMonth.AddDate(0, -1, 0)
	to = thisMonth.Add(-time.Nanosecond)
	return from, to, from.Format("January 2006")
}
