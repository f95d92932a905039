package daterange

import (
	"testing"
	"time"
)

// Wednesday
var now = time.Date(2026, time.March, 18, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePresets(t *testing.T) {
	cases := []struct {
		preset   string
		from, to time.Time
		label    string
	}{
		{"today", day(2026, 3, 18), EndOfDay(day(2026, 3, 18)), "Today"},
		{"yesterday", day(2026, 3, 17), EndOfDay(day(2026, 3, 17)), "Yesterday"},
		{"this-week", day(2026, 3, 16), EndOfDay(day(2026, 3, 18)), "This Week"},
		{"last-week", day(2026, 3, 9), EndOfDay(day(2026, 3, 15)), "Last Week"},
		{"this-month", day(2026, 3, 1), EndOfDay(day(2026, 3, 18)), "This Month"},
		{"last-month", day(2026, 2, 1), EndOfDay(day(2026, 2, 28)), "Last Month"},
		{"this-year", day(2026, 1, 1), EndOfDay(day(2026, 3, 18)), "This Year"},
		{"last-year", day(2025, 1, 1), EndOfDay(day(2025, 12, 31)), "Last Year"},
	}
	for _, tc := range cases {
		t.Run(tc.preset, func(t *testing.T) {
			r := Resolve(tc.preset, "", "", now)
			if r.IsAllTime() {
				t.Fatal("expected concrete bounds")
			}
			if !r.From.Equal(tc.from) || !r.To.Equal(tc.to) {
				t.Fatalf("got %v..%v, want %v..%v", r.From, r.To, tc.from, tc.to)
			}
			if r.Label != tc.label || string(r.Value) != tc.preset {
				t.Fatalf("got value=%q label=%q", r.Value, r.Label)
			}
		})
	}
}

func TestResolveWeekStartsMonday(t *testing.T) {
	sunday := time.Date(2026, time.March, 22, 10, 0, 0, 0, time.UTC)
	r := Resolve("this-week", "", "", sunday)
	if !r.From.Equal(day(2026, 3, 16)) {
		t.Fatalf("expected Monday 16th, got %v", r.From)
	}
}

func TestResolveAllTimeFallbacks(t *testing.T) {
	cases := []struct {
		name, preset, from, to string
	}{
		{"empty", "", "", ""},
		{"explicit", "all-time", "", ""},
		{"unknown preset", "next-decade", "2026-01-01", "2026-01-31"},
		{"missing to", "", "2026-01-01", ""},
		{"malformed from", "", "01/01/2026", "2026-01-31"},
		{"malformed to", "", "2026-01-01", "soon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Resolve(tc.preset, tc.from, tc.to, now)
			if r.From != nil || r.To != nil {
				t.Fatalf("expected nil bounds, got %v..%v", r.From, r.To)
			}
			if r.Value != AllTime || r.Label != "All Time" {
				t.Fatalf("got value=%q label=%q", r.Value, r.Label)
			}
		})
	}
}

func TestResolveCustom(t *testing.T) {
	r := Resolve("", "2026-02-10", "2026-02-01T18:00:00Z", now)
	if r.Value != Custom || r.Label != "Custom Range" {
		t.Fatalf("got value=%q label=%q", r.Value, r.Label)
	}
	if !r.From.Equal(day(2026, 2, 1)) || !r.To.Equal(EndOfDay(day(2026, 2, 10))) {
		t.Fatalf("expected swapped day aligned bounds, got %v..%v", r.From, r.To)
	}
}

func TestPresetWinsOverCustom(t *testing.T) {
	r := Resolve("today", "2020-01-01", "2020-12-31", now)
	if r.Value != Today || !r.From.Equal(day(2026, 3, 18)) {
		t.Fatalf("expected today preset, got %+v", r)
	}
}

func TestIsYearly(t *testing.T) {
	if !Resolve("last-year", "", "", now).IsYearly() {
		t.Fatal("last-year should be yearly")
	}
	if Resolve("this-month", "", "", now).IsYearly() {
		t.Fatal("this-month should not be yearly")
	}
}

func TestMonthBoundaries(t *testing.T) {
	if got := StartOfNextMonth(time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)); !got.Equal(day(2027, 1, 1)) {
		t.Fatalf("expected 2027-01-01, got %v", got)
	}

	from, to, label := PreviousMonth(time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))
	if !from.Equal(day(2026, 2, 1)) || !to.Equal(EndOfDay(day(2026, 2, 28))) {
		t.Fatalf("unexpected bounds %v..%v", from, to)
	}
	if label != "February 2026" {
		t.Fatalf("unexpected label %q", label)
	}
}
