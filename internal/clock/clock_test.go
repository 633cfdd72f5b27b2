package clock

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 3, 13, 17, 45, 12, 99, time.UTC)
	got := StartOfDay(in)
	want := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday morning", time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)},
		{"saturday", time.Date(2024, 3, 16, 23, 59, 0, 0, time.UTC)},
		{"sunday belongs to previous monday", time.Date(2024, 3, 17, 8, 0, 0, 0, time.UTC)},
		{"already normalized", monday},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(tc.in)
			if !got.Equal(monday) {
				t.Errorf("Expected %v, got %v", monday, got)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("Expected Monday, got %v", got.Weekday())
			}
		})
	}
}

func TestAddWeeksKeepsMidnightAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST starts on Sunday 2024-03-31 in Europe.
	start := time.Date(2024, 3, 25, 0, 0, 0, 0, loc)
	next := AddWeeks(start, 1)
	if next.Hour() != 0 || next.Day() != 1 || next.Month() != time.April {
		t.Fatalf("Expected 2024-04-01 00:00, got %v", next)
	}
	if back := AddWeeks(next, -1); !back.Equal(start) {
		t.Fatalf("Expected %v, got %v", start, back)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, a.Add(23*time.Hour+59*time.Minute)) {
		t.Error("Expected same day")
	}
	if SameDay(a, a.Add(24*time.Hour)) {
		t.Error("Expected different day")
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("Expected %v, got %v", at, c.Now())
	}
}
