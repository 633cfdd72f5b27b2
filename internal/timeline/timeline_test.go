package timeline

import (
	"reflect"
	"testing"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/task"
)

// Monday 2024-03-11.
var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

func day(offset, hour int) time.Time {
	return monday.AddDate(0, 0, offset).Add(time.Duration(hour) * time.Hour)
}

func TestEssayLandsInFirstBucket(t *testing.T) {
	tasks := []task.Task{{ID: "essay", Title: "Essay", Due: day(0, 9), Priority: task.PriorityHigh}}
	days := WeekBuckets(tasks, monday)
	if len(days) != DaysPerWeek {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	if len(days[0].Tasks) != 1 || days[0].Tasks[0].ID != "essay" {
		t.Fatalf("Expected Essay alone in bucket 0, got %+v", days[0].Tasks)
	}
	for i := 1; i < DaysPerWeek; i++ {
		if len(days[i].Tasks) != 0 {
			t.Errorf("Expected bucket %d empty, got %d tasks", i, len(days[i].Tasks))
		}
	}
}

func TestWeekStartIsNormalizedToMonday(t *testing.T) {
	tasks := []task.Task{{ID: "x", Due: day(2, 10)}}
	days := WeekBuckets(tasks, day(4, 15)) // Friday afternoon
	if !days[0].Date.Equal(monday) {
		t.Fatalf("Expected first day %v, got %v", monday, days[0].Date)
	}
	if len(days[2].Tasks) != 1 {
		t.Fatalf("Expected Wednesday task in bucket 2, got %+v", days)
	}
}

func TestBucketsPartitionWindow(t *testing.T) {
	var tasks []task.Task
	for offset := -3; offset < 10; offset++ {
		for _, hour := range []int{0, 12, 23} {
			tasks = append(tasks, task.Task{ID: day(offset, hour).Format(time.RFC3339), Due: day(offset, hour)})
		}
	}
	// 23:59:59.999 on Sunday is still inside the window.
	tasks = append(tasks, task.Task{ID: "edge", Due: monday.AddDate(0, 0, 7).Add(-time.Millisecond)})

	days := WeekBuckets(tasks, monday)
	seen := map[string]int{}
	for i, d := range days {
		for _, tk := range d.Tasks {
			if !clock.SameDay(d.Date, tk.Due) {
				t.Errorf("task %s in bucket %d does not share its day", tk.ID, i)
			}
			seen[tk.ID]++
		}
	}
	end := monday.AddDate(0, 0, 7)
	for _, tk := range tasks {
		inside := !tk.Due.Before(monday) && tk.Due.Before(end)
		switch {
		case inside && seen[tk.ID] != 1:
			t.Errorf("task %s inside window appeared %d times", tk.ID, seen[tk.ID])
		case !inside && seen[tk.ID] != 0:
			t.Errorf("task %s outside window appeared %d times", tk.ID, seen[tk.ID])
		}
	}
}

func TestBucketOrderedByPriority(t *testing.T) {
	tasks := []task.Task{
		{ID: "low", Due: day(1, 8), Priority: task.PriorityLow},
		{ID: "high", Due: day(1, 20), Priority: task.PriorityHigh},
		{ID: "mid", Due: day(1, 9), Priority: task.PriorityMedium},
	}
	got := WeekBuckets(tasks, monday)[1].Tasks
	want := []string{"high", "mid", "low"}
	for i, tk := range got {
		if tk.ID != want[i] {
			t.Fatalf("Expected %v, got order %v", want, got)
		}
	}
}

func TestWeekBucketsIdempotent(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Due: day(0, 9), Priority: task.PriorityMedium},
		{ID: "b", Due: day(0, 10), Priority: task.PriorityMedium},
		{ID: "c", Due: day(6, 22), Priority: task.PriorityLow, DurationHrs: task.Hours(2)},
	}
	first := WeekBuckets(tasks, monday)
	second := WeekBuckets(tasks, monday)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Expected identical results, got\n%+v\n%+v", first, second)
	}
}

func TestBucketsUseWeekStartLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	start := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	// 20:00 UTC on Sunday 10th is 06:00 Monday 11th at UTC+10.
	tasks := []task.Task{{ID: "x", Due: time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)}}
	days := WeekBuckets(tasks, start)
	if len(days[0].Tasks) != 1 {
		t.Fatalf("Expected task on local Monday, got %+v", days)
	}
}

func TestWeekNavigation(t *testing.T) {
	now := day(2, 14)
	w := NewWeek(clock.Fixed(now))
	if !w.Start().Equal(monday) {
		t.Fatalf("Expected %v, got %v", monday, w.Start())
	}
	w.Next()
	w.Next()
	if !w.Start().Equal(monday.AddDate(0, 0, 14)) {
		t.Fatalf("Expected two weeks ahead, got %v", w.Start())
	}
	w.Prev()
	if !w.Start().Equal(monday.AddDate(0, 0, 7)) {
		t.Fatalf("Expected one week ahead, got %v", w.Start())
	}
	w.Today()
	if !w.Start().Equal(monday) {
		t.Fatalf("Expected reset to current week, got %v", w.Start())
	}
	if !w.End().Equal(monday.AddDate(0, 0, 6)) {
		t.Errorf("Expected Sunday end, got %v", w.End())
	}
}

func TestChipLabel(t *testing.T) {
	tk := task.Task{Title: "Essay", Due: day(0, 9), DurationHrs: task.Hours(2)}
	if got := ChipLabel(tk); got != "Essay · 2h · 09:00" {
		t.Errorf("Expected \"Essay · 2h · 09:00\", got %q", got)
	}
	tk.DurationHrs = nil
	if got := ChipLabel(tk); got != "Essay · 09:00" {
		t.Errorf("Expected \"Essay · 09:00\", got %q", got)
	}
}
