package timeline

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/task"
)

const DaysPerWeek = 7

// Day is one column of the week grid.
type Day struct {
	Date  time.Time
	Tasks []task.Task
}

// WeekBuckets groups tasks into the seven days starting at the Monday of
// weekStart's week. Tasks due outside the window are left out; each day is
// ordered by priority, highest first.
func WeekBuckets(tasks []task.Task, weekStart time.Time) []Day {
	start := clock.WeekStart(weekStart)
	loc := start.Location()

	days := make([]Day, DaysPerWeek)
	index := make(map[int64]int, DaysPerWeek)
	for i := range days {
		d := clock.AddDays(start, i)
		days[i] = Day{Date: d, Tasks: []task.Task{}}
		index[d.Unix()] = i
	}

	for _, t := range tasks {
		key := clock.StartOfDay(t.Due.In(loc))
		i, ok := index[key.Unix()]
		if !ok {
			continue
		}
		days[i].Tasks = append(days[i].Tasks, t.Clone())
	}

	for i := range days {
		slices.SortStableFunc(days[i].Tasks, func(a, b task.Task) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
	}
	return days
}

// ChipLabel is the short text shown for a task inside a day column,
// e.g. "Essay · 2h · 09:00".
func ChipLabel(t task.Task) string {
	parts := []string{t.Title}
	if d := t.DurationLabel(); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, task.FormatTime(t.Due))
	return strings.Join(parts, " · ")
}

func DayLabel(d time.Time) string {
	return d.Format("Mon, Jan 2")
}

// Week holds the navigable week start. It never touches tasks.
type Week struct {
	start time.Time
	clock clock.Clock
}

func NewWeek(c clock.Clock) *Week {
	if c == nil {
		c = clock.System{}
	}
	return &Week{start: clock.WeekStart(c.Now()), clock: c}
}

func (w *Week) Start() time.Time {
	return w.start
}

func (w *Week) End() time.Time {
	return clock.AddDays(w.start, DaysPerWeek-1)
}

func (w *Week) Prev() {
	w.start = clock.AddWeeks(w.start, -1)
}

func (w *Week) Next() {
	w.start = clock.AddWeeks(w.start, 1)
}

// Today jumps back to the week containing the current time.
func (w *Week) Today() {
	w.start = clock.WeekStart(w.clock.Now())
}

func (w *Week) Buckets(tasks []task.Task) []Day {
	return WeekBuckets(tasks, w.start)
}

func (w *Week) Label() string {
	return w.start.Format("Jan 2") + " – " + w.End().Format("Jan 2, 2006")
}
