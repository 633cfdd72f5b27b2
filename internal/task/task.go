package task

import (
	"fmt"
	"strings"
	"time"
)

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Task is a single study item. Times are kept in the local zone; the wire
// form is epoch milliseconds (see codec.go).
type Task struct {
	ID          string
	Title       string
	Subject     string
	Due         time.Time
	DurationHrs *float64
	Priority    Priority
	Notes       string
	Completed   bool
	Reminder    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overdue reports whether the task is still open past its due instant.
func (t Task) Overdue(now time.Time) bool {
	return !t.Completed && t.Due.Before(now)
}

// SubjectLabel is the subject as shown to the user.
func (t Task) SubjectLabel() string {
	if strings.TrimSpace(t.Subject) == "" {
		return "General"
	}
	return t.Subject
}

// DurationLabel renders durationHrs as "1.5h", or "" when unset or zero.
func (t Task) DurationLabel() string {
	if t.DurationHrs == nil || *t.DurationHrs == 0 {
		return ""
	}
	return fmt.Sprintf("%gh", *t.DurationHrs)
}

func FormatDate(ts time.Time) string {
	return ts.Format("Jan 2, 2006")
}

func FormatTime(ts time.Time) string {
	return ts.Format("15:04")
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DurationHrs != nil {
		d := *t.DurationHrs
		t.DurationHrs = &d
	}
	return t
}

func Hours(v float64) *float64 {
	return &v
}
