package task

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("priority must be 1, 2 or 3")
	ErrInvalidDuration = errors.New("duration must be a non-negative number of hours")
	ErrInvalidDueDate  = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidDueTime  = errors.New("due time must be HH:MM")
	ErrMissingDueDate  = errors.New("due date is required")
)

// DefaultDueTimeOfDay is used when the form leaves the time blank.
const DefaultDueTimeOfDay = "23:59"

// Draft is the user-editable part of a task. An empty ID means "create".
type Draft struct {
	ID          string
	Title       string
	Subject     string
	Due         time.Time
	DurationHrs *float64
	Priority    Priority
	Notes       string
	Reminder    bool
}

// Normalize trims text fields and fills the default priority.
func (d Draft) Normalize() Draft {
	d.ID = strings.TrimSpace(d.ID)
	d.Title = strings.TrimSpace(d.Title)
	d.Subject = strings.TrimSpace(d.Subject)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Priority == 0 {
		d.Priority = PriorityMedium
	}
	return d
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	if d.Due.IsZero() {
		return ErrMissingDueDate
	}
	if !d.Priority.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, int(d.Priority))
	}
	if d.DurationHrs != nil {
		v := *d.DurationHrs
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidDuration
		}
	}
	return nil
}

// FromTask builds the draft an edit form starts from.
func FromTask(t Task) Draft {
	return Draft{
		ID:          t.ID,
		Title:       t.Title,
		Subject:     t.Subject,
		Due:         t.Due,
		DurationHrs: t.Clone().DurationHrs,
		Priority:    t.Priority,
		Notes:       t.Notes,
		Reminder:    t.Reminder,
	}
}

// Form is the raw text a user typed into the task form.
type Form struct {
	ID       string
	Title    string
	Subject  string
	DueDate  string
	DueTime  string
	Duration string
	Priority string
	Notes    string
	Reminder string
}

// ParseForm converts raw form text into a validated Draft. A blank time
// means end of day and a blank priority means Medium.
func ParseForm(f Form, loc *time.Location) (Draft, error) {
	if loc == nil {
		loc = time.Local
	}
	d := Draft{
		ID:       f.ID,
		Title:    f.Title,
		Subject:  f.Subject,
		Notes:    f.Notes,
		Reminder: ParseYN(f.Reminder),
	}
	if strings.TrimSpace(d.Title) == "" {
		return Draft{}, ErrEmptyTitle
	}

	date := strings.TrimSpace(f.DueDate)
	if date == "" {
		return Draft{}, ErrMissingDueDate
	}
	clock := strings.TrimSpace(f.DueTime)
	if clock == "" {
		clock = DefaultDueTimeOfDay
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return Draft{}, ErrInvalidDueDate
	}
	tod, err := time.Parse("15:04", clock)
	if err != nil {
		return Draft{}, ErrInvalidDueTime
	}
	d.Due = time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)

	if v := strings.TrimSpace(f.Duration); v != "" {
		hrs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Draft{}, ErrInvalidDuration
		}
		d.DurationHrs = &hrs
	}
	if v := strings.TrimSpace(f.Priority); v != "" {
		p, err := ParsePriority(v)
		if err != nil {
			return Draft{}, err
		}
		d.Priority = p
	}

	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// FormFromTask renders a task back into form text for editing.
func FormFromTask(t Task) Form {
	f := Form{
		ID:       t.ID,
		Title:    t.Title,
		Subject:  t.Subject,
		DueDate:  t.Due.Format("2006-01-02"),
		DueTime:  t.Due.Format("15:04"),
		Priority: strconv.Itoa(int(t.Priority)),
		Notes:    t.Notes,
		Reminder: boolToYN(t.Reminder),
	}
	if t.DurationHrs != nil {
		f.Duration = strconv.FormatFloat(*t.DurationHrs, 'f', -1, 64)
	}
	return f
}

// ParsePriority accepts 1-3 or low/medium/high.
func ParsePriority(v string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "2", "medium", "m":
		return PriorityMedium, nil
	case "1", "low", "l":
		return PriorityLow, nil
	case "3", "high", "h":
		return PriorityHigh, nil
	}
	return 0, fmt.Errorf("%w: got %q", ErrInvalidPriority, v)
}

func ParseYN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes" || v == "true" || v == "1"
}

func boolToYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}
