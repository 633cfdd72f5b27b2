package reminder

import (
	"fmt"
	"time"

	"studyplan/internal/task"
)

const (
	// DefaultLead is how long before the due instant a reminder fires.
	DefaultLead = 30 * time.Minute

	// MaxDelay is the largest delay a single timer is armed for: 2^31-1 ms,
	// the ceiling of a signed 32-bit millisecond timer. Longer waits re-arm.
	MaxDelay = (1<<31 - 1) * time.Millisecond

	Title = "Upcoming study task"
)

type Payload struct {
	TaskID string
	Title  string
	Body   string
	Due    time.Time
}

// Notifier delivers reminders. Emit is only called when both predicates hold.
type Notifier interface {
	Available() bool
	PermissionGranted() bool
	Emit(Payload) error
}

// Reason explains a no-op decision.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonDisabled    Reason = "reminder off"
	ReasonCompleted   Reason = "task completed"
	ReasonUnavailable Reason = "notifications unavailable"
	ReasonDenied      Reason = "notifications not permitted"
	ReasonPassed      Reason = "reminder window passed"
)

// Decision is the outcome of evaluating one task at one instant.
type Decision struct {
	Emit    bool
	Reason  Reason
	At      time.Time
	Delay   time.Duration
	Clamped bool
	Payload Payload
}

// Decide computes whether and when t should remind, with no side effects.
func Decide(t task.Task, now time.Time, n Notifier, lead time.Duration) Decision {
	if lead <= 0 {
		lead = DefaultLead
	}
	switch {
	case !t.Reminder:
		return Decision{Reason: ReasonDisabled}
	case t.Completed:
		return Decision{Reason: ReasonCompleted}
	case n == nil || !n.Available():
		return Decision{Reason: ReasonUnavailable}
	case !n.PermissionGranted():
		return Decision{Reason: ReasonDenied}
	}

	at := t.Due.Add(-lead)
	delay := at.Sub(now)
	if delay <= 0 {
		return Decision{Reason: ReasonPassed, At: at}
	}
	d := Decision{
		Emit:    true,
		At:      at,
		Delay:   delay,
		Payload: NewPayload(t),
	}
	if d.Delay > MaxDelay {
		d.Delay = MaxDelay
		d.Clamped = true
	}
	return d
}

func NewPayload(t task.Task) Payload {
	return Payload{
		TaskID: t.ID,
		Title:  Title,
		Body:   fmt.Sprintf("%s at %s (%s)", t.Title, task.FormatTime(t.Due), task.FormatDate(t.Due)),
		Due:    t.Due,
	}
}
