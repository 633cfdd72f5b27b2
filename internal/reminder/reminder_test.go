package reminder

import (
	"testing"
	"time"

	"studyplan/internal/task"
)

var now = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

type stubNotifier struct {
	available bool
	granted   bool
	sent      []Payload
}

func (n *stubNotifier) Available() bool         { return n.available }
func (n *stubNotifier) PermissionGranted() bool { return n.granted }
func (n *stubNotifier) Emit(p Payload) error {
	n.sent = append(n.sent, p)
	return nil
}

func allowed() *stubNotifier {
	return &stubNotifier{available: true, granted: true}
}

func reminderTask(due time.Time) task.Task {
	return task.Task{ID: "t1", Title: "Essay", Due: due, Reminder: true}
}

func TestDecideInsideThresholdIsNoop(t *testing.T) {
	d := Decide(reminderTask(now.Add(10*time.Minute)), now, allowed(), DefaultLead)
	if d.Emit {
		t.Fatalf("Expected no-op, got %+v", d)
	}
	if d.Reason != ReasonPassed {
		t.Errorf("Expected reason %q, got %q", ReasonPassed, d.Reason)
	}
}

func TestDecideExactlyAtThresholdIsNoop(t *testing.T) {
	d := Decide(reminderTask(now.Add(30*time.Minute)), now, allowed(), DefaultLead)
	if d.Emit {
		t.Fatalf("Expected no-op at the boundary, got %+v", d)
	}
}

func TestDecideSchedulesThirtyMinutesBefore(t *testing.T) {
	due := now.Add(40 * time.Minute)
	d := Decide(reminderTask(due), now, allowed(), DefaultLead)
	if !d.Emit {
		t.Fatalf("Expected emission, got %+v", d)
	}
	if !d.At.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("Expected emit at now+10m, got %v", d.At)
	}
	if d.Delay != 10*time.Minute {
		t.Errorf("Expected 10m delay, got %v", d.Delay)
	}
	want := "Essay at 12:40 (Mar 13, 2024)"
	if d.Payload.Body != want || d.Payload.Title != Title {
		t.Errorf("Expected payload %q, got %+v", want, d.Payload)
	}
}

func TestDecideNoopReasons(t *testing.T) {
	due := now.Add(2 * time.Hour)
	cases := []struct {
		name string
		task task.Task
		n    Notifier
		want Reason
	}{
		{"reminder off", task.Task{Due: due}, allowed(), ReasonDisabled},
		{"completed", task.Task{Due: due, Reminder: true, Completed: true}, allowed(), ReasonCompleted},
		{"unavailable", reminderTask(due), &stubNotifier{granted: true}, ReasonUnavailable},
		{"nil notifier", reminderTask(due), nil, ReasonUnavailable},
		{"denied", reminderTask(due), &stubNotifier{available: true}, ReasonDenied},
		{"disabled notifier", reminderTask(due), Disabled{}, ReasonUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(tc.task, now, tc.n, DefaultLead)
			if d.Emit || d.Reason != tc.want {
				t.Errorf("Expected no-op %q, got %+v", tc.want, d)
			}
		})
	}
}

func TestDecideClampsLongDelays(t *testing.T) {
	due := now.Add(60 * 24 * time.Hour)
	d := Decide(reminderTask(due), now, allowed(), DefaultLead)
	if !d.Emit || !d.Clamped {
		t.Fatalf("Expected clamped emission, got %+v", d)
	}
	if d.Delay != MaxDelay {
		t.Errorf("Expected delay %v, got %v", MaxDelay, d.Delay)
	}
	if !d.At.Equal(due.Add(-DefaultLead)) {
		t.Errorf("Expected target instant to stay unclamped, got %v", d.At)
	}
}

func TestDecideCustomLead(t *testing.T) {
	d := Decide(reminderTask(now.Add(20*time.Minute)), now, allowed(), 15*time.Minute)
	if !d.Emit || d.Delay != 5*time.Minute {
		t.Fatalf("Expected 5m delay with a 15m lead, got %+v", d)
	}
}
