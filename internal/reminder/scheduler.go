package reminder

import (
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/task"
)

type State int

const (
	Unscheduled State = iota
	Armed
	Fired
	Cancelled
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	case Cancelled:
		return "cancelled"
	default:
		return "unscheduled"
	}
}

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	timer Timer
	gen   uint64
	at    time.Time
	task  task.Task
}

// Scheduler keeps at most one armed timer per task id. Every mutation of a
// task should be followed by Schedule (or Cancel on delete) so stale
// reminders never fire.
type Scheduler struct {
	mu        sync.Mutex
	notifier  Notifier
	clock     clock.Clock
	afterFunc AfterFunc
	lead      time.Duration
	logger    *log.Logger
	entries   map[string]*entry
	states    map[string]State
	gen       uint64
	stopped   bool
}

type Option func(*Scheduler)

func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = f }
}

func WithLead(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lead = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func NewScheduler(n Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier:  n,
		clock:     clock.System{},
		afterFunc: systemAfterFunc,
		lead:      DefaultLead,
		logger:    log.New(io.Discard, "", 0),
		entries:   make(map[string]*entry),
		states:    make(map[string]State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule re-evaluates t: any timer already armed for t.ID is stopped, and
// a new one is armed if Decide says so.
func (s *Scheduler) Schedule(t task.Task) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := Decide(t, s.clock.Now(), s.notifier, s.lead)
	if s.stopped {
		return Decision{Reason: ReasonUnavailable}
	}
	hadTimer := s.stopLocked(t.ID)
	if !d.Emit {
		if hadTimer {
			s.states[t.ID] = Cancelled
			s.logger.Printf("reminder cancelled task=%s reason=%s", t.ID, d.Reason)
		}
		return d
	}
	s.armLocked(t.Clone(), d)
	return d
}

// Cancel drops the armed timer for id, if any.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopLocked(id) {
		return false
	}
	s.states[id] = Cancelled
	s.logger.Printf("reminder cancelled task=%s", id)
	return true
}

// Sync re-evaluates every task and cancels timers for ids no longer present.
func (s *Scheduler) Sync(tasks []task.Task) {
	keep := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		keep[t.ID] = struct{}{}
	}
	for _, id := range s.Pending() {
		if _, ok := keep[id]; !ok {
			s.Cancel(id)
		}
	}
	for _, t := range tasks {
		s.Schedule(t)
	}
}

func (s *Scheduler) State(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

// NextAt reports when the reminder for id is due to fire.
func (s *Scheduler) NextAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return time.Time{}, false
	}
	return e.at, true
}

// Pending lists ids with an armed timer, sorted.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop cancels every armed timer; later Schedule calls are no-ops.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		s.stopLocked(id)
		s.states[id] = Cancelled
	}
	s.stopped = true
}

func (s *Scheduler) stopLocked(id string) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, id)
	return true
}

func (s *Scheduler) armLocked(t task.Task, d Decision) {
	s.gen++
	gen := s.gen
	e := &entry{gen: gen, at: d.At, task: t}
	e.timer = s.afterFunc(d.Delay, func() { s.fire(t.ID, gen) })
	s.entries[t.ID] = e
	s.states[t.ID] = Armed
	if d.Clamped {
		s.logger.Printf("reminder armed task=%s at=%s (clamped to %s, will re-arm)", t.ID, d.At.Format(time.RFC3339), MaxDelay)
	} else {
		s.logger.Printf("reminder armed task=%s at=%s", t.ID, d.At.Format(time.RFC3339))
	}
}

func (s *Scheduler) fire(id string, gen uint64) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.gen != gen {
		// superseded by a later Schedule or Cancel
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	if now.Before(e.at) {
		// woke from a clamped delay; wait out the rest
		delay := e.at.Sub(now)
		if delay > MaxDelay {
			delay = MaxDelay
		}
		s.gen++
		next := s.gen
		e.gen = next
		e.timer = s.afterFunc(delay, func() { s.fire(id, next) })
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	if s.notifier == nil || !s.notifier.Available() || !s.notifier.PermissionGranted() {
		// permission withdrawn after arming
		s.states[id] = Cancelled
		s.mu.Unlock()
		s.logger.Printf("reminder dropped task=%s reason=%s", id, ReasonDenied)
		return
	}
	s.states[id] = Fired
	payload := NewPayload(e.task)
	notifier := s.notifier
	s.mu.Unlock()

	if err := notifier.Emit(payload); err != nil {
		s.logger.Printf("reminder emit failed task=%s: %v", id, err)
		return
	}
	s.logger.Printf("reminder fired task=%s", id)
}
