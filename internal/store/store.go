package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyplan/internal/clock"
	"studyplan/internal/task"
)

var ErrNotFound = errors.New("task not found")

// Store is the in-memory, insertion-ordered task list. It does no I/O;
// callers persist snapshots from All.
type Store struct {
	tasks []task.Task
	clock clock.Clock
	newID func() string
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(tasks []task.Task, opts ...Option) *Store {
	s := &Store{
		clock: clock.System{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(tasks)
	return s
}

// All returns a copy of the tasks in insertion order.
func (s *Store) All() []task.Task {
	return cloneAll(s.tasks)
}

func (s *Store) Len() int {
	return len(s.tasks)
}

func (s *Store) Get(id string) (task.Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return task.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// Upsert creates a task when the draft has no ID (or an unknown one) and
// otherwise replaces the editable fields of the existing task. Completion
// state and createdAt survive edits.
func (s *Store) Upsert(d task.Draft) (task.Task, bool, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return task.Task{}, false, err
	}
	now := stamp(s.clock.Now())
	d.Due = stamp(d.Due)

	if idx := s.indexOf(d.ID); idx >= 0 {
		cur := s.tasks[idx]
		cur.Title = d.Title
		cur.Subject = d.Subject
		cur.Due = d.Due
		cur.DurationHrs = d.DurationHrs
		cur.Priority = d.Priority
		cur.Notes = d.Notes
		cur.Reminder = d.Reminder
		cur.UpdatedAt = now
		s.tasks[idx] = cur.Clone()
		return cur.Clone(), false, nil
	}

	id := d.ID
	if id == "" {
		id = s.newID()
	}
	t := task.Task{
		ID:          id,
		Title:       d.Title,
		Subject:     d.Subject,
		Due:         d.Due,
		DurationHrs: d.DurationHrs,
		Priority:    d.Priority,
		Notes:       d.Notes,
		Reminder:    d.Reminder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks = append(s.tasks, t.Clone())
	return t, true, nil
}

func (s *Store) SetCompleted(id string, done bool) (task.Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return task.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[idx].Completed = done
	s.tasks[idx].UpdatedAt = stamp(s.clock.Now())
	return s.tasks[idx].Clone(), nil
}

// Toggle flips completion.
func (s *Store) Toggle(id string) (task.Task, error) {
	cur, ok := s.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.SetCompleted(id, !cur.Completed)
}

func (s *Store) Delete(id string) (task.Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return task.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx:idx], s.tasks[idx+1:]...)
	return removed, nil
}

// Replace swaps the whole list, as an import does. An entry with no id, or
// one repeating an id seen earlier in the list, is given a fresh id.
func (s *Store) Replace(tasks []task.Task) {
	out := cloneAll(tasks)
	seen := make(map[string]struct{}, len(out))
	for i := range out {
		id := strings.TrimSpace(out[i].ID)
		if _, dup := seen[id]; id == "" || dup {
			id = s.newID()
		}
		out[i].ID = id
		seen[id] = struct{}{}
	}
	s.tasks = out
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// stamp drops precision the wire format cannot carry (epoch ms).
func stamp(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

func cloneAll(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
