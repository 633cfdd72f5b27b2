// Package planner is the owning layer around the task core: every user
// action mutates the store, persists the snapshot and re-evaluates the
// affected reminder, in that order. A failed save rolls the store back and
// leaves reminders as they were.
package planner

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"studyplan/internal/clock"
	"studyplan/internal/query"
	"studyplan/internal/reminder"
	"studyplan/internal/storage"
	"studyplan/internal/store"
	"studyplan/internal/task"
	"studyplan/internal/timeline"
)

type Planner struct {
	store     *store.Store
	repo      storage.Repository
	reminders *reminder.Scheduler
	clock     clock.Clock
}

type Option func(*options)

type options struct {
	clock     clock.Clock
	storeOpts []store.Option
}

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStoreOptions passes options through to the in-memory store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// New loads the saved tasks and arms their reminders. A repository that
// cannot be read yields an empty planner rather than an error.
func New(ctx context.Context, repo storage.Repository, reminders *reminder.Scheduler, opts ...Option) (*Planner, error) {
	if repo == nil {
		return nil, fmt.Errorf("planner: repository is required")
	}
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	if reminders == nil {
		reminders = reminder.NewScheduler(reminder.Disabled{}, reminder.WithClock(o.clock))
	}

	tasks, err := repo.Load(ctx)
	if err != nil {
		log.Printf("could not load tasks, starting empty: %v", err)
		tasks = nil
	}

	storeOpts := append([]store.Option{store.WithClock(o.clock)}, o.storeOpts...)
	p := &Planner{
		store:     store.New(tasks, storeOpts...),
		repo:      repo,
		reminders: reminders,
		clock:     o.clock,
	}
	p.reminders.Sync(p.store.All())
	return p, nil
}

func (p *Planner) Now() time.Time {
	return p.clock.Now()
}

func (p *Planner) Tasks() []task.Task {
	return p.store.All()
}

func (p *Planner) Get(id string) (task.Task, bool) {
	return p.store.Get(id)
}

// Save creates or edits a task from a draft.
func (p *Planner) Save(ctx context.Context, d task.Draft) (task.Task, error) {
	before := p.store.All()
	t, _, err := p.store.Upsert(d)
	if err != nil {
		return task.Task{}, err
	}
	if err := p.commit(ctx, before); err != nil {
		return task.Task{}, err
	}
	p.reminders.Schedule(t)
	return t, nil
}

func (p *Planner) Delete(ctx context.Context, id string) error {
	before := p.store.All()
	if _, err := p.store.Delete(id); err != nil {
		return err
	}
	if err := p.commit(ctx, before); err != nil {
		return err
	}
	p.reminders.Cancel(id)
	return nil
}

func (p *Planner) SetCompleted(ctx context.Context, id string, done bool) (task.Task, error) {
	before := p.store.All()
	t, err := p.store.SetCompleted(id, done)
	if err != nil {
		return task.Task{}, err
	}
	if err := p.commit(ctx, before); err != nil {
		return task.Task{}, err
	}
	p.reminders.Schedule(t)
	return t, nil
}

func (p *Planner) Toggle(ctx context.Context, id string) (task.Task, error) {
	cur, ok := p.store.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return p.SetCompleted(ctx, id, !cur.Completed)
}

// Import replaces every task with the contents of r. On a parse or save
// error the current tasks are left untouched.
func (p *Planner) Import(ctx context.Context, r io.Reader) (int, error) {
	tasks, err := task.Import(r)
	if err != nil {
		return 0, fmt.Errorf("import failed: %w", err)
	}
	before := p.store.All()
	p.store.Replace(tasks)
	if err := p.commit(ctx, before); err != nil {
		return 0, fmt.Errorf("import failed: %w", err)
	}
	p.reminders.Sync(p.store.All())
	return len(tasks), nil
}

func (p *Planner) Export(w io.Writer) error {
	return task.Export(w, p.store.All())
}

func (p *Planner) Visible(c query.Criteria) []task.Task {
	return query.Visible(p.store.All(), c, p.clock.Now())
}

func (p *Planner) Week(start time.Time) []timeline.Day {
	return timeline.WeekBuckets(p.store.All(), start)
}

func (p *Planner) Progress() query.Progress {
	return query.Summarize(p.store.All())
}

// RearmReminders re-evaluates every task, e.g. after notifications were
// switched on.
func (p *Planner) RearmReminders() {
	p.reminders.Sync(p.store.All())
}

func (p *Planner) Reminders() *reminder.Scheduler {
	return p.reminders
}

func (p *Planner) Close() error {
	p.reminders.Stop()
	return p.repo.Close()
}

// commit saves the store, putting back the before snapshot when the save
// fails so memory, disk and armed reminders keep agreeing.
func (p *Planner) commit(ctx context.Context, before []task.Task) error {
	if err := p.persist(ctx); err != nil {
		p.store.Replace(before)
		return err
	}
	return nil
}

func (p *Planner) persist(ctx context.Context) error {
	if err := p.repo.Save(ctx, p.store.All()); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}
