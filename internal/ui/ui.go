package ui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"studyplan/internal/clock"
	"studyplan/internal/config"
	"studyplan/internal/planner"
	"studyplan/internal/query"
	"studyplan/internal/reminder"
	"studyplan/internal/task"
	"studyplan/internal/timeline"
)

type mode int

const (
	modeNormal mode = iota
	modeForm
	modeSearch
	modeSubject
	modeConfirmDelete
)

type view int

const (
	viewList view = iota
	viewWeek
)

type reminderMsg reminder.Payload

type Model struct {
	planner    *planner.Planner
	cfg        config.Config
	notifier   *reminder.Channel
	criteria   query.Criteria
	week       *timeline.Week
	visible    []task.Task
	cursor     int
	view       view
	mode       mode
	input      textinput.Model
	form       *formState
	pendingDel *task.Task
	status     string
	width      int
}

// NewModel builds the TUI state. notifier may be nil when reminders are
// switched off in config.
func NewModel(p *planner.Planner, cfg config.Config, notifier *reminder.Channel) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		planner:  p,
		cfg:      cfg,
		notifier: notifier,
		criteria: query.Criteria{
			Status: query.ParseStatus(cfg.DefaultStatus),
			Sort:   query.ParseSortKey(cfg.DefaultSort),
		},
		week:   timeline.NewWeek(clock.Func(p.Now)),
		input:  ti,
		mode:   modeNormal,
		status: fmt.Sprintf("Press '%s' to add, '%s' to switch view, '%s' to quit.", cfg.Keys.Add, keyName(cfg.Keys.SwitchView), cfg.Keys.Quit),
	}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(p *planner.Planner, cfg config.Config, notifier *reminder.Channel) error {
	program := tea.NewProgram(NewModel(p, cfg, notifier), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.waitForReminder()
}

func (m Model) waitForReminder() tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	ch := m.notifier.C()
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg(p)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg.String(), msg)
		case modeSearch, modeSubject:
			return m.updateFilterInput(msg.String(), msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateNormal(msg.String())
	case reminderMsg:
		m.status = fmt.Sprintf("%s: %s", msg.Title, msg.Body)
		return m, m.waitForReminder()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-20, 20)
	}
	return m, nil
}

func (m Model) updateNormal(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.visible) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.visible))
		}
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case k.SwitchView:
		if m.view == viewList {
			m.view = viewWeek
			m.status = "Week " + m.week.Label()
		} else {
			m.view = viewList
			m.status = "List view"
		}
	case k.Add:
		return m.startForm(nil)
	case k.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&t)
	case k.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		updated, err := m.planner.Toggle(context.Background(), t.ID)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			log.Printf("toggle %s: %v", t.ID, err)
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("Marked %q %s", updated.Title, humanDone(updated.Completed))
	case k.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case k.Search:
		return m.startFilterInput(modeSearch, m.criteria.Text, "Search title or notes")
	case k.Subject:
		return m.startFilterInput(modeSubject, m.criteria.Subject, "Filter by subject")
	case k.CycleStatus:
		m.criteria.Status = m.criteria.Status.Next()
		m.refresh()
		m.status = "Showing " + string(m.criteria.Status) + " tasks"
	case k.CycleSort:
		m.criteria.Sort = m.criteria.Sort.Next()
		m.refresh()
		m.status = "Sorted by " + m.criteria.Sort.Label()
	case k.PrevWeek:
		m.week.Prev()
		m.status = "Week " + m.week.Label()
	case k.NextWeek:
		m.week.Next()
		m.status = "Week " + m.week.Label()
	case k.ThisWeek:
		m.week.Today()
		m.status = "Week " + m.week.Label()
	case k.Reminders:
		m.status = m.enableReminders()
	}
	return m, nil
}

func (m Model) enableReminders() string {
	if m.notifier == nil {
		return "Notifications not supported here."
	}
	if m.notifier.PermissionGranted() {
		return "Reminders already enabled!"
	}
	m.notifier.Grant(true)
	m.planner.RearmReminders()
	return fmt.Sprintf("Reminders will show %d mins before due time (while studyplan is running).", int(m.cfg.ReminderLead().Minutes()))
}

func (m Model) startFilterInput(md mode, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = md
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.status = placeholder + ": enter to apply, esc to clear"
	cmd := m.input.Focus()
	return m, cmd
}

// updateFilterInput applies the query as the user types.
func (m Model) updateFilterInput(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.input.SetValue("")
		m.applyFilterInput()
		m.finishInput()
		m.status = "Filter cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.applyFilterInput()
		m.finishInput()
		m.status = fmt.Sprintf("%d tasks shown", len(m.visible))
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.applyFilterInput()
		return m, cmd
	}
}

func (m *Model) applyFilterInput() {
	if m.mode == modeSearch {
		m.criteria.Text = m.input.Value()
	} else {
		m.criteria.Subject = m.input.Value()
	}
	m.refresh()
}

func (m *Model) finishInput() {
	m.mode = modeNormal
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			break
		}
		if err := m.planner.Delete(context.Background(), m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			log.Printf("delete %s: %v", m.pendingDel.ID, err)
		} else {
			m.status = "Deleted task"
		}
		m.refresh()
	default:
		return m, nil
	}
	m.mode = modeNormal
	m.pendingDel = nil
	return m, nil
}

// refresh recomputes the visible list after any mutation or filter change.
func (m *Model) refresh() {
	m.visible = m.planner.Visible(m.criteria)
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) selected() (task.Task, bool) {
	if m.view != viewList || len(m.visible) == 0 {
		return task.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return strings.TrimSpace(k)
}
