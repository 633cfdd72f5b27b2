package ui

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"studyplan/internal/task"
)

type formState struct {
	editing bool
	values  task.Form
	index   int
}

func formFields() []string {
	return []string{"title", "subject", "due date (YYYY-MM-DD)", "due time (HH:MM)", "duration (hours)", "priority (1-3)", "notes", "reminder (y/n)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) value(i int) string {
	switch i {
	case 0:
		return fs.values.Title
	case 1:
		return fs.values.Subject
	case 2:
		return fs.values.DueDate
	case 3:
		return fs.values.DueTime
	case 4:
		return fs.values.Duration
	case 5:
		return fs.values.Priority
	case 6:
		return fs.values.Notes
	case 7:
		return fs.values.Reminder
	default:
		return ""
	}
}

func (fs formState) currentValue() string {
	return fs.value(fs.index)
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.values.Title = v
	case 1:
		fs.values.Subject = v
	case 2:
		fs.values.DueDate = v
	case 3:
		fs.values.DueTime = v
	case 4:
		fs.values.Duration = v
	case 5:
		fs.values.Priority = v
	case 6:
		fs.values.Notes = v
	case 7:
		fs.values.Reminder = v
	}
}

// startForm opens the editor, prefilled from t or with today's date.
func (m Model) startForm(t *task.Task) (tea.Model, tea.Cmd) {
	fs := &formState{}
	if t != nil {
		fs.editing = true
		fs.values = task.FormFromTask(*t)
	} else {
		fs.values = task.Form{
			DueDate:  m.planner.Now().Format("2006-01-02"),
			Priority: "2",
			Reminder: "n",
		}
	}
	m.form = fs
	m.mode = modeForm
	m.input.SetValue(fs.currentValue())
	m.input.Placeholder = fs.currentLabel()
	m.status = m.formPrompt()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateForm(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeNormal
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.moveForm(1)
		return m, nil
	case "shift+tab", "up":
		m.moveForm(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm()
		}
		m.moveForm(1)
		return m, nil
	case "ctrl+s":
		m.form.setCurrentValue(m.input.Value())
		return m.saveForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveForm(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
	m.status = m.formPrompt()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	d, err := task.ParseForm(m.form.values, m.planner.Now().Location())
	if err != nil {
		m.status = fmt.Sprintf("invalid task: %v", err)
		if errors.Is(err, task.ErrEmptyTitle) {
			m.form.index = 0
			m.input.SetValue(m.form.currentValue())
			m.input.Placeholder = m.form.currentLabel()
		}
		return m, nil
	}
	saved, err := m.planner.Save(context.Background(), d)
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		log.Printf("save %q: %v", d.Title, err)
		return m, nil
	}

	editing := m.form.editing
	m.form = nil
	m.mode = modeNormal
	m.input.Blur()
	m.input.SetValue("")
	m.refresh()
	for i, t := range m.visible {
		if t.ID == saved.ID {
			m.cursor = i
			break
		}
	}
	if editing {
		m.status = "Task updated"
	} else {
		m.status = "Added task"
	}
	return m, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	verb := "Add"
	if m.form.editing {
		verb = "Edit"
	}
	return fmt.Sprintf("%s task: %s (field %d of %d). Enter to advance, ctrl+s to save, esc to cancel.",
		verb, m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
