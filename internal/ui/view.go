package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"studyplan/internal/clock"
	"studyplan/internal/config"
	"studyplan/internal/task"
	"studyplan/internal/timeline"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	highStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	lowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	barFillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dayStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	todayStyle     = dayStyle.BorderForeground(lipgloss.Color("42"))
)

const (
	minDayWidth = 16
	barWidth    = 20
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Study Planner"))
	b.WriteString("  ")
	b.WriteString(m.renderProgress())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(m.renderCriteria()))
	b.WriteString("\n\n")

	if m.view == viewWeek {
		b.WriteString(m.renderWeek())
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")
	switch m.mode {
	case modeForm:
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case modeSearch, modeSubject:
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s view • %s search • %s subject • %s status • %s sort • %s/%s/%s week • %s reminders • %s quit",
		k.Up, k.Down, k.Add, k.Edit, keyName(k.Toggle), k.Delete, keyName(k.SwitchView), k.Search, k.Subject,
		k.CycleStatus, k.CycleSort, k.PrevWeek, k.NextWeek, k.ThisWeek, k.Reminders, k.Quit)
}

func (m Model) renderProgress() string {
	p := m.planner.Progress()
	filled := 0
	if p.Total > 0 {
		filled = p.Percent * barWidth / 100
	}
	bar := barFillStyle.Render(strings.Repeat("█", filled)) + faintStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %d of %d completed", bar, p.Done, p.Total)
}

func (m Model) renderCriteria() string {
	parts := []string{"status:" + string(m.criteria.Status), "sort:" + m.criteria.Sort.Label()}
	if q := strings.TrimSpace(m.criteria.Text); q != "" {
		parts = append(parts, fmt.Sprintf("search:%q", q))
	}
	if s := strings.TrimSpace(m.criteria.Subject); s != "" {
		parts = append(parts, fmt.Sprintf("subject:%q", s))
	}
	return strings.Join(parts, " | ")
}

func (m Model) renderTaskList() string {
	if len(m.visible) == 0 {
		if m.planner.Progress().Total == 0 {
			return fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add)
		}
		return "No tasks match the current filters."
	}
	now := m.planner.Now()
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode != modeForm {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", checkbox, t.Title, faintStyle.Render("["+strings.Join(listExtras(t), " | ")+"]"))
		switch {
		case t.Completed:
			line = completedStyle.Render(line)
		case t.Overdue(now):
			line = overdueStyle.Render(line + " overdue")
		}
		b.WriteString(cursor + " " + line)
		b.WriteString("\n")
	}
	return b.String()
}

func listExtras(t task.Task) []string {
	extras := []string{
		t.SubjectLabel(),
		priorityBadge(t.Priority),
		task.FormatDate(t.Due) + " · " + task.FormatTime(t.Due),
	}
	if d := t.DurationLabel(); d != "" {
		extras = append(extras, d)
	}
	if t.Reminder {
		extras = append(extras, "⏰")
	}
	return extras
}

func priorityBadge(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return highStyle.Render(p.String())
	case task.PriorityLow:
		return lowStyle.Render(p.String())
	default:
		return p.String()
	}
}

func (m Model) renderWeek() string {
	days := m.planner.Week(m.week.Start())
	width := minDayWidth
	if m.width > 0 {
		width = max(minDayWidth, m.width/timeline.DaysPerWeek-4)
	}
	now := m.planner.Now()

	cols := make([]string, 0, len(days))
	for _, d := range days {
		lines := []string{titleStyle.Render(timeline.DayLabel(d.Date))}
		if len(d.Tasks) == 0 {
			lines = append(lines, faintStyle.Render("—"))
		}
		for _, t := range d.Tasks {
			lines = append(lines, chip(t, now))
		}
		style := dayStyle
		if clock.SameDay(d.Date, now) {
			style = todayStyle
		}
		cols = append(cols, style.Width(width).Render(strings.Join(lines, "\n")))
	}
	header := titleStyle.Render("Week of " + m.week.Label())
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func chip(t task.Task, now time.Time) string {
	label := timeline.ChipLabel(t)
	switch {
	case t.Completed:
		return completedStyle.Render(label)
	case t.Overdue(now):
		return overdueStyle.Render(label)
	case t.Priority == task.PriorityHigh:
		return highStyle.Render(label)
	case t.Priority == task.PriorityLow:
		return lowStyle.Render(label)
	default:
		return label
	}
}

func (m Model) renderDetail() string {
	t, ok := m.selected()
	if !ok {
		if m.view == viewWeek {
			return fmt.Sprintf("%s/%s previous/next week, %s this week", m.cfg.Keys.PrevWeek, m.cfg.Keys.NextWeek, m.cfg.Keys.ThisWeek)
		}
		return "No task selected"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title     : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Subject   : %s\n", t.SubjectLabel()))
	b.WriteString(fmt.Sprintf("Due       : %s %s (%s)\n", task.FormatDate(t.Due), task.FormatTime(t.Due), humanize.Time(t.Due)))
	b.WriteString(fmt.Sprintf("Priority  : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Duration  : %s\n", emptyPlaceholder(t.DurationLabel())))
	b.WriteString(fmt.Sprintf("Status    : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Reminder  : %s\n", m.reminderLine(t)))
	b.WriteString(fmt.Sprintf("Notes     : %s", emptyPlaceholder(t.Notes)))
	return b.String()
}

func (m Model) reminderLine(t task.Task) string {
	if !t.Reminder {
		return "off"
	}
	if at, ok := m.planner.Reminders().NextAt(t.ID); ok {
		return "at " + task.FormatTime(at) + " " + task.FormatDate(at)
	}
	return m.planner.Reminders().State(t.ID).String()
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := m.form.value(i)
		if i == m.form.index {
			val = m.input.Value()
		}
		b.WriteString(fmt.Sprintf("%s %-22s : %s\n", prefix, name, emptyPlaceholder(val)))
	}
	return b.String()
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
