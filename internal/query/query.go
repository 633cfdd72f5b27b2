package query

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"studyplan/internal/task"
)

type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

var statuses = []Status{StatusAll, StatusPending, StatusCompleted, StatusOverdue}

// ParseStatus maps free text to a Status; anything unknown means all.
func ParseStatus(v string) Status {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if slices.Contains(statuses, s) {
		return s
	}
	return StatusAll
}

// Next cycles through statuses in display order.
func (s Status) Next() Status {
	i := slices.Index(statuses, s)
	return statuses[(i+1)%len(statuses)]
}

type SortKey string

const (
	SortDueAsc       SortKey = "dueAsc"
	SortDueDesc      SortKey = "dueDesc"
	SortPriorityDesc SortKey = "priorityDesc"
	SortPriorityAsc  SortKey = "priorityAsc"
	SortTitleAsc     SortKey = "titleAsc"
	SortTitleDesc    SortKey = "titleDesc"
)

// DefaultSort applies whenever the key is empty or unknown.
const DefaultSort = SortDueAsc

var sortKeys = []SortKey{SortDueAsc, SortDueDesc, SortPriorityDesc, SortPriorityAsc, SortTitleAsc, SortTitleDesc}

func ParseSortKey(v string) SortKey {
	v = strings.TrimSpace(v)
	for _, k := range sortKeys {
		if strings.EqualFold(string(k), v) {
			return k
		}
	}
	return DefaultSort
}

func (k SortKey) Next() SortKey {
	i := slices.Index(sortKeys, ParseSortKey(string(k)))
	return sortKeys[(i+1)%len(sortKeys)]
}

func (k SortKey) Label() string {
	switch ParseSortKey(string(k)) {
	case SortDueDesc:
		return "due (latest first)"
	case SortPriorityDesc:
		return "priority (high first)"
	case SortPriorityAsc:
		return "priority (low first)"
	case SortTitleAsc:
		return "title A-Z"
	case SortTitleDesc:
		return "title Z-A"
	default:
		return "due (soonest first)"
	}
}

type Criteria struct {
	Text    string
	Subject string
	Status  Status
	Sort    SortKey
}

// Visible filters and sorts a copy of tasks. The input slice is left as is.
func Visible(tasks []task.Task, c Criteria, now time.Time) []task.Task {
	text := strings.ToLower(strings.TrimSpace(c.Text))
	subject := strings.ToLower(strings.TrimSpace(c.Subject))
	status := ParseStatus(string(c.Status))

	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if text != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Notes), text) {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(t.Subject), subject) {
			continue
		}
		if !matchStatus(t, status, now) {
			continue
		}
		out = append(out, t.Clone())
	}

	slices.SortStableFunc(out, comparator(ParseSortKey(string(c.Sort))))
	return out
}

func matchStatus(t task.Task, s Status, now time.Time) bool {
	switch s {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	case StatusOverdue:
		return t.Overdue(now)
	default:
		return true
	}
}

func comparator(k SortKey) func(a, b task.Task) int {
	switch k {
	case SortDueDesc:
		return func(a, b task.Task) int { return byDue(b, a) }
	case SortPriorityDesc:
		return func(a, b task.Task) int {
			return cmpOr(cmp.Compare(b.Priority, a.Priority), byDue(a, b))
		}
	case SortPriorityAsc:
		return func(a, b task.Task) int {
			return cmpOr(cmp.Compare(a.Priority, b.Priority), byDue(a, b))
		}
	case SortTitleAsc:
		col := collate.New(language.Und)
		return func(a, b task.Task) int { return col.CompareString(a.Title, b.Title) }
	case SortTitleDesc:
		col := collate.New(language.Und)
		return func(a, b task.Task) int { return col.CompareString(b.Title, a.Title) }
	default:
		return byDue
	}
}

func byDue(a, b task.Task) int {
	return a.Due.Compare(b.Due)
}

type Progress struct {
	Done    int
	Total   int
	Percent int
}

// Summarize counts completed tasks; Percent is rounded and 0 for an empty list.
func Summarize(tasks []task.Task) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			p.Done++
		}
	}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(p.Done) / float64(p.Total) * 100))
	}
	return p
}

// cmpOr returns the first non-zero value, matching cmp.Or (Go 1.22+) for
// toolchains that predate it.
func cmpOr(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
