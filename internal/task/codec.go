package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"time"
)

// ErrInvalidFormat marks an import payload that is not a JSON array of tasks.
var ErrInvalidFormat = errors.New("invalid file format")

// record is the persisted and exported shape of a task. Instants are epoch
// milliseconds in the local clock.
type record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	DueTs       millis   `json:"dueTs"`
	DurationHrs *float64 `json:"durationHrs"`
	Priority    int      `json:"priority"`
	Notes       string   `json:"notes"`
	Completed   bool     `json:"completed"`
	Reminder    bool     `json:"reminder"`
	CreatedAt   millis   `json:"createdAt"`
	UpdatedAt   millis   `json:"updatedAt"`
}

// millis accepts any JSON number, including exponent forms, and writes an
// integer back out.
type millis int64

func (m *millis) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("failed to parse epoch milliseconds %s: %w", s, err)
	}
	*m = millis(math.Round(f))
	return nil
}

func toMillis(t time.Time) millis {
	if t.IsZero() {
		return 0
	}
	return millis(t.UnixMilli())
}

func fromMillis(m millis) time.Time {
	return time.UnixMilli(int64(m))
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(record{
		ID:          t.ID,
		Title:       t.Title,
		Subject:     t.Subject,
		DueTs:       toMillis(t.Due),
		DurationHrs: t.DurationHrs,
		Priority:    int(t.Priority),
		Notes:       t.Notes,
		Completed:   t.Completed,
		Reminder:    t.Reminder,
		CreatedAt:   toMillis(t.CreatedAt),
		UpdatedAt:   toMillis(t.UpdatedAt),
	})
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*t = Task{
		ID:          r.ID,
		Title:       r.Title,
		Subject:     r.Subject,
		Due:         fromMillis(r.DueTs),
		DurationHrs: r.DurationHrs,
		Priority:    Priority(r.Priority),
		Notes:       r.Notes,
		Completed:   r.Completed,
		Reminder:    r.Reminder,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
	return nil
}

// Export writes tasks as a pretty-printed JSON array.
func Export(w io.Writer, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

// Import parses an exported array. Falsy entries (null, false, 0, "") are
// dropped; anything else that is not a task object fails the whole import.
func Import(r io.Reader) ([]Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decode(data, true)
}

// DecodeStored parses persisted state leniently: a payload that is not an
// array yields an empty list and unreadable entries are skipped.
func DecodeStored(data []byte) []Task {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Task{}
	}
	tasks, err := decode(data, false)
	if err != nil {
		log.Printf("could not parse stored tasks, starting empty: %v", err)
		return []Task{}
	}
	return tasks
}

func decode(data []byte, strict bool) ([]Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrInvalidFormat
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw == nil {
		// a literal null root is not an array
		return nil, ErrInvalidFormat
	}

	tasks := make([]Task, 0, len(raw))
	for i, item := range raw {
		if falsy(item) {
			continue
		}
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			if strict {
				return nil, fmt.Errorf("%w: entry %d is not a task object", ErrInvalidFormat, i)
			}
			continue
		}
		var t Task
		if err := json.Unmarshal(trimmed, &t); err != nil {
			if strict {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidFormat, i, err)
			}
			log.Printf("skipping unreadable stored task %d: %v", i, err)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func falsy(item json.RawMessage) bool {
	s := string(bytes.TrimSpace(item))
	switch s {
	case "null", "false", `""`:
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f == 0
	}
	return false
}
