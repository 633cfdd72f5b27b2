package task

import (
	"errors"
	"testing"
	"time"
)

func TestParseForm(t *testing.T) {
	loc := time.UTC
	d, err := ParseForm(Form{
		Title:    "  Lab report ",
		Subject:  " Chem ",
		DueDate:  "2024-03-12",
		Duration: "2.5",
		Priority: "",
		Reminder: "y",
	}, loc)
	if err != nil {
		t.Fatalf("ParseForm failed: %v", err)
	}
	if d.Title != "Lab report" || d.Subject != "Chem" {
		t.Errorf("Expected trimmed text, got %q / %q", d.Title, d.Subject)
	}
	want := time.Date(2024, 3, 12, 23, 59, 0, 0, loc)
	if !d.Due.Equal(want) {
		t.Errorf("Expected blank time to default to 23:59, got %v", d.Due)
	}
	if d.Priority != PriorityMedium {
		t.Errorf("Expected Medium priority, got %v", d.Priority)
	}
	if d.DurationHrs == nil || *d.DurationHrs != 2.5 {
		t.Errorf("Expected 2.5h duration, got %v", d.DurationHrs)
	}
	if !d.Reminder {
		t.Error("Expected reminder enabled")
	}
}

func TestParseFormRejects(t *testing.T) {
	base := Form{Title: "x", DueDate: "2024-03-12", DueTime: "09:00"}
	cases := []struct {
		name string
		mod  func(*Form)
		want error
	}{
		{"empty title", func(f *Form) { f.Title = "   " }, ErrEmptyTitle},
		{"missing date", func(f *Form) { f.DueDate = "" }, ErrMissingDueDate},
		{"bad date", func(f *Form) { f.DueDate = "12/03/2024" }, ErrInvalidDueDate},
		{"bad time", func(f *Form) { f.DueTime = "9am" }, ErrInvalidDueTime},
		{"negative duration", func(f *Form) { f.Duration = "-1" }, ErrInvalidDuration},
		{"non-numeric duration", func(f *Form) { f.Duration = "two" }, ErrInvalidDuration},
		{"priority out of range", func(f *Form) { f.Priority = "5" }, ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := base
			tc.mod(&f)
			_, err := ParseForm(f, time.UTC)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFormFromTaskRoundTrip(t *testing.T) {
	src := Task{
		ID:          "id-1",
		Title:       "Flashcards",
		Subject:     "Spanish",
		Due:         time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC),
		DurationHrs: Hours(0.75),
		Priority:    PriorityHigh,
		Reminder:    true,
	}
	d, err := ParseForm(FormFromTask(src), time.UTC)
	if err != nil {
		t.Fatalf("ParseForm failed: %v", err)
	}
	if d.ID != src.ID || !d.Due.Equal(src.Due) || d.Priority != src.Priority || *d.DurationHrs != 0.75 || !d.Reminder {
		t.Errorf("Expected draft to mirror task, got %+v", d)
	}
}

func TestPriorityLabels(t *testing.T) {
	cases := map[Priority]string{PriorityLow: "Low", PriorityMedium: "Medium", PriorityHigh: "High"}
	for p, want := range cases {
		if p.String() != want {
			t.Errorf("Expected %s, got %s", want, p.String())
		}
	}
}

func TestLabels(t *testing.T) {
	tk := Task{}
	if tk.SubjectLabel() != "General" {
		t.Errorf("Expected General, got %s", tk.SubjectLabel())
	}
	if tk.DurationLabel() != "" {
		t.Errorf("Expected empty duration label, got %s", tk.DurationLabel())
	}
	tk.DurationHrs = Hours(2)
	if tk.DurationLabel() != "2h" {
		t.Errorf("Expected 2h, got %s", tk.DurationLabel())
	}
}
