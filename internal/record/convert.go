package record

import (
	"fmt"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
)

// dateOnlyLayout is accepted on input for deadlines typed by hand.
const dateOnlyLayout = "2006-01-02"

// FromTask converts a domain task into its document form.
func FromTask(t *domain.Task) Task {
	r := Task{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Deadline:  formatOptional(t.Deadline),
		Segment:   t.Segment,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		SubTasks:  make([]SubTask, 0, len(t.SubTasks)),
	}
	for _, s := range t.SubTasks {
		r.SubTasks = append(r.SubTasks, SubTask{
			ID:        s.ID,
			Text:      s.Text,
			Completed: s.Completed,
			Status:    string(s.Status),
			Priority:  string(s.Priority),
			Deadline:  formatOptional(s.Deadline),
		})
	}
	return r
}

// FromTasks converts a slice, keeping order.
func FromTasks(tasks []*domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromTask(t))
	}
	return out
}

// ToTask converts a document back into a domain task. Status and
// priority spellings are parsed leniently; completed/status consistency is
// restored by Normalize. A missing createdAt yields the zero time. Call
// Validate first for user-supplied files.
func (r Task) ToTask() (*domain.Task, error) {
	var createdAt time.Time
	if r.CreatedAt != "" {
		var err error
		if createdAt, err = parseTime(r.CreatedAt); err != nil {
			return nil, fmt.Errorf("task %q createdAt: %w", r.ID, err)
		}
	}
	entry, err := toEntry(r.ID, r.Text, r.Completed, r.Status, r.Priority, r.Deadline)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", r.ID, err)
	}
	t := &domain.Task{
		Entry:     entry,
		Segment:   r.Segment,
		CreatedAt: createdAt,
		SubTasks:  make([]domain.SubTask, 0, len(r.SubTasks)),
	}
	for _, s := range r.SubTasks {
		se, err := toEntry(s.ID, s.Text, s.Completed, s.Status, s.Priority, s.Deadline)
		if err != nil {
			return nil, fmt.Errorf("task %q sub-task %q: %w", r.ID, s.ID, err)
		}
		t.SubTasks = append(t.SubTasks, domain.SubTask{Entry: se})
	}
	t.Normalize()
	return t, nil
}

func toEntry(id, text string, completed bool, status, priority string, deadline *string) (domain.Entry, error) {
	e := domain.Entry{ID: id, Text: text, Completed: completed}
	if status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			return e, err
		}
		e.Status = s
	}
	if priority != "" {
		p, err := domain.ParsePriority(priority)
		if err != nil {
			return e, err
		}
		e.Priority = p
	}
	d, err := parseOptional(deadline)
	if err != nil {
		return e, fmt.Errorf("deadline: %w", err)
	}
	e.Deadline = d
	return e, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

func parseOptional(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime accepts RFC 3339 timestamps (with or without fractional
// seconds) and bare dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected ISO-8601)", s)
	}
	return t, nil
}
