package domain

import (
	"fmt"
	"strings"
	"time"
)

// Entry holds the fields shared by tasks and sub-tasks. Completed and
// Status always agree: Completed is true exactly when Status is Done.
type Entry struct {
	ID        string
	Text      string
	Completed bool
	Status    Status
	Priority  Priority
	Deadline  *time.Time
}

type Task struct {
	Entry
	Segment   string
	CreatedAt time.Time
	SubTasks  []SubTask
}

// SubTask belongs to exactly one Task and inherits its segment.
type SubTask struct {
	Entry
}

func newEntry(id, text string, priority Priority) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, fmt.Errorf("%w: text must not be empty", ErrValidation)
	}
	if priority == "" {
		priority = PriorityLow
	}
	if !priority.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	return Entry{
		ID:       id,
		Text:     text,
		Status:   StatusTodo,
		Priority: priority,
	}, nil
}

// NewTask builds a Todo task with no deadline and no sub-tasks.
// An empty segment means SegmentAll.
func NewTask(id, text string, priority Priority, segment string, now time.Time) (*Task, error) {
	e, err := newEntry(id, text, priority)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(segment) == "" {
		segment = SegmentAll
	}
	return &Task{
		Entry:     e,
		Segment:   segment,
		CreatedAt: now,
		SubTasks:  []SubTask{},
	}, nil
}

// Toggle flips completion and moves Status to Done or back to Todo.
func (e *Entry) Toggle() {
	e.Completed = !e.Completed
	e.Status = statusFor(e.Completed)
}

func (e *Entry) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	e.Status = s
	e.Completed = s == StatusDone
	return nil
}

func (e *Entry) SetPriority(p Priority) error {
	if !p.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
	}
	e.Priority = p
	return nil
}

// SetDeadline replaces the deadline; nil clears it.
func (e *Entry) SetDeadline(d *time.Time) {
	if d == nil {
		e.Deadline = nil
		return
	}
	v := *d
	e.Deadline = &v
}

// Apply merges every set field of p. The patch is validated as a whole
// first so a rejected patch leaves the entry untouched.
func (e *Entry) Apply(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Text != nil {
		e.Text = strings.TrimSpace(*p.Text)
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}
	if p.Status != nil {
		e.Status = *p.Status
		e.Completed = *p.Status == StatusDone
	}
	switch {
	case p.ClearDeadline:
		e.Deadline = nil
	case p.Deadline != nil:
		e.SetDeadline(p.Deadline)
	}
	return nil
}

// Normalize repairs records loaded from storage: a missing status is
// derived from Completed, otherwise Completed follows Status. A missing
// priority becomes low. It reports whether anything changed.
func (e *Entry) Normalize() bool {
	before := *e
	if !e.Status.Valid() {
		e.Status = statusFor(e.Completed)
	}
	e.Completed = e.Status == StatusDone
	if !e.Priority.Valid() {
		e.Priority = PriorityLow
	}
	return before.Status != e.Status || before.Completed != e.Completed || before.Priority != e.Priority
}

// Normalize applies Entry.Normalize to the task and every sub-task and
// fills an empty segment with SegmentAll.
func (t *Task) Normalize() bool {
	changed := t.Entry.Normalize()
	if t.Segment == "" {
		t.Segment = SegmentAll
		changed = true
	}
	if t.SubTasks == nil {
		t.SubTasks = []SubTask{}
	}
	for i := range t.SubTasks {
		if t.SubTasks[i].Normalize() {
			changed = true
		}
	}
	return changed
}

// SubTask returns a pointer into t.SubTasks so callers can mutate in place.
func (t *Task) SubTask(id string) (*SubTask, bool) {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == id {
			return &t.SubTasks[i], true
		}
	}
	return nil, false
}

// AddSubTask appends a Todo, low-priority sub-task without a deadline.
func (t *Task) AddSubTask(id, text string) (*SubTask, error) {
	if _, exists := t.SubTask(id); exists {
		return nil, fmt.Errorf("%w: sub-task id %q already used in task %q", ErrValidation, id, t.ID)
	}
	e, err := newEntry(id, text, PriorityLow)
	if err != nil {
		return nil, err
	}
	t.SubTasks = append(t.SubTasks, SubTask{Entry: e})
	return &t.SubTasks[len(t.SubTasks)-1], nil
}

// RemoveSubTask deletes the sub-task and reports whether it existed.
func (t *Task) RemoveSubTask(id string) bool {
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == id {
			t.SubTasks = append(t.SubTasks[:i], t.SubTasks[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy; the store hands out clones so callers never
// alias its state.
func (t *Task) Clone() *Task {
	c := *t
	c.Deadline = cloneTime(t.Deadline)
	c.SubTasks = make([]SubTask, len(t.SubTasks))
	for i, s := range t.SubTasks {
		s.Deadline = cloneTime(s.Deadline)
		c.SubTasks[i] = s
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func statusFor(completed bool) Status {
	if completed {
		return StatusDone
	}
	return StatusTodo
}
