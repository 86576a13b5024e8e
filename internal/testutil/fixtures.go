package testutil

import (
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is the reference clock used by fixtures: a Wednesday morning.
var FixedNow = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

type TaskOption func(*domain.Task)

func WithID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
	}
}

func WithSegment(name string) TaskOption {
	return func(t *domain.Task) {
		t.Segment = name
	}
}

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) {
		t.Priority = p
	}
}

func WithDeadline(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.SetDeadline(&d)
	}
}

func WithStatus(s domain.Status) TaskOption {
	return func(t *domain.Task) {
		_ = t.SetStatus(s)
	}
}

func Completed() TaskOption {
	return WithStatus(domain.StatusDone)
}

func WithCreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = at
	}
}

// WithSubTask appends a sub-task; opts apply to its entry.
func WithSubTask(id, text string, opts ...func(*domain.Entry)) TaskOption {
	return func(t *domain.Task) {
		s, err := t.AddSubTask(id, text)
		if err != nil {
			panic(err)
		}
		for _, opt := range opts {
			opt(&s.Entry)
		}
	}
}

// SubDeadline sets a sub-task deadline inside WithSubTask.
func SubDeadline(d time.Time) func(*domain.Entry) {
	return func(e *domain.Entry) {
		e.SetDeadline(&d)
	}
}

// SubDone marks a sub-task done inside WithSubTask.
func SubDone() func(*domain.Entry) {
	return func(e *domain.Entry) {
		_ = e.SetStatus(domain.StatusDone)
	}
}

func NewTestTask(text string, opts ...TaskOption) *domain.Task {
	t, err := domain.NewTask(uuid.NewString(), text, domain.PriorityLow, domain.SegmentAll, FixedNow)
	if err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
