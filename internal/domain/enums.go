package domain

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// ValidStatuses lists statuses in the order they are offered to users.
var ValidStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts the canonical spelling plus common CLI variants
// ("todo", "in-progress", "in_progress", "doing", "done").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	switch norm {
	case "todo", "to do":
		return StatusTodo, nil
	case "in progress", "inprogress", "doing", "wip":
		return StatusInProgress, nil
	case "done", "complete", "completed":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: unknown status %q (want todo, in-progress or done)", ErrValidation, s)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriorities lists priorities from lowest to highest.
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority is case-insensitive and also accepts single-letter forms.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q (want low, medium or high)", ErrValidation, s)
}

const (
	// SegmentAll marks a task that belongs to no user segment. It is also
	// the selector for the unfiltered view.
	SegmentAll = "All"

	// SelectorToday is the view selector for items due today.
	SelectorToday = "Today"
)

// DefaultSegments are created for an owner on first load.
var DefaultSegments = []string{"Personal", "Work"}

// IsDefaultSegment reports whether name is one of DefaultSegments.
func IsDefaultSegment(name string) bool {
	for _, d := range DefaultSegments {
		if d == name {
			return true
		}
	}
	return false
}
