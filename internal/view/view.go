// Package view selects which tasks and sub-tasks a screen shows for the
// All, Today and per-segment selectors. Everything here is pure.
package view

import (
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
)

type Kind int

const (
	KindAll Kind = iota
	KindToday
	KindSegment
)

// Selector picks a view. Segment is set only for KindSegment.
type Selector struct {
	Kind    Kind
	Segment string
}

var (
	All   = Selector{Kind: KindAll}
	Today = Selector{Kind: KindToday}
)

func ForSegment(name string) Selector {
	return Selector{Kind: KindSegment, Segment: name}
}

func (s Selector) String() string {
	switch s.Kind {
	case KindAll:
		return domain.SegmentAll
	case KindToday:
		return domain.SelectorToday
	default:
		return s.Segment
	}
}

// ParseSelector maps user input to a selector. "all" and "today" match
// case-insensitively; anything else names a segment verbatim after
// trimming. Blank input selects All.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, domain.SegmentAll):
		return All
	case strings.EqualFold(s, domain.SelectorToday):
		return Today
	}
	return ForSegment(s)
}

// Item is one visible row. For a sub-task surfaced on its own in the Today
// view, SubTask is set and Parent points at the owning task; otherwise
// Task is set and the row renders with its sub-tasks nested.
type Item struct {
	Task    *domain.Task
	SubTask *domain.SubTask
	Parent  *domain.Task
}

func (it Item) IsSubTask() bool { return it.SubTask != nil }

// Entry returns the fields common to both row kinds.
func (it Item) Entry() domain.Entry {
	if it.SubTask != nil {
		return it.SubTask.Entry
	}
	return it.Task.Entry
}

// Filter returns the rows visible under sel, keeping collection order.
// Items point into tasks; callers that hand tasks out should pass copies.
func Filter(tasks []*domain.Task, sel Selector, now time.Time) []Item {
	items := []Item{}
	for _, t := range tasks {
		switch sel.Kind {
		case KindAll:
			items = append(items, Item{Task: t})
		case KindSegment:
			if t.Segment == sel.Segment {
				items = append(items, Item{Task: t})
			}
		case KindToday:
			if SameDay(t.Deadline, now) {
				items = append(items, Item{Task: t})
			}
			for i := range t.SubTasks {
				if SameDay(t.SubTasks[i].Deadline, now) {
					items = append(items, Item{SubTask: &t.SubTasks[i], Parent: t})
				}
			}
		}
	}
	return items
}

// SameDay reports whether d falls on now's calendar day in now's location.
// A nil deadline never matches.
func SameDay(d *time.Time, now time.Time) bool {
	if d == nil {
		return false
	}
	y1, m1, d1 := d.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Summary counts the rows of a view for its header.
type Summary struct {
	Total      int
	Completed  int
	Incomplete int
}

func Summarize(items []Item) Summary {
	var s Summary
	for _, it := range items {
		s.Total++
		if it.Entry().Completed {
			s.Completed++
		}
	}
	s.Incomplete = s.Total - s.Completed
	return s
}

// Overdue reports whether an incomplete entry's deadline is before now's
// calendar day.
func Overdue(e domain.Entry, now time.Time) bool {
	if e.Completed || e.Deadline == nil {
		return false
	}
	local := e.Deadline.In(now.Location())
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return local.Before(startOfDay)
}
