package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
)

// TaskStore owns the task collection. Every mutation leaves incomplete
// tasks ahead of completed ones and writes the affected records through.
type TaskStore struct {
	w *Workspace
}

// CreateTask persists the new task before adding it to the collection. If
// that write fails the task is not added and the error is a
// *PersistenceError.
func (s *TaskStore) CreateTask(ctx context.Context, text string, priority domain.Priority, segment string) (*domain.Task, error) {
	w := s.w
	fields := map[string]any{"segment": segment}
	var created *domain.Task
	err := w.run(ctx, "task.create", fields, func() ([]writeOp, error) {
		seg, err := w.checkSegment(segment)
		if err != nil {
			return nil, err
		}
		t, err := domain.NewTask(w.newID(), text, priority, seg, w.now())
		if err != nil {
			return nil, err
		}
		if err := w.taskRepo.Upsert(ctx, w.owner, t); err != nil {
			return nil, &PersistenceError{Op: "create_task", ID: t.ID, Err: err}
		}
		fields["task_id"] = t.ID
		w.tasks = append(w.tasks, t)
		w.persistedOrder = append(w.persistedOrder, t.ID)
		created = t.Clone()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *TaskStore) ToggleTask(ctx context.Context, id string) error {
	return s.updateTask(ctx, "task.toggle", id, func(t *domain.Task) error {
		t.Toggle()
		return nil
	})
}

func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	w := s.w
	return w.run(ctx, "task.delete", map[string]any{"task_id": id}, func() ([]writeOp, error) {
		i := w.taskIndex(id)
		if i < 0 {
			return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
		}
		w.tasks = slices.Delete(w.tasks, i, i+1)
		return []writeOp{w.deleteOp(id)}, nil
	})
}

func (s *TaskStore) SetPriority(ctx context.Context, id string, p domain.Priority) error {
	return s.updateTask(ctx, "task.set_priority", id, func(t *domain.Task) error {
		return t.SetPriority(p)
	})
}

// SetDeadline replaces the deadline; nil clears it.
func (s *TaskStore) SetDeadline(ctx context.Context, id string, d *time.Time) error {
	return s.updateTask(ctx, "task.set_deadline", id, func(t *domain.Task) error {
		t.SetDeadline(d)
		return nil
	})
}

func (s *TaskStore) SetStatus(ctx context.Context, id string, st domain.Status) error {
	return s.updateTask(ctx, "task.set_status", id, func(t *domain.Task) error {
		return t.SetStatus(st)
	})
}

// MoveTask relabels the task; segment must be All or an existing segment.
func (s *TaskStore) MoveTask(ctx context.Context, id, segment string) error {
	return s.updateTask(ctx, "task.move", id, func(t *domain.Task) error {
		seg, err := s.w.checkSegment(segment)
		if err != nil {
			return err
		}
		t.Segment = seg
		return nil
	})
}

func (s *TaskStore) EditTask(ctx context.Context, id string, p domain.Patch) error {
	return s.updateTask(ctx, "task.edit", id, func(t *domain.Task) error {
		return t.Apply(p)
	})
}

// AddSubTask appends a Todo, low-priority sub-task and returns a copy.
func (s *TaskStore) AddSubTask(ctx context.Context, taskID, text string) (domain.SubTask, error) {
	var added domain.SubTask
	err := s.updateTask(ctx, "subtask.add", taskID, func(t *domain.Task) error {
		sub, err := t.AddSubTask(s.w.newID(), text)
		if err != nil {
			return err
		}
		added = *sub
		return nil
	})
	return added, err
}

func (s *TaskStore) ToggleSubTask(ctx context.Context, taskID, subID string) error {
	return s.updateSubTask(ctx, "subtask.toggle", taskID, subID, func(e *domain.SubTask) error {
		e.Toggle()
		return nil
	})
}

func (s *TaskStore) SetSubTaskPriority(ctx context.Context, taskID, subID string, p domain.Priority) error {
	return s.updateSubTask(ctx, "subtask.set_priority", taskID, subID, func(e *domain.SubTask) error {
		return e.SetPriority(p)
	})
}

func (s *TaskStore) SetSubTaskDeadline(ctx context.Context, taskID, subID string, d *time.Time) error {
	return s.updateSubTask(ctx, "subtask.set_deadline", taskID, subID, func(e *domain.SubTask) error {
		e.SetDeadline(d)
		return nil
	})
}

func (s *TaskStore) SetSubTaskStatus(ctx context.Context, taskID, subID string, st domain.Status) error {
	return s.updateSubTask(ctx, "subtask.set_status", taskID, subID, func(e *domain.SubTask) error {
		return e.SetStatus(st)
	})
}

func (s *TaskStore) EditSubTask(ctx context.Context, taskID, subID string, p domain.Patch) error {
	return s.updateSubTask(ctx, "subtask.edit", taskID, subID, func(e *domain.SubTask) error {
		return e.Apply(p)
	})
}

func (s *TaskStore) DeleteSubTask(ctx context.Context, taskID, subID string) error {
	w := s.w
	fields := map[string]any{"task_id": taskID, "sub_task_id": subID}
	return w.run(ctx, "subtask.delete", fields, func() ([]writeOp, error) {
		t, _, err := w.findSubTask(taskID, subID)
		if err != nil {
			return nil, err
		}
		t.RemoveSubTask(subID)
		return []writeOp{w.upsertOp(taskID)}, nil
	})
}

// Tasks returns a deep copy of the collection in display order.
func (s *TaskStore) Tasks() []*domain.Task {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	out := make([]*domain.Task, len(s.w.tasks))
	for i, t := range s.w.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *TaskStore) Task(id string) (*domain.Task, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t, err := s.w.findTask(id)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// ResolveID maps a user-typed reference to a task id. The reference may be
// the full id or a unique suffix of one.
func (s *TaskStore) ResolveID(ref string) (string, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	ids := s.w.taskIDs()
	return resolveRef(ref, ids, "task")
}

// ResolveSubTaskID does the same within one task's sub-tasks.
func (s *TaskStore) ResolveSubTaskID(taskID, ref string) (string, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	t, err := s.w.findTask(taskID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(t.SubTasks))
	for i, sub := range t.SubTasks {
		ids[i] = sub.ID
	}
	return resolveRef(ref, ids, "sub-task")
}

func resolveRef(ref string, ids []string, what string) (string, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return "", fmt.Errorf("%w: %s id is required", domain.ErrValidation, what)
	}
	var matches []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == ref {
			return id, nil
		}
		if strings.HasSuffix(lower, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s %q: %w", what, ref, domain.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s %q is ambiguous (%d matches)", domain.ErrValidation, what, ref, len(matches))
	}
}

func (s *TaskStore) updateTask(ctx context.Context, name, id string, fn func(t *domain.Task) error) error {
	w := s.w
	return w.run(ctx, name, map[string]any{"task_id": id}, func() ([]writeOp, error) {
		t, err := w.findTask(id)
		if err != nil {
			return nil, err
		}
		if err := fn(t); err != nil {
			return nil, err
		}
		return []writeOp{w.upsertOp(id)}, nil
	})
}

func (s *TaskStore) updateSubTask(ctx context.Context, name, taskID, subID string, fn func(e *domain.SubTask) error) error {
	w := s.w
	fields := map[string]any{"task_id": taskID, "sub_task_id": subID}
	return w.run(ctx, name, fields, func() ([]writeOp, error) {
		_, sub, err := w.findSubTask(taskID, subID)
		if err != nil {
			return nil, err
		}
		if err := fn(sub); err != nil {
			return nil, err
		}
		return []writeOp{w.upsertOp(taskID)}, nil
	})
}
