package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/record"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Created       int
	SegmentsAdded []string
}

// ImportTasks validates docs as a whole, then creates each task with fresh
// ids for it and its sub-tasks. Segments the owner does not have yet are
// added; reserved or blank names fall back to All. Like CreateTask, each
// task is persisted before it is added; tasks whose write fails are
// skipped and reported.
func (s *TaskStore) ImportTasks(ctx context.Context, docs []record.Task) (ImportResult, error) {
	if errs := record.Validate(docs); len(errs) > 0 {
		return ImportResult{}, fmt.Errorf("%w: %w", domain.ErrValidation, errors.Join(errs...))
	}

	w := s.w
	var res ImportResult
	var persistErrs []error
	fields := map[string]any{"records": len(docs)}
	err := w.run(ctx, "task.import", fields, func() ([]writeOp, error) {
		converted := make([]*domain.Task, 0, len(docs))
		for _, d := range docs {
			t, err := d.ToTask()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
			}
			converted = append(converted, t)
		}

		var ops []writeOp
		for _, t := range converted {
			w.prepareImported(t, &res)
			if err := w.taskRepo.Upsert(ctx, w.owner, t); err != nil {
				persistErrs = append(persistErrs, &PersistenceError{Op: "create_task", ID: t.ID, Err: err})
				continue
			}
			w.tasks = append(w.tasks, t)
			w.persistedOrder = append(w.persistedOrder, t.ID)
			res.Created++
		}
		if len(res.SegmentsAdded) > 0 {
			ops = append(ops, w.replaceSegmentsOp())
		}
		fields["created"] = res.Created
		fields["failed"] = len(persistErrs)
		return ops, nil
	})
	// Tasks that did make it are kept; the rest are reported.
	return res, errors.Join(err, errors.Join(persistErrs...))
}

// prepareImported assigns fresh ids and maps the segment onto the owner's
// list, adding it when missing.
func (w *Workspace) prepareImported(t *domain.Task, res *ImportResult) {
	t.ID = w.newID()
	for i := range t.SubTasks {
		t.SubTasks[i].ID = w.newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = w.now()
	}

	name, err := domain.NormalizeSegmentName(t.Segment)
	switch {
	case err != nil:
		t.Segment = domain.SegmentAll
	case slices.Contains(w.segments, name):
		t.Segment = name
	default:
		w.segments = append(w.segments, name)
		res.SegmentsAdded = append(res.SegmentsAdded, name)
		t.Segment = name
	}
	t.Text = strings.TrimSpace(t.Text)
}
