package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/repository"
	"github.com/google/uuid"
)

// Workspace holds one owner's tasks and segments in memory and writes every
// change through to the repositories. The TaskStore and SegmentStore it
// hands out share its state and its lock.
type Workspace struct {
	mu       sync.Mutex
	owner    string
	taskRepo repository.TaskRepo
	segRepo  repository.SegmentRepo

	tasks    []*domain.Task
	segments []string
	// persistedOrder is the task order the repository is known to hold.
	persistedOrder []string
	pending        []pendingOp

	now      func() time.Time
	newID    func() string
	observer UseCaseObserver

	taskStore    *TaskStore
	segmentStore *SegmentStore
}

type Option func(*Workspace)

func WithClock(now func() time.Time) Option {
	return func(w *Workspace) {
		w.now = now
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(w *Workspace) {
		w.newID = gen
	}
}

func WithObserver(obs UseCaseObserver) Option {
	return func(w *Workspace) {
		if obs != nil {
			w.observer = obs
		}
	}
}

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// OpenWorkspace loads ownerID's tasks and segments. A first-time owner gets
// the default segments. Loaded tasks are normalized and partitioned; writes
// that repair stored data and fail are left in the outbox rather than
// failing the open.
func OpenWorkspace(ctx context.Context, ownerID string, tasks repository.TaskRepo, segments repository.SegmentRepo, opts ...Option) (*Workspace, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}

	w := &Workspace{
		owner:    ownerID,
		taskRepo: tasks,
		segRepo:  segments,
		now:      time.Now,
		newID:    NewID,
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.taskStore = &TaskStore{w: w}
	w.segmentStore = &SegmentStore{w: w}

	start := time.Now()
	loaded, err := tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	names, initialized, err := segments.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading segments: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var ops []writeOp
	if !initialized {
		names = slices.Clone(domain.DefaultSegments)
		ops = append(ops, w.replaceSegmentsOp())
	}
	w.segments = names

	seen := make(map[string]bool, len(loaded))
	for _, t := range loaded {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		w.persistedOrder = append(w.persistedOrder, t.ID)
		changed := t.Normalize()
		if t.Segment != domain.SegmentAll && !slices.Contains(w.segments, t.Segment) {
			t.Segment = domain.SegmentAll
			changed = true
		}
		w.tasks = append(w.tasks, t)
		if changed {
			ops = append(ops, w.upsertOp(t.ID))
		}
	}

	err = w.settleWrites(ctx, ops)
	w.observe(ctx, "workspace.open", start, map[string]any{
		"tasks":    len(w.tasks),
		"segments": len(w.segments),
	}, err)
	return w, nil
}

func (w *Workspace) Owner() string { return w.owner }

func (w *Workspace) Tasks() *TaskStore { return w.taskStore }

func (w *Workspace) Segments() *SegmentStore { return w.segmentStore }

// run executes one store operation: fn mutates state under the lock and
// returns the writes it needs. On success the collection is re-partitioned
// and the writes flushed. A validation or lookup error from fn leaves
// state untouched and writes nothing.
func (w *Workspace) run(ctx context.Context, name string, fields map[string]any, fn func() ([]writeOp, error)) error {
	start := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	ops, err := fn()
	if err == nil {
		err = w.settleWrites(ctx, ops)
	}
	w.observe(ctx, name, start, fields, err)
	return err
}

// settleWrites partitions, flushes ops, then writes the task order if the
// repository's copy no longer matches memory.
func (w *Workspace) settleWrites(ctx context.Context, ops []writeOp) error {
	domain.PartitionByCompletion(w.tasks)
	err := w.flush(ctx, ops)
	if w.orderDirty() {
		err = errors.Join(err, w.flush(ctx, []writeOp{w.reorderOp()}))
	}
	return err
}

func (w *Workspace) observe(ctx context.Context, name string, start time.Time, fields map[string]any, err error) {
	w.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Owner:     w.owner,
		StartedAt: start,
		Duration:  time.Since(start),
		Err:       err,
		Fields:    fields,
	})
}

func (w *Workspace) taskIndex(id string) int {
	return slices.IndexFunc(w.tasks, func(t *domain.Task) bool { return t.ID == id })
}

func (w *Workspace) findTask(id string) (*domain.Task, error) {
	i := w.taskIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	return w.tasks[i], nil
}

func (w *Workspace) findSubTask(taskID, subID string) (*domain.Task, *domain.SubTask, error) {
	t, err := w.findTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	s, ok := t.SubTask(subID)
	if !ok {
		return nil, nil, fmt.Errorf("sub-task %q of task %q: %w", subID, taskID, domain.ErrNotFound)
	}
	return t, s, nil
}

// checkSegment resolves a task's target segment: blank means All, anything
// else must be a known segment.
func (w *Workspace) checkSegment(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == domain.SegmentAll {
		return domain.SegmentAll, nil
	}
	if !slices.Contains(w.segments, name) {
		return "", fmt.Errorf("%w: unknown segment %q", domain.ErrValidation, name)
	}
	return name, nil
}

func (w *Workspace) taskIDs() []string {
	ids := make([]string, len(w.tasks))
	for i, t := range w.tasks {
		ids[i] = t.ID
	}
	return ids
}

// orderDirty reports whether the persisted tasks appear in a different
// relative order in memory than in the repository.
func (w *Workspace) orderDirty() bool {
	inMemory := w.persistedOrder[:0:0]
	for _, id := range w.persistedOrder {
		if w.taskIndex(id) >= 0 {
			inMemory = append(inMemory, id)
		}
	}
	return !slices.Equal(w.persistedInMemoryOrder(), inMemory)
}

func (w *Workspace) persistedInMemoryOrder() []string {
	out := make([]string, 0, len(w.persistedOrder))
	for _, id := range w.taskIDs() {
		if slices.Contains(w.persistedOrder, id) {
			out = append(out, id)
		}
	}
	return out
}

func (w *Workspace) upsertOp(id string) writeOp {
	return writeOp{kind: OpUpsertTask, id: id, apply: func(ctx context.Context) error {
		i := w.taskIndex(id)
		if i < 0 {
			return nil
		}
		if err := w.taskRepo.Upsert(ctx, w.owner, w.tasks[i]); err != nil {
			return err
		}
		if !slices.Contains(w.persistedOrder, id) {
			w.persistedOrder = append(w.persistedOrder, id)
		}
		return nil
	}}
}

func (w *Workspace) deleteOp(id string) writeOp {
	return writeOp{kind: OpDeleteTask, id: id, apply: func(ctx context.Context) error {
		if err := w.taskRepo.Delete(ctx, w.owner, id); err != nil {
			return err
		}
		w.persistedOrder = slices.DeleteFunc(w.persistedOrder, func(x string) bool { return x == id })
		return nil
	}}
}

func (w *Workspace) reorderOp() writeOp {
	return writeOp{kind: OpReorderTasks, apply: func(ctx context.Context) error {
		if err := w.taskRepo.Reorder(ctx, w.owner, w.taskIDs()); err != nil {
			return err
		}
		// Rows missing from memory (deletes still pending) sort last.
		order := w.persistedInMemoryOrder()
		for _, id := range w.persistedOrder {
			if w.taskIndex(id) < 0 {
				order = append(order, id)
			}
		}
		w.persistedOrder = order
		return nil
	}}
}

func (w *Workspace) replaceSegmentsOp() writeOp {
	return writeOp{kind: OpReplaceSegments, apply: func(ctx context.Context) error {
		return w.segRepo.Replace(ctx, w.owner, slices.Clone(w.segments))
	}}
}
