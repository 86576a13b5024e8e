package service

import (
	"context"
	"errors"
	"slices"
)

// Write kinds recorded in the outbox.
const (
	OpUpsertTask      = "upsert_task"
	OpDeleteTask      = "delete_task"
	OpReorderTasks    = "reorder_tasks"
	OpReplaceSegments = "replace_segments"
)

// writeOp is one write-through. apply reads the workspace state at the
// moment it runs, so a retried op writes the latest version of its record
// rather than the one that failed.
type writeOp struct {
	kind  string
	id    string
	apply func(ctx context.Context) error
}

func (op writeOp) sameTarget(other writeOp) bool {
	return op.kind == other.kind && op.id == other.id
}

// PendingWrite is a failed write-through waiting in the outbox.
type PendingWrite struct {
	Kind string
	ID   string
	Err  error
}

type pendingOp struct {
	op  writeOp
	err error
}

// flush runs ops in order and records failures in the outbox. Callers hold
// w.mu. All ops are attempted even after a failure.
func (w *Workspace) flush(ctx context.Context, ops []writeOp) error {
	var errs []error
	for _, op := range ops {
		if err := op.apply(ctx); err != nil {
			w.enqueue(op, err)
			errs = append(errs, &PersistenceError{Op: op.kind, ID: op.id, Err: err})
			continue
		}
		w.settle(op)
	}
	return errors.Join(errs...)
}

// enqueue replaces an older pending write for the same target, keeping the
// outbox free of duplicates.
func (w *Workspace) enqueue(op writeOp, err error) {
	for i := range w.pending {
		if w.pending[i].op.sameTarget(op) {
			w.pending[i] = pendingOp{op: op, err: err}
			return
		}
	}
	w.pending = append(w.pending, pendingOp{op: op, err: err})
}

// settle drops pending writes made redundant by a successful op.
func (w *Workspace) settle(op writeOp) {
	w.pending = slices.DeleteFunc(w.pending, func(p pendingOp) bool {
		if p.op.sameTarget(op) {
			return true
		}
		return op.kind == OpDeleteTask && p.op.kind == OpUpsertTask && p.op.id == op.id
	})
}

// Pending lists failed writes in the order they will be retried.
func (w *Workspace) Pending() []PendingWrite {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]PendingWrite, 0, len(w.pending))
	for _, p := range w.pending {
		out = append(out, PendingWrite{Kind: p.op.kind, ID: p.op.id, Err: p.err})
	}
	return out
}

// RetryPending re-applies every pending write in order. Writes that fail
// again stay queued and their errors are returned joined.
func (w *Workspace) RetryPending(ctx context.Context) error {
	fields := map[string]any{}
	return w.run(ctx, "outbox.retry", fields, func() ([]writeOp, error) {
		fields["pending"] = len(w.pending)
		ops := make([]writeOp, 0, len(w.pending))
		for _, p := range w.pending {
			ops = append(ops, p.op)
		}
		return ops, nil
	})
}
