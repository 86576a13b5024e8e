package repository

import (
	"context"

	"github.com/alexanderramin/juno/internal/domain"
)

// TaskRepo persists one owner's tasks together with their sub-tasks.
// Tasks come back in stored order.
type TaskRepo interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	// Upsert writes t and replaces its sub-tasks. A new task is appended
	// after the owner's existing ones; an existing task keeps its position.
	Upsert(ctx context.Context, ownerID string, t *domain.Task) error
	// Delete removes the task and its sub-tasks. Deleting a missing task is
	// not an error.
	Delete(ctx context.Context, ownerID, id string) error
	// Reorder rewrites positions so ids appear in the given order. Ids not
	// listed keep their relative order after the listed ones.
	Reorder(ctx context.Context, ownerID string, ids []string) error
}

// SegmentRepo persists the ordered list of user segments. initialized is
// false until Replace has been called once for the owner, which lets the
// caller tell a brand-new owner apart from one who deleted every segment.
type SegmentRepo interface {
	List(ctx context.Context, ownerID string) (names []string, initialized bool, err error)
	Replace(ctx context.Context, ownerID string, names []string) error
}

var (
	_ TaskRepo    = (*SQLiteTaskRepo)(nil)
	_ SegmentRepo = (*SQLiteSegmentRepo)(nil)
	_ TaskRepo    = (*FileStore)(nil)
	_ SegmentRepo = (*FileStore)(nil)
)
