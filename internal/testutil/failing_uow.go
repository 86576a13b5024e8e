package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/alexanderramin/juno/internal/db"
	"github.com/alexanderramin/juno/internal/domain"
	"github.com/alexanderramin/juno/internal/repository"
)

// ErrInjected is the default failure returned by the helpers below.
var ErrInjected = errors.New("injected write failure")

// FailOnNthExecUoW injects an error on the Nth ExecContext call within a
// transaction, counted from 1 across the life of the UoW. Reads pass
// through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	count atomic.Int32
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failOnNthExec{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failOnNthExec struct {
	db.DBTX
	uow *FailOnNthExecUoW
}

func (f *failOnNthExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.count.Add(1) == f.uow.FailOn {
		return nil, orInjected(f.uow.Err)
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// FlakyStore wraps a TaskRepo and SegmentRepo and fails writes on demand.
// Reads always pass through.
type FlakyStore struct {
	Tasks    repository.TaskRepo
	Segments repository.SegmentRepo
	Err      error

	mu      sync.Mutex
	failing bool
	failOn  int
	writes  int
}

func NewFlakyStore(tasks repository.TaskRepo, segments repository.SegmentRepo) *FlakyStore {
	return &FlakyStore{Tasks: tasks, Segments: segments}
}

// FailWrites makes every following write fail until called with false.
func (f *FlakyStore) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = fail
}

// FailOnNthWrite fails only the nth write from now, counted from 1.
func (f *FlakyStore) FailOnNthWrite(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn = n
	f.writes = 0
}

// Writes reports how many writes were attempted.
func (f *FlakyStore) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FlakyStore) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failing || (f.failOn > 0 && f.writes == f.failOn) {
		return orInjected(f.Err)
	}
	return nil
}

func (f *FlakyStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	return f.Tasks.ListByOwner(ctx, ownerID)
}

func (f *FlakyStore) Upsert(ctx context.Context, ownerID string, t *domain.Task) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.Tasks.Upsert(ctx, ownerID, t)
}

func (f *FlakyStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.Tasks.Delete(ctx, ownerID, id)
}

func (f *FlakyStore) Reorder(ctx context.Context, ownerID string, ids []string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.Tasks.Reorder(ctx, ownerID, ids)
}

func (f *FlakyStore) List(ctx context.Context, ownerID string) ([]string, bool, error) {
	return f.Segments.List(ctx, ownerID)
}

func (f *FlakyStore) Replace(ctx context.Context, ownerID string, names []string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.Segments.Replace(ctx, ownerID, names)
}

func orInjected(err error) error {
	if err == nil {
		return ErrInjected
	}
	return err
}

var (
	_ repository.TaskRepo    = (*FlakyStore)(nil)
	_ repository.SegmentRepo = (*FlakyStore)(nil)
)
