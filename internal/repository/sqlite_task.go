package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/juno/internal/db"
	"github.com/alexanderramin/juno/internal/domain"
)

const taskColumns = `id, text, completed, status, priority, deadline, segment, created_at`

const subTaskColumns = `task_id, id, text, completed, status, priority, deadline`

// SQLiteTaskRepo implements TaskRepo on the tasks and sub_tasks tables.
type SQLiteTaskRepo struct {
	db  *sql.DB
	uow db.UnitOfWork
}

func NewSQLiteTaskRepo(conn *sql.DB) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn, uow: db.NewSQLiteUnitOfWork(conn)}
}

// WithUnitOfWork swaps the transaction runner; tests use it to inject
// write failures.
func (r *SQLiteTaskRepo) WithUnitOfWork(uow db.UnitOfWork) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: r.db, uow: uow}
}

func (r *SQLiteTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ? ORDER BY position, created_at`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks, err := scanTasks(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	subs, err := r.listSubTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if s, ok := subs[t.ID]; ok {
			t.SubTasks = s
		}
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) listSubTasks(ctx context.Context, ownerID string) (map[string][]domain.SubTask, error) {
	query := `SELECT ` + subTaskColumns + ` FROM sub_tasks WHERE owner_id = ? ORDER BY task_id, position`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing sub-tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.SubTask)
	for rows.Next() {
		var taskID string
		var e domain.Entry
		var status, priority string
		var completed int
		var deadline sql.NullString
		if err := rows.Scan(&taskID, &e.ID, &e.Text, &completed, &status, &priority, &deadline); err != nil {
			return nil, fmt.Errorf("scanning sub-task row: %w", err)
		}
		populateEntry(&e, completed, status, priority, deadline)
		out[taskID] = append(out[taskID], domain.SubTask{Entry: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sub-tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRepo) Upsert(ctx context.Context, ownerID string, t *domain.Task) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		query := `INSERT INTO tasks (owner_id, id, position, text, completed, status, priority,
			deadline, segment, created_at, updated_at)
			VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE owner_id = ?),
				?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, id) DO UPDATE SET
				text = excluded.text,
				completed = excluded.completed,
				status = excluded.status,
				priority = excluded.priority,
				deadline = excluded.deadline,
				segment = excluded.segment,
				updated_at = excluded.updated_at`
		_, err := tx.ExecContext(ctx, query,
			ownerID, t.ID, ownerID,
			t.Text,
			boolToInt(t.Completed),
			string(t.Status),
			string(t.Priority),
			nullableTimeToString(t.Deadline),
			t.Segment,
			t.CreatedAt.UTC().Format(timeLayout),
			nowUTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting task: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sub_tasks WHERE owner_id = ? AND task_id = ?`, ownerID, t.ID); err != nil {
			return fmt.Errorf("clearing sub-tasks: %w", err)
		}
		for i, s := range t.SubTasks {
			_, err := tx.ExecContext(ctx, `INSERT INTO sub_tasks (owner_id, task_id, id, position, text,
				completed, status, priority, deadline) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				ownerID, t.ID, s.ID, i, s.Text,
				boolToInt(s.Completed),
				string(s.Status),
				string(s.Priority),
				nullableTimeToString(s.Deadline),
			)
			if err != nil {
				return fmt.Errorf("inserting sub-task %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, ownerID, id string) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ? AND id = ?`, ownerID, id); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}
		return nil
	})
}

func (r *SQLiteTaskRepo) Reorder(ctx context.Context, ownerID string, ids []string) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM tasks WHERE owner_id = ? ORDER BY position, created_at`, ownerID)
		if err != nil {
			return fmt.Errorf("loading task order: %w", err)
		}
		var stored []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("scanning task id: %w", err)
			}
			stored = append(stored, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating task ids: %w", err)
		}

		for i, id := range mergeOrder(ids, stored) {
			if _, err := tx.ExecContext(ctx, `UPDATE tasks SET position = ? WHERE owner_id = ? AND id = ?`, i, ownerID, id); err != nil {
				return fmt.Errorf("positioning task %s: %w", id, err)
			}
		}
		return nil
	})
}

// mergeOrder returns the stored ids arranged so that those named in want
// come first, in want's order, followed by the rest in stored order.
func mergeOrder(want, stored []string) []string {
	present := make(map[string]bool, len(stored))
	for _, id := range stored {
		present[id] = true
	}
	placed := make(map[string]bool, len(want))
	out := make([]string, 0, len(stored))
	for _, id := range want {
		if present[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range stored {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out
}

func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	for rows.Next() {
		t := &domain.Task{SubTasks: []domain.SubTask{}}
		var status, priority, createdAt string
		var completed int
		var deadline sql.NullString
		err := rows.Scan(&t.ID, &t.Text, &completed, &status, &priority, &deadline, &t.Segment, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		populateEntry(&t.Entry, completed, status, priority, deadline)
		t.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for task %s: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func populateEntry(e *domain.Entry, completed int, status, priority string, deadline sql.NullString) {
	e.Completed = intToBool(completed)
	e.Status = domain.Status(status)
	e.Priority = domain.Priority(priority)
	e.Deadline = parseNullableTime(deadline)
}
