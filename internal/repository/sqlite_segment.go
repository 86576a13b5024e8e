package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/juno/internal/db"
)

// SQLiteSegmentRepo implements SegmentRepo. The owners row marks that the
// segment list has been written at least once.
type SQLiteSegmentRepo struct {
	db  *sql.DB
	uow db.UnitOfWork
}

func NewSQLiteSegmentRepo(conn *sql.DB) *SQLiteSegmentRepo {
	return &SQLiteSegmentRepo{db: conn, uow: db.NewSQLiteUnitOfWork(conn)}
}

func (r *SQLiteSegmentRepo) WithUnitOfWork(uow db.UnitOfWork) *SQLiteSegmentRepo {
	return &SQLiteSegmentRepo{db: r.db, uow: uow}
}

func (r *SQLiteSegmentRepo) List(ctx context.Context, ownerID string) ([]string, bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM owners WHERE id = ?`, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading owner: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name FROM segments WHERE owner_id = ? ORDER BY position`, ownerID)
	if err != nil {
		return nil, false, fmt.Errorf("listing segments: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, false, fmt.Errorf("scanning segment row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating segments: %w", err)
	}
	return names, true, nil
}

func (r *SQLiteSegmentRepo) Replace(ctx context.Context, ownerID string, names []string) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO owners (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, ownerID); err != nil {
			return fmt.Errorf("registering owner: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE owner_id = ?`, ownerID); err != nil {
			return fmt.Errorf("clearing segments: %w", err)
		}
		for i, name := range names {
			if _, err := tx.ExecContext(ctx, `INSERT INTO segments (owner_id, name, position) VALUES (?, ?, ?)`, ownerID, name, i); err != nil {
				return fmt.Errorf("inserting segment %q: %w", name, err)
			}
		}
		return nil
	})
}
