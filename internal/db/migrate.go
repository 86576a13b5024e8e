package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every statement in order. All statements are safe to
// re-run; ALTER TABLE ... ADD COLUMN on an existing column is skipped.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := backfillUpdatedAt(db); err != nil {
		return fmt.Errorf("backfilling tasks.updated_at: %w", err)
	}
	return nil
}

// backfillUpdatedAt fills the column for rows written before it existed.
func backfillUpdatedAt(db *sql.DB) error {
	_, err := db.Exec(`UPDATE tasks SET updated_at = created_at WHERE updated_at = ''`)
	return err
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id         TEXT PRIMARY KEY,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		owner_id   TEXT NOT NULL,
		id         TEXT NOT NULL,
		position   INTEGER NOT NULL DEFAULT 0,
		text       TEXT NOT NULL CHECK(length(trim(text)) > 0),
		completed  INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
		status     TEXT NOT NULL DEFAULT 'Todo'
		           CHECK(status IN ('Todo', 'In Progress', 'Done')),
		priority   TEXT NOT NULL DEFAULT 'low'
		           CHECK(priority IN ('low', 'medium', 'high')),
		deadline   TEXT,
		segment    TEXT NOT NULL DEFAULT 'All',
		created_at TEXT NOT NULL,
		PRIMARY KEY (owner_id, id)
	)`,

	`ALTER TABLE tasks ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS sub_tasks (
		owner_id  TEXT NOT NULL,
		task_id   TEXT NOT NULL,
		id        TEXT NOT NULL,
		position  INTEGER NOT NULL DEFAULT 0,
		text      TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
		status    TEXT NOT NULL DEFAULT 'Todo'
		          CHECK(status IN ('Todo', 'In Progress', 'Done')),
		priority  TEXT NOT NULL DEFAULT 'low'
		          CHECK(priority IN ('low', 'medium', 'high')),
		deadline  TEXT,
		PRIMARY KEY (owner_id, task_id, id),
		FOREIGN KEY (owner_id, task_id) REFERENCES tasks(owner_id, id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS segments (
		owner_id TEXT NOT NULL,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (owner_id, name)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_owner_position ON tasks(owner_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(owner_id, deadline)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_owner_position ON segments(owner_id, position)`,
}
