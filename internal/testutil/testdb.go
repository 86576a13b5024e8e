package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/juno/internal/db"
	"github.com/alexanderramin/juno/internal/repository"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// NewTestRepos returns SQLite task and segment repos sharing one fresh
// in-memory database.
func NewTestRepos(t *testing.T) (*repository.SQLiteTaskRepo, *repository.SQLiteSegmentRepo) {
	t.Helper()
	database := NewTestDB(t)
	return repository.NewSQLiteTaskRepo(database), repository.NewSQLiteSegmentRepo(database)
}
