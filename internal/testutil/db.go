package testutil

import (
	"path/filepath"
	"testing"

	"github.com/utilaudit/utilaudit/internal/config"
	"github.com/utilaudit/utilaudit/internal/repository/postgres"
	"github.com/utilaudit/utilaudit/migrations"
)

// NewTestDB opens a throwaway sqlite database with all migrations applied.
// The database file lives in the test's temp dir and is removed with it.
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	db, err := postgres.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}
