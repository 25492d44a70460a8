// Package dbtest opens throwaway SQLite databases for tests
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tordrt/schoolschema/internal/db"
	"github.com/tordrt/schoolschema/internal/migrate"
	"github.com/tordrt/schoolschema/internal/migrations"
)

// Open returns an empty SQLite database in a temp dir, closed on cleanup
func Open(t *testing.T) *db.Conn {
	t.Helper()

	return OpenPath(t, filepath.Join(t.TempDir(), "school.db"))
}

// OpenPath opens the SQLite database at path, closed on cleanup
func OpenPath(t *testing.T, path string) *db.Conn {
	t.Helper()

	conn, err := db.Open(context.Background(), "sqlite", path, "")
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Migrated returns a SQLite database with every migration applied
func Migrated(t *testing.T) *db.Conn {
	t.Helper()

	conn := Open(t)
	m := migrate.New(conn.DB, conn.Dialect, migrations.All(), nil)
	if _, err := m.Up(context.Background()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return conn
}
