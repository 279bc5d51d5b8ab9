package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// OpenSQLite opens (or creates) a sqlite database at the given path and
// ensures directories exist.
func OpenSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// reasonable defaults for sqlite with concurrent readers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// SQLiteBackend stores each snapshot as a single row keyed by name, so
// the posts and users collections can share one database file while
// keeping the whole-snapshot-rewrite contract.
type SQLiteBackend struct {
	db   *sql.DB
	name string
}

func NewSQLiteBackend(db *sql.DB, name string) (*SQLiteBackend, error) {
	if name == "" {
		return nil, fmt.Errorf("snapshot name is required")
	}
	if _, err := db.Exec(createSnapshotsTable); err != nil {
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &SQLiteBackend{db: db, name: name}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `
SELECT data FROM snapshots WHERE name = ?`, b.name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot %s: %w", b.name, err)
	}
	return data, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		b.name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", b.name, err)
	}
	return nil
}

var _ Backend = (*SQLiteBackend)(nil)
