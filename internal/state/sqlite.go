// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteFile = "state.db"
	sentTable  = "sent_digests"
)

// SQLiteBackend keeps sent markers in a SQLite table. Unlike FileBackend it
// is safe to share between processes on one host.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens or creates the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return b, nil
}

// Close releases the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sent_digests (
			id TEXT PRIMARY KEY,
			sent_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sent_digests_sent_at ON sent_digests(sent_at)`,
	}
	for _, stmt := range statements {
		if _, err := b.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AlreadySent reports whether id has a marker row.
func (b *SQLiteBackend) AlreadySent(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").From(sentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("building query: %w", err)
	}
	var n int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("checking sent marker: %w", err)
	}
	return n > 0, nil
}

// MarkSent inserts a marker for id. Marking twice is a no-op.
func (b *SQLiteBackend) MarkSent(ctx context.Context, id string) error {
	query, args, err := sq.Insert(sentTable).
		Columns("id", "sent_at").
		Values(id, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("marking sent: %w", err)
	}
	return nil
}

// List returns marked ids, oldest first.
func (b *SQLiteBackend) List(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("id").From(sentTable).OrderBy("sent_at", "rowid").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sent markers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning sent marker: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Clear deletes every marker.
func (b *SQLiteBackend) Clear(ctx context.Context) error {
	query, args, err := sq.Delete(sentTable).ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing sent markers: %w", err)
	}
	return nil
}
