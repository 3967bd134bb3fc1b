package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPreferenceKey is the key the month collection is stored under.
const DefaultPreferenceKey = "months"

// SQLiteSink stores the document as one row of a key/value preferences
// table, the way a platform preference store would.
type SQLiteSink struct {
	db  *sql.DB
	key string
}

func NewSQLiteSink(dbPath, key string) (*SQLiteSink, error) {
	if key == "" {
		key = DefaultPreferenceKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps writes ordered and avoids SQLITE_BUSY between our own statements.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteSink{db: db, key: key}, nil
}

func (s *SQLiteSink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteSink) Read(ctx context.Context) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read preference %q: %w", s.key, err)
	}
	return value, nil
}

func (s *SQLiteSink) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, data)
	if err != nil {
		return fmt.Errorf("write preference %q: %w", s.key, err)
	}
	return nil
}

// Remove deletes the stored document. A later Read reports ErrNotFound.
func (s *SQLiteSink) Remove(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("delete preference %q: %w", s.key, err)
	}
	return nil
}
