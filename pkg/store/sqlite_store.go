package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// adminSchema holds one row per stored option.
const adminSchema = `
CREATE TABLE IF NOT EXISTS admin (
	key   VARCHAR(255) PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
);`

const (
	selectValueSQL = `SELECT value FROM admin WHERE key = ?`
	upsertValueSQL = `INSERT INTO admin (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteValueSQL = `DELETE FROM admin WHERE key = ?`
)

var defaultPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// SQLiteOption configures OpenSQLite.
type SQLiteOption func(*sqliteConfig)

type sqliteConfig struct {
	pragmas []string
}

// WithPragma appends a PRAGMA statement executed after the defaults.
func WithPragma(pragma string) SQLiteOption {
	return func(cfg *sqliteConfig) {
		if pragma != "" {
			cfg.pragmas = append(cfg.pragmas, pragma)
		}
	}
}

// SQLiteStore persists option values in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLite opens or creates the database at path and ensures the admin
// table exists. Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("store: database path is required")
	}
	cfg := sqliteConfig{pragmas: append([]string(nil), defaultPragmas...)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite allows a single writer, and an in-memory database lives only as
	// long as its one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range cfg.pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: set pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, adminSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetInt(ctx context.Context, name string) (int, bool, error) {
	raw, found, err := s.GetStr(ctx, name)
	if err != nil || !found {
		return 0, false, err
	}
	value, err := parseInt(name, raw)
	if err != nil {
		return 0, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) GetStr(ctx context.Context, name string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx, selectValueSQL, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %q: %w", name, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetInt(ctx context.Context, name string, value int) error {
	return s.SetStr(ctx, name, strconv.Itoa(value))
}

func (s *SQLiteStore) SetStr(ctx context.Context, name string, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if name == "" {
		return ErrNameRequired
	}
	if _, err := s.db.ExecContext(ctx, upsertValueSQL, name, value); err != nil {
		return fmt.Errorf("store: set %q: %w", name, err)
	}
	return nil
}

// Delete removes name so reads report it as missing again.
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, deleteValueSQL, name); err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	return nil
}

// Close releases the database. Later reads and writes fail with ErrClosed;
// closing again is a no-op.
func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
