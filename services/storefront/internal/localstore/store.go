// Package localstore keeps the storefront's device-local key/value slots
// (the anonymous cart and the signed-in user record) in SQLite.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xmenbro/AutoRepairCenter/pkg/database"
)

// Slots is a string-keyed store of serialized values.
type Slots interface {
	// Get returns the value stored under key. ok is false when the slot has
	// never been written (or was deleted).
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context, key string) error
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`
	selectSlotSQL = `SELECT value FROM kv WHERE key = ?`
	upsertSlotSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteSlotSQL = `DELETE FROM kv WHERE key = ?`
)

// SQLiteStore implements Slots on a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the database at path and prepares the kv table.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := database.OpenSQLite(ctx, database.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already open database and creates the kv table if needed.
func New(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get implements Slots.
func (s *SQLiteStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "GetSlot", selectSlotSQL)
	defer func() { end(err) }()

	err = s.db.QueryRowContext(ctx, selectSlotSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements Slots.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "SetSlot", upsertSlotSQL)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, upsertSlotSQL, key, value, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

// Delete implements Slots.
func (s *SQLiteStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "DeleteSlot", deleteSlotSQL)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, deleteSlotSQL, key); err != nil {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
