package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig configures a device-local SQLite database.
type SQLiteConfig struct {
	// Path is a file path, or ":memory:" for a throwaway database.
	Path        string
	BusyTimeout time.Duration
}

// OpenSQLite opens (creating if needed) the SQLite database at cfg.Path using
// the pure-Go modernc driver and verifies it with a ping. A single open
// connection keeps writes serialized.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open sqlite: empty path")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", cfg.Path, busy.Milliseconds())
	if cfg.Path == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", cfg.Path, err)
	}
	return db, nil
}
