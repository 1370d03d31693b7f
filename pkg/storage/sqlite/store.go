// Package sqlite provides a durable storage.KV backed by a single SQLite
// database file, the on-device stand-in for a mobile client's local storage.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/spotonhq/spoton/pkg/errors"
	"github.com/spotonhq/spoton/pkg/storage"
)

// Config holds SQLite store configuration.
type Config struct {
	// Path is the database file path. ":memory:" gives a throwaway store.
	Path string

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool

	// MaxOpenConns limits the connection pool. SQLite only ever has one
	// writer, so the default of 1 avoids lock contention.
	MaxOpenConns int

	// BusyTimeout is how long a locked database is retried.
	BusyTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		EnableWAL:    true,
		MaxOpenConns: 1,
		BusyTimeout:  5 * time.Second,
	}
}

// Store is a storage.KV persisted in SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and if necessary creates) the database and its schema.
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.NewConfigError("sqlite", "database path is required", nil)
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	dsn := cfg.Path + "?_busy_timeout=" + strconv.FormatInt(busy.Milliseconds(), 10)
	if cfg.EnableWAL {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.WrapStorage("open", cfg.Path, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapStorage("open", cfg.Path, err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS device_kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.WrapStorage("migrate", "device_kv", err)
	}
	return nil
}

// Get returns the value for key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM device_kv WHERE key = ?`, key).Scan(&value)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("key", key)
	}
	if err != nil {
		return nil, errors.WrapStorage("get", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO device_kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.WrapStorage("set", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM device_kv WHERE key = ?`, key)
	if err != nil {
		return errors.WrapStorage("delete", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.KV = (*Store)(nil)
