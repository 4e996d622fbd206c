// Package database stores the event catalog in SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mattn/go-sqlite3"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// DB is the catalog store.
type DB struct {
	*sql.DB
	path   string
	logger *slog.Logger
}

// Config describes how the catalog database is opened.
type Config struct {
	Path string

	// Pool settings. SQLite has a single writer, so one connection is
	// the norm; an in-memory database must never use more.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration
}

// DefaultConfig returns the settings used by the server and the importer.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

// dsn builds the go-sqlite3 connection string. WAL is skipped for
// in-memory databases, which cannot use it.
func (c Config) dsn() string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	if c.BusyTimeout > 0 {
		params.Set("_busy_timeout", strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10))
	}
	if c.Path != memoryPath {
		params.Set("_journal_mode", "WAL")
	}
	return c.Path + "?" + params.Encode()
}

// Open connects to the catalog database, creating its directory when
// needed. It does not migrate; call Migrate before use.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		return nil, errors.New("database path is empty")
	}

	if cfg.Path != memoryPath {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(max(cfg.MaxOpenConns, 1))
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database %s: %w", cfg.Path, err)
	}

	version, _, _ := sqlite3.Version()
	logger.Info("catalog database opened",
		slog.String("path", cfg.Path),
		slog.String("sqlite", version),
	)

	return &DB{DB: sqlDB, path: cfg.Path, logger: logger}, nil
}

// OpenMemory opens a migrated in-memory database. The single connection
// keeps the data alive for the lifetime of the DB.
func OpenMemory(ctx context.Context, logger *slog.Logger) (*DB, error) {
	cfg := DefaultConfig(memoryPath)
	cfg.ConnMaxLifetime = 0

	db, err := Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string { return db.path }

func (db *DB) Close() error {
	db.logger.Info("catalog database closed", slog.String("path", db.path))
	return db.DB.Close()
}

// Health pings the database and checks that the catalog table is readable.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&n); err != nil {
		return fmt.Errorf("catalog table unreadable: %w", err)
	}
	return nil
}

// Tx is a catalog transaction. Entry writes are available on both DB
// and Tx.
type Tx struct {
	*sql.Tx
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx}, nil
}

// WithTx runs fn inside a transaction, committing when it returns nil
// and rolling back otherwise. fn's error is returned unwrapped.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v (after %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var (
	// ErrNotFound is returned when no catalog entry matches.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an entry's key or section position
	// is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// IsNotFound reports whether err means a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
