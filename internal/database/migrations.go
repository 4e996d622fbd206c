package database

import (
	"context"
	"fmt"
	"log/slog"
)

type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in slice order; versions must stay increasing.
var migrations = []migration{
	{1, "catalog_entries", migrationV1CatalogEntries},
	{2, "catalog_entry_tags", migrationV2EntryTags},
}

const createSchemaMigrations = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// Migrate brings the schema up to date in a single transaction and
// returns how many migrations it applied.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	applied := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, createSchemaMigrations); err != nil {
			return fmt.Errorf("create schema_migrations: %w", err)
		}

		current, err := schemaVersion(ctx, tx)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			db.logger.Info("applying migration",
				slog.Int("version", m.version),
				slog.String("name", m.name),
			)
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.version, m.name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", m.version, err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Debug("schema up to date",
		slog.Int("applied", applied),
		slog.Int("version", migrations[len(migrations)-1].version),
	)
	return applied, nil
}

// SchemaVersion returns the highest applied migration, or 0 for an empty
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'",
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("look up schema_migrations: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	return schemaVersion(ctx, db.DB)
}

func schemaVersion(ctx context.Context, q querier) (int, error) {
	var v int
	if err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrationV1CatalogEntries creates the catalog table.
//
// Each row is one entry of the event catalog:
//
// 1. SECTION AND POSITION
//   - section is one of the four catalog sources
//   - position keeps the source order, which decides per-day display order
//
// 2. SPEC AS JSON
//   - The full definition is stored as a JSON document in spec
//   - kind, name and year are copied out for listing and filtering
//   - year is NULL for recurring definitions
//
// 3. KEYS
//   - Recurring events have a key other definitions can reference
//   - Keys are unique across the catalog
const migrationV1CatalogEntries = `
-- Migration 001: Catalog entries

CREATE TABLE IF NOT EXISTS catalog_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    section TEXT NOT NULL CHECK (section IN (
        'event',
        'previous_campaign',
        'campaign',
        'note'
    )),
    position INTEGER NOT NULL,

    -- Registry key, only for recurring events
    event_key TEXT,

    kind TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',

    -- First year the entry is dated in; NULL when it recurs
    year INTEGER,

    -- JSON-encoded definition
    spec TEXT NOT NULL,

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (section, position)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_catalog_entries_key
    ON catalog_entries(event_key)
    WHERE event_key IS NOT NULL;

CREATE INDEX IF NOT EXISTS idx_catalog_entries_year
    ON catalog_entries(year)
    WHERE year IS NOT NULL;
`

// migrationV2EntryTags moves tags into their own table so the API can list
// and count them without decoding every spec.
const migrationV2EntryTags = `
-- Migration 002: Entry tags

CREATE TABLE IF NOT EXISTS catalog_entry_tags (
    entry_id INTEGER NOT NULL,
    tag TEXT NOT NULL,

    FOREIGN KEY (entry_id) REFERENCES catalog_entries(id) ON DELETE CASCADE,
    PRIMARY KEY (entry_id, tag)
);

CREATE INDEX IF NOT EXISTS idx_catalog_entry_tags_tag
    ON catalog_entry_tags(tag);
`
