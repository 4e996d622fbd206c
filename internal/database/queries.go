package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns the zero time if parsing fails.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sectionOrder sorts rows in catalog merge order.
const sectionOrder = `
	CASE section
		WHEN 'event' THEN 1
		WHEN 'previous_campaign' THEN 2
		WHEN 'campaign' THEN 3
		ELSE 4
	END`

const entryColumns = `
	id, section, position, event_key, kind, name, year, spec, created_at, updated_at`

// =============================================================================
// Writes
// =============================================================================

// CreateEntry inserts a catalog entry and its tags, setting entry.ID.
// Returns ErrDuplicate if the section position or key is taken.
func (db *DB) CreateEntry(ctx context.Context, entry *CatalogEntry) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		return tx.CreateEntry(ctx, entry)
	})
}

// CreateEntry inserts a catalog entry inside the transaction.
func (tx *Tx) CreateEntry(ctx context.Context, entry *CatalogEntry) error {
	if !entry.Section.IsValid() {
		return fmt.Errorf("invalid section %q", entry.Section)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_entries (section, position, event_key, kind, name, year, spec)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Section, entry.Position, entry.Key, entry.Kind, entry.Name, entry.Year, entry.Spec)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert catalog entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get entry id: %w", err)
	}
	entry.ID = id

	for _, tag := range entry.Tags {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO catalog_entry_tags (entry_id, tag) VALUES (?, ?)",
			id, tag,
		)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}

	return nil
}

// DeleteAllEntries removes the whole catalog. Tags cascade.
func (tx *Tx) DeleteAllEntries(ctx context.Context) (int64, error) {
	result, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries")
	if err != nil {
		return 0, fmt.Errorf("delete catalog entries: %w", err)
	}
	return result.RowsAffected()
}

// ReplaceCatalog swaps the stored catalog for entries in one transaction.
func (db *DB) ReplaceCatalog(ctx context.Context, entries []CatalogEntry) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.DeleteAllEntries(ctx); err != nil {
			return err
		}
		for i := range entries {
			if err := tx.CreateEntry(ctx, &entries[i]); err != nil {
				return fmt.Errorf("entry %d (%s %d): %w", i, entries[i].Section, entries[i].Position, err)
			}
		}
		return nil
	})
}

// =============================================================================
// Reads
// =============================================================================

// GetEntry retrieves one entry by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetEntry(ctx context.Context, id int64) (*CatalogEntry, error) {
	entry, err := scanEntry(db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM catalog_entries WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, db.DB, []*CatalogEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntryByKey retrieves the recurring event registered under key.
// Returns ErrNotFound if no entry has that key.
func (db *DB) GetEntryByKey(ctx context.Context, key string) (*CatalogEntry, error) {
	entry, err := scanEntry(db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM catalog_entries WHERE event_key = ?", key))
	if err != nil {
		return nil, err
	}
	if err := loadTags(ctx, db.DB, []*CatalogEntry{entry}); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries returns the entries of section in position order, or the
// whole catalog in merge order when section is empty.
func (db *DB) ListEntries(ctx context.Context, section Section) ([]CatalogEntry, error) {
	query := "SELECT " + entryColumns + " FROM catalog_entries"
	var args []any
	if section != "" {
		query += " WHERE section = ?"
		args = append(args, section)
	}
	query += " ORDER BY " + sectionOrder + ", position"

	return db.listEntries(ctx, query, args...)
}

// ListEntriesByYear returns the dated entries of year in merge order.
func (db *DB) ListEntriesByYear(ctx context.Context, year int) ([]CatalogEntry, error) {
	query := "SELECT " + entryColumns + " FROM catalog_entries WHERE year = ? ORDER BY " + sectionOrder + ", position"
	return db.listEntries(ctx, query, year)
}

// ListEntriesByTag returns the entries carrying tag in merge order.
func (db *DB) ListEntriesByTag(ctx context.Context, tag string) ([]CatalogEntry, error) {
	query := "SELECT " + entryColumns + ` FROM catalog_entries
		WHERE id IN (SELECT entry_id FROM catalog_entry_tags WHERE tag = ?)
		ORDER BY ` + sectionOrder + ", position"
	return db.listEntries(ctx, query, tag)
}

// EntryFilter selects catalog entries. Zero fields match everything;
// set fields are combined with AND.
type EntryFilter struct {
	Section Section
	Year    *int
	Tag     string
}

// FindEntries returns the entries matching f in merge order.
func (db *DB) FindEntries(ctx context.Context, f EntryFilter) ([]CatalogEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Section != "" {
		where = append(where, "section = ?")
		args = append(args, f.Section)
	}
	if f.Year != nil {
		where = append(where, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Tag != "" {
		where = append(where, "id IN (SELECT entry_id FROM catalog_entry_tags WHERE tag = ?)")
		args = append(args, f.Tag)
	}

	query := "SELECT " + entryColumns + " FROM catalog_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + sectionOrder + ", position"
	return db.listEntries(ctx, query, args...)
}

func (db *DB) listEntries(ctx context.Context, query string, args ...any) ([]CatalogEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog entries: %w", err)
	}
	defer rows.Close()

	var ptrs []*CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}

	if err := loadTags(ctx, db.DB, ptrs); err != nil {
		return nil, err
	}

	entries := make([]CatalogEntry, len(ptrs))
	for i, e := range ptrs {
		entries[i] = *e
	}
	return entries, nil
}

// CountEntries returns the number of stored entries.
func (db *DB) CountEntries(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("count catalog entries: %w", err)
	}
	return n, nil
}

// ListTags returns every tag with its entry count, most used first.
func (db *DB) ListTags(ctx context.Context) ([]TagCount, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS entries
		FROM catalog_entry_tags
		GROUP BY tag
		ORDER BY entries DESC, tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Entries); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

// Stats summarises the stored catalog.
func (db *DB) Stats(ctx context.Context) (*CatalogStats, error) {
	stats := &CatalogStats{BySection: make(map[Section]int)}

	rows, err := db.QueryContext(ctx, "SELECT section, COUNT(*) FROM catalog_entries GROUP BY section")
	if err != nil {
		return nil, fmt.Errorf("query section counts: %w", err)
	}
	for rows.Next() {
		var section Section
		var n int
		if err := rows.Scan(&section, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan section count: %w", err)
		}
		stats.BySection[section] = n
		stats.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, "SELECT DISTINCT year FROM catalog_entries WHERE year IS NOT NULL ORDER BY year")
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		stats.Years = append(stats.Years, year)
	}
	return stats, rows.Err()
}

// =============================================================================
// Scanning
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*CatalogEntry, error) {
	var entry CatalogEntry
	var key sql.NullString
	var year sql.NullInt64
	var createdAt, updatedAt sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.Section,
		&entry.Position,
		&key,
		&entry.Kind,
		&entry.Name,
		&year,
		&entry.Spec,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan catalog entry: %w", err)
	}

	if key.Valid {
		entry.Key = &key.String
	}
	if year.Valid {
		y := int(year.Int64)
		entry.Year = &y
	}
	entry.CreatedAt = parseTimestamp(createdAt)
	entry.UpdatedAt = parseTimestamp(updatedAt)
	entry.Tags = []string{}

	return &entry, nil
}

// loadTags fills Tags for entries, keeping insertion order.
func loadTags(ctx context.Context, q querier, entries []*CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	byID := make(map[int64]*CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	rows, err := q.QueryContext(ctx, "SELECT entry_id, tag FROM catalog_entry_tags ORDER BY entry_id, rowid")
	if err != nil {
		return fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return fmt.Errorf("scan tag: %w", err)
		}
		if e, ok := byID[id]; ok {
			e.Tags = append(e.Tags, tag)
		}
	}
	return rows.Err()
}
