package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/cv-analyzer/internal/taxonomy"
)

// DefaultTaxonomyName is used when no taxonomy name is given.
const DefaultTaxonomyName = "default"

// ErrTaxonomyNotFound is returned when a named taxonomy has no stored entries.
var ErrTaxonomyNotFound = errors.New("taxonomy not found")

var entryColumns = []string{"taxonomy", "kind", "grp", "value", "position"}

// TaxonomySummary describes one stored taxonomy.
type TaxonomySummary struct {
	Name       string    `json:"name"`
	EntryCount int       `json:"entry_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TaxonomySource serves one stored taxonomy as flattened entries.
type TaxonomySource struct {
	db   *DB
	name string
}

// Taxonomy returns the entry source for the named taxonomy.
func (db *DB) Taxonomy(name string) *TaxonomySource {
	if name == "" {
		name = DefaultTaxonomyName
	}
	return &TaxonomySource{db: db, name: name}
}

// Name returns the taxonomy name.
func (s *TaxonomySource) Name() string { return s.name }

// ListEntries returns the taxonomy entries ordered by position.
func (s *TaxonomySource) ListEntries(ctx context.Context) ([]taxonomy.Entry, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT kind, grp, value, position
		 FROM taxonomy_entries
		 WHERE taxonomy = $1
		 ORDER BY position`,
		s.name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomy %s: %w", s.name, err)
	}
	defer rows.Close()

	var entries []taxonomy.Entry
	for rows.Next() {
		var (
			e    taxonomy.Entry
			kind string
		)
		if err := rows.Scan(&kind, &e.Group, &e.Value, &e.Position); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy entry: %w", err)
		}
		e.Kind = taxonomy.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate taxonomy entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaxonomyNotFound, s.name)
	}
	return entries, nil
}

// ImportTaxonomy replaces the named taxonomy with t in a single transaction and
// returns the number of entries written.
func (db *DB) ImportTaxonomy(ctx context.Context, name string, t *taxonomy.Taxonomy) (int64, error) {
	if name == "" {
		name = DefaultTaxonomyName
	}
	entries := t.Entries()
	if len(entries) == 0 {
		return 0, fmt.Errorf("refusing to import empty taxonomy %s", name)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO taxonomies (name, entry_count, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (name) DO UPDATE SET entry_count = $2, updated_at = NOW()`,
		name, len(entries),
	); err != nil {
		return 0, fmt.Errorf("failed to upsert taxonomy %s: %w", name, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM taxonomy_entries WHERE taxonomy = $1`, name); err != nil {
		return 0, fmt.Errorf("failed to clear taxonomy %s: %w", name, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"taxonomy_entries"}, entryColumns, pgx.CopyFromRows(entryRows(name, entries)))
	if err != nil {
		return 0, fmt.Errorf("failed to copy taxonomy entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit taxonomy import: %w", err)
	}
	return n, nil
}

// ListTaxonomies returns all stored taxonomies, most recently updated first.
func (db *DB) ListTaxonomies(ctx context.Context) ([]TaxonomySummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT name, entry_count, updated_at FROM taxonomies ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list taxonomies: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[TaxonomySummary])
}

// DeleteTaxonomy removes a stored taxonomy and its entries.
func (db *DB) DeleteTaxonomy(ctx context.Context, name string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM taxonomies WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete taxonomy %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrTaxonomyNotFound, name)
	}
	return nil
}

func entryRows(name string, entries []taxonomy.Entry) [][]any {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{name, string(e.Kind), e.Group, e.Value, e.Position}
	}
	return rows
}
