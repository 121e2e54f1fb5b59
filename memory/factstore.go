package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const factSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
`

// FactStore is the categorized record store, backed by its own sqlite
// database file.
type FactStore struct {
	db *sql.DB
}

// NewFactStore opens (creating if needed) the fact database at path.
func NewFactStore(path string) (*FactStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fact store: %w", err)
	}
	if _, err := db.Exec(factSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init fact store schema: %w", err)
	}
	return &FactStore{db: db}, nil
}

// Insert stores a record. The record ID must be unique.
func (s *FactStore) Insert(ctx context.Context, r Record) error {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("encode record metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (id, category, content, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, string(r.Category), r.Content, string(meta), r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the record with the given ID.
func (s *FactStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, content, metadata, created_at FROM records WHERE id = ?`, id)
	r, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// Delete removes the record with the given ID. Deleting a missing record
// returns ErrNotFound.
func (s *FactStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// QueryCategory returns records in a category, newest first, narrowed by
// the filter.
func (s *FactStore) QueryCategory(ctx context.Context, c Category, f Filter) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, content, metadata, created_at FROM records WHERE category = ? ORDER BY created_at DESC`,
		string(c))
	if err != nil {
		return nil, fmt.Errorf("query category %s: %w", c, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		if !f.Matches(r) {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *FactStore) Close() error {
	return s.db.Close()
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var (
		r       Record
		cat     string
		meta    string
		created string
	)
	if err := scan(&r.ID, &cat, &r.Content, &meta, &created); err != nil {
		return Record{}, err
	}
	r.Category = Category(cat)
	if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
		return Record{}, fmt.Errorf("decode record metadata: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("decode record timestamp: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}
