package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tailored-agentic-units/foreman/embedding"
)

const vectorSchema = `
CREATE TABLE IF NOT EXISTS vectors (
	record_id  TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  TEXT,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);
`

// VectorStore holds searchable copies of records in its own sqlite database
// file. When an embedding engine is configured, inserts store the content
// vector and searches rank by cosine similarity. Without an engine the store
// still works, ranking by keyword overlap instead.
type VectorStore struct {
	db     *sql.DB
	engine embedding.Engine
}

// NewVectorStore opens (creating if needed) the vector database at path.
// engine may be nil, which disables embeddings and selects keyword ranking.
func NewVectorStore(path string, engine embedding.Engine) (*VectorStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	if _, err := db.Exec(vectorSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init vector store schema: %w", err)
	}
	return &VectorStore{db: db, engine: engine}, nil
}

// Insert stores a searchable copy of the record, embedding its content when
// an engine is available.
func (s *VectorStore) Insert(ctx context.Context, r Record) error {
	var embJSON sql.NullString
	if s.engine != nil {
		vec, err := s.engine.Embed(ctx, r.Content)
		if err != nil {
			return fmt.Errorf("embed record %s: %w", r.ID, err)
		}
		b, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		embJSON = sql.NullString{String: string(b), Valid: true}
	}
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("encode record metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vectors (record_id, category, content, embedding, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.Category), r.Content, embJSON, string(meta),
		r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert vector %s: %w", r.ID, err)
	}
	return nil
}

// Delete removes the searchable copy of a record. Missing rows are not an
// error; the fact store is authoritative for existence.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vectors WHERE record_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete vector %s: %w", id, err)
	}
	return nil
}

// Search returns up to k records most relevant to the query text, best
// first, narrowed by the filter before the k cutoff.
func (s *VectorStore) Search(ctx context.Context, query string, k int, f Filter) ([]Record, error) {
	if k <= 0 {
		return nil, nil
	}

	var queryVec []float32
	if s.engine != nil {
		vec, err := s.engine.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		queryVec = vec
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, category, content, embedding, metadata, created_at FROM vectors`)
	if err != nil {
		return nil, fmt.Errorf("scan vectors: %w", err)
	}
	defer rows.Close()

	var scored []Record
	for rows.Next() {
		var (
			r       Record
			cat     string
			embCol  sql.NullString
			meta    string
			created string
		)
		if err := rows.Scan(&r.ID, &cat, &r.Content, &embCol, &meta, &created); err != nil {
			return nil, err
		}
		r.Category = Category(cat)
		if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
			return nil, fmt.Errorf("decode vector metadata: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("decode vector timestamp: %w", err)
		}
		r.CreatedAt = t
		if !f.Matches(r) {
			continue
		}

		if queryVec != nil && embCol.Valid {
			var vec []float32
			if err := json.Unmarshal([]byte(embCol.String), &vec); err != nil {
				return nil, fmt.Errorf("decode embedding for %s: %w", r.ID, err)
			}
			score, err := embedding.CosineSimilarity(queryVec, vec)
			if err != nil {
				// Rows embedded under a different engine have a
				// different dimension; skip rather than fail the
				// whole search.
				continue
			}
			r.Score = score
		} else {
			r.Score = keywordScore(query, r.Content)
		}
		if r.Score > 0 {
			scored = append(scored, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// Close releases the underlying database handle.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// keywordScore is the ranking used when no embedding engine is configured:
// the fraction of query terms found in the content.
func keywordScore(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}
	lc := strings.ToLower(content)
	matched := 0
	for _, t := range terms {
		if strings.Contains(lc, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
