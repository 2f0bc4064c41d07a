// Package novelty scores how dissimilar a submission's concept vector is
// from everything scored before it. Memory is append-only for the life of
// the store: one record per submission, never deleted.
package novelty

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mkravets/arbiter/internal/model"
)

// Store is the vector memory behind novelty scoring. Implementations must
// keep at most one record per submission ID: Insert replaces an existing
// record rather than duplicating it.
type Store interface {
	// Insert adds or replaces the record for its submission ID.
	Insert(rec model.MemoryRecord) error

	// AllExcept returns every record whose submission ID differs from id.
	AllExcept(id string) ([]model.MemoryRecord, error)

	// Len returns the number of records held.
	Len() (int, error)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.MemoryRecord
	order   []string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]model.MemoryRecord),
	}
}

// Insert adds or replaces the record for its submission ID.
func (s *MemoryStore) Insert(rec model.MemoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.SubmissionID]; !exists {
		s.order = append(s.order, rec.SubmissionID)
	}
	s.records[rec.SubmissionID] = rec
	return nil
}

// AllExcept returns every record except the one for id, in insertion order.
func (s *MemoryStore) AllExcept(id string) ([]model.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MemoryRecord, 0, len(s.order))
	for _, sid := range s.order {
		if sid == id {
			continue
		}
		out = append(out, s.records[sid])
	}
	return out, nil
}

// Len returns the number of records held.
func (s *MemoryStore) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// SQLiteStore persists vector memory in the submission store database so
// novelty survives process restarts. Same contract as MemoryStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the vectors table if needed and returns a store
// backed by db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS novelty_vectors (
		submission_id TEXT PRIMARY KEY,
		vector TEXT NOT NULL,
		text TEXT NOT NULL
	)`)
	if err != nil {
		return nil, fmt.Errorf("creating novelty_vectors table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Insert adds or replaces the record for its submission ID.
func (s *SQLiteStore) Insert(rec model.MemoryRecord) error {
	vectorJSON, err := json.Marshal(rec.Vector)
	if err != nil {
		return fmt.Errorf("encoding vector: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO novelty_vectors (submission_id, vector, text) VALUES (?, ?, ?)
		 ON CONFLICT(submission_id) DO UPDATE SET vector=excluded.vector, text=excluded.text`,
		rec.SubmissionID, string(vectorJSON), rec.Text,
	)
	if err != nil {
		return fmt.Errorf("inserting vector: %w", err)
	}
	return nil
}

// AllExcept returns every record except the one for id, in insertion order.
func (s *SQLiteStore) AllExcept(id string) ([]model.MemoryRecord, error) {
	rows, err := s.db.Query(
		`SELECT submission_id, vector, text FROM novelty_vectors WHERE submission_id != ? ORDER BY rowid`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var records []model.MemoryRecord
	for rows.Next() {
		var rec model.MemoryRecord
		var vectorJSON string
		if err := rows.Scan(&rec.SubmissionID, &vectorJSON, &rec.Text); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		if err := json.Unmarshal([]byte(vectorJSON), &rec.Vector); err != nil {
			return nil, fmt.Errorf("decoding vector for %s: %w", rec.SubmissionID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Len returns the number of records held.
func (s *SQLiteStore) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM novelty_vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}
