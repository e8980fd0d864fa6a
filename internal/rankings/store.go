package rankings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no ranking is stored for a job.
var ErrNotFound = errors.New("ranking not found")

// Store keeps one ranking payload per job. Writes replace the previous payload.
type Store interface {
	Upsert(ctx context.Context, jobID string, payload json.RawMessage) error
	Get(ctx context.Context, jobID string) (json.RawMessage, time.Time, error)
	Delete(ctx context.Context, jobID string) error
}

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

// Upsert writes payload for jobID; the latest write wins.
func (s *PGStore) Upsert(ctx context.Context, jobID string, payload json.RawMessage) error {
	const query = `
INSERT INTO job_rankings (job_id, ranking, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (job_id) DO UPDATE
SET ranking = EXCLUDED.ranking, updated_at = EXCLUDED.updated_at`
	_, err := s.DB.ExecContext(ctx, query, jobID, []byte(payload), time.Now().UTC())
	return err
}

// Get returns the stored payload and when it was written.
func (s *PGStore) Get(ctx context.Context, jobID string) (json.RawMessage, time.Time, error) {
	const query = `SELECT ranking, updated_at FROM job_rankings WHERE job_id = $1`
	var raw []byte
	var updated time.Time
	if err := s.DB.QueryRowContext(ctx, query, jobID).Scan(&raw, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, err
	}
	return json.RawMessage(raw), updated, nil
}

// Delete removes the ranking for jobID. Missing rows are ignored.
func (s *PGStore) Delete(ctx context.Context, jobID string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM job_rankings WHERE job_id = $1`, jobID)
	return err
}

type stored struct {
	payload json.RawMessage
	updated time.Time
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]stored
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]stored)}
}

func (s *MemoryStore) Upsert(ctx context.Context, jobID string, payload json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[jobID] = stored{payload: append(json.RawMessage(nil), payload...), updated: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (json.RawMessage, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, time.Time{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[jobID]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return v.payload, v.updated, nil
}

func (s *MemoryStore) Delete(ctx context.Context, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, jobID)
	s.mu.Unlock()
	return nil
}

var (
	_ Store = (*PGStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
