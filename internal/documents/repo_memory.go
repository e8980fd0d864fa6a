package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Record // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Record)}
}

func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.FilePath == rec.FilePath {
			return ErrDuplicatePath
		}
	}
	r.data[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, ownerID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) GetByPath(ctx context.Context, ownerID, filePath string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.data {
		if rec.OwnerID == ownerID && rec.FilePath == filePath {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *MemoryRepo) GetByName(ctx context.Context, ownerID, name string) (Record, error) {
	recs, err := r.filter(ctx, ownerID, 1, 0, func(rec Record) bool {
		return strings.EqualFold(rec.FileName, name)
	})
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	return recs[0], nil
}

func (r *MemoryRepo) SearchByName(ctx context.Context, ownerID, name string, limit int) ([]Record, error) {
	needle := strings.ToLower(name)
	return r.filter(ctx, ownerID, clampLimit(limit), 0, func(rec Record) bool {
		return strings.Contains(strings.ToLower(rec.FileName), needle)
	})
}

func (r *MemoryRepo) List(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	return r.filter(ctx, ownerID, clampLimit(limit), offset, func(Record) bool { return true })
}

func (r *MemoryRepo) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.data[id]
	if !ok || rec.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// filter returns matching records for owner, newest first.
func (r *MemoryRepo) filter(ctx context.Context, ownerID string, limit, offset int, keep func(Record) bool) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0, len(r.data))
	for _, rec := range r.data {
		if rec.OwnerID == ownerID && keep(rec) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadDate.After(out[j].UploadDate)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Record{}, nil
	}
	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
