// Package preview keeps short-lived handles to documents that are still pending intake.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired handles.
var ErrNotFound = errors.New("preview not found")

// Item is a registered preview payload.
type Item struct {
	ID        string
	OwnerID   string
	Name      string
	MediaType string
	Data      []byte
	ExpiresAt time.Time
}

// Registry is an in-memory handle table with a fixed TTL.
type Registry struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]Item
	now   func() time.Time
}

// NewRegistry returns a registry; ttl <= 0 means 30 minutes.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{ttl: ttl, items: make(map[string]Item), now: time.Now}
}

// Register stores data for owner and returns its handle.
func (r *Registry) Register(ownerID, name, mediaType string, data []byte) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.items[id] = Item{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		MediaType: mediaType,
		Data:      data,
		ExpiresAt: r.now().Add(r.ttl),
	}
	r.mu.Unlock()
	return id
}

// Open returns owner's item for id if it has not expired. Another owner's
// handle reads as not found.
func (r *Registry) Open(ownerID, id string) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.OwnerID != ownerID {
		return Item{}, ErrNotFound
	}
	if !r.now().Before(item.ExpiresAt) {
		delete(r.items, id)
		return Item{}, ErrNotFound
	}
	return item, nil
}

// Release drops a handle. Unknown ids are ignored.
func (r *Registry) Release(ids ...string) {
	r.mu.Lock()
	for _, id := range ids {
		delete(r.items, id)
	}
	r.mu.Unlock()
}

// Sweep removes expired handles and returns how many were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, item := range r.items {
		if !now.Before(item.ExpiresAt) {
			delete(r.items, id)
			n++
		}
	}
	return n
}

// SweepEvery runs Sweep on interval until ctx is done.
func (r *Registry) SweepEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
