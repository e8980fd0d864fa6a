package intake

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/archive"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/preview"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// Upload is a raw file received from a client.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// Skipped records an upload or archive that produced no document.
type Skipped struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// AddResult lists what Add accepted and what it ignored.
type AddResult struct {
	Added   []Document `json:"added"`
	Skipped []Skipped  `json:"skipped"`
}

// Workspace holds pending documents per owner. Each update swaps the
// owner's slice under the lock; readers get copies.
type Workspace struct {
	mu       sync.Mutex
	pending  map[string][]Document
	previews *preview.Registry
}

// NewWorkspace returns an empty workspace. previews may be nil.
func NewWorkspace(previews *preview.Registry) *Workspace {
	return &Workspace{pending: make(map[string][]Document), previews: previews}
}

// Expand turns uploads into selected documents, expanding archives and
// dropping unsupported files. It does not touch workspace state.
func Expand(uploads []Upload) AddResult {
	res := AddResult{Added: []Document{}, Skipped: []Skipped{}}
	for _, up := range uploads {
		if archive.IsArchive(up.Name, up.MediaType) {
			members, err := archive.Expand(up.Data, up.MediaType)
			if err != nil {
				reason := err.Error()
				if errors.Is(err, archive.ErrArchiveUnreadable) {
					reason = archive.ErrArchiveUnreadable.Error()
				}
				res.Skipped = append(res.Skipped, Skipped{FileName: up.Name, Reason: reason})
				continue
			}
			if len(members) == 0 {
				res.Skipped = append(res.Skipped, Skipped{FileName: up.Name, Reason: "no supported documents"})
			}
			for _, m := range members {
				doc := NewDocument(uuid.NewString(), m.Name, m.MediaType, m.Data)
				doc.Source = up.Name
				res.Added = append(res.Added, doc)
			}
			continue
		}
		if !archive.Allowed(up.Name) || archive.IsArtifact(up.Name) {
			res.Skipped = append(res.Skipped, Skipped{FileName: up.Name, Reason: "unsupported file type"})
			continue
		}
		res.Added = append(res.Added, NewDocument(uuid.NewString(), up.Name, archive.MediaTypeFor(up.Name), up.Data))
	}
	return res
}

// Add expands uploads, registers previews and appends the result to owner's list.
func (w *Workspace) Add(ownerID string, uploads []Upload) AddResult {
	res := Expand(uploads)
	if w.previews != nil {
		for i := range res.Added {
			d := &res.Added[i]
			d.PreviewID = w.previews.Register(ownerID, d.Name, d.MediaType, d.Data)
		}
	}

	w.mu.Lock()
	next := append(slices.Clone(w.pending[ownerID]), res.Added...)
	w.pending[ownerID] = next
	w.mu.Unlock()

	if len(res.Skipped) > 0 {
		telemetry.Info("intake.workspace.skipped", map[string]any{
			"owner_id": ownerID,
			"skipped":  len(res.Skipped),
		})
	}
	return res
}

// List returns a copy of owner's pending documents in insertion order.
func (w *Workspace) List(ownerID string) []Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.pending[ownerID])
}

// Claim marks owner's documents in one of from as to and returns their
// unclaimed copies. With ids, only those documents are considered. A
// document already claimed by another caller is not in from and is skipped.
func (w *Workspace) Claim(ownerID string, ids []string, to State, from ...State) []Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	cur := w.pending[ownerID]
	next := slices.Clone(cur)
	out := make([]Document, 0, len(cur))
	for i, d := range cur {
		if len(ids) > 0 && !slices.Contains(ids, d.ID) {
			continue
		}
		if !slices.Contains(from, d.State) {
			continue
		}
		out = append(out, d)
		next[i].State = to
	}
	if len(out) > 0 {
		w.pending[ownerID] = next
	}
	return out
}

// Restore puts back documents that are still held in state claimed.
func (w *Workspace) Restore(ownerID string, claimed State, docs []Document) {
	if len(docs) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	cur := w.pending[ownerID]
	if len(cur) == 0 {
		return
	}
	next := slices.Clone(cur)
	for i, d := range cur {
		if d.State != claimed {
			continue
		}
		idx := slices.IndexFunc(docs, func(o Document) bool { return o.ID == d.ID })
		if idx < 0 {
			continue
		}
		restored := docs[idx]
		restored.PreviewID = d.PreviewID
		next[i] = restored
	}
	w.pending[ownerID] = next
}

// Remove deletes one pending document and releases its preview.
func (w *Workspace) Remove(ownerID, id string) (Document, bool) {
	w.mu.Lock()
	cur := w.pending[ownerID]
	idx := slices.IndexFunc(cur, func(d Document) bool { return d.ID == id })
	if idx < 0 {
		w.mu.Unlock()
		return Document{}, false
	}
	removed := cur[idx]
	w.pending[ownerID] = slices.Delete(slices.Clone(cur), idx, idx+1)
	w.mu.Unlock()

	w.release(removed)
	return removed, true
}

// Apply replaces the stored copy of doc. Documents removed in the meantime
// stay removed and Apply reports false.
func (w *Workspace) Apply(ownerID string, doc Document) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cur := w.pending[ownerID]
	idx := slices.IndexFunc(cur, func(d Document) bool { return d.ID == doc.ID })
	if idx < 0 {
		return false
	}
	next := slices.Clone(cur)
	doc.PreviewID = cur[idx].PreviewID
	next[idx] = doc
	w.pending[ownerID] = next
	return true
}

// Drop removes committed documents and releases their previews.
func (w *Workspace) Drop(ownerID string, ids []string) {
	w.mu.Lock()
	cur := w.pending[ownerID]
	next := make([]Document, 0, len(cur))
	var dropped []Document
	for _, d := range cur {
		if slices.Contains(ids, d.ID) {
			dropped = append(dropped, d)
			continue
		}
		next = append(next, d)
	}
	if len(next) == 0 {
		delete(w.pending, ownerID)
	} else {
		w.pending[ownerID] = next
	}
	w.mu.Unlock()

	w.release(dropped...)
}

func (w *Workspace) release(docs ...Document) {
	if w.previews == nil {
		return
	}
	for _, d := range docs {
		if d.PreviewID != "" {
			w.previews.Release(d.PreviewID)
		}
	}
}
