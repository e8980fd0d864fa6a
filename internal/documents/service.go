package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// Service exposes upload records together with their stored objects.
type Service struct {
	Store  object.ObjectStore
	Repo   Repo
	URLTTL time.Duration
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, id)
}

// GetByPath looks a record up by storage key.
func (s *Service) GetByPath(ctx context.Context, ownerID, filePath string) (Record, error) {
	if strings.TrimSpace(filePath) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByPath(ctx, ownerID, filePath)
}

// List returns records newest first, filtered by name when name is non-empty.
func (s *Service) List(ctx context.Context, ownerID, name string, limit, offset int) ([]Record, error) {
	if name = strings.TrimSpace(name); name != "" {
		return s.Repo.SearchByName(ctx, ownerID, name, limit)
	}
	return s.Repo.List(ctx, ownerID, limit, offset)
}

// FindByName returns the newest record named exactly name, ignoring case.
func (s *Service) FindByName(ctx context.Context, ownerID, name string) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, ErrInvalidInput
	}
	return s.Repo.GetByName(ctx, ownerID, name)
}

// SignedURL returns a time-limited read URL for the record's object.
func (s *Service) SignedURL(ctx context.Context, rec Record) (string, time.Time, error) {
	signer, ok := s.Store.(object.Signer)
	if !ok {
		return "", time.Time{}, ErrSigningUnsupported
	}
	ttl := s.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := signer.SignedURL(ctx, rec.FilePath, ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s: %w", rec.FilePath, err)
	}
	return url, time.Now().Add(ttl).UTC(), nil
}

// Open streams the record's object.
func (s *Service) Open(ctx context.Context, rec Record) (io.ReadCloser, error) {
	return s.Store.Open(ctx, rec.FilePath)
}

// Delete removes the object first, then the row. A missing object is not an error.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, rec.FilePath); err != nil {
		return fmt.Errorf("delete object %s: %w", rec.FilePath, err)
	}
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		telemetry.Error("documents.delete.orphan_record", map[string]any{
			"record_id": id,
			"file_path": rec.FilePath,
			"error":     err,
		})
		return err
	}
	return nil
}
