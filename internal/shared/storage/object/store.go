package object

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAlreadyExists is returned by PutNew when the key is taken. Stores never overwrite.
	ErrAlreadyExists = errors.New("object already exists")
	ErrNotFound      = errors.New("object not found")
	ErrInvalidKey    = errors.New("invalid storage key")
)

// ObjectStore defines the contract for storing and retrieving binary objects.
type ObjectStore interface {
	// PutNew writes r under key and fails with ErrAlreadyExists instead of overwriting.
	PutNew(ctx context.Context, key, contentType string, r io.Reader, size int64) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Signer is implemented by stores that can hand out time-limited read URLs.
type Signer interface {
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// NewKey returns a collision-free storage key: prefix/uuid.ext. The original
// file name only contributes its lower-cased extension.
func NewKey(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(originalName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	name := uuid.NewString() + ext
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
