package documents

import "context"

// Repo defines persistence operations for upload records. Every read is scoped to an owner.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, ownerID, id string) (Record, error)
	GetByPath(ctx context.Context, ownerID, filePath string) (Record, error)
	// GetByName returns the newest record whose file name equals name, ignoring case.
	GetByName(ctx context.Context, ownerID, name string) (Record, error)
	// SearchByName matches file names case-insensitively by substring.
	SearchByName(ctx context.Context, ownerID, name string, limit int) ([]Record, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]Record, error)
	Delete(ctx context.Context, ownerID, id string) error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
