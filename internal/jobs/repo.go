package jobs

import "context"

// Repo defines persistence operations for job descriptions.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Update(ctx context.Context, job Job) error
	Get(ctx context.Context, ownerID, id string) (Job, error)
	List(ctx context.Context, ownerID string, status Status) ([]Job, error)
	SetStatus(ctx context.Context, ownerID, id string, status Status) error
	Delete(ctx context.Context, ownerID, id string) error
}
