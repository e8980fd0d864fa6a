package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// Ranker requests a ranking for a saved job and forgets rankings of deleted ones.
type Ranker interface {
	Trigger(ctx context.Context, job Job) error
	Forget(ctx context.Context, jobID string) error
}

// Service contains business logic for job descriptions.
type Service struct {
	Repo     Repo
	Ranker   Ranker
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service. ranker may be nil.
func NewService(repo Repo, ranker Ranker) *Service {
	return &Service{Repo: repo, Ranker: ranker, validate: validator.New(), now: time.Now}
}

// Validate checks field rules and the weight budget.
func (s *Service) Validate(job Job) error {
	job.Title = strings.TrimSpace(job.Title)
	if err := s.validate.Struct(job); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if strings.HasPrefix(fe.Namespace(), "Job.Weights.") {
					return fmt.Errorf("%w: %s", ErrInvalidWeight, strings.ToLower(fe.Field()))
				}
			}
			return fmt.Errorf("%w: %s %s", ErrInvalidInput, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if job.Weights.Sum() > MaxTotal {
		return ErrWeightBudget
	}
	return nil
}

// Save creates the job when ID is empty and updates it otherwise. Every
// successful save triggers exactly one ranking request.
func (s *Service) Save(ctx context.Context, ownerID string, job Job) (Job, error) {
	job.OwnerID = ownerID
	job.Title = strings.TrimSpace(job.Title)
	if job.Status == "" {
		job.Status = StatusActive
	}
	if err := s.Validate(job); err != nil {
		return Job{}, err
	}

	now := s.now().UTC()
	job.UpdatedAt = now
	if job.ID == "" {
		job.ID = uuid.NewString()
		job.CreatedAt = now
		if err := s.Repo.Create(ctx, job); err != nil {
			return Job{}, err
		}
	} else {
		cur, err := s.Repo.Get(ctx, ownerID, job.ID)
		if err != nil {
			return Job{}, err
		}
		job.CreatedAt = cur.CreatedAt
		if err := s.Repo.Update(ctx, job); err != nil {
			return Job{}, err
		}
	}

	s.trigger(ctx, job)
	return job, nil
}

func (s *Service) trigger(ctx context.Context, job Job) {
	if s.Ranker == nil {
		return
	}
	if err := s.Ranker.Trigger(ctx, job); err != nil {
		telemetry.Error("jobs.rank.trigger_failed", map[string]any{
			"request_id": requestctx.RequestID(ctx),
			"job_id":     job.ID,
			"error":      err,
		})
	}
}

// AdjustWeight applies the weight rule to a stored job and saves it on success.
func (s *Service) AdjustWeight(ctx context.Context, ownerID, id string, field Field, value int) (Job, error) {
	job, err := s.Repo.Get(ctx, ownerID, id)
	if err != nil {
		return Job{}, err
	}
	next, err := AdjustWeight(job.Weights, field, value)
	if err != nil {
		return job, err
	}
	job.Weights = next
	return s.Save(ctx, ownerID, job)
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Job, error) {
	return s.Repo.Get(ctx, ownerID, id)
}

// List returns the owner's jobs, optionally filtered by status.
func (s *Service) List(ctx context.Context, ownerID string, status Status) ([]Job, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("%w: status", ErrInvalidInput)
	}
	return s.Repo.List(ctx, ownerID, status)
}

// SetStatus marks a job active or inactive without re-ranking.
func (s *Service) SetStatus(ctx context.Context, ownerID, id string, status Status) error {
	if status != StatusActive && status != StatusInactive {
		return fmt.Errorf("%w: status", ErrInvalidInput)
	}
	return s.Repo.SetStatus(ctx, ownerID, id, status)
}

// Delete removes the job and its stored ranking.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.Repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if s.Ranker != nil {
		if err := s.Ranker.Forget(ctx, id); err != nil {
			telemetry.Warn("jobs.rank.forget_failed", map[string]any{
				"job_id": id,
				"error":  err,
			})
		}
	}
	return nil
}
