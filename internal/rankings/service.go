// Package rankings calls the external ranking function and serves its stored results.
package rankings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/queue"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// ErrNotConfigured is returned when no ranking endpoint is configured.
var ErrNotConfigured = errors.New("ranking endpoint not configured")

// JobReader loads job descriptions.
type JobReader interface {
	Get(ctx context.Context, ownerID, id string) (jobs.Job, error)
}

// Caller performs the remote ranking call.
type Caller interface {
	Rank(ctx context.Context, req RankRequest) (json.RawMessage, error)
}

// Service ranks jobs and reads their matches.
type Service struct {
	Jobs   JobReader
	Client Caller
	Store  Store
}

// RequestFor maps a job description to the ranking call body.
func RequestFor(job jobs.Job) RankRequest {
	return RankRequest{
		JobID:                   job.ID,
		Title:                   job.Title,
		Description:             job.Description,
		RequiredSkills:          job.RequiredSkills,
		MinimumExperience:       job.MinimumExperience,
		PreferredQualifications: job.PreferredQualifications,
		ExperienceWeight:        job.Weights.Experience,
		SkillsWeight:            job.Weights.Skills,
		EducationWeight:         job.Weights.Education,
		CertificationsWeight:    job.Weights.Certifications,
	}
}

// RankJob loads the job and ranks it.
func (s *Service) RankJob(ctx context.Context, ownerID, jobID string) error {
	job, err := s.Jobs.Get(ctx, ownerID, jobID)
	if err != nil {
		return err
	}
	_, err = s.Rank(ctx, job)
	return err
}

// Rank calls the ranking function once and stores its result, replacing any
// earlier ranking. It returns the number of ranked entries.
func (s *Service) Rank(ctx context.Context, job jobs.Job) (int, error) {
	if s.Client == nil {
		return 0, ErrNotConfigured
	}
	metrics.IncRankingsRequested()
	fields := map[string]any{
		"request_id": requestctx.RequestID(ctx),
		"job_id":     job.ID,
	}

	ranking, err := s.Client.Rank(ctx, RequestFor(job))
	if err != nil {
		metrics.IncRankingsFailed()
		fields["error"] = err
		var callErr *CallError
		if errors.As(err, &callErr) {
			fields["status"] = callErr.Status
		}
		telemetry.Error("rankings.call.failed", fields)
		return 0, err
	}
	if err := s.Store.Upsert(ctx, job.ID, ranking); err != nil {
		metrics.IncRankingsFailed()
		fields["error"] = err
		telemetry.Error("rankings.store.failed", fields)
		return 0, err
	}

	var entries []json.RawMessage
	_ = json.Unmarshal(ranking, &entries)
	fields["entries"] = len(entries)
	telemetry.Info("rankings.stored", fields)
	return len(entries), nil
}

// Matches returns the validated entries of the job's stored ranking. A
// missing ranking or a payload that is not an array yields an empty list.
func (s *Service) Matches(ctx context.Context, ownerID, jobID string) ([]Match, error) {
	if _, err := s.Jobs.Get(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	payload, _, err := s.Store.Get(ctx, jobID)
	if errors.Is(err, ErrNotFound) {
		return []Match{}, nil
	}
	if err != nil {
		return nil, err
	}

	matches, invalid, err := ParseMatches(payload)
	if err != nil {
		return nil, err
	}
	for _, inv := range invalid {
		telemetry.Warn("rankings.match.invalid", map[string]any{
			"request_id": requestctx.RequestID(ctx),
			"job_id":     jobID,
			"index":      inv.Index,
			"problems":   inv.Problems,
		})
	}
	return matches, nil
}

// Dispatcher triggers rankings for saved jobs, through the queue when one is
// configured and in a background goroutine otherwise.
type Dispatcher struct {
	Service *Service
	Queue   queue.Client
	wg      sync.WaitGroup

	mu      sync.Mutex
	backlog map[string][]jobs.Job // job id -> saves waiting behind a running call
}

// Trigger requests one ranking for job.
func (d *Dispatcher) Trigger(ctx context.Context, job jobs.Job) error {
	if d.Queue != nil {
		return d.Queue.Send(ctx, queue.NewRankMessage(job.OwnerID, job.ID, requestctx.RequestID(ctx)))
	}
	if d.Service == nil || d.Service.Client == nil {
		return ErrNotConfigured
	}
	d.mu.Lock()
	if d.backlog == nil {
		d.backlog = make(map[string][]jobs.Job)
	}
	waiting, running := d.backlog[job.ID]
	d.backlog[job.ID] = append(waiting, job)
	d.mu.Unlock()
	if running {
		return nil
	}

	bg := requestctx.Detached(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.drain(bg, job.ID)
	}()
	return nil
}

// drain ranks queued saves of one job in save order, so an older save never
// overwrites the ranking of a newer one.
func (d *Dispatcher) drain(ctx context.Context, jobID string) {
	for {
		d.mu.Lock()
		queued := d.backlog[jobID]
		if len(queued) == 0 {
			delete(d.backlog, jobID)
			d.mu.Unlock()
			return
		}
		next := queued[0]
		d.backlog[jobID] = queued[1:]
		d.mu.Unlock()

		_, _ = d.Service.Rank(ctx, next)
	}
}

// Forget drops the stored ranking of a deleted job.
func (d *Dispatcher) Forget(ctx context.Context, jobID string) error {
	return d.Service.Store.Delete(ctx, jobID)
}

// Wait blocks until in-process rankings finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

var _ jobs.Ranker = (*Dispatcher)(nil)
