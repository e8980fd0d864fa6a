// Package interviews emails shortlisted candidates' CVs to interviewers.
package interviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

var (
	ErrNoRecipients     = errors.New("at least one recipient is required")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrNoCandidates     = errors.New("at least one candidate is required")
	ErrNotConfigured    = errors.New("mail provider not configured")
)

const maxFetchInFlight = 4

// Candidate is one shortlisted entry as shown in the email table.
type Candidate struct {
	Rank         string `json:"rank"`
	FileName     string `json:"fileName"`
	OverallMatch string `json:"overallMatch"`
}

// SendRequest selects who receives which candidates for a job.
type SendRequest struct {
	JobID      string
	Recipients []string
	Candidates []Candidate
}

// Skipped names a candidate whose CV could not be attached.
type Skipped struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// Result summarizes one sent email.
type Result struct {
	Recipients  int       `json:"recipients"`
	Candidates  int       `json:"candidates"`
	Attachments int       `json:"attachments"`
	Skipped     []Skipped `json:"skipped"`
}

// JobReader loads job descriptions.
type JobReader interface {
	Get(ctx context.Context, ownerID, id string) (jobs.Job, error)
}

// Service composes and sends interview emails.
type Service struct {
	Jobs      JobReader
	Documents DocumentSource
	Mailer    Mailer
	From      string
	HTTP      *http.Client

	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(jobsRepo JobReader, docs DocumentSource, mailer Mailer, from string) *Service {
	return &Service{Jobs: jobsRepo, Documents: docs, Mailer: mailer, From: from, validate: validator.New()}
}

func (s *Service) validateRequest(req SendRequest) ([]string, error) {
	if len(req.Candidates) == 0 {
		return nil, ErrNoCandidates
	}
	v := s.validate
	if v == nil {
		v = validator.New()
	}
	recipients := make([]string, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if err := v.Var(r, "email"); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRecipient, r)
		}
		recipients = append(recipients, r)
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

// Send emails one message listing every candidate and attaching each CV that
// can be fetched. A candidate whose CV cannot be fetched stays in the table.
func (s *Service) Send(ctx context.Context, ownerID string, req SendRequest) (Result, error) {
	recipients, err := s.validateRequest(req)
	if err != nil {
		return Result{}, err
	}
	if s.Mailer == nil {
		return Result{}, ErrNotConfigured
	}
	job, err := s.Jobs.Get(ctx, ownerID, req.JobID)
	if err != nil {
		return Result{}, err
	}

	attachments, skipped := s.collect(ctx, ownerID, req.JobID, req.Candidates)

	missing := make([]string, 0, len(skipped))
	for _, sk := range skipped {
		missing = append(missing, sk.FileName)
	}
	html, err := renderBody(bodyData{Title: job.Title, Candidates: req.Candidates, Missing: missing})
	if err != nil {
		return Result{}, fmt.Errorf("render email: %w", err)
	}

	email := Email{
		From:        s.From,
		To:          recipients,
		Subject:     "Interview candidates: " + job.Title,
		HTML:        html,
		Attachments: attachments,
	}
	fields := map[string]any{
		"request_id":  requestctx.RequestID(ctx),
		"job_id":      req.JobID,
		"recipients":  len(recipients),
		"candidates":  len(req.Candidates),
		"attachments": len(attachments),
	}
	if err := s.Mailer.Send(ctx, email); err != nil {
		metrics.IncEmailsFailed()
		fields["error"] = err
		telemetry.Error("interviews.send.failed", fields)
		return Result{}, err
	}
	metrics.IncEmailsSent()
	telemetry.Info("interviews.sent", fields)

	return Result{
		Recipients:  len(recipients),
		Candidates:  len(req.Candidates),
		Attachments: len(attachments),
		Skipped:     skipped,
	}, nil
}

// collect fetches attachments with bounded concurrency, keeping candidate order.
func (s *Service) collect(ctx context.Context, ownerID, jobID string, candidates []Candidate) ([]Attachment, []Skipped) {
	type slot struct {
		att Attachment
		err error
	}
	slots := make([]slot, len(candidates))

	var g errgroup.Group
	g.SetLimit(maxFetchInFlight)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			att, err := s.fetch(ctx, ownerID, c.FileName)
			slots[i] = slot{att: att, err: err}
			return nil
		})
	}
	_ = g.Wait()

	attachments := make([]Attachment, 0, len(candidates))
	skipped := []Skipped{}
	for i, sl := range slots {
		if sl.err != nil {
			telemetry.Warn("interviews.attachment.skipped", map[string]any{
				"request_id": requestctx.RequestID(ctx),
				"job_id":     jobID,
				"file_name":  candidates[i].FileName,
				"error":      sl.err,
			})
			skipped = append(skipped, Skipped{FileName: candidates[i].FileName, Reason: sl.err.Error()})
			continue
		}
		attachments = append(attachments, sl.att)
	}
	return attachments, skipped
}
