package intake

import (
	"context"
	"slices"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// Service runs intake steps against an owner's workspace.
type Service struct {
	Workspace *Workspace
	Batch     *Batch
	Committer *Committer
}

// Process scores the owner's selected or failed documents, narrowed to ids
// when given. Documents are claimed before the run so an overlapping call
// cannot score them twice. Each state change is written back to the workspace.
func (s *Service) Process(ctx context.Context, ownerID string, ids []string, observe Observer) Report {
	docs := s.Workspace.Claim(ownerID, ids, StateProcessing, StateSelected, StateFailed)
	return s.Batch.Run(ctx, docs, func(e Event) {
		if e.Document != nil && !s.Workspace.Apply(ownerID, *e.Document) {
			telemetry.Info("intake.process.discarded", map[string]any{
				"owner_id":    ownerID,
				"document_id": e.Document.ID,
			})
		}
		if observe != nil {
			observe(e)
		}
	})
}

// Commit stores the owner's processed documents, narrowed to ids when given.
// Committed documents leave the workspace; the rest return to processed.
func (s *Service) Commit(ctx context.Context, ownerID string, ids []string) CommitReport {
	docs := s.Workspace.Claim(ownerID, ids, StateCommitting, StateProcessed)
	report := s.Committer.Commit(ctx, ownerID, docs)

	committed := make([]string, 0, len(report.Committed))
	for _, d := range report.Committed {
		committed = append(committed, d.ID)
	}
	s.Workspace.Drop(ownerID, committed)

	left := make([]Document, 0, len(report.Failed))
	for _, d := range docs {
		if !slices.Contains(committed, d.ID) {
			left = append(left, d)
		}
	}
	s.Workspace.Restore(ownerID, StateCommitting, left)
	return report
}
