package intake

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// ErrNotProcessed is reported for documents handed to Commit before processing succeeded.
var ErrNotProcessed = errors.New("document not processed")

// DefaultKeyPrefix is the storage prefix for committed documents.
const DefaultKeyPrefix = "cvs"

// CommitFailure is an ItemFailure plus which side, if any, was left behind.
type CommitFailure struct {
	ItemFailure
	Orphan string `json:"orphan,omitempty"`
	Key    string `json:"key,omitempty"`
}

// CommitReport itemizes a commit.
type CommitReport struct {
	Attempted int             `json:"attempted"`
	Committed []Document      `json:"committed"`
	Failed    []CommitFailure `json:"failed"`
}

// Committer uploads documents and records their metadata.
type Committer struct {
	Store       object.ObjectStore
	Records     documents.Repo
	Prefix      string
	MaxInFlight int
	Now         func() time.Time
}

// Commit stores each processed document. Upload and metadata insert run
// concurrently; a document counts as committed only when both succeed.
func (c *Committer) Commit(ctx context.Context, ownerID string, docs []Document) CommitReport {
	limit := c.MaxInFlight
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}

	type result struct {
		doc     Document
		failure *CommitFailure
	}
	results := make([]result, len(docs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			out, failure := c.commitOne(ctx, ownerID, doc)
			results[i] = result{doc: out, failure: failure}
			return nil
		})
	}
	_ = g.Wait()

	report := CommitReport{Attempted: len(docs), Committed: []Document{}, Failed: []CommitFailure{}}
	for _, r := range results {
		if r.failure != nil {
			metrics.IncCommitFailed()
			report.Failed = append(report.Failed, *r.failure)
			continue
		}
		metrics.IncDocumentsCommitted()
		report.Committed = append(report.Committed, r.doc)
	}

	telemetry.Info("intake.commit.done", map[string]any{
		"request_id": requestctx.RequestID(ctx),
		"owner_id":   ownerID,
		"attempted":  report.Attempted,
		"committed":  len(report.Committed),
		"failed":     len(report.Failed),
	})
	return report
}

func (c *Committer) commitOne(ctx context.Context, ownerID string, doc Document) (Document, *CommitFailure) {
	if !doc.Processed() {
		return doc, &CommitFailure{ItemFailure: ItemFailure{
			DocumentID: doc.ID,
			FileName:   doc.Name,
			Message:    ErrNotProcessed.Error(),
			Err:        ErrNotProcessed,
		}}
	}

	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	key := object.NewKey(prefix, doc.Name)

	var putErr, recErr error
	var g errgroup.Group
	g.Go(func() error {
		_, putErr = c.Store.PutNew(ctx, key, doc.MediaType, bytes.NewReader(doc.Data), doc.Size)
		return nil
	})
	g.Go(func() error {
		recErr = c.Records.Create(ctx, documents.Record{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			FileName:    doc.Name,
			FilePath:    key,
			ContentType: doc.MediaType,
			FileSize:    doc.Size,
			UploadDate:  now().UTC(),
		})
		return nil
	})
	_ = g.Wait()

	if putErr == nil && recErr == nil {
		return doc.committed(key), nil
	}

	failure := &CommitFailure{
		ItemFailure: ItemFailure{
			DocumentID: doc.ID,
			FileName:   doc.Name,
			Err:        errors.Join(putErr, recErr),
		},
		Key: key,
	}
	failure.Message = failure.Err.Error()
	switch {
	case putErr == nil:
		failure.Orphan = "object"
	case recErr == nil:
		failure.Orphan = "record"
	}

	fields := map[string]any{
		"request_id":  requestctx.RequestID(ctx),
		"owner_id":    ownerID,
		"document_id": doc.ID,
		"file_name":   doc.Name,
		"key":         key,
		"error":       failure.Err,
	}
	if failure.Orphan != "" {
		metrics.IncOrphans()
		fields["side"] = failure.Orphan
		telemetry.Error("intake.commit.orphan", fields)
	} else {
		telemetry.Warn("intake.commit.failed", fields)
	}
	return doc, failure
}
