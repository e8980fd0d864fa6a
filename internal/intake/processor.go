package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/extraction"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/metrics"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// ErrProcessingFailed wraps every extraction failure.
var ErrProcessingFailed = errors.New("processing failed")

// Sender posts an assembled multipart payload to the extraction endpoint.
type Sender interface {
	Send(ctx context.Context, body io.Reader, contentType string) (extraction.Result, error)
}

// Processor scores a single document. It never retries.
type Processor struct {
	Client Sender
}

// Process sends doc to the extraction endpoint. onProgress, when set, sees
// each intermediate copy of the document. On failure the returned document
// is in StateFailed with nil progress.
func (p *Processor) Process(ctx context.Context, doc Document, onProgress func(Document)) (Document, error) {
	notify := func(d Document) {
		if onProgress != nil {
			onProgress(d)
		}
	}

	doc = doc.started()
	notify(doc)

	body, contentType, err := extraction.Payload(doc.Name, doc.MediaType, doc.Data)
	if err != nil {
		return p.fail(ctx, doc, err, notify)
	}
	doc = doc.inFlight()
	notify(doc)

	start := time.Now()
	res, err := p.Client.Send(ctx, body, contentType)
	metrics.ObserveProcessingMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return p.fail(ctx, doc, err, notify)
	}

	metrics.IncDocumentsProcessed()
	doc = doc.succeeded(res.Score, res.MatchPercentage)
	notify(doc)
	return doc, nil
}

func (p *Processor) fail(ctx context.Context, doc Document, cause error, notify func(Document)) (Document, error) {
	metrics.IncDocumentsFailed()
	fields := map[string]any{
		"request_id":  requestctx.RequestID(ctx),
		"document_id": doc.ID,
		"file_name":   doc.Name,
		"error":       cause,
	}
	var extErr *extraction.Error
	if errors.As(cause, &extErr) {
		fields["status"] = extErr.Status
		fields["timeout"] = extErr.Timeout()
	}
	telemetry.Warn("intake.process.failed", fields)

	doc = doc.failed(ErrProcessingFailed.Error())
	notify(doc)
	return doc, fmt.Errorf("%w: %s: %w", ErrProcessingFailed, doc.Name, cause)
}
