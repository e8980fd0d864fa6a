package intake

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/requestctx"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/telemetry"
)

// DefaultMaxInFlight bounds concurrent extraction calls when unset.
const DefaultMaxInFlight = 4

// Outcome summarizes a batch.
type Outcome string

const (
	OutcomeAllProcessed       Outcome = "all_processed"
	OutcomePartiallyProcessed Outcome = "partially_processed"
	// OutcomeNothingProcessed is reported when no document succeeded. It is not an error.
	OutcomeNothingProcessed Outcome = "nothing_processed"
)

// ItemFailure describes one document that did not make it through a step.
type ItemFailure struct {
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

// Report is the result of a batch run.
type Report struct {
	Attempted int           `json:"attempted"`
	Succeeded []Document    `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
	Outcome   Outcome       `json:"outcome"`
}

// EventKind names batch events.
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventProcessed EventKind = "processed"
	EventFailed    EventKind = "failed"
	EventDone      EventKind = "done"
)

// Event is emitted while a batch runs. Document is a snapshot; Report is set on EventDone.
type Event struct {
	Kind     EventKind `json:"kind"`
	Document *Document `json:"document,omitempty"`
	Message  string    `json:"message,omitempty"`
	Report   *Report   `json:"report,omitempty"`
}

// Observer receives batch events. Calls are serialized.
type Observer func(Event)

// Batch runs the processor over a list of documents with bounded concurrency.
type Batch struct {
	Processor   *Processor
	MaxInFlight int
}

// Run processes docs. Calls start in list order and may finish in any order.
// A failing document never cancels its siblings.
func (b *Batch) Run(ctx context.Context, docs []Document, observe Observer) Report {
	emit := serialize(observe)

	limit := b.MaxInFlight
	if limit <= 0 {
		limit = DefaultMaxInFlight
	}

	type result struct {
		doc Document
		err error
	}
	results := make([]result, len(docs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			out, err := b.Processor.Process(ctx, doc, func(d Document) {
				if d.State == StateProcessing {
					emit(Event{Kind: EventProgress, Document: &d})
				}
			})
			results[i] = result{doc: out, err: err}
			if err != nil {
				emit(Event{Kind: EventFailed, Document: &out, Message: err.Error()})
			} else {
				emit(Event{Kind: EventProcessed, Document: &out})
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Attempted: len(docs), Succeeded: []Document{}, Failed: []ItemFailure{}}
	for _, r := range results {
		if r.err != nil {
			report.Failed = append(report.Failed, ItemFailure{
				DocumentID: r.doc.ID,
				FileName:   r.doc.Name,
				Message:    r.err.Error(),
				Err:        r.err,
			})
			continue
		}
		report.Succeeded = append(report.Succeeded, r.doc)
	}
	report.Outcome = outcomeOf(report.Attempted, len(report.Succeeded))

	telemetry.Info("intake.batch.done", map[string]any{
		"request_id": requestctx.RequestID(ctx),
		"attempted":  report.Attempted,
		"succeeded":  len(report.Succeeded),
		"failed":     len(report.Failed),
		"outcome":    string(report.Outcome),
	})
	emit(Event{Kind: EventDone, Report: &report, Message: report.Summary()})
	return report
}

// Summary renders "processed N of M files".
func (r Report) Summary() string {
	return fmt.Sprintf("processed %d of %d files", len(r.Succeeded), r.Attempted)
}

func outcomeOf(attempted, succeeded int) Outcome {
	switch {
	case succeeded == 0:
		return OutcomeNothingProcessed
	case succeeded == attempted:
		return OutcomeAllProcessed
	default:
		return OutcomePartiallyProcessed
	}
}

func serialize(observe Observer) Observer {
	if observe == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		observe(e)
	}
}
