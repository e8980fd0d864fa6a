package intake

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docs(names ...string) []Document {
	out := make([]Document, 0, len(names))
	for i, n := range names {
		out = append(out, NewDocument(fmt.Sprintf("d%d", i), n, "application/pdf", []byte(n)))
	}
	return out
}

func TestBatchIsolatesFailures(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"b.pdf": true, "d.pdf": true}}
	b := &Batch{Processor: &Processor{Client: sender}, MaxInFlight: 2}

	var events []Event
	report := b.Run(context.Background(), docs("a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"), func(e Event) {
		events = append(events, e)
	})

	assert.Equal(t, 5, report.Attempted)
	require.Len(t, report.Succeeded, 3)
	require.Len(t, report.Failed, 2)
	assert.LessOrEqual(t, len(report.Succeeded), report.Attempted)
	assert.Equal(t, OutcomePartiallyProcessed, report.Outcome)
	assert.Equal(t, "processed 3 of 5 files", report.Summary())
	assert.Equal(t, []string{"a.pdf", "c.pdf", "e.pdf"}, []string{report.Succeeded[0].Name, report.Succeeded[1].Name, report.Succeeded[2].Name})
	assert.Equal(t, "b.pdf", report.Failed[0].FileName)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventDone, last.Kind)
	require.NotNil(t, last.Report)
	assert.Equal(t, 5, last.Report.Attempted)
}

func TestBatchBoundsConcurrency(t *testing.T) {
	sender := &fakeSender{delay: 20 * time.Millisecond}
	b := &Batch{Processor: &Processor{Client: sender}, MaxInFlight: 2}

	report := b.Run(context.Background(), docs("a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"), nil)
	assert.Equal(t, OutcomeAllProcessed, report.Outcome)
	assert.LessOrEqual(t, sender.peak.Load(), int32(2))
	assert.Len(t, sender.seen, 6)
}

func TestBatchNothingProcessed(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"a.pdf": true}}
	b := &Batch{Processor: &Processor{Client: sender}}

	report := b.Run(context.Background(), docs("a.pdf"), nil)
	assert.Equal(t, OutcomeNothingProcessed, report.Outcome)
	assert.Empty(t, report.Succeeded)

	empty := b.Run(context.Background(), nil, nil)
	assert.Equal(t, OutcomeNothingProcessed, empty.Outcome)
	assert.Zero(t, empty.Attempted)
}
