package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	documentsProcessedTotal atomic.Uint64
	documentsFailedTotal    atomic.Uint64
	documentsCommittedTotal atomic.Uint64
	commitFailedTotal       atomic.Uint64
	orphansTotal            atomic.Uint64
	rankingsRequestedTotal  atomic.Uint64
	rankingsFailedTotal     atomic.Uint64
	rankingJobsReceived     atomic.Uint64
	rankingJobsDropped      atomic.Uint64
	emailsSentTotal         atomic.Uint64
	emailsFailedTotal       atomic.Uint64
	panicsTotal             atomic.Uint64

	processingDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

func IncDocumentsProcessed()  { documentsProcessedTotal.Add(1) }
func IncDocumentsFailed()     { documentsFailedTotal.Add(1) }
func IncDocumentsCommitted()  { documentsCommittedTotal.Add(1) }
func IncCommitFailed()        { commitFailedTotal.Add(1) }
func IncOrphans()             { orphansTotal.Add(1) }
func IncRankingsRequested()   { rankingsRequestedTotal.Add(1) }
func IncRankingsFailed()      { rankingsFailedTotal.Add(1) }
func IncRankingJobsReceived() { rankingJobsReceived.Add(1) }
func IncRankingJobsDropped()  { rankingJobsDropped.Add(1) }
func IncEmailsSent()          { emailsSentTotal.Add(1) }
func IncEmailsFailed()        { emailsFailedTotal.Add(1) }
func IncPanics()              { panicsTotal.Add(1) }

// ObserveProcessingMs records one extraction call duration in milliseconds.
func ObserveProcessingMs(value float64) {
	if value < 0 {
		value = 0
	}
	processingDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "intake_documents_processed_total", "Documents processed by the extraction endpoint", documentsProcessedTotal.Load())
	writeCounter(&buf, "intake_documents_failed_total", "Documents whose extraction call failed", documentsFailedTotal.Load())
	writeCounter(&buf, "intake_documents_committed_total", "Documents stored with a metadata row", documentsCommittedTotal.Load())
	writeCounter(&buf, "intake_commit_failed_total", "Documents whose commit failed", commitFailedTotal.Load())
	writeCounter(&buf, "intake_orphans_total", "Partial commits leaving an object or a row behind", orphansTotal.Load())
	writeCounter(&buf, "rankings_requested_total", "Ranking calls issued", rankingsRequestedTotal.Load())
	writeCounter(&buf, "rankings_failed_total", "Ranking calls that failed", rankingsFailedTotal.Load())
	writeCounter(&buf, "ranking_jobs_received_total", "Ranking queue messages received", rankingJobsReceived.Load())
	writeCounter(&buf, "ranking_jobs_dropped_total", "Ranking queue messages deleted as unrecoverable", rankingJobsDropped.Load())
	writeCounter(&buf, "interview_emails_sent_total", "Interview emails sent", emailsSentTotal.Load())
	writeCounter(&buf, "interview_emails_failed_total", "Interview emails that failed", emailsFailedTotal.Load())
	writeCounter(&buf, "http_panics_total", "Recovered handler panics", panicsTotal.Load())
	writeHistogram(&buf, "intake_processing_duration_ms", "Extraction call duration in milliseconds", processingDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe adds value to the first bucket whose bound it fits; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
