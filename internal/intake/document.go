// Package intake moves candidate documents from upload through scoring to storage.
package intake

// State tags where a document is in the intake lifecycle.
type State string

const (
	StateSelected   State = "selected"
	StateProcessing State = "processing"
	StateProcessed  State = "processed"
	StateFailed     State = "failed"
	StateCommitting State = "committing"
	StateCommitted  State = "committed"
)

// Document is one candidate file. Transitions return a modified copy.
//
// Progress is 0 when selected, 20 while the extraction call is in flight,
// 100 once processed and nil after a failed attempt.
type Document struct {
	ID              string  `json:"id"`
	Name            string  `json:"fileName"`
	MediaType       string  `json:"contentType"`
	Size            int64   `json:"fileSize"`
	Source          string  `json:"source,omitempty"`
	PreviewID       string  `json:"previewId,omitempty"`
	State           State   `json:"state"`
	Progress        *int    `json:"progress"`
	Score           float64 `json:"score"`
	MatchPercentage float64 `json:"matchPercentage"`
	StorageKey      string  `json:"storageKey,omitempty"`
	Error           string  `json:"error,omitempty"`
	Data            []byte  `json:"-"`
}

func progress(p int) *int { return &p }

// NewDocument returns a selected document with progress 0.
func NewDocument(id, name, mediaType string, data []byte) Document {
	return Document{
		ID:        id,
		Name:      name,
		MediaType: mediaType,
		Size:      int64(len(data)),
		State:     StateSelected,
		Progress:  progress(0),
		Data:      data,
	}
}

// Processed reports whether the document is ready to commit.
func (d Document) Processed() bool { return d.State == StateProcessed }

func (d Document) started() Document {
	d.State = StateProcessing
	d.Progress = progress(0)
	d.Error = ""
	return d
}

func (d Document) inFlight() Document {
	d.Progress = progress(20)
	return d
}

func (d Document) succeeded(score, match float64) Document {
	d.State = StateProcessed
	d.Progress = progress(100)
	d.Score = score
	d.MatchPercentage = match
	d.Error = ""
	return d
}

func (d Document) failed(msg string) Document {
	d.State = StateFailed
	d.Progress = nil
	d.Error = msg
	return d
}

func (d Document) committed(key string) Document {
	d.State = StateCommitted
	d.StorageKey = key
	return d
}
