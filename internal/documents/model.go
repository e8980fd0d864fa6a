package documents

import "time"

// Record is the metadata row for a committed candidate document.
// FilePath is the object storage key.
type Record struct {
	ID          string
	OwnerID     string
	FileName    string
	FilePath    string
	ContentType string
	FileSize    int64
	UploadDate  time.Time
}
