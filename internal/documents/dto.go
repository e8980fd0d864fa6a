package documents

import "time"

// RecordResponse is the outward-facing representation of an upload record.
type RecordResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	ContentType string    `json:"contentType"`
	FileSize    int64     `json:"fileSize"`
	UploadDate  time.Time `json:"uploadDate"`
}

func toResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:          rec.ID,
		FileName:    rec.FileName,
		FilePath:    rec.FilePath,
		ContentType: rec.ContentType,
		FileSize:    rec.FileSize,
		UploadDate:  rec.UploadDate,
	}
}
