package interviews

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/archive"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
)

const maxAttachmentBytes = 25 << 20

// DocumentSource resolves candidate files to stored bytes.
type DocumentSource interface {
	FindByName(ctx context.Context, ownerID, name string) (documents.Record, error)
	SignedURL(ctx context.Context, rec documents.Record) (string, time.Time, error)
	Open(ctx context.Context, rec documents.Record) (io.ReadCloser, error)
}

// fetch loads one candidate's CV through a signed URL, opening the object
// directly when the store cannot sign.
func (s *Service) fetch(ctx context.Context, ownerID, fileName string) (Attachment, error) {
	rec, err := s.Documents.FindByName(ctx, ownerID, fileName)
	if err != nil {
		return Attachment{}, fmt.Errorf("lookup %q: %w", fileName, err)
	}

	var body io.ReadCloser
	url, _, err := s.Documents.SignedURL(ctx, rec)
	switch {
	case errors.Is(err, documents.ErrSigningUnsupported):
		body, err = s.Documents.Open(ctx, rec)
		if err != nil {
			return Attachment{}, fmt.Errorf("open %s: %w", rec.FilePath, err)
		}
	case err != nil:
		return Attachment{}, err
	default:
		body, err = s.download(ctx, url)
		if err != nil {
			return Attachment{}, err
		}
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxAttachmentBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("read %s: %w", rec.FilePath, err)
	}
	if len(data) > maxAttachmentBytes {
		return Attachment{}, fmt.Errorf("%s exceeds attachment limit", rec.FileName)
	}

	contentType := rec.ContentType
	if contentType == "" {
		contentType = archive.MediaTypeFor(rec.FileName)
	}
	return Attachment{FileName: rec.FileName, ContentType: contentType, Data: data}, nil
}

func (s *Service) download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	hc := s.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch signed url: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch signed url: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
