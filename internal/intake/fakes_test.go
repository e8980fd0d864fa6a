package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"sync"
	"sync/atomic"
	"time"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/extraction"
)

// fakeSender fails for file names listed in fail and tracks peak concurrency.
type fakeSender struct {
	fail     map[string]bool
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	seen     []string
}

func (f *fakeSender) Send(ctx context.Context, body io.Reader, contentType string) (extraction.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	name, err := partFileName(body, contentType)
	if err != nil {
		return extraction.Result{}, err
	}
	f.mu.Lock()
	f.seen = append(f.seen, name)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[name] {
		return extraction.Result{}, &extraction.Error{Status: 502, Body: "bad gateway"}
	}
	return extraction.Result{Score: 8, MatchPercentage: 75}, nil
}

func partFileName(body io.Reader, contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	mr := multipart.NewReader(body, params["boundary"])
	part, err := mr.NextPart()
	if err != nil {
		return "", err
	}
	name := part.FileName()
	if _, err := mr.NextPart(); !errors.Is(err, io.EOF) {
		return "", errors.New("expected a single part")
	}
	return name, nil
}

type fakeStore struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	objs  map[string][]byte
}

func (s *fakeStore) PutNew(ctx context.Context, key, contentType string, r io.Reader, size int64) (int64, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return 0, s.err
	}
	data, _ := io.ReadAll(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objs == nil {
		s.objs = map[string][]byte{}
	}
	s.objs[key] = data
	return int64(len(data)), nil
}

func (s *fakeStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(bytes.NewReader(s.objs[key])), nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error { return nil }

// failingRepo fails Create for the listed file names.
type failingRepo struct {
	*documents.MemoryRepo
	fail map[string]bool
}

func (r *failingRepo) Create(ctx context.Context, rec documents.Record) error {
	if r.fail[rec.FileName] {
		return errors.New("insert failed")
	}
	return r.MemoryRepo.Create(ctx, rec)
}
