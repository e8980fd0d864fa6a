package interviews

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surenganne/cv-scorer-elite-sub000/internal/documents"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/jobs"
	"github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object"
	localstore "github.com/surenganne/cv-scorer-elite-sub000/internal/shared/storage/object/local"
)

type fakeDocs struct {
	records map[string]documents.Record
	bytes   map[string]string
	// signBase, when set, serves signed URLs from this base.
	signBase string
}

func (f *fakeDocs) FindByName(ctx context.Context, ownerID, name string) (documents.Record, error) {
	for _, rec := range f.records {
		if strings.EqualFold(rec.FileName, name) && rec.OwnerID == ownerID {
			return rec, nil
		}
	}
	return documents.Record{}, documents.ErrNotFound
}

func (f *fakeDocs) SignedURL(ctx context.Context, rec documents.Record) (string, time.Time, error) {
	if f.signBase == "" {
		return "", time.Time{}, documents.ErrSigningUnsupported
	}
	return f.signBase + "/" + rec.FilePath, time.Now().Add(time.Minute), nil
}

func (f *fakeDocs) Open(ctx context.Context, rec documents.Record) (io.ReadCloser, error) {
	data, ok := f.bytes[rec.FilePath]
	if !ok {
		return nil, errors.New("object missing")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

type capturingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *capturingMailer) Send(ctx context.Context, email Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func fixture(t *testing.T) (*jobs.MemoryRepo, *fakeDocs) {
	t.Helper()
	repo := jobs.NewMemoryRepo()
	require.NoError(t, repo.Create(context.Background(), jobs.Job{ID: "job-1", OwnerID: "u1", Title: "Platform Engineer"}))
	docs := &fakeDocs{
		records: map[string]documents.Record{
			"r1": {ID: "r1", OwnerID: "u1", FileName: "ada.pdf", FilePath: "cvs/a.pdf", ContentType: "application/pdf"},
			"r2": {ID: "r2", OwnerID: "u1", FileName: "grace.txt", FilePath: "cvs/g.txt", ContentType: "text/plain"},
			"r3": {ID: "r3", OwnerID: "u1", FileName: "linus.pdf", FilePath: "cvs/missing.pdf"},
		},
		bytes: map[string]string{"cvs/a.pdf": "%PDF-ada", "cvs/g.txt": "grace"},
	}
	return repo, docs
}

func threeCandidates() []Candidate {
	return []Candidate{
		{Rank: "1", FileName: "ada.pdf", OverallMatch: "91%"},
		{Rank: "2", FileName: "linus.pdf", OverallMatch: "80%"},
		{Rank: "3", FileName: "GRACE.txt", OverallMatch: "75%"},
	}
}

func TestSendSkipsUnfetchableAttachmentButListsAllCandidates(t *testing.T) {
	repo, docs := fixture(t)
	mailer := &capturingMailer{}
	svc := NewService(repo, docs, mailer, "hr@example.com")

	res, err := svc.Send(context.Background(), "u1", SendRequest{
		JobID:      "job-1",
		Recipients: []string{"lead@example.com", " cto@example.com "},
		Candidates: threeCandidates(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, 2, res.Attachments)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "linus.pdf", res.Skipped[0].FileName)

	require.Len(t, mailer.sent, 1)
	email := mailer.sent[0]
	assert.Equal(t, []string{"lead@example.com", "cto@example.com"}, email.To)
	assert.Equal(t, "Interview candidates: Platform Engineer", email.Subject)
	require.Len(t, email.Attachments, 2)
	assert.Equal(t, "ada.pdf", email.Attachments[0].FileName)
	assert.Equal(t, "%PDF-ada", string(email.Attachments[0].Data))
	assert.Equal(t, "grace.txt", email.Attachments[1].FileName)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(email.HTML))
	require.NoError(t, err)
	rows := doc.Find("#candidates tbody tr")
	require.Equal(t, 3, rows.Length())
	assert.Equal(t, "linus.pdf", strings.TrimSpace(rows.Eq(1).Find("td.file").Text()))
	assert.Equal(t, "91%", strings.TrimSpace(rows.Eq(0).Find("td.match").Text()))
	assert.Contains(t, doc.Find("h2").Text(), "Platform Engineer")
	assert.Contains(t, doc.Find("p.missing").Text(), "linus.pdf")
}

func TestSendNeverAttachesAnotherCandidatesCV(t *testing.T) {
	repo, _ := fixture(t)
	ctx := context.Background()
	store := localstore.New(t.TempDir())
	records := documents.NewMemoryRepo()
	key := object.NewKey("cvs", "maria_resume.pdf")
	_, err := store.PutNew(ctx, key, "application/pdf", strings.NewReader("%PDF-maria"), 10)
	require.NoError(t, err)
	require.NoError(t, records.Create(ctx, documents.Record{
		ID:          "r-maria",
		OwnerID:     "u1",
		FileName:    "maria_resume.pdf",
		FilePath:    key,
		ContentType: "application/pdf",
		FileSize:    10,
		UploadDate:  time.Now().UTC(),
	}))
	docs := &documents.Service{Store: store, Repo: records}

	mailer := &capturingMailer{}
	svc := NewService(repo, docs, mailer, "hr@example.com")
	res, err := svc.Send(ctx, "u1", SendRequest{
		JobID:      "job-1",
		Recipients: []string{"lead@example.com"},
		Candidates: []Candidate{
			{Rank: "1", FileName: "resume.pdf", OverallMatch: "88%"},
			{Rank: "2", FileName: "Maria_Resume.pdf", OverallMatch: "70%"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attachments)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "resume.pdf", res.Skipped[0].FileName)

	require.Len(t, mailer.sent, 1)
	require.Len(t, mailer.sent[0].Attachments, 1)
	assert.Equal(t, "maria_resume.pdf", mailer.sent[0].Attachments[0].FileName)
	assert.Equal(t, "%PDF-maria", string(mailer.sent[0].Attachments[0].Data))
}

func TestSendFetchesThroughSignedURL(t *testing.T) {
	repo, docs := fixture(t)
	var hits []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/cvs/a.pdf" {
			_, _ = w.Write([]byte("signed-ada"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	docs.signBase = srv.URL

	mailer := &capturingMailer{}
	svc := NewService(repo, docs, mailer, "hr@example.com")
	res, err := svc.Send(context.Background(), "u1", SendRequest{
		JobID:      "job-1",
		Recipients: []string{"lead@example.com"},
		Candidates: threeCandidates(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attachments)
	assert.Len(t, res.Skipped, 2)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "signed-ada", string(mailer.sent[0].Attachments[0].Data))
	assert.Len(t, hits, 3)
}

func TestSendEscapesCandidateNames(t *testing.T) {
	repo, docs := fixture(t)
	mailer := &capturingMailer{}
	svc := NewService(repo, docs, mailer, "hr@example.com")

	_, err := svc.Send(context.Background(), "u1", SendRequest{
		JobID:      "job-1",
		Recipients: []string{"lead@example.com"},
		Candidates: []Candidate{{Rank: "1", FileName: "<script>x</script>.pdf", OverallMatch: "1%"}},
	})
	require.NoError(t, err)
	assert.NotContains(t, mailer.sent[0].HTML, "<script>")
}

func TestSendValidation(t *testing.T) {
	repo, docs := fixture(t)
	mailer := &capturingMailer{}
	svc := NewService(repo, docs, mailer, "hr@example.com")
	ctx := context.Background()

	_, err := svc.Send(ctx, "u1", SendRequest{JobID: "job-1", Candidates: threeCandidates()})
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = svc.Send(ctx, "u1", SendRequest{JobID: "job-1", Recipients: []string{"not-an-address"}, Candidates: threeCandidates()})
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, err = svc.Send(ctx, "u1", SendRequest{JobID: "job-1", Recipients: []string{"a@example.com"}})
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, err = svc.Send(ctx, "u2", SendRequest{JobID: "job-1", Recipients: []string{"a@example.com"}, Candidates: threeCandidates()})
	assert.ErrorIs(t, err, jobs.ErrNotFound)

	assert.Empty(t, mailer.sent)
}

func TestHTTPMailer(t *testing.T) {
	var got Email
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m, err := NewHTTPMailer(srv.URL, "key-1", nil)
	require.NoError(t, err)
	err = m.Send(context.Background(), Email{
		From:        "hr@example.com",
		To:          []string{"lead@example.com"},
		Subject:     "s",
		HTML:        "<p>x</p>",
		Attachments: []Attachment{{FileName: "a.txt", ContentType: "text/plain", Data: []byte("hi")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key-1", auth)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "hi", string(got.Attachments[0].Data))
}

func TestHTTPMailerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m, err := NewHTTPMailer(srv.URL, "", nil)
	require.NoError(t, err)
	err = m.Send(context.Background(), Email{To: []string{"a@example.com"}})
	var mailErr *MailError
	require.True(t, errors.As(err, &mailErr))
	assert.Equal(t, http.StatusTooManyRequests, mailErr.Status)
}

func TestHandlerMapsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo, docs := fixture(t)
	mailer := &capturingMailer{err: &MailError{Status: 500}}
	h := NewHandler(NewService(repo, docs, mailer, "hr@example.com"))

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userId", "u1"); c.Next() })
	h.RegisterRoutes(r.Group("/api/v1"))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/job-1/interviews", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"recipients":[],"candidates":[{"rank":"1","fileName":"ada.pdf","overallMatch":"9%"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(`{"recipients":["a@example.com"],"candidates":[{"rank":"1","fileName":"ada.pdf","overallMatch":"9%"}]}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "mail_failed")
}
