package extraction

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSendsSinglePart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.File, 1)
		files := r.MultipartForm.File["file"]
		require.Len(t, files, 1)
		assert.Equal(t, "jane.pdf", files[0].Filename)
		assert.Equal(t, "application/pdf", files[0].Header.Get("Content-Type"))
		f, err := files[0].Open()
		require.NoError(t, err)
		body, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF", string(body))
		_, _ = w.Write([]byte(`{"score": 7.5, "matchPercentage": 82}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client())
	res, err := c.Extract(context.Background(), "jane.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 7.5, res.Score)
	assert.Equal(t, 82.0, res.MatchPercentage)
}

func TestExtractDefaultsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidate":"x"}`))
	}))
	defer srv.Close()

	res, err := NewClientWithHTTP(srv.URL, srv.Client()).Extract(context.Background(), "a.txt", "text/plain", []byte("hi"))
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Zero(t, res.MatchPercentage)
}

func TestExtractNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClientWithHTTP(srv.URL, srv.Client()).Extract(context.Background(), "a.txt", "text/plain", []byte("hi"))
	var extErr *Error
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, http.StatusServiceUnavailable, extErr.Status)
	assert.Contains(t, extErr.Body, "overloaded")
}

func TestExtractTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewClientWithHTTP(srv.URL, srv.Client()).Extract(ctx, "a.txt", "text/plain", []byte("hi"))
	var extErr *Error
	require.True(t, errors.As(err, &extErr))
	assert.True(t, extErr.Timeout())
}

func TestNumberAcceptsStrings(t *testing.T) {
	assert.Equal(t, 64.0, number([]byte(`"64%"`)))
	assert.Equal(t, 3.0, number([]byte(`3`)))
	assert.Zero(t, number([]byte(`null`)))
	assert.Zero(t, number([]byte(`{"a":1}`)))
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)

	c, err := NewClient(Options{URL: "http://x", TokenURL: "http://token", ClientID: "id", ClientSecret: "s"})
	require.NoError(t, err)
	assert.NotNil(t, c.httpClient.Transport)
}
