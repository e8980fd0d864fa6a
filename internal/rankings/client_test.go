package rankings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	creds := credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", "")
	return NewClientWithCredentials(url, "eu-west-1", creds, nil)
}

func TestRankSignsRequestAndReturnsArray(t *testing.T) {
	var got RankRequest
	var auth, contentSHA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentSHA = r.Header.Get("X-Amz-Content-Sha256")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"ranking":[` + validEntry + `]}`))
	}))
	defer srv.Close()

	ranking, err := testClient(srv.URL).Rank(context.Background(), RankRequest{JobID: "job-1", Title: "Go dev", SkillsWeight: 40})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 "), auth)
	assert.Contains(t, auth, "Credential=AKIDEXAMPLE/")
	assert.Contains(t, auth, "/eu-west-1/lambda/aws4_request")
	assert.NotEmpty(t, contentSHA)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, 40, got.SkillsWeight)

	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(ranking, &entries))
	assert.Len(t, entries, 1)
}

func TestRankUnwrapsProxyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":200,"body":"{\"ranking\":[]}"}`))
	}))
	defer srv.Close()

	ranking, err := testClient(srv.URL).Rank(context.Background(), RankRequest{JobID: "job-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(ranking))
}

func TestRankErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "upstream status", status: http.StatusForbidden, body: `{"message":"denied"}`},
		{name: "not an array", status: http.StatusOK, body: `{"ranking":{"rank":"1"}}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Rank(context.Background(), RankRequest{JobID: "job-1"})
			var callErr *CallError
			require.True(t, errors.As(err, &callErr), "got %v", err)
			assert.Equal(t, tt.status, callErr.Status)
		})
	}
}
