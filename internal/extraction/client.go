// Package extraction talks to the remote document extraction and scoring endpoint.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const maxResponseBytes = 1 << 20

// Options configures the extraction client. TokenURL enables OAuth2 client credentials.
type Options struct {
	URL          string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Result is the scoring outcome for one document. Absent fields are zero.
type Result struct {
	Score           float64         `json:"score"`
	MatchPercentage float64         `json:"matchPercentage"`
	Raw             json.RawMessage `json:"-"`
}

// Error describes a failed extraction call. Status is 0 for transport errors.
type Error struct {
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("extraction endpoint returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("extraction request failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the call hit a deadline.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded) || (e.Err != nil && strings.Contains(e.Err.Error(), "Client.Timeout"))
}

// Client uploads single documents as multipart form data.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client. It fails when URL is empty.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, fmt.Errorf("EXTRACTION_URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if opts.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		httpClient = cc.Client(context.Background())
		httpClient.Timeout = timeout
	}
	return &Client{url: opts.URL, httpClient: httpClient}, nil
}

// NewClientWithHTTP is used by tests to point the client at an httptest server.
func NewClientWithHTTP(url string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{url: url, httpClient: hc}
}

// Payload assembles the single-part multipart body for one document.
func Payload(fileName, mediaType string, data []byte) (body *bytes.Buffer, contentType string, err error) {
	body = &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(fileName)))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}

// Send posts an assembled payload and decodes the score fields.
func (c *Client) Send(ctx context.Context, body io.Reader, contentType string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return Result{}, &Error{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &Error{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &Error{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &Error{Status: resp.StatusCode, Body: truncate(string(raw), 256)}
	}
	return decodeResult(raw)
}

// Extract is Payload followed by Send.
func (c *Client) Extract(ctx context.Context, fileName, mediaType string, data []byte) (Result, error) {
	body, ct, err := Payload(fileName, mediaType, data)
	if err != nil {
		return Result{}, &Error{Err: err}
	}
	return c.Send(ctx, body, ct)
}

func decodeResult(raw []byte) (Result, error) {
	out := Result{Raw: json.RawMessage(raw)}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Result{}, &Error{Status: http.StatusOK, Body: truncate(string(raw), 256), Err: fmt.Errorf("extraction response parse: %w", err)}
	}
	out.Score = number(fields["score"])
	out.MatchPercentage = number(fields["matchPercentage"])
	return out, nil
}

// number accepts JSON numbers and numeric strings; anything else is 0.
func number(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		var parsed float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimSpace(s), "%"), "%g", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
