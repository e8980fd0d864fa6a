package interviews

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Attachment is one file sent with an email. Data is base64 encoded on the wire.
type Attachment struct {
	FileName    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"content"`
}

// Email is a single outbound message.
type Email struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Mailer sends emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// MailError describes a failed provider call. Status is 0 for transport errors.
type MailError struct {
	Status int
	Body   string
	Err    error
}

func (e *MailError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mail provider returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("mail request failed: %v", e.Err)
}

func (e *MailError) Unwrap() error { return e.Err }

// HTTPMailer posts emails as JSON to a provider API with a bearer key.
type HTTPMailer struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPMailer builds a mailer. It fails when url is empty.
func NewHTTPMailer(url, apiKey string, hc *http.Client) (*HTTPMailer, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("MAIL_API_URL is required")
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPMailer{url: url, apiKey: apiKey, httpClient: hc}, nil
}

func (m *HTTPMailer) Send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return &MailError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return &MailError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return &MailError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &MailError{Status: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
