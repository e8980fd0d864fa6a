package rankings

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// signingService is the SigV4 service name for Lambda function URLs.
const signingService = "lambda"

const maxRankingBytes = 8 << 20

// RankRequest is the body sent to the ranking function.
type RankRequest struct {
	JobID                   string `json:"job_id"`
	Title                   string `json:"title"`
	Description             string `json:"description"`
	RequiredSkills          string `json:"required_skills"`
	MinimumExperience       string `json:"minimum_experience,omitempty"`
	PreferredQualifications string `json:"preferred_qualifications"`
	ExperienceWeight        int    `json:"experience_weight"`
	SkillsWeight            int    `json:"skills_weight"`
	EducationWeight         int    `json:"education_weight"`
	CertificationsWeight    int    `json:"certifications_weight"`
}

// CallError describes a failed ranking call. Status is 0 for transport or signing errors.
type CallError struct {
	Status int
	Body   string
	Err    error
}

func (e *CallError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ranking endpoint returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("ranking call failed: %v", e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Client calls the ranking function with SigV4-signed requests.
type Client struct {
	url        string
	region     string
	creds      aws.CredentialsProvider
	signer     *v4.Signer
	httpClient *http.Client
	now        func() time.Time
}

// NewClient loads AWS credentials from the default chain.
func NewClient(ctx context.Context, url, region string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("RANKING_URL is required")
	}
	if strings.TrimSpace(region) == "" {
		return nil, fmt.Errorf("RANKING_REGION is required")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return NewClientWithCredentials(url, region, cfg.Credentials, &http.Client{Timeout: timeout}), nil
}

// NewClientWithCredentials builds a client with explicit credentials.
func NewClientWithCredentials(url, region string, creds aws.CredentialsProvider, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		url:        url,
		region:     region,
		creds:      creds,
		signer:     v4.NewSigner(),
		httpClient: hc,
		now:        time.Now,
	}
}

// Rank posts req and returns the response's ranking array as raw JSON.
func (c *Client) Rank(ctx context.Context, req RankRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &CallError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &CallError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if err := c.sign(ctx, httpReq, payload); err != nil {
		return nil, &CallError{Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &CallError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRankingBytes))
	if err != nil {
		return nil, &CallError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CallError{Status: resp.StatusCode, Body: truncate(string(body), 256)}
	}
	ranking, err := extractRanking(body)
	if err != nil {
		return nil, &CallError{Status: resp.StatusCode, Body: truncate(string(body), 256), Err: err}
	}
	return ranking, nil
}

func (c *Client) sign(ctx context.Context, req *http.Request, payload []byte) error {
	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve aws credentials: %w", err)
	}
	sum := sha256.Sum256(payload)
	return c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), signingService, c.region, c.now().UTC())
}

// extractRanking accepts {"ranking":[...]} directly or wrapped in a
// proxy-style {"statusCode":..,"body":"<json>"} envelope.
func extractRanking(body []byte) (json.RawMessage, error) {
	var top struct {
		Ranking json.RawMessage `json:"ranking"`
		Body    *string         `json:"body"`
	}
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode ranking response: %w", err)
	}
	if len(top.Ranking) == 0 && top.Body != nil {
		return extractRanking([]byte(*top.Body))
	}
	trimmed := bytes.TrimSpace(top.Ranking)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("ranking response: ranking is not an array")
	}
	return json.RawMessage(trimmed), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
