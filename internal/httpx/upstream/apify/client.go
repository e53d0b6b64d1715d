// Package apify is a minimal client for the Apify actor-run API, covering
// the start run, poll status, fetch dataset items workflow.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

const (
	defaultBaseURL = "https://api.apify.com"
	defaultTimeout = 30 * time.Second
)

// Client talks to the Apify REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Apify API client
func New(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error response from the Apify API
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apify API error: %s (status %d, type %s)", e.Message, e.StatusCode, e.Type)
}

// Unwrap maps API error classes onto the domain sentinels so callers can
// branch with errors.Is
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return entity.ErrVendorAuth
	case http.StatusTooManyRequests:
		return entity.ErrVendorRateLimited
	}
	return nil
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// RunStatus is the lifecycle state of an actor run
type RunStatus string

const (
	RunStatusReady     RunStatus = "READY"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusAborted   RunStatus = "ABORTED"
	RunStatusTimedOut  RunStatus = "TIMED-OUT"
)

// Terminal reports whether the run has finished, successfully or not
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusAborted, RunStatusTimedOut:
		return true
	}
	return false
}

// Run is the subset of an actor-run record the workflow needs
type Run struct {
	ID               string    `json:"id"`
	Status           RunStatus `json:"status"`
	DefaultDatasetID string    `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// StartRun launches an actor with the given input.
// POST /v2/acts/{actorID}/runs
func (c *Client) StartRun(ctx context.Context, actorID string, input any) (*Run, error) {
	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, url.PathEscape(actorID))

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding actor input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.withToken(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out runEnvelope
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	if out.Data.ID == "" {
		return nil, fmt.Errorf("%w: run id missing from response", entity.ErrJobStart)
	}

	return &out.Data, nil
}

// GetRun fetches the current state of an actor run.
// GET /v2/actor-runs/{runID}
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, url.PathEscape(runID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.withToken(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out runEnvelope
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// DatasetItems fetches the default dataset of a finished run as raw JSON.
// GET /v2/actor-runs/{runID}/dataset/items
func (c *Client) DatasetItems(ctx context.Context, runID string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s/dataset/items", c.baseURL, url.PathEscape(runID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.withToken(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var raw json.RawMessage
	if err := c.do(req, http.StatusOK, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

// User is the subset of the account record the connection check needs
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type userEnvelope struct {
	Data User `json:"data"`
}

// CheckConnection verifies the API token by fetching the account it belongs
// to. Auth failures come back as entity.ErrVendorAuth.
// GET /v2/users/me
func (c *Client) CheckConnection(ctx context.Context) (*User, error) {
	endpoint := fmt.Sprintf("%s/v2/users/me", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.withToken(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out userEnvelope
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}

	return &out.Data, nil
}

// withToken appends the API token as a query parameter, the auth scheme the
// actor-run endpoints expect
func (c *Client) withToken(endpoint string) string {
	params := url.Values{}
	params.Set("token", c.token)
	return endpoint + "?" + params.Encode()
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256)),
			}
		}
		errResp.Error.StatusCode = resp.StatusCode
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
