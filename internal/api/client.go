// Package api is the JSON/HTTP client for the expense backend.
//
// Every call issues exactly one request. There are no retries and no
// timeout unless one is configured with WithTimeout.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

const DefaultBaseURL = "http://localhost:5000/api"

var (
	// ErrRequestFailed is wrapped by every non-2xx response.
	ErrRequestFailed = errors.New("request failed")
	// ErrTransport covers network errors and undecodable responses.
	ErrTransport = errors.New("transport error")
)

// StatusError reports a non-2xx response. The body is kept for logs only.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.WithComponent(log.ComponentClient)
		}
	}
}

// NewClient builds a client for baseURL, e.g. "http://localhost:5000/api".
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// expensePayload is the create/update body. The id never travels in it.
type expensePayload struct {
	Title       string        `json:"title"`
	Amount      core.Money    `json:"amount"`
	Category    core.Category `json:"category"`
	Date        core.Date     `json:"date"`
	Description string        `json:"description"`
}

func payloadOf(e core.Expense) expensePayload {
	return expensePayload{
		Title:       e.Title,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		Description: e.Description,
	}
}

// CreateExpense POSTs /expenses. The response body is ignored.
func (c *Client) CreateExpense(ctx context.Context, e core.Expense) error {
	return c.do(ctx, http.MethodPost, "/expenses", payloadOf(e), nil)
}

// UpdateExpense PUTs /expenses/{id}.
func (c *Client) UpdateExpense(ctx context.Context, id int64, e core.Expense) error {
	return c.do(ctx, http.MethodPut, "/expenses/"+strconv.FormatInt(id, 10), payloadOf(e), nil)
}

// ListExpenses GETs the full collection in backend order.
func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	var out []core.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []core.Expense{}
	}
	return out, nil
}

// DeleteExpense DELETEs /expenses/{id}. The response body is ignored.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+strconv.FormatInt(id, 10), nil, nil)
}

// GetSummary GETs the backend-computed totals.
func (c *Client) GetSummary(ctx context.Context) (core.Summary, error) {
	var s core.Summary
	if err := c.do(ctx, http.MethodGet, "/summary", nil, &s); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

// Ping GETs /health. The web server uses it for its readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "API request failed", log.FieldMethod, method, log.FieldPath, path, log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API request completed",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransport, method, path, err)
	}
	return nil
}
