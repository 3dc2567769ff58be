// Package remote implements the plan store against an opaque HTTP
// document endpoint: GET returns the whole sequence as a JSON array,
// POST replaces it wholesale.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tomcoffee/kimono-sim/internal/core"
	"github.com/tomcoffee/kimono-sim/internal/store"
)

// ContentTypeText posts the payload as plain text. Some hosted
// document stores only accept preflight-exempt requests; a plain-text
// content type keeps the POST a CORS "simple request". It is the
// default for compatibility but not load-bearing: prefer JSON when
// the endpoint allows it.
const (
	ContentTypeText = "text/plain;charset=utf-8"
	ContentTypeJSON = "application/json"
)

var ErrMalformedPayload = errors.New("malformed remote payload")

// Client talks to the remote document store. One read at startup, one
// wholesale write per explicit save. No retries: the caller decides
// what a failure means.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	contentType string
}

var _ store.Store = (*Client)(nil)

// Option adjusts the client construction.
type Option func(*Client)

// WithHTTPClient replaces the default pooled client (mainly for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithContentType overrides the POST content type.
func WithContentType(ct string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ct) != "" {
			c.contentType = ct
		}
	}
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func New(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("missing remote store endpoint")
	}
	c := &Client{
		httpClient:  newPooledHTTPClient(),
		endpoint:    endpoint,
		contentType: ContentTypeText,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newPooledHTTPClient builds an HTTP client with connection pooling
// and bounded timeouts so a hung store cannot hang a load or save
// forever.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// LoadPlan issues one read against the store. An empty array or JSON
// null body means a fresh store and returns (nil, nil). Anything that
// does not decode into the persisted schema, or violates the sequence
// invariants, is a load failure.
func (c *Client) LoadPlan(ctx context.Context) ([]core.PeriodRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build load request: %w", err)
	}
	req.Header.Set("Accept", ContentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("load plan: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read load response: %w", err)
	}
	records, err := decodePlan(body)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Loaded plan from remote store",
		"endpoint", c.endpoint,
		"records", len(records))
	return records, nil
}

// SavePlan serializes the entire sequence and writes it wholesale.
// Last writer wins; the response body is not inspected beyond the
// HTTP status.
func (c *Client) SavePlan(ctx context.Context, records []core.PeriodRecord) error {
	if err := core.ValidateSequence(records); err != nil {
		return fmt.Errorf("refusing to persist invalid sequence: %w", err)
	}
	if records == nil {
		records = []core.PeriodRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", c.contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection returns to the pool.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("save plan: unexpected status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Saved plan to remote store",
		"endpoint", c.endpoint,
		"records", len(records),
		"bytes", len(payload))
	return nil
}

// decodePlan enforces the persisted schema at the boundary: unknown
// fields, wrong types and invariant violations are all rejected here
// so nothing malformed propagates into derivation.
func decodePlan(body []byte) ([]core.PeriodRecord, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var records []core.PeriodRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedPayload)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := core.ValidateSequence(records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return records, nil
}
