// Package rest implements the api ports over HTTP and JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/flow"
)

const (
	// DefaultTimeout is the default request timeout
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	HeaderIdempotencyKey = "Idempotency-Key"
)

// TokenSource returns the bearer token for a request. An empty token sends
// no Authorization header.
type TokenSource func(ctx context.Context) (string, error)

// Client talks to the listings REST API.
type Client struct {
	base      *url.URL
	http      *http.Client
	token     TokenSource
	opener    MediaOpener
	logger    flow.Logger
	userAgent string
}

// New returns a client for baseURL, e.g. "https://api.example.com/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid api base url", errors.CategoryBadInput).
			WithTextCode("INVALID_BASE_URL").
			WithMetadata(map[string]any{"base_url": baseURL})
	}
	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: DefaultTimeout},
		opener:    FileOpener{},
		logger:    flow.NopLogger{},
		userAgent: "go-wizard",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = flow.NormalizeLogger(c.logger)
	return c, nil
}

// Properties returns the api.PropertyAPI view of the client.
func (c *Client) Properties() *Properties { return &Properties{c: c} }

// Apartments returns the api.ApartmentAPI view of the client.
func (c *Client) Apartments() *Apartments { return &Apartments{c: c} }

// Locations returns the api.LocationLookup view of the client.
func (c *Client) Locations() *Locations { return &Locations{c: c} }

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, target string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "encode request body").
				WithTextCode("ENCODE_FAILED")
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "create request").
			WithTextCode("REQUEST_INVALID")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	if err := c.decorate(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed: %s %s: %v", req.Method, req.URL.Path, err)
		return errors.Wrap(err, errors.CategoryExternal, "request failed").
			WithTextCode("TRANSPORT_ERROR").
			WithMetadata(map[string]any{"method": req.Method, "path": req.URL.Path})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "read response body").
			WithTextCode("TRANSPORT_ERROR")
	}
	if len(raw) > MaxResponseSize {
		return errors.New("response body too large", errors.CategoryExternal).
			WithTextCode("RESPONSE_TOO_LARGE")
	}

	c.logger.Debug("HTTP %s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(req, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "decode response body").
			WithTextCode("DECODE_FAILED").
			WithMetadata(map[string]any{"method": req.Method, "path": req.URL.Path})
	}
	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) error {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryAuth, "resolve access token").
				WithTextCode("TOKEN_UNAVAILABLE")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if req.Method != http.MethodGet {
		if key := api.IdempotencyKey(ctx); key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
	}
	return nil
}

// decodeRecord unwraps an optional {"data": {...}} envelope.
func decodeRecord(raw map[string]any) api.Record {
	if raw == nil {
		return api.Record{}
	}
	if _, hasID := raw["id"]; !hasID {
		if nested, ok := raw["data"].(map[string]any); ok {
			return api.Record(nested)
		}
	}
	return api.Record(raw)
}

// listEnvelope accepts a bare JSON array or {"data": [...]}.
type listEnvelope []api.Record

func (l *listEnvelope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []api.Record
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var env struct {
		Data []api.Record `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*l = env.Data
	return nil
}
