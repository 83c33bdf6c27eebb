// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package upstream is the HTTP transport to the streaming service's API and CDN.
// It knows nothing about sessions: callers pass the bearer credential per request.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/sxm2hls/internal/telemetry"
)

// DefaultUserAgent mimics the desktop web player the API was built for.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"

const (
	defaultRateLimit      = 10
	defaultRateLimitBurst = 20
)

// Client performs requests against the upstream API (rate limited) and the
// upstream CDN (unmetered).
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Options configures the Client behavior.
type Options struct {
	// Timeout is the overall per-request timeout. Zero keeps the transport default (none).
	Timeout        time.Duration
	UserAgent      string
	RateLimit      rate.Limit
	RateLimitBurst int
	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// Request describes one upstream call.
type Request struct {
	// Operation is a stable, low-cardinality name used for metrics, spans and errors.
	Operation string
	Method    string
	// Path is resolved against the API base URL unless it is an absolute URL.
	Path   string
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Header http.Header
	Bearer string
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream base URL must be http or https, got %q", u.Scheme)
	}

	opts = normalizeOptions(opts)
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Client{
		base:      u,
		http:      httpClient,
		limiter:   rate.NewLimiter(opts.RateLimit, opts.RateLimitBurst),
		userAgent: opts.UserAgent,
	}, nil
}

func normalizeOptions(opts Options) Options {
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return opts
}

// UserAgent returns the user agent sent with every request.
func (c *Client) UserAgent() string { return c.userAgent }

// Resolve returns the absolute URL for an API path.
func (c *Client) Resolve(path string) string {
	return c.resolve(path).String()
}

func (c *Client) resolve(path string) *url.URL {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return u
	}
	return c.base.ResolveReference(&url.URL{Path: strings.TrimLeft(path, "/")})
}

// Do sends an API request through the rate limiter and returns the body of a
// 2xx response. Non-2xx responses yield an *Error carrying the status;
// 401 additionally matches ErrUnauthorized.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, NewError(ErrUnavailable, req.Operation, 0, err)
	}
	return c.send(ctx, req)
}

// Fetch downloads an absolute URL (playlists, segments) without the API rate
// limiter. bearer may be empty.
func (c *Client) Fetch(ctx context.Context, operation, rawURL, bearer string) ([]byte, error) {
	return c.send(ctx, Request{
		Operation: operation,
		Method:    http.MethodGet,
		Path:      rawURL,
		Bearer:    bearer,
	})
}

// DoJSON is Do followed by decoding the body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	body, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeJSON(req.Operation, body, out)
}

// DecodeJSON unmarshals body into out and maps failures to ErrDecode.
func DecodeJSON(operation string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return NewError(ErrDecode, operation, 0, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolve(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	tracer := telemetry.Tracer("sxm2hls.upstream")
	ctx, span := tracer.Start(ctx, "sxm2hls.upstream.request", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.UpstreamOperationKey, req.Operation))

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, NewError(ErrDecode, req.Operation, 0, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, NewError(ErrUnavailable, req.Operation, 0, err)
	}
	c.applyHeaders(httpReq, req)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		recordRequest(req.Operation, 0, duration, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, NewError(ErrUnavailable, req.Operation, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	recordRequest(req.Operation, resp.StatusCode, duration, nil)
	span.SetAttributes(telemetry.HTTPAttributes(method, req.Operation, target.Host+target.Path, resp.StatusCode)...)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, NewError(ErrUnauthorized, req.Operation, resp.StatusCode, nil)
		}
		return nil, NewError(ErrUpstreamStatus, req.Operation, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, NewError(ErrUnavailable, req.Operation, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	span.SetStatus(codes.Ok, "")
	return data, nil
}

func (c *Client) applyHeaders(httpReq *http.Request, req Request) {
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}
}
