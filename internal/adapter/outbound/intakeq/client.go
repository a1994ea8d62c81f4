// Package intakeq is the outbound adapter for the IntakeQ REST API: one
// request primitive plus typed per-resource handlers built on it.
package intakeq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/i2y/intakeq-mcp/internal/codec"
	"github.com/i2y/intakeq-mcp/internal/domain"
)

const (
	// DefaultBaseURL is the production IntakeQ API root.
	DefaultBaseURL = "https://intakeq.com/api/v1"

	authHeader = "X-Auth-Key"
)

// Request is one upstream call. Path is already fully substituted.
type Request struct {
	Method     string
	Path       string
	Credential string
	Query      map[string]string
	Body       any
	// Raw returns the body bytes untouched instead of decoding JSON.
	Raw bool
	// Success lists the accepted statuses; empty means 200 only.
	Success []int
	// Template is the unsubstituted path, used for span names.
	Template string
}

// Result is a successful upstream response.
type Result struct {
	StatusCode int
	// Payload is the decoded JSON (nil for an empty body).
	Payload any
	// Raw holds the exact response bytes for raw requests.
	Raw []byte
}

// Invoker performs a single upstream request. Handlers depend on this so the
// primitive can be swapped in tests.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// Observer receives one observation per upstream call.
type Observer interface {
	ObserveUpstream(method string, code int, d time.Duration)
}

// Client implements Invoker over net/http.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	observer  Observer
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a Client for baseURL. A nil http.Client gets a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "intakeq-mcp-server/1.0.0",
		client:    httpClient,
		tracer:    otel.Tracer("github.com/i2y/intakeq-mcp/internal/adapter/outbound/intakeq"),
		logger:    logger.With("component", "intakeq_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke sends exactly one request. There are no retries.
func (c *Client) Invoke(ctx context.Context, req Request) (*Result, error) {
	template := req.Template
	if template == "" {
		template = req.Path
	}
	log := c.logger.With(
		slog.String("method", req.Method),
		slog.String("path", template),
	)

	ctx, span := c.tracer.Start(ctx, "intakeq."+req.Method+" "+template,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.template", template),
		),
	)
	defer span.End()

	res, code, err := c.do(ctx, req, log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.KindOf(err)))
	}
	if code != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", code))
	}
	return res, err
}

func (c *Client) do(ctx context.Context, req Request, log *slog.Logger) (*Result, int, error) {
	// --- 1. Build URL --- //
	fullURL := c.baseURL + req.Path
	if q := EncodeQuery(req.Query); q != "" {
		fullURL += "?" + q
	}
	if _, err := url.Parse(fullURL); err != nil {
		log.Error("Failed to build request URL", slog.Any("error", err))
		return nil, 0, domain.InternalError(fmt.Errorf("invalid request URL: %w", err))
	}

	// --- 2. Body --- //
	var body io.Reader
	if req.Body != nil {
		data, err := codec.Marshal(req.Body)
		if err != nil {
			log.Error("Failed to marshal request body", slog.Any("error", err))
			return nil, 0, domain.InternalError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		body = bytes.NewReader(data)
		log.Debug("Prepared request body", slog.Int("size", len(data)))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, 0, domain.InternalError(fmt.Errorf("failed to create request: %w", err))
	}

	// --- 3. Headers --- //
	httpReq.Header.Set(authHeader, req.Credential)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if !req.Raw {
		httpReq.Header.Set("Accept", "application/json")
	}
	if req.Method == http.MethodPost || req.Method == http.MethodPut {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	// --- 4. Execute --- //
	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.observe(req.Method, 0, start)
		timeout := isTimeout(err)
		log.Warn("IntakeQ request failed", slog.Bool("timeout", timeout), slog.Any("error", err))
		return nil, 0, domain.UpstreamUnavailable(err, timeout)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(req.Method, resp.StatusCode, start)
	log = log.With(slog.Int("status_code", resp.StatusCode), slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Warn("Failed to read response body", slog.Any("error", err))
		return nil, resp.StatusCode, domain.UpstreamUnavailable(err, isTimeout(err))
	}
	log.Debug("Received IntakeQ response", slog.Int("size", len(data)))

	// --- 5. Classify --- //
	if !accepted(resp.StatusCode, req.Success) {
		log.Warn("IntakeQ returned a non-success status", slog.Int("body_bytes", len(data)))
		return nil, resp.StatusCode, domain.UpstreamError(resp.StatusCode, string(data))
	}

	if req.Raw {
		return &Result{StatusCode: resp.StatusCode, Raw: data}, resp.StatusCode, nil
	}
	payload, err := codec.DecodeValue(data)
	if err != nil {
		log.Error("Failed to decode IntakeQ JSON response", slog.Any("error", err))
		return nil, resp.StatusCode, domain.InternalError(fmt.Errorf("malformed JSON from IntakeQ: %w", err))
	}
	return &Result{StatusCode: resp.StatusCode, Payload: payload}, resp.StatusCode, nil
}

func (c *Client) observe(method string, code int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(method, code, time.Since(start))
	}
}

func accepted(code int, success []int) bool {
	if len(success) == 0 {
		return code == http.StatusOK
	}
	return slices.Contains(success, code)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// EncodeQuery encodes params with keys sorted, dropping empty values and
// escaping spaces as %20.
func EncodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return strings.ReplaceAll(b.String(), "+", "%20")
}
