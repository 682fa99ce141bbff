package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/middleware"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/config"
	"github.com/jsamuelsen/zapallo-backoffice/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/zapallo-backoffice/internal/adapters/clients"

	// HeaderAPIKey carries the configured API key.
	HeaderAPIKey = "X-API-Key"

	contentTypeJSON = "application/json"

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 1 << 20

	httpStatusCategoryDivisor = 100
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin, e.g. "http://localhost:8000". A trailing slash is ignored.
	BaseURL string

	// Prefix is prepended to every path that does not already start with it, e.g. "/api/v1".
	Prefix string

	// ServiceName identifies the API in logs, spans and metrics.
	ServiceName string

	// Timeout is the default per-request deadline. WithTimeout overrides it per call.
	Timeout time.Duration

	// APIKey, when set, is sent as the X-API-Key header.
	APIKey string

	// Circuit configures the circuit breaker. MaxFailures of zero disables it.
	Circuit config.CircuitBreakerConfig

	// Transport configures the connection pool.
	Transport config.TransportConfig

	// Logger is an optional logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client calls the Zapallo API. Every call:
//   - applies a per-request timeout
//   - sends JSON with the API key and request/correlation IDs
//   - is traced, measured and logged
//   - turns failures into *APIError
type Client struct {
	http        *http.Client
	baseURL     string
	prefix      string
	serviceName string
	timeout     time.Duration
	apiKey      string
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultAPITimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of Zapallo API requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of Zapallo API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Transport.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.Transport.MaxIdleConns
	}
	if cfg.Transport.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = cfg.Transport.MaxIdleConnsPerHost
	}
	if cfg.Transport.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = cfg.Transport.IdleConnTimeout
	}

	return &Client{
		http:            &http.Client{Transport: transport},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		prefix:          normalizePrefix(cfg.Prefix),
		serviceName:     cfg.ServiceName,
		timeout:         timeout,
		apiKey:          cfg.APIKey,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	timeout time.Duration
	headers http.Header
	query   url.Values
}

// WithTimeout overrides the default timeout for one request.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithHeader sets a header on one request, replacing any default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// WithQuery adds query parameters. Empty values are skipped.
func WithQuery(values url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, vals := range values {
			for _, v := range vals {
				if v == "" {
					continue
				}
				if o.query == nil {
					o.query = make(url.Values)
				}
				o.query.Add(key, v)
			}
		}
	}
}

// Request sends body (JSON-encoded when non-nil) and decodes a JSON response
// into out (ignored when nil). A 204 or a non-JSON response decodes nothing.
// Every failure is an *APIError.
func (c *Client) Request(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	o := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = c.timeout
	}

	target := c.buildURL(path, o.query)

	var payload io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, target, payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	for key, vals := range o.headers {
		req.Header[key] = vals
	}

	resp, err := c.Do(reqCtx, req)
	if err != nil {
		return c.transportError(reqCtx, target, o.timeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.responseError(reqCtx, target, o.timeout, resp)
	}

	if err := decodeSuccess(resp, out); err != nil {
		if isDeadline(reqCtx) {
			return NewTimeoutError(target, o.timeout, err)
		}

		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

// Get issues a GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE. out is usually nil since the API answers 204.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do executes a prepared request through the circuit breaker with tracing,
// metrics and ID propagation. It returns transport errors unclassified;
// Request is the usual entry point.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	logger.Log(ctx, logging.LevelTrace, "sending request", slog.String("query", req.URL.RawQuery))

	resp, err := c.http.Do(req.WithContext(ctx))
	duration := time.Since(startTime)

	if err != nil {
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.ErrorContext(ctx, "request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.cb.RecordFailure()
	} else {
		c.cb.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration,
		fmt.Sprintf("%dxx", resp.StatusCode/httpStatusCategoryDivisor))

	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// ServiceName returns the name used for the API in logs and errors.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// Timeout returns the default per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) transportError(reqCtx context.Context, target string, timeout time.Duration, err error) error {
	if errors.Is(err, ErrCircuitOpen) {
		return NewNetworkError(target, err)
	}

	if isDeadline(reqCtx) {
		return NewTimeoutError(target, timeout, err)
	}

	return NewNetworkError(target, err)
}

func (c *Client) responseError(reqCtx context.Context, target string, timeout time.Duration, resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		if isDeadline(reqCtx) {
			return NewTimeoutError(target, timeout, err)
		}

		apiErr := NewAPIError(resp.StatusCode, "", nil)
		apiErr.Err = err

		return apiErr
	}

	parsed := parseErrorBody(resp.Header.Get("Content-Type"), raw)

	apiErr := NewAPIError(resp.StatusCode, parsed.message, parsed.data)
	apiErr.Fields = parsed.fields

	logging.FromContext(reqCtx).DebugContext(reqCtx, "api returned error",
		slog.String("downstream", c.serviceName),
		slog.Int("status", resp.StatusCode),
		slog.String("kind", apiErr.Kind.String()),
		slog.String("message", apiErr.Message),
	)

	return apiErr
}

// injectHeaders propagates the request and correlation IDs.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}
}

// buildURL joins base URL, prefix, path and query. The prefix is skipped when
// the path already carries it.
func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if c.prefix != "" && path != c.prefix && !strings.HasPrefix(path, c.prefix+"/") && !strings.HasPrefix(path, c.prefix+"?") {
		path = c.prefix + path
	}

	target := c.baseURL + path
	if len(query) == 0 {
		return target
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return target + sep + query.Encode()
}

// recordMetrics records request metrics.
func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}

	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	return prefix
}

func isDeadline(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
