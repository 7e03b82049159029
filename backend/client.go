package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/httpclient"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/predict"
	"github.com/repronet/predict-gateway/resilience"
	"github.com/repronet/predict-gateway/security"
)

// Client sends prediction requests to one backend.
type Client struct {
	endpoint Endpoint
	routing  Routing
	adapter  *httpclient.Adapter
	metrics  *observability.Metrics
	log      *logger.Logger
}

type clientOptions struct {
	retry      *resilience.RetryConfig
	breaker    *resilience.CircuitBreakerConfig
	metrics    *observability.Metrics
	log        *logger.Logger
	httpClient *http.Client
	tls        *security.TLSConfig
}

// Option customizes a Client.
type Option func(*clientOptions)

// WithRetry retries retryable failures up to maxAttempts in total.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(o *clientOptions) {
		r := httpclient.DefaultRetryConfig(cfg.MaxAttempts)
		if cfg.InitialBackoff > 0 {
			r.InitialBackoff = cfg.InitialBackoff
		}
		if cfg.MaxBackoff > 0 {
			r.MaxBackoff = cfg.MaxBackoff
		}
		if cfg.BackoffFactor > 0 {
			r.BackoffFactor = cfg.BackoffFactor
		}
		r.Jitter = cfg.Jitter
		o.retry = r
	}
}

// WithCircuitBreaker guards the backend with a breaker. A disabled config
// is ignored.
func WithCircuitBreaker(cfg resilience.CircuitBreakerConfig) Option {
	return func(o *clientOptions) {
		if !cfg.Enabled {
			return
		}
		cb := httpclient.DefaultCircuitBreakerConfig(cfg.Name)
		cb.MaxFailures = cfg.MaxFailures
		cb.Timeout = cfg.Timeout
		cb.HalfOpenMaxCalls = cfg.HalfOpenMaxCalls
		cb.OnStateChange = cfg.OnStateChange
		cb.ApplyDefaults()
		o.breaker = cb
	}
}

// WithMetrics records backend call metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithTLS sets the client TLS settings for an https backend.
func WithTLS(cfg security.TLSConfig) Option {
	return func(o *clientOptions) { o.tls = &cfg }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// NewClient creates a client for ep. The endpoint must already carry its
// defaults.
func NewClient(ep Endpoint, routing Routing, opts ...Option) (*Client, error) {
	if err := ep.Validate(); err != nil {
		return nil, err
	}
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.WithComponent("backend")
	}

	cfg := httpclient.Config{
		Name:           ep.Name,
		Timeout:        ep.Timeout,
		Retry:          o.retry,
		CircuitBreaker: o.breaker,
		TLS:            o.tls,
	}
	if cfg.CircuitBreaker != nil {
		cfg.CircuitBreaker.Name = ep.Name
	}
	var adapterOpts []httpclient.Option
	if o.httpClient != nil {
		adapterOpts = append(adapterOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	adapter, err := httpclient.New(cfg, adapterOpts...)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", ep.Name, err)
	}

	return &Client{
		endpoint: ep,
		routing:  routing,
		adapter:  adapter,
		metrics:  o.metrics,
		log:      o.log.WithFields(map[string]interface{}{"backend": ep.Name}),
	}, nil
}

// Name returns the backend name.
func (c *Client) Name() string { return c.endpoint.Name }

// Endpoint returns the endpoint the client is bound to.
func (c *Client) Endpoint() Endpoint { return c.endpoint }

// Close releases idle connections.
func (c *Client) Close() { c.adapter.Close() }

// Predict sends req to the backend and returns its JSON answer. Any failure
// is a *predict.BackendError.
func (c *Client) Predict(ctx context.Context, req *predict.Request) (predict.Result, error) {
	mode := req.Mode().String()
	ctx, span := observability.StartSpan(ctx, observability.SpanBackendCall,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrBackend, c.endpoint.Name),
			attribute.String(observability.AttrMode, mode),
			attribute.String(observability.AttrLanguage, req.Language),
			attribute.Int(observability.AttrBatchSize, req.Size()),
		))
	defer span.End()

	start := time.Now()
	result, err := c.call(ctx, req)
	duration := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = string(err.Code)
		if err.UpstreamStatus != 0 {
			span.SetAttributes(attribute.Int(observability.AttrUpstreamStatus, err.UpstreamStatus))
		}
		observability.SetSpanError(span, err)
		c.metrics.RecordError(ctx, outcome, "backend")
		c.log.WithContext(ctx).Warn("backend call failed", logger.Fields(
			"code", outcome,
			"upstream_status", err.UpstreamStatus,
			"duration_ms", duration.Milliseconds(),
			"error", err.Message,
		))
		c.metrics.RecordBackendCall(ctx, c.endpoint.Name, mode, outcome, duration)
		return nil, err
	}
	c.metrics.RecordBackendCall(ctx, c.endpoint.Name, mode, outcome, duration)
	return result, nil
}

func (c *Client) call(ctx context.Context, req *predict.Request) (predict.Result, *predict.BackendError) {
	resp, err := c.adapter.Do(ctx, c.buildRequest(req))
	if resp != nil {
		c.log.WithContext(ctx).Debug("backend status", logger.Fields(
			"status", resp.StatusCode,
			"bytes", len(resp.Body),
		))
	}
	if err != nil {
		return nil, c.backendError(err)
	}
	return passThrough(resp), nil
}

func (c *Client) buildRequest(req *predict.Request) httpclient.Request {
	hreq := httpclient.Request{
		Path: c.endpoint.URL(),
		Host: c.routing.Host(c.endpoint.ShortName, req.Language),
		Headers: map[string]string{
			"Accept": "application/json",
		},
	}
	if req.Mode() == predict.ModeSingle {
		hreq.Method = http.MethodGet
		hreq.Query = map[string]string{
			"input":    req.Input,
			"language": req.Language,
			"beam":     strconv.Itoa(req.Beam),
		}
		return hreq
	}

	payload := predict.BatchPayload{
		Batch:    req.Batch,
		Language: req.Language,
		Beam:     req.Beam,
	}
	hreq.Method = http.MethodPost
	hreq.Body = payload.Encode()
	return hreq
}

// backendError maps an adapter failure to the backend error codes.
func (c *Client) backendError(err error) *predict.BackendError {
	name := c.endpoint.Name
	status := httpclient.StatusCodeOf(err)

	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return predict.NewBackendError(name, errors.ErrCodeBackendUnavailable, 0, err)
	}
	var httpErr *httpclient.Error
	if !stderrors.As(err, &httpErr) {
		return predict.NewBackendError(name, errors.ErrCodeBackendError, status, err)
	}

	var code errors.ErrorCode
	switch httpErr.Code {
	case httpclient.ErrCodeTimeout, httpclient.ErrCodeCanceled:
		code = errors.ErrCodeBackendTimeout
	case httpclient.ErrCodeConnection, httpclient.ErrCodeRateLimit:
		code = errors.ErrCodeBackendUnavailable
	case httpclient.ErrCodeRejected:
		code = errors.ErrCodeBackendRejected
	default:
		code = errors.ErrCodeBackendError
	}
	return predict.NewBackendError(name, code, status, err)
}

// passThrough returns a JSON body untouched and wraps anything else as a
// JSON string.
func passThrough(resp *httpclient.Response) predict.Result {
	if len(resp.Body) > 0 && json.Valid(resp.Body) {
		return predict.Result(resp.Body)
	}
	wrapped, _ := json.Marshal(string(resp.Body))
	return predict.Result(wrapped)
}
