package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/repronet/predict-gateway/resilience"
)

const contentTypeJSON = "application/json"

// Adapter sends requests to one backend. Every call passes through the
// optional circuit breaker, and the breaker-guarded call through the
// optional retry loop.
type Adapter struct {
	client *http.Client
	config Config
	cb     *resilience.CircuitBreaker
}

type Option func(*Adapter)

// WithHTTPClient replaces the *http.Client built from the config.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Adapter) { a.client = hc }
}

func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("httpclient %s: %w", cfg.Name, err)
	}

	a := &Adapter{
		client: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		config: cfg,
	}
	if cb := cfg.CircuitBreaker; cb != nil && cb.Enabled {
		bc := *cb
		if bc.Name == "" {
			bc.Name = cfg.Name
		}
		a.cb = resilience.NewCircuitBreaker(bc)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func newTransport(cfg Config) (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	tc, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tc != nil {
		t.TLSClientConfig = tc
	}
	return t, nil
}

// Do sends req and reads the whole answer. A non-2xx answer comes back
// together with its classified *Error.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	attempt := func() (*Response, error) {
		return resilience.Execute(a.cb, func() (*Response, error) {
			return a.send(ctx, req)
		})
	}
	if r := a.config.Retry; r != nil && r.Enabled() {
		return resilience.Retry(ctx, *r, attempt)
	}
	return attempt()
}

// Breaker is nil when circuit breaking is off.
func (a *Adapter) Breaker() *resilience.CircuitBreaker { return a.cb }

func (a *Adapter) Name() string   { return a.config.Name }
func (a *Adapter) Config() Config { return a.config }

// Close drops idle keep-alive connections.
func (a *Adapter) Close() { a.client.CloseIdleConnections() }

func (a *Adapter) send(ctx context.Context, req Request) (*Response, error) {
	hreq, err := a.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(hreq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: body}
	if statusErr := ClassifyStatusCode(resp.StatusCode, body); statusErr != nil {
		return out, statusErr
	}
	return out, nil
}

// transportError tells a cancelled caller from a deadline and from a
// connection failure.
func transportError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return NewCanceledError(err)
	}
	var ne net.Error
	timedOut := ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout())
	if timedOut {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

func (a *Adapter) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target, err := a.resolve(req)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("build url: %v", err))
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	for _, hs := range []map[string]string{a.config.Headers, req.Headers} {
		for k, v := range hs {
			hreq.Header.Set(k, v)
		}
	}
	if req.Body != nil && hreq.Header.Get("Content-Type") == "" {
		ct := req.ContentType
		if ct == "" {
			ct = contentTypeJSON
		}
		hreq.Header.Set("Content-Type", ct)
	}
	// A "Host" header entry is ignored by net/http.
	if req.Host != "" {
		hreq.Host = req.Host
	}
	return hreq, nil
}

// resolve joins req.Path to the base URL and merges req.Query into it.
func (a *Adapter) resolve(req Request) (string, error) {
	raw := req.Path
	absolute := strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
	if !absolute && a.config.BaseURL != "" {
		raw = strings.TrimRight(a.config.BaseURL, "/") + "/" + strings.TrimLeft(raw, "/")
	}
	if len(req.Query) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range req.Query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
