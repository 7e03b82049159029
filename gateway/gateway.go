package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/repronet/predict-gateway/backend"
	"github.com/repronet/predict-gateway/component"
	"github.com/repronet/predict-gateway/dispatch"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
)

const componentName = "backends"

// Gateway owns the backend clients and the dispatcher built over them. It
// is registered as the component that closes the clients on shutdown.
type Gateway struct {
	clients    []*backend.Client
	dispatcher *dispatch.Dispatcher
	handler    *Handler
	log        *logger.Logger
}

type options struct {
	metrics    *observability.Metrics
	log        *logger.Logger
	httpClient *http.Client
}

// Option customizes New.
type Option func(*options)

// WithMetrics records request and backend metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the base logger; each part tags it with its component.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithHTTPClient shares one *http.Client across all backends.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds a client per configured backend, in order, and the dispatcher
// over them. cfg must carry its defaults.
func New(cfg *Config, opts ...Option) (*Gateway, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger()
	}

	clients := make([]*backend.Client, 0, len(cfg.Backends))
	predictors := make([]dispatch.Predictor, 0, len(cfg.Backends))
	for _, ep := range cfg.Backends {
		copts := []backend.Option{
			backend.WithLogger(o.log.WithComponent("backend")),
			backend.WithMetrics(o.metrics),
			backend.WithCircuitBreaker(cfg.CircuitBreaker),
		}
		if cfg.Retry.Enabled() {
			copts = append(copts, backend.WithRetry(cfg.Retry))
		}
		if cfg.BackendTLS.Enabled() {
			copts = append(copts, backend.WithTLS(cfg.BackendTLS))
		}
		if o.httpClient != nil {
			copts = append(copts, backend.WithHTTPClient(o.httpClient))
		}
		c, err := backend.NewClient(ep, cfg.Routing, copts...)
		if err != nil {
			for _, built := range clients {
				built.Close()
			}
			return nil, fmt.Errorf("gateway: %w", err)
		}
		clients = append(clients, c)
		predictors = append(predictors, c)
	}

	d := dispatch.New(predictors,
		dispatch.WithLogger(o.log.WithComponent("dispatch")),
		dispatch.WithMetrics(o.metrics),
		dispatch.WithServiceName(cfg.Name),
	)
	log := o.log.WithComponent("gateway")
	return &Gateway{
		clients:    clients,
		dispatcher: d,
		handler:    NewHandler(d, log),
		log:        log,
	}, nil
}

// Dispatcher returns the dispatcher serving the handlers.
func (g *Gateway) Dispatcher() *dispatch.Dispatcher { return g.dispatcher }

// Handler returns the HTTP handler.
func (g *Gateway) Handler() *Handler { return g.handler }

// RegisterRoutes mounts the prediction routes on r.
func (g *Gateway) RegisterRoutes(r gin.IRoutes) { g.handler.Register(r) }

// HealthCheckers returns one checker per backend, in configured order.
func (g *Gateway) HealthCheckers() []observability.HealthChecker {
	checkers := make([]observability.HealthChecker, len(g.clients))
	for i, c := range g.clients {
		checkers[i] = c
	}
	return checkers
}

// Name implements component.Component.
func (g *Gateway) Name() string { return componentName }

// Start logs the backend table. Clients connect lazily.
func (g *Gateway) Start(context.Context) error {
	for _, c := range g.clients {
		ep := c.Endpoint()
		g.log.Info("Backend configured", logger.Fields(
			"backend", ep.Name,
			"url", ep.URL(),
			"timeout", ep.Timeout.String(),
		))
	}
	return nil
}

// Stop closes idle backend connections.
func (g *Gateway) Stop(context.Context) error {
	for _, c := range g.clients {
		c.Close()
	}
	return nil
}

// Health folds the backend checks into one component entry. The gateway
// is down only when every backend is.
func (g *Gateway) Health(ctx context.Context) observability.Health {
	h := observability.Health{
		Name:    componentName,
		Status:  observability.HealthStatusUp,
		Details: make(map[string]string, len(g.clients)),
	}
	var notUp []string
	for _, c := range g.clients {
		ch := c.CheckHealth(ctx)
		h.Details[ch.Name] = string(ch.Status)
		if ch.Status != observability.HealthStatusUp {
			notUp = append(notUp, ch.Name)
		}
	}
	switch {
	case len(g.clients) == 0:
		h.Status = observability.HealthStatusDown
		h.Message = "no backends configured"
	case len(notUp) == len(g.clients):
		h.Status = observability.HealthStatusDown
		h.Message = "all backends unavailable"
	case len(notUp) > 0:
		h.Status = observability.HealthStatusDegraded
		h.Message = "unavailable: " + strings.Join(notUp, ", ")
	}
	return h
}

// Describe implements component.Describable.
func (g *Gateway) Describe() component.Description {
	names := make([]string, len(g.clients))
	for i, c := range g.clients {
		names[i] = c.Name()
	}
	return component.Description{
		Name:    "Backends",
		Type:    "backend",
		Details: strings.Join(names, ", "),
	}
}
