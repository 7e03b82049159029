package dispatch

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/predict"
)

// Dispatcher maps a model selector to a backend or to the aggregator.
type Dispatcher struct {
	routes     map[string]Predictor
	aggregator *Aggregator
	service    string
	metrics    *observability.Metrics
	log        *logger.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics records request metrics per dispatch.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithServiceName sets the service name on dispatch spans.
func WithServiceName(name string) Option {
	return func(d *Dispatcher) { d.service = name }
}

// New creates a dispatcher routing each canonical model name to the backend
// of that name. The aggregator calls backends in the given order.
func New(backends []Predictor, opts ...Option) *Dispatcher {
	d := &Dispatcher{routes: make(map[string]Predictor, len(backends))}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.WithComponent("dispatch")
	}
	for _, b := range backends {
		d.routes[b.Name()] = b
	}
	d.aggregator = NewAggregator(backends, d.log)
	return d
}

// Aggregator returns the aggregator used for the "all" model.
func (d *Dispatcher) Aggregator() *Aggregator { return d.aggregator }

// Dispatch runs req and always returns an envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req *predict.Request) predict.Envelope {
	op := observability.NewOperation(d.service, "predict",
		logger.RequestIDFromContext(ctx), req.Model, d.metrics)
	ctx, span := op.Start(ctx, observability.SpanDispatch)
	span.SetAttributes(
		attribute.String(observability.AttrMode, req.Mode().String()),
		attribute.String(observability.AttrLanguage, req.Language),
		attribute.Int(observability.AttrBatchSize, req.Size()),
	)

	data, err := d.route(ctx, req)
	env := predict.OK(data)
	if err != nil {
		env = predict.FromError(err)
	}
	op.End(ctx, span, env.Status, err)

	d.log.WithContext(ctx).Debug("dispatched", logger.Fields(
		"model", req.Model,
		"status", env.Status,
		"duration_ms", op.Elapsed().Milliseconds(),
	))
	return env
}

func (d *Dispatcher) route(ctx context.Context, req *predict.Request) (any, error) {
	model, ok := predict.CanonicalModel(req.Model)
	if !ok {
		return nil, errors.UndefinedModel(req.Model)
	}
	routed := *req
	routed.Model = model

	if model == predict.ModelAll {
		result, err := d.aggregator.All(ctx, &routed)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	b, ok := d.routes[model]
	if !ok {
		return nil, errors.UndefinedModel(req.Model)
	}
	res, err := b.Predict(ctx, &routed)
	if err != nil {
		return nil, asBackendError(b.Name(), err)
	}
	return res, nil
}

// StatusOf is a helper for callers that only need the HTTP status.
func StatusOf(env predict.Envelope) int {
	if env.Status == 0 {
		return http.StatusInternalServerError
	}
	return env.Status
}
