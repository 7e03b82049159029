package dispatch

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/repronet/predict-gateway/errors"
	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/predict"
)

// Predictor is one backend as seen by the dispatcher. *backend.Client
// implements it.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, req *predict.Request) (predict.Result, error)
}

// Aggregator fans a request out to an ordered list of backends.
type Aggregator struct {
	backends []Predictor
	log      *logger.Logger
}

// NewAggregator creates an aggregator over backends. Adding a backend is a
// matter of passing one more Predictor.
func NewAggregator(backends []Predictor, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.WithComponent("dispatch")
	}
	return &Aggregator{backends: backends, log: log}
}

// Backends returns the backend names in configuration order.
func (a *Aggregator) Backends() []string {
	names := make([]string, len(a.backends))
	for i, b := range a.backends {
		names[i] = b.Name()
	}
	return names
}

// All calls every backend with req and returns once each call has settled.
// Each backend gets its own key, holding either its result or its error.
// The only error returned is the one for an empty backend list.
func (a *Aggregator) All(ctx context.Context, req *predict.Request) (predict.AggregateResult, error) {
	if len(a.backends) == 0 {
		return nil, errors.NoBackends()
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanAggregate)
	defer span.End()
	span.SetAttributes(attribute.Int("backend.count", len(a.backends)))

	outcomes := make([]predict.Outcome, len(a.backends))
	var wg sync.WaitGroup
	for i, b := range a.backends {
		wg.Add(1)
		go func(i int, b Predictor) {
			defer wg.Done()
			outcomes[i] = call(ctx, b, req)
		}(i, b)
	}
	wg.Wait()

	result := make(predict.AggregateResult, len(a.backends))
	for i, b := range a.backends {
		result[b.Name()] = outcomes[i]
	}

	if failed := result.Failed(); len(failed) > 0 {
		span.SetAttributes(attribute.StringSlice("backend.failed", failed))
		a.log.WithContext(ctx).Warn("aggregate prediction partially failed", logger.Fields(
			"failed", failed,
			"backends", len(a.backends),
		))
	}
	return result, nil
}

// call runs one backend and folds every failure, panics included, into an
// Outcome.
func call(ctx context.Context, b Predictor, req *predict.Request) (out predict.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = predict.Outcome{Err: predict.NewBackendError(b.Name(), errors.ErrCodeBackendError, 0,
				fmt.Errorf("panic: %v", r))}
		}
	}()

	res, err := b.Predict(ctx, req)
	if err != nil {
		return predict.Outcome{Err: asBackendError(b.Name(), err)}
	}
	return predict.Outcome{Result: res}
}

func asBackendError(name string, err error) *predict.BackendError {
	var be *predict.BackendError
	if stderrors.As(err, &be) {
		return be
	}
	code := errors.ErrCodeBackendError
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		code = errors.ErrCodeBackendTimeout
	}
	return predict.NewBackendError(name, code, 0, err)
}
