package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation follows one prediction request from dispatch to envelope. It
// owns the dispatch span and the request metrics.
type Operation struct {
	Service   string
	Name      string
	RequestID string
	Model     string
	Started   time.Time

	metrics *Metrics
}

// NewOperation starts the clock for a request. metrics may be nil.
func NewOperation(service, name, requestID, model string, metrics *Metrics) *Operation {
	return &Operation{
		Service:   service,
		Name:      name,
		RequestID: requestID,
		Model:     model,
		Started:   time.Now(),
		metrics:   metrics,
	}
}

type operationKey struct{}

// OperationFrom returns the operation stored by Start, or nil.
func OperationFrom(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}

func (op *Operation) attributes() []attribute.KeyValue {
	kv := []attribute.KeyValue{
		attribute.String(AttrServiceName, op.Service),
		attribute.String(AttrOperationName, op.Name),
		attribute.String(AttrModel, op.Model),
	}
	if op.RequestID != "" {
		kv = append(kv, attribute.String(AttrRequestID, op.RequestID))
	}
	return kv
}

// Start opens the span, stores op in the returned context and counts the
// request as in flight.
func (op *Operation) Start(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(op.attributes()...))
	op.metrics.RecordRequestStart(ctx)
	return context.WithValue(ctx, operationKey{}, op), span
}

// End records the envelope status on the span and in the metrics, then
// closes the span.
func (op *Operation) End(ctx context.Context, span trace.Span, status int, err error) {
	elapsed := op.Elapsed()
	SetSpanError(span, err)
	span.SetAttributes(
		attribute.Int(AttrStatus, status),
		attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
	)
	span.End()
	op.metrics.RecordRequestEnd(ctx, op.Model, status, elapsed)
}

func (op *Operation) Elapsed() time.Duration { return time.Since(op.Started) }
