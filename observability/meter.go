package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/repronet/predict-gateway/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the gateway's instruments. A nil *Metrics records nothing.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	backendTotal    metric.Int64Counter
	backendDuration metric.Float64Histogram
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.requestTotal, err = meter.Int64Counter("gateway.request.total",
		metric.WithDescription("Prediction requests by model and status")); err != nil {
		return nil, fmt.Errorf("creating gateway.request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("gateway.request.duration",
		metric.WithDescription("Prediction request duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating gateway.request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("gateway.request.active",
		metric.WithDescription("Prediction requests in flight")); err != nil {
		return nil, fmt.Errorf("creating gateway.request.active counter: %w", err)
	}
	if m.backendTotal, err = meter.Int64Counter("gateway.backend.call.total",
		metric.WithDescription("Backend calls by backend, mode and outcome")); err != nil {
		return nil, fmt.Errorf("creating gateway.backend.call.total counter: %w", err)
	}
	if m.backendDuration, err = meter.Float64Histogram("gateway.backend.call.duration",
		metric.WithDescription("Backend call duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating gateway.backend.call.duration histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("gateway.error.total",
		metric.WithDescription("Errors by code and component")); err != nil {
		return nil, fmt.Errorf("creating gateway.error.total counter: %w", err)
	}
	return &m, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd records a finished prediction request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, model string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
	))
}

// RecordBackendCall records one backend call. outcome is "ok" or an error code.
func (m *Metrics) RecordBackendCall(ctx context.Context, backend, mode, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
	m.backendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("mode", mode),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
