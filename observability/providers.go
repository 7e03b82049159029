package observability

import (
	"context"
	"errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Providers holds whichever SDK providers Setup installed.
type Providers struct {
	Tracer  *sdktrace.TracerProvider
	Meter   *sdkmetric.MeterProvider
	Metrics *Metrics
}

// Setup initializes the providers enabled in cfg. With metrics disabled the
// instruments are built on the global no-op meter.
func Setup(ctx context.Context, cfg Config, service, version, environment string) (*Providers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Providers{}
	if cfg.Tracing.Enabled {
		tp, err := InitTracer(ctx, cfg.TracerConfig(service, version, environment))
		if err != nil {
			return nil, err
		}
		p.Tracer = tp
	}
	if cfg.Metrics.Enabled {
		mp, err := InitMeter(ctx, cfg.MeterConfig(service, version, environment))
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		p.Meter = mp
	}

	metrics, err := NewMetrics(Meter(service))
	if err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	p.Metrics = metrics
	return p, nil
}

// Shutdown flushes and stops the installed providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
