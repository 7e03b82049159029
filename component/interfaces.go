package component

import (
	"context"

	"github.com/repronet/predict-gateway/observability"
)

// Component is a lifecycle-managed part of the gateway.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) observability.Health
}

// Description is a one-line summary shown in the startup banner.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "server", "backend", "telemetry".
	Type    string
	Details string
	// Port is the primary port, 0 if not applicable.
	Port int
}

// Describable is optionally implemented by Components for the startup banner.
type Describable interface {
	Describe() Description
}

// Route is one registered HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by the server component.
type RouteProvider interface {
	Routes() []Route
}
