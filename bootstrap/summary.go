package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/repronet/predict-gateway/component"
	"github.com/repronet/predict-gateway/observability"
)

// Summary prints the startup banner: components, routes and live health.
type Summary struct {
	serviceName     string
	version         string
	environment     string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printing to stdout.
func NewSummary(serviceName, version, environment string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		environment: environment,
		out:         os.Stdout,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the banner, collecting descriptions, routes and health
// from the registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(w, "\n%s v%s started in %.2fs (%s mode)\n", s.serviceName, version, s.startupDuration.Seconds(), s.environment)
	if registry == nil {
		fmt.Fprintln(w)
		return
	}

	var routes []component.Route
	comps := registry.All()
	if len(comps) > 0 {
		fmt.Fprintf(w, "\nComponents\n")
	}
	for i, c := range comps {
		name, details := c.Name(), ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				name = desc.Name
			}
			details = desc.Details
		}
		if details != "" {
			fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(comps)), name, details)
		} else {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(comps)), name)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		fmt.Fprintf(w, "\nHealth\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)), healthIcon(h.Status), h.Name, h.Status, msg)
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status observability.HealthStatus) string {
	switch status {
	case observability.HealthStatusUp:
		return "✅"
	case observability.HealthStatusDegraded:
		return "⚠️"
	case observability.HealthStatusDown:
		return "❌"
	default:
		return "❓"
	}
}
