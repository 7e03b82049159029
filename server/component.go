package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/repronet/predict-gateway/component"
	"github.com/repronet/predict-gateway/observability"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

var systemPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// Component adapts a Server to the component lifecycle.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the server.
func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

// Stop shuts the server down.
func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health reports the server as up once created.
func (c *Component) Health(context.Context) observability.Health {
	return observability.Health{Name: componentName, Status: observability.HealthStatusUp}
}

// Describe returns the banner line for the server.
func (c *Component) Describe() component.Description {
	cfg := c.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s timeout=%s body<=%s", c.server.Addr(), cfg.Timeout, cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}

// Routes lists the registered routes, API routes first.
func (c *Component) Routes() []component.Route {
	ginRoutes := c.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys, jSys := systemPaths[ginRoutes[i].Path], systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return ginRoutes[i].Method < ginRoutes[j].Method
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: handlerName(r.Handler),
		})
	}
	return routes
}

// handlerName shortens gin's handler path, e.g.
// "github.com/x/gateway.(*Handler).Predict-fm" becomes "Handler.Predict".
func handlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)
	if parts := strings.SplitN(name, ".", 2); len(parts) == 2 {
		name = parts[1]
	}
	if idx := strings.Index(name, ".func"); idx > 0 {
		name = name[:idx]
	}
	return name
}
