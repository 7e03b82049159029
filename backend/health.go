package backend

import (
	"context"

	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/resilience"
)

// CheckHealth reports the backend from the gateway's side: its circuit
// state. It makes no network call.
func (c *Client) CheckHealth(_ context.Context) observability.Health {
	h := observability.Health{
		Name:   c.endpoint.Name,
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"url": c.endpoint.URL(),
		},
	}
	cb := c.adapter.Breaker()
	if cb == nil {
		return h
	}
	state := cb.State()
	h.Details["circuit"] = state.String()
	switch state {
	case resilience.StateOpen:
		h.Status = observability.HealthStatusDown
		h.Message = "circuit open"
	case resilience.StateHalfOpen:
		h.Status = observability.HealthStatusDegraded
		h.Message = "circuit half-open"
	}
	return h
}
