package component

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/repronet/predict-gateway/logger"
	"github.com/repronet/predict-gateway/observability"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	status   observability.HealthStatus
	events   *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	*m.events = append(*m.events, "start:"+m.name)
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	*m.events = append(*m.events, "stop:"+m.name)
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) observability.Health {
	return observability.Health{Name: m.name, Status: m.status}
}

func newRegistry(t *testing.T, events *[]string, comps ...*mockComponent) *Registry {
	t.Helper()
	r := NewRegistry(logger.NewNop())
	for _, c := range comps {
		c.events = events
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.name, err)
		}
	}
	return r
}

func TestRegister_Duplicate(t *testing.T) {
	var events []string
	r := newRegistry(t, &events, &mockComponent{name: "backends"})
	if err := r.Register(&mockComponent{name: "backends", events: &events}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGetAndAll(t *testing.T) {
	var events []string
	r := newRegistry(t, &events, &mockComponent{name: "telemetry"}, &mockComponent{name: "http-server"})
	if r.Get("http-server") == nil || r.Get("missing") != nil {
		t.Error("Get returned the wrong component")
	}
	all := r.All()
	if len(all) != 2 || all[0].Name() != "telemetry" {
		t.Errorf("expected registration order, got %v", all)
	}
}

func TestStartStopOrder(t *testing.T) {
	var events []string
	r := newRegistry(t, &events,
		&mockComponent{name: "telemetry"},
		&mockComponent{name: "backends"},
		&mockComponent{name: "http-server"},
	)
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	want := "start:telemetry,start:backends,start:http-server,stop:http-server,stop:backends,stop:telemetry"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestStartAll_FailureStopsOnlyStarted(t *testing.T) {
	var events []string
	r := newRegistry(t, &events,
		&mockComponent{name: "telemetry"},
		&mockComponent{name: "http-server", startErr: errors.New("address in use")},
		&mockComponent{name: "never"},
	)
	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http-server") {
		t.Fatalf("expected start error naming http-server, got %v", err)
	}
	_ = r.StopAll(context.Background())
	want := "start:telemetry,start:http-server,stop:telemetry"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestStopAll_JoinsErrors(t *testing.T) {
	var events []string
	r := newRegistry(t, &events,
		&mockComponent{name: "a", stopErr: errors.New("a failed")},
		&mockComponent{name: "b", stopErr: errors.New("b failed")},
	)
	_ = r.StartAll(context.Background())
	err := r.StopAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	var events []string
	r := newRegistry(t, &events,
		&mockComponent{name: "backends", status: observability.HealthStatusDegraded},
		&mockComponent{name: "http-server", status: observability.HealthStatusUp},
	)
	h := r.HealthAll(context.Background())
	if len(h) != 2 || h[0].Status != observability.HealthStatusDegraded || h[1].Name != "http-server" {
		t.Errorf("unexpected health %+v", h)
	}
}
