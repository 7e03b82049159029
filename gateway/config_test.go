package gateway

import (
	"strings"
	"testing"
	"time"

	"github.com/repronet/predict-gateway/backend"
	"github.com/repronet/predict-gateway/config"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != DefaultServiceName || cfg.Environment != config.EnvDevelopment {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if len(cfg.Backends) != 2 {
		t.Fatalf("expected 2 default backends, got %d", len(cfg.Backends))
	}
	phs, trf := cfg.Backends[0], cfg.Backends[1]
	if phs.Name != "phonetisaurus" || phs.ShortName != "phs" || phs.BaseURL != "http://localhost:5001" {
		t.Errorf("unexpected first backend %+v", phs)
	}
	if trf.Name != "transformer" || trf.ShortName != "trf" || trf.BaseURL != "http://localhost:5002" {
		t.Errorf("unexpected second backend %+v", trf)
	}
	if phs.Path != "/predict" || phs.Timeout != 300*time.Second {
		t.Errorf("expected /predict with the server timeout, got %+v", phs)
	}
	if cfg.Retry.MaxAttempts != 1 || cfg.Retry.Enabled() {
		t.Errorf("retries must be off by default, got %+v", cfg.Retry)
	}
	if cfg.CircuitBreaker.Enabled {
		t.Error("circuit breaker must be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestConfig_ProfileAppliedOnce(t *testing.T) {
	cfg := Config{
		ServiceConfig: config.ServiceConfig{Name: "gw", Environment: config.EnvProduction},
		Profiles: map[string]Profile{
			config.EnvDevelopment: {BaseURLs: map[string]string{"phonetisaurus": "http://dev:1"}},
			config.EnvProduction: {
				BaseURLs: map[string]string{"phonetisaurus": "http://phs.internal"},
				Routing:  backend.Routing{DomainSuffix: "models.example.com"},
			},
		},
	}
	cfg.ApplyDefaults()

	if got := cfg.Backends[0].BaseURL; got != "http://phs.internal" {
		t.Errorf("expected production URL, got %q", got)
	}
	if got := cfg.Backends[1].BaseURL; got != "http://localhost:5002" {
		t.Errorf("backend without override must keep its URL, got %q", got)
	}
	if got := cfg.Routing.Host("phs", "rus"); got != "phs-rus.models.example.com" {
		t.Errorf("unexpected routed host %q", got)
	}

	cfg.Backends[0].BaseURL = "http://override"
	cfg.ApplyDefaults()
	if got := cfg.Backends[0].BaseURL; got != "http://override" {
		t.Errorf("profile must be applied once, got %q", got)
	}
}

func TestConfig_UnknownEnvironmentProfileIgnored(t *testing.T) {
	cfg := Config{
		ServiceConfig: config.ServiceConfig{Environment: config.EnvStaging},
		Profiles: map[string]Profile{
			config.EnvProduction: {BaseURLs: map[string]string{"phonetisaurus": "http://prod"}},
		},
	}
	cfg.ApplyDefaults()
	if got := cfg.Backends[0].BaseURL; got != "http://localhost:5001" {
		t.Errorf("expected default URL, got %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantText string
	}{
		{"duplicate backend", func(c *Config) {
			c.Backends = append(c.Backends, backend.Endpoint{Name: "transformer", BaseURL: "http://x"})
		}, "duplicate"},
		{"alias as name", func(c *Config) { c.Backends[0].Name = "phs" }, "reserved"},
		{"all as name", func(c *Config) { c.Backends[1].Name = "all" }, "reserved"},
		{"relative url", func(c *Config) { c.Backends[0].BaseURL = "localhost:5001" }, "base_url"},
		{"tls cert without key", func(c *Config) { c.BackendTLS.CertFile = "client.pem" }, "together"},
		{"bad jitter", func(c *Config) { c.Retry.Jitter = 2 }, "jitter"},
		{"bad sample rate", func(c *Config) { c.Observability.Tracing.SampleRate = 3 }, "sample_rate"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("expected %q in %q", tt.wantText, err.Error())
			}
		})
	}
}

func TestLoadConfig_GatewayFile(t *testing.T) {
	path := t.TempDir() + "/config.yml"
	writeConfig(t, path, `
name: predict-gateway
environment: production
server:
  port: 3100
  timeout: 60s
backends:
  - name: phonetisaurus
    short_name: phs
    base_url: http://localhost:5001
  - name: transformer
    short_name: trf
    base_url: http://localhost:5002
profiles:
  production:
    base_urls:
      transformer: http://trf.internal:80
    routing:
      prefix: g2p
      domain_suffix: svc.example.com
circuit_breaker:
  enabled: true
  max_failures: 3
`)
	var cfg Config
	if err := config.LoadConfig("predict-gateway", &cfg, config.WithConfigFile(path), config.WithEnvFile("/nonexistent/.env")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Server.Port != 3100 || cfg.Backends[1].Timeout != 60*time.Second {
		t.Errorf("unexpected server/backend timeout: port=%d timeout=%s", cfg.Server.Port, cfg.Backends[1].Timeout)
	}
	if cfg.Backends[1].BaseURL != "http://trf.internal:80" {
		t.Errorf("expected production transformer URL, got %q", cfg.Backends[1].BaseURL)
	}
	if got := cfg.Routing.Host("trf", "jpn"); got != "g2p-trf-jpn.svc.example.com" {
		t.Errorf("unexpected routed host %q", got)
	}
	if !cfg.CircuitBreaker.Enabled || cfg.CircuitBreaker.MaxFailures != 3 {
		t.Errorf("unexpected breaker config %+v", cfg.CircuitBreaker)
	}
}
