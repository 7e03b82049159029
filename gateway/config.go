package gateway

import (
	"fmt"

	"github.com/repronet/predict-gateway/backend"
	"github.com/repronet/predict-gateway/config"
	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/predict"
	"github.com/repronet/predict-gateway/resilience"
	"github.com/repronet/predict-gateway/security"
	"github.com/repronet/predict-gateway/server"
	"github.com/repronet/predict-gateway/validation"
)

// DefaultServiceName is used when the config names no service.
const DefaultServiceName = "predict-gateway"

// Config is the gateway's configuration file.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server         server.Config                   `yaml:"server" mapstructure:"server"`
	Backends       []backend.Endpoint              `yaml:"backends" mapstructure:"backends"`
	Routing        backend.Routing                 `yaml:"routing" mapstructure:"routing"`
	BackendTLS     security.TLSConfig              `yaml:"backend_tls" mapstructure:"backend_tls"`
	Profiles       map[string]Profile              `yaml:"profiles" mapstructure:"profiles"`
	Retry          resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	CircuitBreaker resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Observability  observability.Config            `yaml:"observability" mapstructure:"observability"`

	profileApplied bool
}

// Profile overrides backend locations for one environment.
type Profile struct {
	// BaseURLs maps a backend name to its base URL.
	BaseURLs map[string]string `yaml:"base_urls" mapstructure:"base_urls"`
	Routing  backend.Routing   `yaml:"routing" mapstructure:"routing"`
}

// DefaultBackends returns the two local backends.
func DefaultBackends() []backend.Endpoint {
	return []backend.Endpoint{
		{Name: predict.ModelPhonetisaurus, ShortName: predict.AliasPhonetisaurus, BaseURL: "http://localhost:5001"},
		{Name: predict.ModelTransformer, ShortName: predict.AliasTransformer, BaseURL: "http://localhost:5002"},
	}
}

// ApplyDefaults fills zero values and applies the environment's profile.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if len(c.Backends) == 0 {
		c.Backends = DefaultBackends()
	}
	c.applyProfile()
	for i := range c.Backends {
		c.Backends[i].ApplyDefaults(c.Server.Timeout)
	}
	c.Retry.ApplyDefaults()
	c.CircuitBreaker.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

func (c *Config) applyProfile() {
	if c.profileApplied {
		return
	}
	c.profileApplied = true

	p, ok := c.Profiles[c.Environment]
	if !ok {
		return
	}
	for i := range c.Backends {
		if u, ok := p.BaseURLs[c.Backends[i].Name]; ok && u != "" {
			c.Backends[i].BaseURL = u
		}
	}
	if p.Routing.Prefix != "" {
		c.Routing.Prefix = p.Routing.Prefix
	}
	if p.Routing.DomainSuffix != "" {
		c.Routing.DomainSuffix = p.Routing.DomainSuffix
	}
}

// Validate checks the configuration after ApplyDefaults.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}

	v := validation.New()
	v.Custom(len(c.Backends) > 0, "backends", "at least one backend is required")
	seen := make(map[string]bool, len(c.Backends))
	for i := range c.Backends {
		ep := &c.Backends[i]
		field := fmt.Sprintf("backends[%d]", i)
		v.Unique(field+".name", ep.Name, seen)
		v.Custom(!reservedName(ep.Name), field+".name",
			fmt.Sprintf("%q is reserved for model selection", ep.Name))
		if err := ep.Validate(); err != nil {
			v.AddError(field, err.Error())
		}
	}
	if err := c.BackendTLS.Validate(); err != nil {
		v.AddError("backend_tls", err.Error())
	}
	if err := c.Retry.Validate(); err != nil {
		v.AddError("retry", err.Error())
	}
	if err := c.Observability.Validate(); err != nil {
		v.AddError("observability", err.Error())
	}
	return v.Err()
}

// reservedName reports model values that cannot name a backend: "all"
// and the shorthand aliases.
func reservedName(name string) bool {
	canonical, ok := predict.CanonicalModel(name)
	return ok && (canonical == predict.ModelAll || canonical != name)
}
