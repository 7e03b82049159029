package backend

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Endpoint describes one inference backend. It is read-only after startup.
type Endpoint struct {
	// Name is the canonical model name, also the aggregate result key.
	Name string `yaml:"name" mapstructure:"name"`
	// ShortName is used in the routing host, for example "phs".
	ShortName string `yaml:"short_name" mapstructure:"short_name"`
	// BaseURL is the scheme and authority of the backend.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Path is the prediction route on the backend.
	Path string `yaml:"path" mapstructure:"path"`
	// Timeout bounds one call. Zero uses the gateway timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero values.
func (e *Endpoint) ApplyDefaults(defaultTimeout time.Duration) {
	if e.ShortName == "" {
		e.ShortName = e.Name
	}
	if e.Path == "" {
		e.Path = "/predict"
	}
	if e.Timeout <= 0 {
		e.Timeout = defaultTimeout
	}
}

// Validate checks the endpoint after ApplyDefaults.
func (e *Endpoint) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("backend: name is required")
	}
	u, err := url.Parse(e.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend %s: base_url must be an absolute http(s) URL, got %q", e.Name, e.BaseURL)
	}
	return nil
}

// URL returns the full prediction URL.
func (e *Endpoint) URL() string {
	return strings.TrimRight(e.BaseURL, "/") + "/" + strings.TrimLeft(e.Path, "/")
}

// Routing derives the Host header an ingress uses to pick the backend
// deployment for a language.
type Routing struct {
	// Prefix starts every routed host name.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	// DomainSuffix ends every routed host name. Empty disables routing.
	DomainSuffix string `yaml:"domain_suffix" mapstructure:"domain_suffix"`
}

// Enabled reports whether a Host header is sent.
func (r Routing) Enabled() bool {
	return r.DomainSuffix != ""
}

// Host returns <prefix>-<short>-<language>.<suffix>, or "" when routing is
// disabled.
func (r Routing) Host(shortName, language string) string {
	if !r.Enabled() {
		return ""
	}
	parts := make([]string, 0, 3)
	if r.Prefix != "" {
		parts = append(parts, r.Prefix)
	}
	parts = append(parts, shortName, language)
	return strings.Join(parts, "-") + "." + strings.TrimLeft(r.DomainSuffix, ".")
}
