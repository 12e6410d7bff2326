package httpclient

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResponseBytes fits the transcript of a multi-hour recording.
	DefaultMaxResponseBytes int64 = 64 << 20
)

// Config configures a Client for one remote service.
type Config struct {
	// Name identifies the service in errors and spans.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is joined with relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Token is sent as a bearer token on every request that does not set
	// Request.Anonymous.
	Token string `yaml:"-" mapstructure:"-"`

	// Headers are sent on every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
}

// Validate checks the timeout and, when set, that BaseURL is absolute.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("httpclient: %s: base url %q is not absolute", c.Name, c.BaseURL)
	}
	return nil
}
