package llm

import (
	"time"
)

// Config holds configuration for a generation provider.
type Config struct {
	// Name identifies this adapter instance in logs and spans.
	Name string `yaml:"name" mapstructure:"name"`

	// Dialect selects the provider mapping (e.g., "openai").
	// Must match a dialect registered via RegisterDialect.
	Dialect string `yaml:"dialect" mapstructure:"dialect"`

	// BaseURL is the provider's API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// APIKey is sent as a bearer token.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`

	// Model is the default model to use.
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature. Nil leaves it to
	// the provider; zero is a valid setting.
	Temperature *float64 `yaml:"temperature" mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`

	// MaxTokens is the default maximum tokens for responses. 0 means provider default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`

	// Timeout for a single call. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are additional HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// Float returns a pointer to v, for optional settings such as Temperature.
func Float(v float64) *float64 { return &v }

// ApplyDefaults sets default values for unset config fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Name == "" && c.Dialect != "" {
		c.Name = c.Dialect
	}
}
