package dashscope

import "time"

const (
	DefaultBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	// DefaultModel is the asynchronous long-audio file transcription model.
	DefaultModel   = "qwen3-asr-flash-filetrans"
	DefaultTimeout = 60 * time.Second
)

// Config holds DashScope settings. The environment names are
// DASHSCOPE_API_KEY and DASHSCOPE_API_BASE_URL.
type Config struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	APIBaseURL string        `yaml:"api_base_url" mapstructure:"api_base_url" validate:"omitempty,url"`
	Model      string        `yaml:"model" mapstructure:"model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}
