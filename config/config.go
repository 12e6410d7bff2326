package config

import (
	"fmt"
	"time"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/llm"
	"github.com/kbukum/longscribe/llm/gemini"
	"github.com/kbukum/longscribe/llm/openai"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/storage"
	"github.com/kbukum/longscribe/transcription/dashscope"
	"github.com/kbukum/longscribe/validation"
)

// ServiceName is the default service name and the config search key.
const ServiceName = "longscribe"

// Generator names.
const (
	GeneratorOpenAI = "openai"
	GeneratorGemini = "gemini"
)

// Config is the complete longscribe configuration.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Generator selects the text generation backend.
	Generator string `yaml:"generator" mapstructure:"generator" validate:"oneof=openai gemini"`

	DashScope dashscope.Config `yaml:"dashscope" mapstructure:"dashscope"`
	OpenAI    llm.Config       `yaml:"openai" mapstructure:"openai"`
	Gemini    llm.Config       `yaml:"gemini" mapstructure:"gemini"`

	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`

	// Storage is the backend used to stage local audio files.
	Storage storage.Config `yaml:"storage" mapstructure:"storage"`

	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// PipelineConfig tunes segmentation, memory and transcription polling.
type PipelineConfig struct {
	SegmentMinutes float64       `yaml:"segment_minutes" mapstructure:"segment_minutes" validate:"gt=0"`
	Segments       int           `yaml:"segments" mapstructure:"segments" validate:"min=1"`
	Language       string        `yaml:"language" mapstructure:"language"`
	MaxMemoryChars int           `yaml:"max_memory_chars" mapstructure:"max_memory_chars" validate:"min=1"`
	SummaryCap     int           `yaml:"summary_cap" mapstructure:"summary_cap" validate:"min=1"`
	TailSentences  int           `yaml:"tail_sentences" mapstructure:"tail_sentences" validate:"min=1"`
	Temperature    *float64      `yaml:"temperature" mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
	PollInterval   time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gt=0"`
	MaxPoll        int           `yaml:"max_poll" mapstructure:"max_poll" validate:"min=1"`
	Template       string        `yaml:"template" mapstructure:"template" validate:"required"`
	// Glossary lists known domain terms, offered to the generator and used
	// for term candidates.
	Glossary []string `yaml:"glossary" mapstructure:"glossary"`
}

// SegmentTarget returns the target segment length.
func (p PipelineConfig) SegmentTarget() time.Duration {
	return time.Duration(p.SegmentMinutes * float64(time.Minute))
}

// OutputConfig controls where and what is written.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir" validate:"required"`
	PromptDir string `yaml:"prompt_dir" mapstructure:"prompt_dir" validate:"required"`
	// Docx additionally writes final_package.docx.
	Docx bool `yaml:"docx" mapstructure:"docx"`
	// Derive lists prompt templates rendered after assembly.
	Derive []string `yaml:"derive" mapstructure:"derive"`
	// Mirror also copies artifacts to the configured storage under
	// runs/<run-id>/.
	Mirror bool `yaml:"mirror" mapstructure:"mirror"`
}

// Defaults.
const (
	DefaultSegmentMinutes = 20
	DefaultSegments       = 6
	DefaultLanguage       = "zh"
	DefaultMaxMemoryChars = 1200
	DefaultSummaryCap     = 4000
	DefaultTailSentences  = 3
	DefaultTemperature    = 0.2
	DefaultPollInterval   = 3 * time.Second
	DefaultMaxPoll        = 120
	DefaultTemplate       = "segment_context_loop.md"
	DefaultOutputDir      = "outputs/long_audio"
	DefaultPromptDir      = "prompts"
)

// EnvAliases binds environment variable names that do not follow the
// nested key convention.
var EnvAliases = map[string]string{
	"NEXT_PUBLIC_SUPABASE_URL":      "storage.url",
	"SUPABASE_URL":                  "storage.url",
	"SUPABASE_SERVICE_ROLE_KEY":     "storage.secret_key",
	"SUPABASE_STORAGE_BUCKET_AUDIO": "storage.bucket",
	"OTEL_EXPORTER_OTLP_ENDPOINT":   "telemetry.endpoint",
}

// Load reads configuration from files and the environment, then applies
// defaults. It does not validate; callers apply flag overrides first and
// then call Validate.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	opts = append([]LoaderOption{WithEnvAliases(EnvAliases)}, opts...)
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, apperrors.Validation(err.Error()).WithCause(err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.applyDefaults()

	if c.Generator == "" {
		c.Generator = GeneratorOpenAI
	}

	c.DashScope.ApplyDefaults()

	c.OpenAI.Dialect = openai.DialectName
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = openai.DefaultBaseURL
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = openai.DefaultModel
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = gemini.DefaultModel
	}
	c.Gemini.Name = gemini.ProviderName

	p := &c.Pipeline
	if p.SegmentMinutes == 0 {
		p.SegmentMinutes = DefaultSegmentMinutes
	}
	if p.Segments == 0 {
		p.Segments = DefaultSegments
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.MaxMemoryChars == 0 {
		p.MaxMemoryChars = DefaultMaxMemoryChars
	}
	if p.SummaryCap == 0 {
		p.SummaryCap = DefaultSummaryCap
	}
	if p.TailSentences == 0 {
		p.TailSentences = DefaultTailSentences
	}
	if p.Temperature == nil {
		p.Temperature = llm.Float(DefaultTemperature)
	}
	if p.PollInterval == 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.MaxPoll == 0 {
		p.MaxPoll = DefaultMaxPoll
	}
	if p.Template == "" {
		p.Template = DefaultTemplate
	}
	// The pipeline temperature is the single knob; providers inherit it
	// unless configured explicitly.
	if c.OpenAI.Temperature == nil {
		c.OpenAI.Temperature = llm.Float(*p.Temperature)
	}
	if c.Gemini.Temperature == nil {
		c.Gemini.Temperature = llm.Float(*p.Temperature)
	}

	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if c.Output.PromptDir == "" {
		c.Output.PromptDir = DefaultPromptDir
	}

	c.Storage.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate checks the struct tags of every section, including the
// provider-specific storage requirements.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// RequireGenerator checks that the selected generator has credentials.
func (c *Config) RequireGenerator() error {
	switch c.Generator {
	case GeneratorGemini:
		if c.Gemini.APIKey == "" {
			return apperrors.MissingCredential("GEMINI_API_KEY")
		}
	default:
		if c.OpenAI.APIKey == "" {
			return apperrors.MissingCredential("OPENAI_API_KEY")
		}
	}
	return nil
}

// RequireTranscription checks that DashScope has credentials.
func (c *Config) RequireTranscription() error {
	if c.DashScope.APIKey == "" {
		return apperrors.MissingCredential("DASHSCOPE_API_KEY")
	}
	return nil
}

// GeneratorConfig returns the llm config of the selected generator.
func (c *Config) GeneratorConfig() (llm.Config, error) {
	switch c.Generator {
	case GeneratorOpenAI:
		return c.OpenAI, nil
	case GeneratorGemini:
		return c.Gemini, nil
	default:
		return llm.Config{}, apperrors.InvalidInput("generator", fmt.Sprintf("unknown generator %q", c.Generator))
	}
}
