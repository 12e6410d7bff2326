package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/llm"
)

// testFS reads real files but loads env files through t.Setenv so the
// process environment is restored after each test.
type testFS struct {
	t *testing.T
}

func (f testFS) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (f testFS) LoadEnv(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, v := range vars {
		if _, ok := os.LookupEnv(k); !ok {
			f.t.Setenv(k, v)
		}
	}
	return nil
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
pipeline:
  segment_minutes: 10
  poll_interval: 5s
  glossary: [Kubernetes, DashScope]
openai:
  model: from-yaml
output:
  docx: true
  derive: [ic_qa.md]
`)
	unsetEnv(t, "OPENAI_API_KEY", "DASHSCOPE_API_KEY")
	t.Setenv("OPENAI_MODEL", "from-env")
	t.Setenv("DASHSCOPE_API_KEY", "dk")

	cfg, err := Load(WithConfigFile(path), WithFileSystem(testFS{t}), WithEnvFile(filepath.Join(dir, "none.env")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Pipeline.SegmentMinutes != 10 || cfg.Pipeline.SegmentTarget() != 10*time.Minute {
		t.Errorf("expected 10 minute segments, got %v", cfg.Pipeline.SegmentMinutes)
	}
	if cfg.Pipeline.PollInterval != 5*time.Second {
		t.Errorf("expected 5s poll interval, got %v", cfg.Pipeline.PollInterval)
	}
	if !slices.Equal(cfg.Pipeline.Glossary, []string{"Kubernetes", "DashScope"}) {
		t.Errorf("unexpected glossary %v", cfg.Pipeline.Glossary)
	}
	if cfg.OpenAI.Model != "from-env" {
		t.Errorf("env must override yaml, got %q", cfg.OpenAI.Model)
	}
	if cfg.DashScope.APIKey != "dk" {
		t.Errorf("expected dashscope key from env, got %q", cfg.DashScope.APIKey)
	}
	if !cfg.Output.Docx || !slices.Equal(cfg.Output.Derive, []string{"ic_qa.md"}) {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}

	// untouched fields keep their defaults
	if cfg.Pipeline.Segments != DefaultSegments || cfg.Pipeline.MaxPoll != DefaultMaxPoll {
		t.Errorf("expected defaults, got %+v", cfg.Pipeline)
	}
	if cfg.Output.Dir != DefaultOutputDir || cfg.Output.PromptDir != DefaultPromptDir {
		t.Errorf("unexpected output dirs %+v", cfg.Output)
	}
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
pipeline:
  temperature: 0
gemini:
  temperature: 0.7
`)
	unsetEnv(t, "OPENAI_TEMPERATURE", "GEMINI_TEMPERATURE", "PIPELINE_TEMPERATURE")

	cfg, err := Load(WithConfigFile(path), WithFileSystem(testFS{t}), WithEnvFile(filepath.Join(dir, "none.env")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pipeline.Temperature == nil || *cfg.Pipeline.Temperature != 0 {
		t.Errorf("expected pipeline temperature 0, got %v", cfg.Pipeline.Temperature)
	}
	if cfg.OpenAI.Temperature == nil || *cfg.OpenAI.Temperature != 0 {
		t.Errorf("openai must inherit temperature 0, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.Gemini.Temperature == nil || *cfg.Gemini.Temperature != 0.7 {
		t.Errorf("explicit gemini temperature must win, got %v", cfg.Gemini.Temperature)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("zero temperature must validate, got %v", err)
	}
}

func TestLoad_EnvFilesLocalWins(t *testing.T) {
	dir := t.TempDir()
	local := writeFile(t, dir, ".env.local", "OPENAI_API_KEY=from-local\n")
	base := writeFile(t, dir, ".env", "OPENAI_API_KEY=from-env-file\nDASHSCOPE_API_BASE_URL=https://example.test/api/v1\n")
	unsetEnv(t, "OPENAI_API_KEY", "DASHSCOPE_API_BASE_URL")

	cfg, err := Load(WithFileSystem(testFS{t}), WithConfigFile(""), WithEnvFile(local, base))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "from-local" {
		t.Errorf("expected .env.local to win, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.DashScope.APIBaseURL != "https://example.test/api/v1" {
		t.Errorf("expected base url from .env, got %q", cfg.DashScope.APIBaseURL)
	}
}

func TestLoad_ProcessEnvBeatsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "OPENAI_BASE_URL=https://file.test/v1\n")
	t.Setenv("OPENAI_BASE_URL", "https://process.test/v1")

	cfg, err := Load(WithFileSystem(testFS{t}), WithEnvFile(envFile))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OpenAI.BaseURL != "https://process.test/v1" {
		t.Errorf("expected process env to win, got %q", cfg.OpenAI.BaseURL)
	}
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://xyz.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("SUPABASE_STORAGE_BUCKET_AUDIO", "audio")
	t.Setenv("STORAGE_PROVIDER", "supabase")

	cfg, err := Load(WithFileSystem(testFS{t}), WithEnvFile(filepath.Join(t.TempDir(), "none")))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.URL != "https://xyz.supabase.co" || cfg.Storage.SecretKey != "service-key" || cfg.Storage.Bucket != "audio" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if err := cfg.Storage.Validate(); err != nil {
		t.Errorf("expected valid supabase config, got %v", err)
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(WithFileSystem(testFS{t}), WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestConfig_DefaultsAreValid(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}
	if cfg.Name != ServiceName || cfg.Generator != GeneratorOpenAI {
		t.Errorf("unexpected defaults %q %q", cfg.Name, cfg.Generator)
	}
	if cfg.OpenAI.Model != "gpt-5.2" || *cfg.OpenAI.Temperature != 0.2 || cfg.OpenAI.Dialect != "openai" {
		t.Errorf("unexpected openai defaults %+v", cfg.OpenAI)
	}
	if cfg.Pipeline.Template != "segment_context_loop.md" || cfg.Pipeline.Language != "zh" {
		t.Errorf("unexpected pipeline defaults %+v", cfg.Pipeline)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown generator", func(c *Config) { c.Generator = "claude" }, "generator"},
		{"negative segments", func(c *Config) { c.Pipeline.Segments = -1 }, "pipeline.segments"},
		{"temperature too high", func(c *Config) { c.Pipeline.Temperature = llm.Float(3) }, "pipeline.temperature"},
		{"s3 without bucket", func(c *Config) { c.Storage.Provider = "s3" }, "bucket"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestConfig_RequireCredentials(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if err := cfg.RequireGenerator(); !apperrors.HasCode(err, apperrors.ErrCodeMissingCredential) {
		t.Errorf("expected missing OpenAI credential, got %v", err)
	}
	cfg.Generator = GeneratorGemini
	err := cfg.RequireGenerator()
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Details["env"] != "GEMINI_API_KEY" {
		t.Errorf("expected missing GEMINI_API_KEY, got %v", err)
	}
	if err := cfg.RequireTranscription(); !apperrors.HasCode(err, apperrors.ErrCodeMissingCredential) {
		t.Errorf("expected missing DashScope credential, got %v", err)
	}

	cfg.Gemini.APIKey = "g"
	if err := cfg.RequireGenerator(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	gc, err := cfg.GeneratorConfig()
	if err != nil || gc.APIKey != "g" {
		t.Errorf("unexpected generator config %+v, %v", gc, err)
	}
}

type mapFS map[string]bool

func (m mapFS) Exists(path string) bool { return m[path] }
func (m mapFS) LoadEnv(string) error    { return nil }

func TestResolver_FindsFilesInOrder(t *testing.T) {
	fs := mapFS{}
	for _, p := range []string{
		".env",
		filepath.Join("config", ".env.local"),
		filepath.Join("cmd", ServiceName, ".env"),
		filepath.Join("config", "config.yaml"),
	} {
		fs[p] = true
	}
	r := &Resolver{FileSystem: fs}
	got := r.ResolveFiles(ServiceName, LoaderConfig{})

	if got.ConfigFile != filepath.Join("config", "config.yaml") {
		t.Errorf("unexpected config file %q", got.ConfigFile)
	}
	want := []string{filepath.Join("config", ".env.local"), ".env"}
	if !slices.Equal(got.EnvFiles, want) {
		t.Errorf("expected env files %v, got %v", want, got.EnvFiles)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	tests := map[string]string{
		"DASHSCOPE_API_KEY":        "dashscope.api_key",
		"DASHSCOPE_API_BASE_URL":   "dashscope.api_base_url",
		"OPENAI_MODEL":             "openai.model",
		"PIPELINE_SEGMENT_MINUTES": "pipeline.segment_minutes",
		"LOGGING_LEVEL":            "logging.level",
	}
	for env, want := range tests {
		if got := generateEnvKeyVariants(env); !slices.Contains(got, want) {
			t.Errorf("variants of %s = %v, missing %q", env, got, want)
		}
	}
	if got := generateEnvKeyVariants("GENERATOR"); !slices.Equal(got, []string{"generator"}) {
		t.Errorf("unexpected single-part variants %v", got)
	}
}
