package app

import (
	"context"
	"os"

	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/llm"
	"github.com/kbukum/longscribe/llm/gemini"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/observability"
	"github.com/kbukum/longscribe/pipeline"
	"github.com/kbukum/longscribe/prompt"
	"github.com/kbukum/longscribe/provider"
	"github.com/kbukum/longscribe/resilience"
	"github.com/kbukum/longscribe/storage"
	"github.com/kbukum/longscribe/storage/local"
	"github.com/kbukum/longscribe/transcription"
	"github.com/kbukum/longscribe/transcription/dashscope"
	"github.com/kbukum/longscribe/version"

	_ "github.com/kbukum/longscribe/storage/s3"
	_ "github.com/kbukum/longscribe/storage/supabase"
)

// Options selects which parts of the pipeline are built.
type Options struct {
	// Transcribe builds the DashScope transcriber and, when the storage
	// backend signs URLs, the audio stager.
	Transcribe bool
}

// App holds the wired pipeline of one CLI invocation.
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	Runner    *pipeline.Runner
	Prompts   *prompt.Store
	telemetry *observability.Telemetry
	backend   provider.Provider
}

// New wires telemetry, the generator, storage and the runner from cfg.
// cfg must already be validated.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	tel, err := observability.Setup(ctx, cfg.Telemetry, observability.Identity{
		Service:     cfg.Name,
		Version:     version.Get().Short(),
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log, telemetry: tel}

	if err := cfg.RequireGenerator(); err != nil {
		return nil, a.closeWith(ctx, err)
	}
	gen, err := a.generator(ctx)
	if err != nil {
		return nil, a.closeWith(ctx, err)
	}

	prompts, err := NewPromptStore(cfg.Output.PromptDir, log)
	if err != nil {
		return nil, a.closeWith(ctx, err)
	}
	a.Prompts = prompts

	output, err := local.NewStorage(cfg.Output.Dir)
	if err != nil {
		return nil, a.closeWith(ctx, err)
	}

	runnerOpts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMetrics(tel.Metrics),
	}

	var remote storage.Storage
	if cfg.Output.Mirror || (opts.Transcribe && cfg.Storage.Provider != storage.ProviderLocal) {
		remote, err = storage.New(ctx, cfg.Storage, log)
		if err != nil {
			return nil, a.closeWith(ctx, err)
		}
	}
	if cfg.Output.Mirror {
		runnerOpts = append(runnerOpts, pipeline.WithMirror(remote))
	}

	if opts.Transcribe {
		if err := cfg.RequireTranscription(); err != nil {
			return nil, a.closeWith(ctx, err)
		}
		p, err := dashscope.NewProvider(cfg.DashScope, log)
		if err != nil {
			return nil, a.closeWith(ctx, err)
		}
		tr := transcription.NewTranscriber(p, resilience.PollConfig{
			Interval:    cfg.Pipeline.PollInterval,
			MaxAttempts: cfg.Pipeline.MaxPoll,
		}, transcription.WithLogger(log), transcription.WithMetrics(tel.Metrics))
		runnerOpts = append(runnerOpts, pipeline.WithTranscriber(tr))

		if _, ok := remote.(storage.SignedURLProvider); ok {
			stager, err := pipeline.NewStager(remote, cfg.Storage.Prefix, cfg.Storage.SignedURLExpiry, log)
			if err != nil {
				return nil, a.closeWith(ctx, err)
			}
			runnerOpts = append(runnerOpts, pipeline.WithStager(stager))
		}
	}

	a.Runner = pipeline.New(gen, prompts, output, cfg.Pipeline, cfg.Output, runnerOpts...)
	return a, nil
}

// generator builds the configured completion provider wrapped in the
// logging, tracing and metrics middleware.
func (a *App) generator(ctx context.Context) (*llm.TextGenerator, error) {
	cfg := a.Config
	lc, err := cfg.GeneratorConfig()
	if err != nil {
		return nil, err
	}

	var p provider.RequestResponse[llm.CompletionRequest, llm.CompletionResponse]
	switch cfg.Generator {
	case config.GeneratorGemini:
		p, err = gemini.New(ctx, lc)
	default:
		p, err = llm.New(lc)
	}
	if err != nil {
		return nil, err
	}
	a.backend = p

	chain := provider.Chain(
		provider.WithLogging[llm.CompletionRequest, llm.CompletionResponse](a.Log),
		provider.WithTracing[llm.CompletionRequest, llm.CompletionResponse](cfg.Name),
		provider.WithMetrics[llm.CompletionRequest, llm.CompletionResponse](a.telemetry.Metrics),
	)
	return llm.NewTextGenerator(chain(p)), nil
}

// Close releases the generator backend and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if err := provider.CloseIfCloseable(ctx, a.backend); err != nil {
		a.Log.Warn("generator close failed", logger.ErrorFields("close", err))
	}
	return a.telemetry.Shutdown(ctx)
}

func (a *App) closeWith(ctx context.Context, err error) error {
	if cerr := a.Close(ctx); cerr != nil {
		a.Log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", cerr))
	}
	return err
}

// NewPromptStore serves templates from dir when it exists and from the
// built-in copies otherwise.
func NewPromptStore(dir string, log *logger.Logger) (*prompt.Store, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Debug("prompt dir not found, using built-in templates", logger.Fields("dir", dir))
		return prompt.NewStore(nil, log), nil
	}
	s, err := local.NewStorage(dir)
	if err != nil {
		return nil, err
	}
	return prompt.NewStore(s, log), nil
}
