package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/internal/app"
	"github.com/kbukum/longscribe/internal/output"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/pipeline"
	"github.com/kbukum/longscribe/rewrite"
	"github.com/kbukum/longscribe/speakermap"
)

const shutdownTimeout = 5 * time.Second

func NewRunCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	var (
		pf           pipelineFlags
		audioURL     string
		audioFile    string
		pollInterval time.Duration
		maxPoll      int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transcribe a recording and rewrite it",
		Long: "Transcribe a recording with DashScope and rewrite it segment by segment.\n" +
			"Pass exactly one of --audio-url and --audio-file. A local file is uploaded to the\n" +
			"configured storage (s3 or supabase) and handed to DashScope as a signed URL.\n\n" +
			"Exits 2 when the speakers need confirming; resume with 'longscribe rewrite'.",
		Example: "  longscribe run --audio-url https://example.com/talk.mp3\n" +
			"  longscribe run --audio-file talk.mp3 --speaker-map speakers.yaml --docx",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (audioURL == "") == (audioFile == "") {
				return errors.InvalidInput("audio", "pass exactly one of --audio-url and --audio-file")
			}
			changed := cmd.Flags().Changed
			override := func(cfg *config.Config) {
				pf.apply(changed, cfg)
				if changed("poll-interval") {
					cfg.Pipeline.PollInterval = pollInterval
				}
				if changed("max-poll") {
					cfg.Pipeline.MaxPoll = maxPoll
				}
			}

			formatter := output.NewFormatter(deps.Out)
			source := audioURL
			if audioFile != "" {
				source = audioFile
			}
			formatter.Transcribing(source)

			return execute(cmd.Context(), deps, g, &pf, override, app.Options{Transcribe: true},
				func(ctx context.Context, a *app.App, speakers speakermap.Map, confirmed bool) (*pipeline.Summary, error) {
					return a.Runner.Run(ctx, pipeline.Request{
						AudioURL:  audioURL,
						AudioFile: audioFile,
						Speakers:  speakers,
						Confirmed: confirmed,
					})
				})
		},
	}

	cmd.Flags().StringVar(&audioURL, "audio-url", "", "Publicly reachable audio URL")
	cmd.Flags().StringVar(&audioFile, "audio-file", "", "Local audio file to stage and transcribe")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", config.DefaultPollInterval, "Delay between transcription status checks")
	cmd.Flags().IntVar(&maxPoll, "max-poll", config.DefaultMaxPoll, "Maximum transcription status checks")
	pf.register(cmd)

	return cmd
}

type runFunc func(ctx context.Context, a *app.App, speakers speakermap.Map, confirmed bool) (*pipeline.Summary, error)

// execute loads and validates the config, wires the app and reports the run.
func execute(ctx context.Context, deps *Dependencies, g *globalOptions, pf *pipelineFlags, override func(*config.Config), opts app.Options, fn runFunc) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	override(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	speakers, confirmed, err := speakermap.Load(pf.speakerMap)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(sctx); err != nil {
			a.Log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	summary, err := fn(ctx, a, speakers, confirmed)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(deps.Out)
	if summary.Outcome == rewrite.AwaitingConfirmation {
		formatter.AwaitingConfirmation(summary, cfg.Output.Dir)
		return ErrAwaitingConfirmation
	}
	formatter.RunComplete(summary, cfg.Output.Dir)
	return nil
}
