package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/errors"
	"github.com/kbukum/longscribe/internal/app"
	"github.com/kbukum/longscribe/internal/output"
	"github.com/kbukum/longscribe/pipeline"
	"github.com/kbukum/longscribe/speakermap"
	"github.com/kbukum/longscribe/transcript"
)

func NewRewriteCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	var (
		pf   pipelineFlags
		path string
	)

	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite a saved transcript",
		Long: "Segment and rewrite a transcript saved by an earlier run without calling the\n" +
			"transcription service. Use it to resume a run that stopped for speaker\n" +
			"confirmation, passing the confirmed map with --speaker-map.",
		Example: "  longscribe rewrite --transcript outputs/long_audio/transcription.json --speaker-map '{\"spk_0\":\"Host\"}'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.MissingField("transcript")
			}
			doc, err := readTranscript(path)
			if err != nil {
				return err
			}

			output.NewFormatter(deps.Out).Rewriting(path)
			changed := cmd.Flags().Changed
			return execute(cmd.Context(), deps, g, &pf,
				func(cfg *config.Config) { pf.apply(changed, cfg) },
				app.Options{},
				func(ctx context.Context, a *app.App, speakers speakermap.Map, confirmed bool) (*pipeline.Summary, error) {
					return a.Runner.RunTranscript(ctx, doc, speakers, confirmed)
				})
		},
	}

	cmd.Flags().StringVarP(&path, "transcript", "t", "", "Transcript JSON written by a previous run (transcription.json)")
	pf.register(cmd)

	return cmd
}

func readTranscript(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InvalidInput("transcript", err.Error()).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	doc, err := transcript.Decode(f)
	if err != nil {
		return nil, errors.InvalidInput("transcript", err.Error()).WithCause(err)
	}
	return doc, nil
}
