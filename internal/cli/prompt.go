package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/internal/app"
	"github.com/kbukum/longscribe/internal/output"
	"github.com/kbukum/longscribe/logger"
	"github.com/kbukum/longscribe/prompt"
)

func NewPromptCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	var promptDir string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Inspect prompt templates",
	}
	cmd.PersistentFlags().StringVar(&promptDir, "prompt-dir", "", "Directory overriding the built-in prompt templates")

	store := func(cmd *cobra.Command) (*prompt.Store, error) {
		cfg, err := loadConfig(g)
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("prompt-dir") {
			cfg.Output.PromptDir = promptDir
		}
		log := logger.New(&cfg.Logging, cfg.Name)
		return app.NewPromptStore(cfg.Output.PromptDir, log)
	}

	cmd.AddCommand(newPromptListCmd(deps, store))
	cmd.AddCommand(newPromptRenderCmd(deps, store))
	return cmd
}

type storeFunc func(cmd *cobra.Command) (*prompt.Store, error)

func newPromptListCmd(deps *Dependencies, store storeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in templates and their placeholders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store(cmd)
			if err != nil {
				return err
			}
			var lines []string
			for _, name := range prompt.Builtin() {
				tmpl, err := s.Load(cmd.Context(), name)
				if err != nil {
					return err
				}
				lines = append(lines, fmt.Sprintf("%-28s %s", name, strings.Join(prompt.Placeholders(tmpl), ", ")))
			}
			output.NewFormatter(deps.Out).PromptList(lines)
			return nil
		},
	}
}

func newPromptRenderCmd(deps *Dependencies, store storeFunc) *cobra.Command {
	var vars map[string]string

	cmd := &cobra.Command{
		Use:     "render NAME",
		Short:   "Render a template with the given variables",
		Example: "  longscribe prompt render segment_context_loop.md --var segment_index=1 --var segment_total=6",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store(cmd)
			if err != nil {
				return err
			}
			tmpl, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range prompt.Placeholders(tmpl) {
				if _, ok := vars[name]; !ok {
					output.NewFormatter(deps.Err).Warning(fmt.Sprintf("%s is not set and renders empty", name))
				}
			}
			_, err = fmt.Fprintln(deps.Out, prompt.Render(tmpl, vars))
			return err
		},
	}
	cmd.Flags().StringToStringVar(&vars, "var", nil, "Template variable as key=value (repeatable)")
	return cmd
}
