package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/config"
	"github.com/kbukum/longscribe/version"
)

// ErrAwaitingConfirmation is returned by run and rewrite when the run stopped
// at the speaker confirmation gate.
var ErrAwaitingConfirmation = errors.New("awaiting speaker confirmation")

// Exit codes.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitAwaitingConfirmation = 2
)

type Dependencies struct {
	Out io.Writer
	Err io.Writer
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	envFiles   []string
	logLevel   string
	logFormat  string
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "longscribe",
		Short: "Turn long recordings into edited articles",
		Long: "longscribe transcribes a long audio recording with DashScope, splits the transcript " +
			"into segments and rewrites each one with an LLM while carrying a rolling summary " +
			"forward, then assembles the final document.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.Err)

	rootCmd.Version = version.Get().Short()
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "Config file (default: longscribe.yaml in the search paths)")
	pf.StringSliceVar(&g.envFiles, "env-file", nil, "Env files to load (default: .env.local, .env)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: console, json")

	rootCmd.AddCommand(NewRunCmd(deps, g))
	rootCmd.AddCommand(NewRewriteCmd(deps, g))
	rootCmd.AddCommand(NewPromptCmd(deps, g))
	rootCmd.AddCommand(NewVersionCmd(deps))

	return rootCmd
}

// ExitCode maps the error returned by Execute to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrAwaitingConfirmation):
		return ExitAwaitingConfirmation
	default:
		return ExitFailure
	}
}

// loadConfig reads the config files and applies the persistent flags. It
// does not validate.
func loadConfig(g *globalOptions) (*config.Config, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if len(g.envFiles) > 0 {
		opts = append(opts, config.WithEnvFile(g.envFiles...))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	return cfg, nil
}
