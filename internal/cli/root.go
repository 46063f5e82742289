package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"trivia-quiz/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logFile    string
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{configPath: os.Getenv("CONFIG_PATH")}

	cmd := &cobra.Command{
		Use:           "quiz",
		Short:         "Multiple-choice trivia quiz backed by Open Trivia DB",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to YAML config (default ./config/config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file (play and remote default to the log_file setting, serve to stderr)")
	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRemoteCmd(opts))
	return cmd
}

// load reads the configuration and applies the persistent flags.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	return cfg, nil
}

// viewFlags are the flags of the commands that show a quiz view.
type viewFlags struct {
	uiMode  string
	noColor bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.uiMode, "ui", "auto", "terminal view: auto, live or plain")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colors in the live view")
}

func (f *viewFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("ui") {
		cfg.UI.Mode = f.uiMode
	}
	if cmd.Flags().Changed("no-color") {
		cfg.UI.NoColor = f.noColor
	}
}
