package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/logger"
	"trivia-quiz/internal/userclient"
)

type remoteFlags struct {
	viewFlags
	server string
}

func newRemoteCmd(root *rootOptions) *cobra.Command {
	flags := &remoteFlags{}
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Play a quiz hosted by a running quiz service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runRemote(cmd, cfg)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.server, "server", "http://localhost:8080", "quiz service base URL")
	return cmd
}

func (f *remoteFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.viewFlags.apply(cmd, cfg)
	if cmd.Flags().Changed("server") {
		cfg.Remote.ServerURL = f.server
	}
}

func runRemote(cmd *cobra.Command, cfg *config.Config) error {
	log, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote, err := userclient.Connect(ctx, userclient.Config{
		ServerURL:   cfg.Remote.ServerURL,
		HTTPTimeout: cfg.Remote.Timeout,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := remote.Close(); err != nil {
			log.Warn("failed to close remote session", zap.Error(err))
		}
	}()

	return showView(ctx, cmd, cfg, remote, log)
}
