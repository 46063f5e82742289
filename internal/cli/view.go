package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/ui/tui"
	"trivia-quiz/internal/view"
)

// showView renders driver with the live terminal view or plain prompts,
// depending on the configured UI mode and whether stdout is a terminal.
func showView(ctx context.Context, cmd *cobra.Command, cfg *config.Config, driver view.Driver, logger *zap.Logger) error {
	decision, err := resolveUIMode(cfg.UI.Mode, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if decision.warning != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), decision.warning)
	}

	if !decision.useLive {
		logger.Debug("starting plain view")
		return runPlain(ctx, driver, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	logger.Debug("starting live view")
	err = tui.Run(driver, tui.Options{NoColor: cfg.UI.NoColor},
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
