package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/logger"
	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/quiz"
)

type playFlags struct {
	viewFlags
	amount        int
	questionsFile string
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	flags := &playFlags{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in this terminal",
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
			return runPlay(cmd, cfg)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&flags.amount, "amount", opentdb.DefaultAmount, "number of questions to fetch")
	cmd.Flags().StringVar(&flags.questionsFile, "questions-file", "", "read questions from a JSON or YAML file instead of Open Trivia DB")
	return cmd
}

func (f *playFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f.viewFlags.apply(cmd, cfg)
	if cmd.Flags().Changed("amount") {
		cfg.OpenTDB.Amount = f.amount
	}
	if cmd.Flags().Changed("questions-file") {
		cfg.OpenTDB.QuestionsFile = f.questionsFile
	}
}

func runPlay(cmd *cobra.Command, cfg *config.Config) error {
	log, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := quiz.NewController(newFetcher(cfg.OpenTDB),
		quiz.WithAmount(cfg.OpenTDB.Amount),
		quiz.WithLogger(log),
	)
	controller.Mount(ctx)
	defer controller.Unmount()

	log.Info("quiz view mounted",
		zap.Int("amount", cfg.OpenTDB.Amount),
		zap.String("questions_file", cfg.OpenTDB.QuestionsFile),
	)
	return showView(ctx, cmd, cfg, controller, log)
}

// newFetcher picks the question source: a local file when configured,
// Open Trivia DB otherwise.
func newFetcher(cfg config.OpenTDB) quiz.QuestionsFetcher {
	if cfg.QuestionsFile != "" {
		return opentdb.NewFileSource(cfg.QuestionsFile).FetchQuestions
	}
	client := opentdb.NewClient(&http.Client{Timeout: cfg.Timeout}, opentdb.WithBaseURL(cfg.BaseURL))
	return client.FetchQuestions
}
