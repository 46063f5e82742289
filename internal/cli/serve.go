package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/httpapi"
	"trivia-quiz/internal/logger"
	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/session"
	redisstore "trivia-quiz/internal/session/redis"
	sqlitestore "trivia-quiz/internal/session/sqlite"
)

const redisPingTimeout = 5 * time.Second

type serveFlags struct {
	addr          string
	amount        int
	questionsFile string
	backend       string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve quiz views over HTTP and WebSocket",
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
			return runServe(cmd.Context(), cfg, root.logFile)
		},
	}

	flags.register(cmd)
	return cmd
}

func (f *serveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&f.amount, "amount", opentdb.DefaultAmount, "number of questions per view session")
	cmd.Flags().StringVar(&f.questionsFile, "questions-file", "", "serve questions from a JSON or YAML file")
	cmd.Flags().StringVar(&f.backend, "session-backend", "memory", "session store: memory, sqlite or redis")
}

func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if cmd.Flags().Changed("amount") {
		cfg.OpenTDB.Amount = f.amount
	}
	if cmd.Flags().Changed("questions-file") {
		cfg.OpenTDB.QuestionsFile = f.questionsFile
	}
	if cmd.Flags().Changed("session-backend") {
		cfg.Session.Backend = f.backend
	}
}

// runServe logs to stderr unless logPath is set. The log_file setting is
// meant for the terminal views and does not apply here.
func runServe(ctx context.Context, cfg *config.Config, logPath string) error {
	log, err := logger.New(cfg.Env, logPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close session store", zap.Error(err))
		}
	}()

	fetcher := newFetcher(cfg.OpenTDB)
	factory := func(opts ...quiz.ControllerOption) *quiz.Controller {
		base := []quiz.ControllerOption{
			quiz.WithAmount(cfg.OpenTDB.Amount),
			quiz.WithLogger(log),
		}
		return quiz.NewController(fetcher, append(base, opts...)...)
	}
	sessions := session.NewManager(ctx, store, factory, cfg.Session.TTL, log)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(sessions, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("quiz service listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("session_backend", cfg.Session.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.CleanupInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down quiz service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		sessions.Shutdown()
		return err
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Session) (session.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := sqlitestore.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite session store: %w", err)
		}
		return store, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return redisstore.NewStore(client, cfg.RedisPrefix), nil
	default:
		return session.NewMemoryStore(), nil
	}
}
