package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizzora/internal/app"
	"quizzora/internal/config"
	"quizzora/internal/infra/memory"
	pgstore "quizzora/internal/infra/postgres"
	rediscache "quizzora/internal/infra/redis"
	"quizzora/internal/logger"
	"quizzora/internal/poll"
	transport "quizzora/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := logger.New("quizzora")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var store app.Store = memory.NewStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewStore(pool)
	} else {
		log.Warn("no postgres url configured; using the in-memory store")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizTTL := config.Duration(cfg.Cache.QuizTTL, 10*time.Minute)
		lbTTL := config.Duration(cfg.Cache.LeaderboardTTL, 3*time.Second)
		store = rediscache.NewLeaderboardCache(
			rediscache.NewQuizCache(store, client, quizTTL),
			client, lbTTL,
		)
	}

	requestTimeout := config.Duration(cfg.Server.RequestTimeout, 10*time.Second)
	pollInterval := config.Duration(cfg.Leaderboard.PollInterval, poll.DefaultInterval)
	handler := transport.NewHandler(
		app.NewPlayService(store, log),
		app.NewLeaderboardService(store),
		app.NewImportService(store, log),
		app.NewAuthorService(store),
		log,
		requestTimeout,
		pollInterval,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quizzora")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down")
	case <-ctx.Done():
		log.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
