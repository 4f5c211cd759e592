package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/subject-quiz/internal/bank"
	"github.com/gokatarajesh/subject-quiz/internal/config"
	"github.com/gokatarajesh/subject-quiz/internal/db/repository"
	"github.com/gokatarajesh/subject-quiz/internal/logging"
	"github.com/gokatarajesh/subject-quiz/internal/quiz"
	"github.com/gokatarajesh/subject-quiz/internal/server"
	"github.com/gokatarajesh/subject-quiz/internal/shell"
	ws "github.com/gokatarajesh/subject-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (bank source, cache, HTTP server) and the shell.
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
	ctrl  *shell.Controller
}

// New bootstraps the logger, the question bank provider, the shell and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Str("bank_source", cfg.Bank.Source).Msg("starting application bootstrap")

	a := &Application{cfg: cfg, logger: logger}

	provider, err := a.buildProvider(ctx)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := shell.NewMetrics(registry)

	hub := ws.NewHub(logger)
	preparer := quiz.NewPreparer(0, cfg.Quiz.QuestionLimit)
	a.ctrl = shell.NewController(provider, preparer, shell.ControllerOptions{
		TotalSeconds:  cfg.Quiz.TotalSeconds(),
		QuestionLimit: cfg.Quiz.QuestionLimit,
		TickInterval:  cfg.Quiz.TickInterval,
		DefaultTheme:  shell.Theme(cfg.DefaultTheme),
	}, shell.NewHubListener(hub, logger), metrics, logger)

	httpHandlers := shell.NewHTTPHandlers(a.ctrl, logger)
	wsHandler := shell.NewWSHandler(a.ctrl, hub, logger)
	a.http = server.NewHTTPServer(cfg, logger, registry, wsHandler.HandleWebSocket, httpHandlers)

	return a, nil
}

// buildProvider picks the bank source and wraps it with the Redis cache when one is configured.
func (a *Application) buildProvider(ctx context.Context) (bank.Provider, error) {
	var provider bank.Provider

	switch a.cfg.Bank.Source {
	case config.BankSourcePostgres:
		pool, err := pgxpool.New(ctx, a.cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo := repository.NewBankRepository(repository.NewPGStore(pool))
		provider = bank.NewPostgresProvider(repo)
		a.logger.Info().Str("host", a.cfg.Postgres.Host).Str("database", a.cfg.Postgres.Database).Msg("using postgres question banks")

	default:
		static, err := bank.LoadDir(a.cfg.Bank.Dir, a.logger)
		if err != nil {
			return nil, fmt.Errorf("load banks: %w", err)
		}
		provider = static
	}

	if a.cfg.Redis.Addr == "" {
		return provider, nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	})
	if err := a.redis.Ping(ctx).Err(); err != nil {
		// the cache is optional; a dead Redis only costs a trip to the source
		a.logger.Warn().Err(err).Str("addr", a.cfg.Redis.Addr).Msg("redis unreachable, bank cache will miss")
	}
	return bank.NewCached(provider, bank.NewRedisCache(a.redis, a.cfg.Bank.CacheTTL), a.logger), nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.ctrl.Close()
	a.closeStores()

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) closeStores() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}
}
