// cmd/monitor/main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"trendpulse/internal/adapter/eventbus"
	"trendpulse/internal/adapter/storage"
	"trendpulse/internal/config"
	"trendpulse/internal/domain/trend"
	"trendpulse/internal/server"
	"trendpulse/internal/service/listening"
	"trendpulse/internal/service/presentation"
)

func main() {
	// A missing .env file is fine, the environment may already be set
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("monitor stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Cancelled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, err := loadAccounts(ctx, cfg)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	logger.Info("tracking accounts", "count", len(accounts), "source", cfg.Monitor.AccountsSource)

	// Optional event bus, published to before the store and console
	var bus eventbus.Conn
	var publishers []trend.Publisher
	summaryStore := storage.NewSummaryStore()

	if cfg.NATS.URL != "" {
		nc, err := eventbus.Connect(eventbus.Options{
			URL:            cfg.NATS.URL,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectTimeout: cfg.NATS.ConnectTimeout,
		}, logger)
		if err != nil {
			return err
		}
		defer nc.Close()

		bus = nc
		publishers = append(publishers, eventbus.NewPublisher(nc, cfg.Trend.EventsTopic))
	}
	publishers = append(publishers, summaryStore, presentation.NewConsoleReporter(logger))

	// Initialize services
	client := &http.Client{Timeout: cfg.Monitor.RequestTimeout}

	selector := listening.NewMirrorSelector(cfg.Monitor.Mirrors, client, cfg.Monitor.UserAgent, logger)
	fetcher := listening.NewTimelineFetcher(
		selector,
		client,
		listening.NewStatsParser(logger),
		listening.TimelineFetcherConfig{
			UserAgent:    cfg.Monitor.UserAgent,
			AccountDelay: cfg.Monitor.AccountDelay,
		},
		logger,
	)
	analyzer := listening.NewAnalyzer(listening.AnalyzerConfig{
		CategoryLimit: cfg.Trend.CategoryLimit,
		OverallLimit:  cfg.Trend.OverallLimit,
	})
	namer := presentation.NewNameGenerator(presentation.DefaultNameComponents(), nil)

	runner := listening.NewCycleRunner(
		fetcher,
		analyzer,
		namer,
		publishers,
		accounts,
		listening.CycleRunnerConfig{Lookback: cfg.Monitor.Lookback},
		logger,
	)

	schedule, err := cycleSchedule(cfg.Cycle)
	if err != nil {
		return err
	}
	supervisor := listening.NewSupervisor(runner, listening.SupervisorConfig{
		Schedule:   schedule,
		Backoff:    retryBackoff(cfg.Cycle),
		MaxRetries: cfg.Cycle.MaxRetries,
	}, logger)

	// Start HTTP server
	var httpServer *server.Server
	serverErr := make(chan error, 1)
	if cfg.Server.Enabled {
		httpServer = server.NewServer(
			cfg.Server,
			summaryStore,
			accounts,
			bus,
			eventbus.SummarySubject(cfg.Trend.EventsTopic),
			logger,
		)

		go func() {
			logger.Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	// Run cycles until cancelled
	supervisorErr := make(chan error, 1)
	go func() {
		supervisorErr <- supervisor.Run(ctx)
	}()

	var runErr error
	select {
	case err := <-supervisorErr:
		if !errors.Is(err, context.Canceled) {
			runErr = err
		}
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
		stop()
		<-supervisorErr
	}
	logger.Info("shutting down")

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown error", "error", err)
		}
	}

	return runErr
}

// loadAccounts reads the tracked accounts from the configured source
func loadAccounts(ctx context.Context, cfg config.Config) ([]trend.AccountConfig, error) {
	switch cfg.Monitor.AccountsSource {
	case config.AccountsFile:
		return config.LoadAccountsFile(cfg.Monitor.AccountsFile)

	case config.AccountsPostgres:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		accounts, err := storage.NewAccountStore(db).LoadAccounts(ctx)
		if err != nil {
			return nil, err
		}
		return accounts, config.ValidateAccounts(accounts)

	default:
		return config.DefaultAccounts(), nil
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// cycleSchedule prefers a cron expression over the fixed interval
func cycleSchedule(cfg config.CycleConfig) (cron.Schedule, error) {
	if cfg.Schedule == "" {
		return cron.Every(cfg.Interval), nil
	}
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse cycle schedule: %w", err)
	}
	return schedule, nil
}

// retryBackoff is constant unless a ceiling is set
func retryBackoff(cfg config.CycleConfig) backoff.BackOff {
	if cfg.RetryBackoffMax <= 0 {
		return backoff.NewConstantBackOff(cfg.RetryBackoff)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryBackoff
	b.MaxInterval = cfg.RetryBackoffMax
	b.Reset()
	return b
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
