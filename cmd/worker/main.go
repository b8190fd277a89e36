package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerdash/ledgerdash/internal/app"
	"github.com/ledgerdash/ledgerdash/internal/loader"
	"github.com/ledgerdash/ledgerdash/internal/observability"
	"github.com/ledgerdash/ledgerdash/internal/platform/cache"
	"github.com/ledgerdash/ledgerdash/internal/platform/db"
	"github.com/ledgerdash/ledgerdash/internal/report"
	"github.com/ledgerdash/ledgerdash/internal/title"
	"github.com/ledgerdash/ledgerdash/jobs"
)

func buildSource(ctx context.Context, cfg *app.Config) (loader.Source, *pgxpool.Pool, error) {
	switch cfg.LedgerSource {
	case app.SourcePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return loader.NewPostgresSource(pool), pool, nil
	case app.SourceCSV:
		var receivables loader.Source
		if cfg.LedgerReceivablesPath != "" {
			receivables = loader.NewCSVSource(cfg.LedgerReceivablesPath, title.SideReceivable)
		}
		return loader.NewMultiSource(loader.NewCSVSource(cfg.LedgerPath, title.SidePayable), receivables), nil, nil
	case app.SourceSpreadsheet:
		var receivables loader.Source
		if cfg.LedgerReceivablesPath != "" {
			receivables = loader.NewSpreadsheetSource(cfg.LedgerReceivablesPath, title.SideReceivable)
		}
		return loader.NewMultiSource(loader.NewSpreadsheetSource(cfg.LedgerPath, title.SidePayable), receivables), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger source %q", cfg.LedgerSource)
	}
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	rules, err := title.LoadRuleSet(cfg.RulesPath)
	if err != nil {
		logger.Error("load rule set", slog.Any("error", err))
		os.Exit(1)
	}
	classifier := title.NewClassifier(rules)

	source, pool, err := buildSource(ctx, cfg)
	if err != nil {
		logger.Error("build ledger source", slog.Any("error", err))
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	// Unlike the API server, the worker cannot run without Redis: the
	// queue lives there.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := loader.NewStore(source, classifier, cfg.SnapshotTTL, logger)
	aggregateCache := report.NewCache(redisClient, cfg.CacheTTL)
	metrics := observability.NewMetrics()
	refresher := jobs.NewSnapshotRefresher(store, aggregateCache, metrics, logger)

	refreshTask, err := jobs.NewSnapshotRefreshTask(jobs.SnapshotRefreshPayload{Reason: "scheduled"})
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSnapshotRefresh, Handler: refresher.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: fmt.Sprintf("@every %s", cfg.SnapshotTTL), Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
