package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerdash/ledgerdash/internal/app"
	"github.com/ledgerdash/ledgerdash/internal/loader"
	"github.com/ledgerdash/ledgerdash/internal/observability"
	"github.com/ledgerdash/ledgerdash/internal/platform/db"
	"github.com/ledgerdash/ledgerdash/internal/report"
	reporthttp "github.com/ledgerdash/ledgerdash/internal/report/http"
	"github.com/ledgerdash/ledgerdash/internal/title"
)

// buildSource selects the ledger source from configuration. The
// returned pool is nil for file-based sources.
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
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	var aggregateCache *report.Cache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The dashboard still works without Redis; every aggregate is
		// recomputed from the in-process snapshot.
		logger.Warn("redis ping, serving without aggregate cache", slog.Any("error", err))
	} else {
		aggregateCache = report.NewCache(redisClient, cfg.CacheTTL)
		go func() {
			if err := aggregateCache.ListenForInvalidation(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("cache invalidation listener", slog.Any("error", err))
			}
		}()
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store := loader.NewStore(source, classifier, cfg.SnapshotTTL, logger)
	service := report.NewService(store, aggregateCache, classifier)

	metrics := observability.NewMetrics()
	reportHandler := reporthttp.NewHandler(logger, service)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		ReportHandler: reportHandler,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
