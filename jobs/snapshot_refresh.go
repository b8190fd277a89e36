package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerdash/ledgerdash/internal/loader"
	"github.com/ledgerdash/ledgerdash/internal/observability"
	"github.com/ledgerdash/ledgerdash/internal/report"
)

// SnapshotRefresher reloads the ledger snapshot and invalidates the
// aggregate cache so readers see the new data immediately.
type SnapshotRefresher struct {
	store   *loader.Store
	cache   *report.Cache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSnapshotRefresher wires the refresh dependencies.
func NewSnapshotRefresher(store *loader.Store, cache *report.Cache, metrics *observability.Metrics, logger *slog.Logger) *SnapshotRefresher {
	return &SnapshotRefresher{store: store, cache: cache, metrics: metrics, logger: logger}
}

// Handle processes TaskSnapshotRefresh tasks.
func (r *SnapshotRefresher) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SnapshotRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return r.Refresh(ctx, payload.Reason)
}

// Refresh performs one reload cycle.
func (r *SnapshotRefresher) Refresh(ctx context.Context, reason string) error {
	snap, err := r.store.Refresh(ctx)
	if err != nil {
		r.metrics.ObserveSnapshotLoad("error")
		if r.logger != nil {
			r.logger.Error("snapshot refresh failed",
				slog.String("reason", reason),
				slog.Any("error", err),
			)
		}
		return err
	}
	r.metrics.ObserveSnapshotLoad("ok")
	r.metrics.SetSnapshotRows(len(snap.Payables), len(snap.Receivables))

	if err := r.cache.Bump(ctx); err != nil {
		// The snapshot itself is in place; stale cached aggregates
		// expire with their TTL.
		if r.logger != nil {
			r.logger.Warn("cache bump failed", slog.Any("error", err))
		}
	}
	if r.logger != nil {
		r.logger.Info("snapshot refresh done",
			slog.String("snapshot", snap.ID),
			slog.String("reason", reason),
		)
	}
	return nil
}
