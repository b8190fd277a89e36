// Package loader reads raw ledger extracts, normalizes them into
// FinancialTitle records and owns the classified snapshot cache the
// reporting layer consumes.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// Source produces the raw titles of one refresh. Implementations own
// all I/O; a source failure is the only fatal error class in the
// pipeline.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]title.FinancialTitle, error)
}

// Snapshot is one immutable load-and-classify result. It is replaced
// on refresh, never mutated, so readers can hold it without locking.
type Snapshot struct {
	ID        string
	Source    string
	LoadedAt  time.Time
	ExpiresAt time.Time

	Payables    []title.ClassifiedTitle
	Receivables []title.ClassifiedTitle
	Anomalies   int
}

// Rows returns the classified rows of one side.
func (s *Snapshot) Rows(side title.Side) []title.ClassifiedTitle {
	if side == title.SideReceivable {
		return s.Receivables
	}
	return s.Payables
}

// Store caches the most recent snapshot with a fixed TTL. The cached
// value is exclusively owned by the process and swapped wholesale on
// refresh.
type Store struct {
	source     Source
	classifier *title.Classifier
	methods    *title.MethodNormalizer
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu   sync.Mutex
	snap *Snapshot
}

// NewStore wires a source with the classification pipeline.
func NewStore(source Source, classifier *title.Classifier, ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{
		source:     source,
		classifier: classifier,
		methods:    title.NewMethodNormalizer(classifier.Rules()),
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// WithNow overrides the store clock for testing.
func (s *Store) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// GetOrRefresh returns the cached snapshot while it is fresh and
// reloads it otherwise. Concurrent callers share one reload.
func (s *Store) GetOrRefresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil && s.now().Before(s.snap.ExpiresAt) {
		return s.snap, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh discards the cached snapshot and reloads unconditionally.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) (*Snapshot, error) {
	titles, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loader: load from %s: %w", s.source.Name(), err)
	}

	now := s.now()
	snap := &Snapshot{
		ID:        uuid.NewString(),
		Source:    s.source.Name(),
		LoadedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	for _, raw := range titles {
		raw.PaymentMethod = s.methods.Canonical(raw.PaymentMethod)
		row := s.classifier.Classify(raw, now)
		if row.BalanceAnomaly {
			snap.Anomalies++
		}
		if raw.Side == title.SideReceivable {
			snap.Receivables = append(snap.Receivables, row)
		} else {
			snap.Payables = append(snap.Payables, row)
		}
	}

	if s.logger != nil {
		s.logger.Info("ledger snapshot refreshed",
			slog.String("snapshot", snap.ID),
			slog.String("source", snap.Source),
			slog.Int("payables", len(snap.Payables)),
			slog.Int("receivables", len(snap.Receivables)),
			slog.Int("anomalies", snap.Anomalies),
		)
	}

	s.snap = snap
	return snap, nil
}
