package report

import (
	"context"

	"github.com/ledgerdash/ledgerdash/internal/loader"
	"github.com/ledgerdash/ledgerdash/internal/title"
)

// SnapshotProvider hands out the current classified snapshot.
type SnapshotProvider interface {
	GetOrRefresh(ctx context.Context) (*loader.Snapshot, error)
}

// Query scopes one aggregate request to a ledger side plus the user
// filter set.
type Query struct {
	Side   title.Side
	Filter title.Filter
}

// Service computes dashboard aggregates over the loader snapshot,
// memoizing results in the versioned cache. A nil cache computes
// everything inline.
type Service struct {
	snapshots  SnapshotProvider
	cache      *Cache
	classifier *title.Classifier
}

// NewService wires the snapshot provider with the cache helper.
func NewService(snapshots SnapshotProvider, cache *Cache, classifier *title.Classifier) *Service {
	return &Service{snapshots: snapshots, cache: cache, classifier: classifier}
}

// PartitionSlice summarises one output of the payables exclusion
// pipeline.
type PartitionSlice struct {
	Rows   int     `json:"rows"`
	Amount float64 `json:"amount"`
}

// PartitionSummary carries the totals of all five pipeline outputs.
type PartitionSummary struct {
	Core          PartitionSlice `json:"core"`
	FinancialCost PartitionSlice `json:"financial_cost"`
	Advances      PartitionSlice `json:"advances"`
	Intercompany  PartitionSlice `json:"intercompany"`
	Excluded      PartitionSlice `json:"excluded"`
}

// ConcentrationStats flags counterparty concentration risk.
type ConcentrationStats struct {
	HHI               float64 `json:"hhi"`
	Counterparties    int     `json:"counterparties"`
	AvgSettlementDays float64 `json:"avg_settlement_days"`
}

// KPIs resolves the headline indicators for one filtered subset.
func (s *Service) KPIs(ctx context.Context, q Query) (KPISummary, error) {
	var summary KPISummary
	err := s.cached(ctx, "kpi", q, &summary, func(rows []title.ClassifiedTitle) (interface{}, error) {
		return KPIs(rows), nil
	})
	return summary, err
}

// Aging resolves the aging bucket table.
func (s *Service) Aging(ctx context.Context, q Query) ([]AgingRow, error) {
	var table []AgingRow
	err := s.cached(ctx, "aging", q, &table, func(rows []title.ClassifiedTitle) (interface{}, error) {
		return AgingTable(rows), nil
	})
	return table, err
}

// ABCRanking resolves the Pareto ranking along the requested dimension.
func (s *Service) ABCRanking(ctx context.Context, q Query, dim ABCDimension) ([]ABCEntry, error) {
	if dim != ByCategory {
		dim = ByCounterparty
	}
	rules := s.classifier.Rules()
	var entries []ABCEntry
	err := s.cached(ctx, "abc:"+string(dim), q, &entries, func(rows []title.ClassifiedTitle) (interface{}, error) {
		return ABC(GroupTotals(rows, dim), rules.ABCThresholdA, rules.ABCThresholdB), nil
	})
	return entries, err
}

// Concentration resolves the HHI score plus settlement speed.
func (s *Service) Concentration(ctx context.Context, q Query) (ConcentrationStats, error) {
	var stats ConcentrationStats
	err := s.cached(ctx, "hhi", q, &stats, func(rows []title.ClassifiedTitle) (interface{}, error) {
		totals := GroupTotals(rows, ByCounterparty)
		return ConcentrationStats{
			HHI:               HHI(totals),
			Counterparties:    len(totals),
			AvgSettlementDays: AvgSettlementDays(rows),
		}, nil
	})
	return stats, err
}

// IntercompanyNetting offsets the intercompany rows of both sides.
// The filter applies to each side before grouping.
func (s *Service) IntercompanyNetting(ctx context.Context, f title.Filter) (NettingResult, error) {
	snap, err := s.snapshots.GetOrRefresh(ctx)
	if err != nil {
		return NettingResult{}, err
	}
	loaderFn := func(ctx context.Context) (interface{}, error) {
		payables := intercompanyOnly(f.Apply(snap.Payables))
		receivables := intercompanyOnly(f.Apply(snap.Receivables))
		return Netting(payables, receivables), nil
	}
	var result NettingResult
	key, err := s.cache.BuildKey(ctx, cacheKey("netting", "both", snap.ID, f.Key())...)
	if err != nil {
		return NettingResult{}, err
	}
	if err := s.cache.FetchJSON(ctx, key, &result, loaderFn); err != nil {
		return NettingResult{}, err
	}
	return result, nil
}

// Partitions resolves the payables exclusion-pipeline totals.
func (s *Service) Partitions(ctx context.Context, f title.Filter) (PartitionSummary, error) {
	q := Query{Side: title.SidePayable, Filter: f}
	var summary PartitionSummary
	err := s.cached(ctx, "partitions", q, &summary, func(rows []title.ClassifiedTitle) (interface{}, error) {
		p := s.classifier.PartitionPayables(rows)
		return PartitionSummary{
			Core:          sliceSummary(p.Core),
			FinancialCost: sliceSummary(p.FinancialCost),
			Advances:      sliceSummary(p.Advances),
			Intercompany:  sliceSummary(p.Intercompany),
			Excluded:      sliceSummary(p.Excluded),
		}, nil
	})
	return summary, err
}

// cached runs one aggregate through the snapshot, filter and cache
// plumbing shared by every endpoint.
func (s *Service) cached(ctx context.Context, op string, q Query, dest interface{}, compute func([]title.ClassifiedTitle) (interface{}, error)) error {
	snap, err := s.snapshots.GetOrRefresh(ctx)
	if err != nil {
		return err
	}
	side := q.Side
	if side == "" {
		side = title.SidePayable
	}
	loaderFn := func(ctx context.Context) (interface{}, error) {
		return compute(q.Filter.Apply(snap.Rows(side)))
	}
	key, err := s.cache.BuildKey(ctx, cacheKey(op, string(side), snap.ID, q.Filter.Key())...)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loaderFn)
}

func intercompanyOnly(rows []title.ClassifiedTitle) []title.ClassifiedTitle {
	out := make([]title.ClassifiedTitle, 0, len(rows))
	for _, row := range rows {
		if row.IsIntercompany {
			out = append(out, row)
		}
	}
	return out
}

func sliceSummary(rows []title.ClassifiedTitle) PartitionSlice {
	slice := PartitionSlice{Rows: len(rows)}
	for _, row := range rows {
		slice.Amount += row.Balance
	}
	return slice
}
