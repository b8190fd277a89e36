// Package report computes the dashboard aggregates over classified
// title sets. Every function in this package is a pure transform and
// returns well-defined zero results for empty input; percentage
// computations always guard the denominator.
package report

import (
	"github.com/ledgerdash/ledgerdash/internal/title"
)

// KPISummary carries the headline indicators of one filtered subset.
type KPISummary struct {
	Total          float64 `json:"total"`
	Paid           float64 `json:"paid"`
	Pending        float64 `json:"pending"`
	OverdueAmount  float64 `json:"overdue_amount"`
	PctPaid        float64 `json:"pct_paid"`
	AvgDaysOverdue float64 `json:"avg_days_overdue"`
	RowCount       int     `json:"row_count"`
	OverdueCount   int     `json:"overdue_count"`
}

// KPIs aggregates the basic indicators. Paid is derived as original
// value minus open balance so partially settled titles contribute
// proportionally.
func KPIs(rows []title.ClassifiedTitle) KPISummary {
	var summary KPISummary
	var overdueDays int
	for _, row := range rows {
		summary.Total += row.OriginalAmount
		summary.Pending += row.Balance
		if row.Status == title.StatusOverdue {
			summary.OverdueAmount += row.Balance
			summary.OverdueCount++
			overdueDays += row.DaysOverdue
		}
	}
	summary.RowCount = len(rows)
	summary.Paid = summary.Total - summary.Pending
	summary.PctPaid = safePercent(summary.Paid, summary.Total)
	if summary.OverdueCount > 0 {
		summary.AvgDaysOverdue = float64(overdueDays) / float64(summary.OverdueCount)
	}
	return summary
}

func safePercent(value, total float64) float64 {
	if almostZero(total) {
		return 0
	}
	return value / total * 100
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}
