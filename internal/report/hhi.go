package report

import (
	"github.com/ledgerdash/ledgerdash/internal/title"
)

// HHI computes the Herfindahl-Hirschman concentration index over the
// grouped totals: the sum of squared shares scaled to the 0..10000
// range. An empty or zero-amount set scores 0.
func HHI(totals map[string]float64) float64 {
	var total float64
	for _, amount := range totals {
		total += amount
	}
	if almostZero(total) {
		return 0
	}
	var index float64
	for _, amount := range totals {
		share := amount / total
		index += share * share
	}
	return index * 10000
}

// AvgSettlementDays is the DSO/DPO figure: mean days from issue to
// settlement over settled rows, 0 when nothing settled yet.
func AvgSettlementDays(rows []title.ClassifiedTitle) float64 {
	var days, settled int
	for _, row := range rows {
		if row.SettlementDate == nil {
			continue
		}
		delta := int(row.SettlementDate.Sub(row.IssueDate).Hours() / 24)
		if delta < 0 {
			delta = 0
		}
		days += delta
		settled++
	}
	if settled == 0 {
		return 0
	}
	return float64(days) / float64(settled)
}
