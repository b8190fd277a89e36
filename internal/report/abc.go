package report

import (
	"sort"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// ABCClass tiers entities by contribution to total value.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCEntry is one ranked row of the Pareto table.
type ABCEntry struct {
	Name   string   `json:"name"`
	Amount float64  `json:"amount"`
	Pct    float64  `json:"pct"`
	CumPct float64  `json:"cum_pct"`
	Class  ABCClass `json:"class"`
}

// ABCDimension selects the grouping column of the ranking.
type ABCDimension string

const (
	ByCounterparty ABCDimension = "counterparty"
	ByCategory     ABCDimension = "category"
)

// ABC ranks the grouped totals descending and assigns Pareto classes.
// The class of a row is driven by the cumulative percentage *before*
// the row is added: the row that pushes the cumulative across a
// threshold still belongs to the lower class. Equal amounts tie-break
// on name so the ranking is deterministic.
func ABC(totals map[string]float64, thresholdA, thresholdB float64) []ABCEntry {
	entries := make([]ABCEntry, 0, len(totals))
	var total float64
	for name, amount := range totals {
		entries = append(entries, ABCEntry{Name: name, Amount: amount})
		total += amount
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Name < entries[j].Name
	})

	cum := 0.0
	for i := range entries {
		before := cum
		entries[i].Pct = safePercent(entries[i].Amount, total)
		cum += entries[i].Pct
		entries[i].CumPct = cum
		switch {
		case before < thresholdA:
			entries[i].Class = ClassA
		case before < thresholdB:
			entries[i].Class = ClassB
		default:
			entries[i].Class = ClassC
		}
	}
	return entries
}

// GroupTotals sums original amounts along the requested dimension.
func GroupTotals(rows []title.ClassifiedTitle, dim ABCDimension) map[string]float64 {
	totals := make(map[string]float64)
	for _, row := range rows {
		key := row.Counterparty
		if dim == ByCategory {
			key = row.Category
		}
		if key == "" {
			key = "(sem identificação)"
		}
		totals[key] += row.OriginalAmount
	}
	return totals
}
