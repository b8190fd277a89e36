package report

import (
	"github.com/ledgerdash/ledgerdash/internal/title"
)

// AgingRow is one line of the aging table: a status bucket with its
// open balance and row count.
type AgingRow struct {
	Status title.DueStatus `json:"status"`
	Label  string          `json:"label"`
	Amount float64         `json:"amount"`
	Count  int             `json:"count"`
}

// AgingTable groups rows by status and reindexes the result against
// the canonical bucket order. Buckets with no rows stay present with
// zero values so the dashboard layout never shifts.
func AgingTable(rows []title.ClassifiedTitle) []AgingRow {
	amounts := make(map[title.DueStatus]float64, len(title.StatusOrder))
	counts := make(map[title.DueStatus]int, len(title.StatusOrder))
	for _, row := range rows {
		amounts[row.Status] += row.Balance
		counts[row.Status]++
	}
	table := make([]AgingRow, 0, len(title.StatusOrder))
	for _, status := range title.StatusOrder {
		table = append(table, AgingRow{
			Status: status,
			Label:  status.Label(),
			Amount: amounts[status],
			Count:  counts[status],
		})
	}
	return table
}
