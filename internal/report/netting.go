package report

import (
	"sort"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// NettingResult is the intercompany netting table plus group totals.
type NettingResult struct {
	Positions       []title.CounterpartyPosition `json:"positions"`
	TotalPayable    float64                      `json:"total_payable"`
	TotalReceivable float64                      `json:"total_receivable"`
	GroupNet        float64                      `json:"group_net"`
}

// Netting offsets mutual balances per counterparty across both sides.
// Net exposure is receivable minus payable; a counterparty with
// non-negative net is a creditor of the group, otherwise a debtor.
// Names are joined after accent/case folding so the same group company
// spelled differently on each side still nets out.
func Netting(payables, receivables []title.ClassifiedTitle) NettingResult {
	type side struct {
		display    string
		payable    float64
		receivable float64
	}
	byName := make(map[string]*side)
	lookup := func(name string) *side {
		key := title.Normalize(name)
		if key == "" {
			key = "(SEM IDENTIFICACAO)"
		}
		pos, ok := byName[key]
		if !ok {
			pos = &side{display: name}
			byName[key] = pos
		}
		return pos
	}
	for _, row := range payables {
		lookup(row.Counterparty).payable += row.Balance
	}
	for _, row := range receivables {
		lookup(row.Counterparty).receivable += row.Balance
	}

	result := NettingResult{Positions: make([]title.CounterpartyPosition, 0, len(byName))}
	for _, pos := range byName {
		net := pos.receivable - pos.payable
		result.Positions = append(result.Positions, title.CounterpartyPosition{
			Counterparty: pos.display,
			Payable:      pos.payable,
			Receivable:   pos.receivable,
			Net:          net,
			Creditor:     net >= 0,
		})
		result.TotalPayable += pos.payable
		result.TotalReceivable += pos.receivable
		result.GroupNet += net
	}
	sort.Slice(result.Positions, func(i, j int) bool {
		return result.Positions[i].Counterparty < result.Positions[j].Counterparty
	})
	return result
}
