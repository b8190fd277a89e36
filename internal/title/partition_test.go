package title

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func payablesFixture(t *testing.T, c *Classifier, now time.Time) []ClassifiedTitle {
	t.Helper()
	due := now.AddDate(0, 0, 10)
	titles := []FinancialTitle{
		{Number: "1", Counterparty: "GRUPO HORIZONTE SA", DocumentType: "NF", Category: "FRETE", Balance: 100, OriginalAmount: 100, DueDate: &due},
		{Number: "2", Counterparty: "FORNECEDOR BETA", DocumentType: "PA", Category: "SERVICOS", Balance: 200, OriginalAmount: 200, DueDate: &due},
		{Number: "3", Counterparty: "FORNECEDOR GAMA", DocumentType: "ADT", Category: "ADTO OBRA", Balance: 300, OriginalAmount: 300, DueDate: &due},
		{Number: "4", Counterparty: "BANCO DELTA", DocumentType: "NF", Category: "JUROS EMPRESTIMO", Balance: 400, OriginalAmount: 400, DueDate: &due},
		{Number: "5", Counterparty: "FORNECEDOR EPSILON", DocumentType: "NF", Category: "MATERIA PRIMA", Balance: 500, OriginalAmount: 500, DueDate: &due},
		// Intercompany advance: intercompany wins, pipeline order matters.
		{Number: "6", Counterparty: "GRUPO HORIZONTE LOG", DocumentType: "ADT", Category: "ADIANTAMENTO", Balance: 600, OriginalAmount: 600, DueDate: &due},
		// Financial-cost advance: advance split happens first.
		{Number: "7", Counterparty: "FORNECEDOR ZETA", DocumentType: "NF", Category: "ADTO TAXA CAMBIO", Balance: 700, OriginalAmount: 700, DueDate: &due},
	}
	return c.ClassifyAll(titles, now)
}

func TestPartitionReconstructsInput(t *testing.T) {
	rules := DefaultRuleSet()
	rules.IntercompanyPatterns = []string{"GRUPO HORIZONTE"}
	c := NewClassifier(rules)

	rows := payablesFixture(t, c, testNow)
	p := c.PartitionPayables(rows)

	require.Equal(t, len(rows), p.Total())

	seen := make(map[string]int)
	for _, part := range [][]ClassifiedTitle{p.Core, p.FinancialCost, p.Advances, p.Intercompany, p.Excluded} {
		for _, row := range part {
			seen[row.Number]++
		}
	}
	require.Len(t, seen, len(rows))
	for number, count := range seen {
		require.Equal(t, 1, count, "title %s routed to more than one partition", number)
	}
}

func TestPartitionRouting(t *testing.T) {
	rules := DefaultRuleSet()
	rules.IntercompanyPatterns = []string{"GRUPO HORIZONTE"}
	c := NewClassifier(rules)

	p := c.PartitionPayables(payablesFixture(t, c, testNow))

	numbers := func(rows []ClassifiedTitle) []string {
		out := make([]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Number)
		}
		return out
	}

	require.ElementsMatch(t, []string{"1", "6"}, numbers(p.Intercompany))
	require.ElementsMatch(t, []string{"2"}, numbers(p.Excluded))
	require.ElementsMatch(t, []string{"3", "7"}, numbers(p.Advances))
	require.ElementsMatch(t, []string{"4"}, numbers(p.FinancialCost))
	require.ElementsMatch(t, []string{"5"}, numbers(p.Core))
}

func TestPartitionEmptyInput(t *testing.T) {
	c := NewClassifier(DefaultRuleSet())
	p := c.PartitionPayables(nil)
	require.Zero(t, p.Total())
	require.Empty(t, p.Core)
}
