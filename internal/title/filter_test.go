package title

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func filterFixture(t *testing.T) []ClassifiedTitle {
	t.Helper()
	c := NewClassifier(DefaultRuleSet())
	overdue := testNow.AddDate(0, 0, -5)
	soon := testNow.AddDate(0, 0, 3)
	later := testNow.AddDate(0, 0, 45)
	titles := []FinancialTitle{
		{Number: "1", Branch: 101, Counterparty: "Fornecedor Alfa", Category: "FRETE", DocumentType: "NF", PaymentMethod: MethodBoleto, IssueDate: testNow.AddDate(0, -2, 0), DueDate: &overdue, OriginalAmount: 100, Balance: 100},
		{Number: "2", Branch: 101, Counterparty: "Fornecedor Beta", Category: "SERVICOS", DocumentType: "REC", PaymentMethod: MethodPix, IssueDate: testNow.AddDate(0, -1, 0), DueDate: &soon, OriginalAmount: 200, Balance: 200},
		{Number: "3", Branch: 202, Counterparty: "Cliente Gama", Category: "FRETE", DocumentType: "NF", PaymentMethod: MethodBoleto, IssueDate: testNow.AddDate(0, 0, -10), DueDate: &later, OriginalAmount: 300, Balance: 0},
		{Number: "4", Branch: 202, Counterparty: "Fornecedor Alfa Filial", Category: "ALUGUEL", DocumentType: "NF", PaymentMethod: MethodTransfer, IssueDate: testNow.AddDate(0, 0, -3), DueDate: &soon, OriginalAmount: 400, Balance: 400},
	}
	return c.ClassifyAll(titles, testNow)
}

func numbersOf(rows []ClassifiedTitle) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Number)
	}
	return out
}

func TestFilterZeroValueMatchesAll(t *testing.T) {
	rows := filterFixture(t)
	require.Len(t, Filter{}.Apply(rows), len(rows))
}

func TestFilterDimensions(t *testing.T) {
	rows := filterFixture(t)

	require.ElementsMatch(t, []string{"1", "2"}, numbersOf(Filter{Branches: []int{101}}.Apply(rows)))
	require.ElementsMatch(t, []string{"1"}, numbersOf(Filter{OnlyOverdue: true}.Apply(rows)))
	require.ElementsMatch(t, []string{"3"}, numbersOf(Filter{OnlyPaid: true}.Apply(rows)))
	require.ElementsMatch(t, []string{"1", "3"}, numbersOf(Filter{Category: "frete"}.Apply(rows)))
	require.ElementsMatch(t, []string{"1", "4"}, numbersOf(Filter{Counterparty: "alfa"}.Apply(rows)))
	require.ElementsMatch(t, []string{"1", "3"}, numbersOf(Filter{Method: MethodBoleto}.Apply(rows)))
	require.ElementsMatch(t, []string{"2"}, numbersOf(Filter{Status: StatusDueIn7Days, Branches: []int{101}}.Apply(rows)))

	noInvoice := false
	require.ElementsMatch(t, []string{"2"}, numbersOf(Filter{HasInvoice: &noInvoice}.Apply(rows)))

	from := testNow.AddDate(0, 0, -15)
	to := testNow
	require.ElementsMatch(t, []string{"3", "4"}, numbersOf(Filter{IssuedFrom: &from, IssuedTo: &to}.Apply(rows)))
}

func TestFilterDateRangeInclusive(t *testing.T) {
	rows := filterFixture(t)
	exact := rows[2].IssueDate
	f := Filter{IssuedFrom: &exact, IssuedTo: &exact}
	require.ElementsMatch(t, []string{"3"}, numbersOf(f.Apply(rows)))
}

func TestFilterCommutativity(t *testing.T) {
	rows := filterFixture(t)
	from := testNow.AddDate(0, -3, 0)
	to := testNow

	combined := Filter{IssuedFrom: &from, IssuedTo: &to, Branches: []int{101}, OnlyOverdue: true}
	expected := numbersOf(combined.Apply(rows))

	// Apply the same predicates as successive single-dimension passes in
	// two different orders; AND composition must not care.
	ordered := Filter{OnlyOverdue: true}.Apply(Filter{Branches: []int{101}}.Apply(Filter{IssuedFrom: &from, IssuedTo: &to}.Apply(rows)))
	reversed := Filter{IssuedFrom: &from, IssuedTo: &to}.Apply(Filter{OnlyOverdue: true}.Apply(Filter{Branches: []int{101}}.Apply(rows)))

	require.ElementsMatch(t, expected, numbersOf(ordered))
	require.ElementsMatch(t, expected, numbersOf(reversed))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	rows := filterFixture(t)
	snapshot := append([]ClassifiedTitle(nil), rows...)

	_ = Filter{OnlyOverdue: true, Counterparty: "alfa"}.Apply(rows)
	require.Equal(t, snapshot, rows)
}

func TestFilterKeyCanonical(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Filter{IssuedFrom: &from, Branches: []int{202, 101}, Counterparty: "Alfa"}
	b := Filter{IssuedFrom: &from, Branches: []int{101, 202}, Counterparty: "alfa"}
	require.Equal(t, a.Key(), b.Key())
	require.Equal(t, "all", Filter{}.Key())
}
