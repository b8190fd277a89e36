package title

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Filter holds the user-selected report predicates. Every field is
// optional; the zero value matches everything. Predicates compose by
// logical AND and application order never changes the result.
type Filter struct {
	IssuedFrom *time.Time
	IssuedTo   *time.Time

	Branches []int

	Status      DueStatus
	OnlyPaid    bool
	OnlyOverdue bool

	Category     string
	Counterparty string
	HasInvoice   *bool
	Method       string
}

// Apply returns the matching subset as a fresh slice. The input is
// never mutated; rows are copied by value.
func (f Filter) Apply(rows []ClassifiedTitle) []ClassifiedTitle {
	branches := make(map[int]struct{}, len(f.Branches))
	for _, b := range f.Branches {
		branches[b] = struct{}{}
	}
	query := Normalize(f.Counterparty)
	category := Normalize(f.Category)
	method := Normalize(f.Method)

	out := make([]ClassifiedTitle, 0, len(rows))
	for _, row := range rows {
		if !f.matches(row, branches, query, category, method) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (f Filter) matches(row ClassifiedTitle, branches map[int]struct{}, query, category, method string) bool {
	if f.IssuedFrom != nil && dateOnly(row.IssueDate).Before(dateOnly(*f.IssuedFrom)) {
		return false
	}
	if f.IssuedTo != nil && dateOnly(row.IssueDate).After(dateOnly(*f.IssuedTo)) {
		return false
	}
	if len(branches) > 0 {
		if _, ok := branches[row.Branch]; !ok {
			return false
		}
	}
	if f.Status != "" && row.Status != f.Status {
		return false
	}
	if f.OnlyPaid && !row.Settled() {
		return false
	}
	if f.OnlyOverdue && row.Status != StatusOverdue {
		return false
	}
	if category != "" && Normalize(row.Category) != category {
		return false
	}
	if query != "" && !strings.Contains(Normalize(row.Counterparty), query) {
		return false
	}
	if f.HasInvoice != nil && row.HasInvoice != *f.HasInvoice {
		return false
	}
	if method != "" && Normalize(row.PaymentMethod) != method {
		return false
	}
	return true
}

// Key produces a canonical fingerprint of the filter for cache keys.
// Two filters with identical predicates always share a key.
func (f Filter) Key() string {
	parts := make([]string, 0, 10)
	if f.IssuedFrom != nil {
		parts = append(parts, "from="+f.IssuedFrom.Format("2006-01-02"))
	}
	if f.IssuedTo != nil {
		parts = append(parts, "to="+f.IssuedTo.Format("2006-01-02"))
	}
	if len(f.Branches) > 0 {
		branches := append([]int(nil), f.Branches...)
		sort.Ints(branches)
		ids := make([]string, 0, len(branches))
		for _, b := range branches {
			ids = append(ids, strconv.Itoa(b))
		}
		parts = append(parts, "branch="+strings.Join(ids, ","))
	}
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.OnlyPaid {
		parts = append(parts, "paid")
	}
	if f.OnlyOverdue {
		parts = append(parts, "overdue")
	}
	if f.Category != "" {
		parts = append(parts, "cat="+Normalize(f.Category))
	}
	if f.Counterparty != "" {
		parts = append(parts, "q="+Normalize(f.Counterparty))
	}
	if f.HasInvoice != nil {
		parts = append(parts, "inv="+strconv.FormatBool(*f.HasInvoice))
	}
	if f.Method != "" {
		parts = append(parts, "method="+Normalize(f.Method))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, "|")
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
