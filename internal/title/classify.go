package title

import (
	"math"
	"strings"
	"time"
)

// Classifier derives the status, day counts and exclusion flags of a
// title. Classification is a pure function of (title, now); the
// classifier itself only carries pre-normalized rule material and is
// safe for concurrent use.
type Classifier struct {
	rules *RuleSet

	intercompany  []string
	advanceTokens []string
	costTokens    []string
	advanceDocs   map[string]struct{}
	invoiceDocs   map[string]struct{}
	excludedDocs  map[string]struct{}
}

// NewClassifier pre-normalizes the rule set once so per-row matching
// stays allocation free.
func NewClassifier(rules *RuleSet) *Classifier {
	c := &Classifier{
		rules:        rules,
		advanceDocs:  make(map[string]struct{}, len(rules.AdvanceDocTypes)),
		invoiceDocs:  make(map[string]struct{}, len(rules.InvoiceDocTypes)),
		excludedDocs: make(map[string]struct{}, len(rules.ExcludedDocTypes)),
	}
	for _, p := range rules.IntercompanyPatterns {
		if n := Normalize(p); n != "" {
			c.intercompany = append(c.intercompany, n)
		}
	}
	for _, tok := range rules.AdvanceTokens {
		if n := Normalize(tok); n != "" {
			c.advanceTokens = append(c.advanceTokens, n)
		}
	}
	for _, tok := range rules.FinancialCostTokens {
		if n := Normalize(tok); n != "" {
			c.costTokens = append(c.costTokens, n)
		}
	}
	for _, doc := range rules.AdvanceDocTypes {
		c.advanceDocs[Normalize(doc)] = struct{}{}
	}
	for _, doc := range rules.InvoiceDocTypes {
		c.invoiceDocs[Normalize(doc)] = struct{}{}
	}
	for _, doc := range rules.ExcludedDocTypes {
		c.excludedDocs[Normalize(doc)] = struct{}{}
	}
	return c
}

// Rules exposes the rule set the classifier was built from.
func (c *Classifier) Rules() *RuleSet { return c.rules }

// Classify computes the full derived record for one title. Exactly one
// status applies at any evaluation instant; malformed inputs degrade
// the classification (NoDueDate, zero amounts) and never reject the
// row.
func (c *Classifier) Classify(t FinancialTitle, now time.Time) ClassifiedTitle {
	ct := ClassifiedTitle{FinancialTitle: t}

	ct.Status, ct.DaysToDue = c.status(t, now)
	if ct.Status == StatusOverdue {
		ct.DaysOverdue = -ct.DaysToDue
	}

	counterparty := Normalize(t.Counterparty)
	description := Normalize(t.Category)
	docType := Normalize(t.DocumentType)

	ct.IsIntercompany = matchAny(counterparty, c.intercompany)
	ct.IsAdvance = docTypeIn(docType, c.advanceDocs) || matchAny(description, c.advanceTokens)
	ct.IsFinancialCost = matchAny(description, c.costTokens)
	ct.HasInvoice = docTypeIn(docType, c.invoiceDocs)
	ct.BalanceAnomaly = math.Abs(t.Balance) > math.Abs(t.OriginalAmount)

	return ct
}

// ClassifyAll classifies a whole extract against a single evaluation
// instant.
func (c *Classifier) ClassifyAll(titles []FinancialTitle, now time.Time) []ClassifiedTitle {
	out := make([]ClassifiedTitle, 0, len(titles))
	for _, t := range titles {
		out = append(out, c.Classify(t, now))
	}
	return out
}

// status applies the priority-ordered derivation: settled wins over
// everything, a missing due date short-circuits, and the day buckets
// are inclusive on their upper bound. Due exactly today is DueIn7Days,
// never Overdue.
func (c *Classifier) status(t FinancialTitle, now time.Time) (DueStatus, int) {
	due := t.EffectiveDueDate()
	if t.Balance <= 0 {
		// DaysToDue stays meaningful on settled rows; Paid is terminal
		// for the bucket only.
		if due == nil {
			return StatusPaid, 0
		}
		return StatusPaid, daysBetween(now, *due)
	}
	if due == nil {
		return StatusNoDueDate, 0
	}
	days := daysBetween(now, *due)
	if days < 0 {
		return StatusOverdue, days
	}
	cutoffs := c.rules.AgingCutoffs
	buckets := []DueStatus{StatusDueIn7Days, StatusDueIn15Days, StatusDueIn30Days, StatusDueIn60Days}
	for i, cutoff := range cutoffs {
		if i >= len(buckets) {
			break
		}
		if days <= cutoff {
			return buckets[i], days
		}
	}
	return StatusDueBeyond60, days
}

// daysBetween counts whole calendar days from a to b, negative when b
// precedes a. Both instants are truncated to their calendar date so
// the result carries date-subtraction semantics, not rounded hours.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

func matchAny(text string, patterns []string) bool {
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func docTypeIn(docType string, set map[string]struct{}) bool {
	if docType == "" {
		return false
	}
	_, ok := set[docType]
	return ok
}
