package title

import (
	"time"
)

// Side distinguishes payable from receivable titles.
type Side string

const (
	SidePayable    Side = "PAYABLE"
	SideReceivable Side = "RECEIVABLE"
)

// DueStatus enumerates the canonical due-date classification of a title.
type DueStatus string

const (
	StatusPaid          DueStatus = "PAID"
	StatusNoDueDate     DueStatus = "NO_DUE_DATE"
	StatusOverdue       DueStatus = "OVERDUE"
	StatusDueIn7Days    DueStatus = "DUE_7"
	StatusDueIn15Days   DueStatus = "DUE_15"
	StatusDueIn30Days   DueStatus = "DUE_30"
	StatusDueIn60Days   DueStatus = "DUE_60"
	StatusDueBeyond60   DueStatus = "DUE_60_PLUS"
)

// StatusOrder fixes the display order of all statuses. Aggregations
// reindex against this list so empty buckets never disappear.
var StatusOrder = []DueStatus{
	StatusOverdue,
	StatusDueIn7Days,
	StatusDueIn15Days,
	StatusDueIn30Days,
	StatusDueIn60Days,
	StatusDueBeyond60,
	StatusNoDueDate,
	StatusPaid,
}

// Label returns the display label used by dashboard tables.
func (s DueStatus) Label() string {
	switch s {
	case StatusPaid:
		return "Pago"
	case StatusNoDueDate:
		return "Sem Vencimento"
	case StatusOverdue:
		return "Vencido"
	case StatusDueIn7Days:
		return "A vencer 7 dias"
	case StatusDueIn15Days:
		return "A vencer 15 dias"
	case StatusDueIn30Days:
		return "A vencer 30 dias"
	case StatusDueIn60Days:
		return "A vencer 60 dias"
	case StatusDueBeyond60:
		return "A vencer +60 dias"
	default:
		return string(s)
	}
}

// FinancialTitle models one ledger line item (a "titulo"): an invoice,
// bill or advance on either the payables or receivables side. The
// system is read-only relative to the ledger; only Balance and
// SettlementDate change between successive loads.
type FinancialTitle struct {
	Number         string
	Side           Side
	Branch         int
	BranchName     string
	Counterparty   string
	Category       string
	DocumentType   string
	PaymentMethod  string
	IssueDate      time.Time
	DueDate        *time.Time
	ActualDueDate  *time.Time
	SettlementDate *time.Time
	OriginalAmount float64
	Balance        float64
	CurrencyRate   float64
	Interest       float64
	Penalty        float64
	Discount       float64
	Correction     float64
	OtherCharges   float64
}

// EffectiveDueDate prefers the renegotiated due date when present.
func (t FinancialTitle) EffectiveDueDate() *time.Time {
	if t.ActualDueDate != nil {
		return t.ActualDueDate
	}
	return t.DueDate
}

// Settled reports whether the title carries no open balance. By
// convention a negative balance (overpayment residue) also counts as
// settled.
func (t FinancialTitle) Settled() bool {
	return t.Balance <= 0
}

// ForeignCurrency applies the source heuristic: a currency rate above
// one signals a USD/foreign operation.
func (t FinancialTitle) ForeignCurrency() bool {
	return t.CurrencyRate > 1
}

// ClassifiedTitle is a FinancialTitle plus the derived fields owned by
// the Classifier. Derived fields are recomputed on every load and are
// never persisted.
type ClassifiedTitle struct {
	FinancialTitle

	Status          DueStatus
	DaysToDue       int
	DaysOverdue     int
	HasInvoice      bool
	IsIntercompany  bool
	IsAdvance       bool
	IsFinancialCost bool
	BalanceAnomaly  bool
}

// CounterpartyPosition is the netting view of one counterparty across
// both sides of the ledger. Computed on demand, never persisted.
type CounterpartyPosition struct {
	Counterparty string  `json:"counterparty"`
	Payable      float64 `json:"payable"`
	Receivable   float64 `json:"receivable"`
	Net          float64 `json:"net"`
	Creditor     bool    `json:"creditor"`
}
