package loader

import (
	"strconv"
	"strings"
	"time"

	"github.com/ledgerdash/ledgerdash/internal/title"
)

// Canonical column names of the normalized extract. Sources map their
// raw headers onto these before row decoding.
const (
	colNumber       = "TITULO"
	colBranch       = "FILIAL"
	colBranchName   = "NOME FILIAL"
	colCounterparty = "CONTRAPARTE"
	colCategory     = "CATEGORIA"
	colDocType      = "TIPO"
	colMethod       = "FORMA PAGAMENTO"
	colIssue        = "EMISSAO"
	colDue          = "VENCIMENTO"
	colActualDue    = "VENCIMENTO REAL"
	colSettlement   = "BAIXA"
	colOriginal     = "VALOR ORIGINAL"
	colBalance      = "SALDO"
	colRate         = "TAXA MOEDA"
	colInterest     = "JUROS"
	colPenalty      = "MULTA"
	colDiscount     = "DESCONTO"
	colCorrection   = "CORRECAO"
	colOther        = "OUTROS ACRESCIMOS"
)

// headerAliases folds the header variants seen across ERP extracts
// onto the canonical column set. Keys are pre-normalized.
var headerAliases = map[string]string{
	"NUMERO":             colNumber,
	"NUM TITULO":         colNumber,
	"NO TITULO":          colNumber,
	"DOCUMENTO":          colNumber,
	"COD FILIAL":         colBranch,
	"FORNECEDOR":         colCounterparty,
	"NOME FORNECEDOR":    colCounterparty,
	"CLIENTE":            colCounterparty,
	"NOME CLIENTE":       colCounterparty,
	"RAZAO SOCIAL":       colCounterparty,
	"NATUREZA":           colCategory,
	"TIPO DOC":           colDocType,
	"TIPO DOCUMENTO":     colDocType,
	"ESPECIE":            colDocType,
	"FORMA PAGTO":        colMethod,
	"FORMA DE PAGAMENTO": colMethod,
	"COND PAGTO":         colMethod,
	"DT EMISSAO":         colIssue,
	"DATA EMISSAO":       colIssue,
	"DT VENCIMENTO":      colDue,
	"DATA VENCIMENTO":    colDue,
	"VENCTO":             colDue,
	"VENCTO REAL":        colActualDue,
	"VENCIMENTO REAL":    colActualDue,
	"DT BAIXA":           colSettlement,
	"DATA BAIXA":         colSettlement,
	"QUITACAO":           colSettlement,
	"DATA QUITACAO":      colSettlement,
	"VLR ORIGINAL":       colOriginal,
	"VALOR TITULO":       colOriginal,
	"VALOR NOMINAL":      colOriginal,
	"VLR SALDO":          colBalance,
	"SALDO ABERTO":       colBalance,
	"TX MOEDA":           colRate,
	"VLR JUROS":          colInterest,
	"VLR MULTA":          colPenalty,
	"VLR DESCONTO":       colDiscount,
	"VLR CORRECAO":       colCorrection,
	"ACRESCIMOS":         colOther,
}

// canonicalHeader maps one raw header cell to a canonical column name,
// or "" when the column is unknown (unknown columns are ignored).
func canonicalHeader(raw string) string {
	key := title.Normalize(raw)
	if key == "" {
		return ""
	}
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	switch key {
	case colNumber, colBranch, colBranchName, colCounterparty, colCategory,
		colDocType, colMethod, colIssue, colDue, colActualDue, colSettlement,
		colOriginal, colBalance, colRate, colInterest, colPenalty,
		colDiscount, colCorrection, colOther:
		return key
	}
	return ""
}

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02/01/06",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
}

// parseDate coerces a raw cell to a date. Unparseable input yields nil
// rather than an error; the classifier degrades such rows to
// NoDueDate.
func parseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// parseAmount coerces a raw cell to a number, accepting both Brazilian
// ("1.234,56") and plain ("1234.56") notation. Unparseable input
// yields 0.
func parseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimPrefix(s, "R$")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseIntField(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return value
}

// decodeRecord builds one FinancialTitle from a canonical-keyed record.
// Missing or malformed fields repair to zero values; a row is never
// rejected for data quality.
func decodeRecord(rec map[string]string, side title.Side) title.FinancialTitle {
	t := title.FinancialTitle{
		Number:        strings.TrimSpace(rec[colNumber]),
		Side:          side,
		Branch:        parseIntField(rec[colBranch]),
		BranchName:    strings.TrimSpace(rec[colBranchName]),
		Counterparty:  strings.TrimSpace(rec[colCounterparty]),
		Category:      strings.TrimSpace(rec[colCategory]),
		DocumentType:  strings.TrimSpace(rec[colDocType]),
		PaymentMethod: strings.TrimSpace(rec[colMethod]),

		OriginalAmount: parseAmount(rec[colOriginal]),
		Balance:        parseAmount(rec[colBalance]),
		CurrencyRate:   parseAmount(rec[colRate]),
		Interest:       parseAmount(rec[colInterest]),
		Penalty:        parseAmount(rec[colPenalty]),
		Discount:       parseAmount(rec[colDiscount]),
		Correction:     parseAmount(rec[colCorrection]),
		OtherCharges:   parseAmount(rec[colOther]),
	}
	if issue := parseDate(rec[colIssue]); issue != nil {
		t.IssueDate = *issue
	}
	t.DueDate = parseDate(rec[colDue])
	t.ActualDueDate = parseDate(rec[colActualDue])
	t.SettlementDate = parseDate(rec[colSettlement])
	return t
}

// decodeTable converts a header row plus data rows into titles.
func decodeTable(rows [][]string, side title.Side) []title.FinancialTitle {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	columns := make([]string, len(header))
	for i, cell := range header {
		columns[i] = canonicalHeader(cell)
	}
	titles := make([]title.FinancialTitle, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		rec := make(map[string]string, len(columns))
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			rec[columns[i]] = cell
		}
		titles = append(titles, decodeRecord(rec, side))
	}
	return titles
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
