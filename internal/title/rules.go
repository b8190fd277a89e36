package title

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validate = validator.New()

// RuleSet holds every configurable classification input: name patterns,
// document-type sets, description tokens, the payment-method synonym
// map and the aging/ABC cutoffs. An empty pattern list disables the
// corresponding flag rather than erroring.
type RuleSet struct {
	IntercompanyPatterns []string `json:"intercompany_patterns"`
	ExcludedDocTypes     []string `json:"excluded_doc_types"`
	AdvanceDocTypes      []string `json:"advance_doc_types"`
	AdvanceTokens        []string `json:"advance_tokens"`
	FinancialCostTokens  []string `json:"financial_cost_tokens"`
	InvoiceDocTypes      []string `json:"invoice_doc_types"`

	PaymentMethodSynonyms map[string]string `json:"payment_method_synonyms"`

	AgingCutoffs []int `json:"aging_cutoffs" validate:"required,min=1,dive,gt=0"`

	ABCThresholdA float64 `json:"abc_threshold_a" validate:"gt=0,lt=100"`
	ABCThresholdB float64 `json:"abc_threshold_b" validate:"gt=0,lte=100,gtefield=ABCThresholdA"`
}

// Canonical payment methods the synonym map resolves to.
const (
	MethodPix          = "PIX"
	MethodBoleto       = "BOLETO"
	MethodTransfer     = "TRANSFERENCIA"
	MethodCreditCard   = "CARTAO CREDITO"
	MethodDebitCard    = "CARTAO DEBITO"
	MethodCash         = "DINHEIRO"
	MethodCheck        = "CHEQUE"
	MethodCompensation = "COMPENSACAO"
	MethodDeposit      = "DEPOSITO"
	MethodOther        = "OUTROS"
)

var canonicalMethods = []string{
	MethodPix, MethodBoleto, MethodTransfer, MethodCreditCard,
	MethodDebitCard, MethodCash, MethodCheck, MethodCompensation,
	MethodDeposit,
}

// DefaultRuleSet mirrors the classification rules of the finance
// team's ledger extracts.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		ExcludedDocTypes: []string{"PA", "RA"},
		AdvanceDocTypes:  []string{"ADT", "NDF"},
		AdvanceTokens:    []string{"ADTO", "ADIANT"},
		FinancialCostTokens: []string{
			"TAXA", "TARIFA", "JUROS", "BANC", "MULTA", "IOF",
		},
		InvoiceDocTypes: []string{"NF", "NFS", "CTE", "FAT"},
		PaymentMethodSynonyms: map[string]string{
			"PIX":                MethodPix,
			"QR PIX":             MethodPix,
			"BOL":                MethodBoleto,
			"BOLETO":             MethodBoleto,
			"BOLETO BANCARIO":    MethodBoleto,
			"TED":                MethodTransfer,
			"DOC":                MethodTransfer,
			"TRANSF":             MethodTransfer,
			"TRANSFERENCIA":      MethodTransfer,
			"CARTAO":             MethodCreditCard,
			"CARTAO DE CREDITO":  MethodCreditCard,
			"CREDITO":            MethodCreditCard,
			"CARTAO DE DEBITO":   MethodDebitCard,
			"DEBITO":             MethodDebitCard,
			"DINHEIRO":           MethodCash,
			"ESPECIE":            MethodCash,
			"CHEQUE":             MethodCheck,
			"CHQ":                MethodCheck,
			"COMPENSACAO":        MethodCompensation,
			"ENCONTRO DE CONTAS": MethodCompensation,
			"DEPOSITO":           MethodDeposit,
			"DEP":                MethodDeposit,
		},
		AgingCutoffs:  []int{7, 15, 30, 60},
		ABCThresholdA: 80,
		ABCThresholdB: 95,
	}
}

// LoadRuleSet reads JSON overrides on top of the defaults. An empty
// path returns the defaults untouched.
func LoadRuleSet(path string) (*RuleSet, error) {
	rules := DefaultRuleSet()
	if path == "" {
		return rules, rules.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("title: read rules: %w", err)
	}
	if err := json.Unmarshal(raw, rules); err != nil {
		return nil, fmt.Errorf("title: parse rules: %w", err)
	}
	return rules, rules.Validate()
}

// Validate checks structural constraints on the rule set.
func (r *RuleSet) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("title: invalid rule set: %w", err)
	}
	for i := 1; i < len(r.AgingCutoffs); i++ {
		if r.AgingCutoffs[i] <= r.AgingCutoffs[i-1] {
			return fmt.Errorf("title: aging cutoffs must be strictly increasing")
		}
	}
	return nil
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9 ]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Normalize folds ledger text for matching: accents stripped (NFD with
// combining marks removed), uppercased, punctuation collapsed to
// single spaces. The extracts come from a Brazilian ERP, so matching
// must not depend on accents or casing.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToUpper(folded)
	folded = nonAlphanumeric.ReplaceAllString(folded, " ")
	folded = whitespaceRun.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// MethodNormalizer resolves free-text payment methods to the canonical
// set: exact synonym lookup first, then a fuzzy closest-match fallback
// for the usual extract typos, else MethodOther.
type MethodNormalizer struct {
	synonyms map[string]string
	matcher  *closestmatch.ClosestMatch
}

// NewMethodNormalizer builds the normalizer from the rule set synonym map.
func NewMethodNormalizer(rules *RuleSet) *MethodNormalizer {
	synonyms := make(map[string]string, len(rules.PaymentMethodSynonyms))
	for raw, canonical := range rules.PaymentMethodSynonyms {
		synonyms[Normalize(raw)] = canonical
	}
	return &MethodNormalizer{
		synonyms: synonyms,
		matcher:  closestmatch.New(canonicalMethods, []int{2, 3}),
	}
}

// Canonical maps one raw payment-method string to its canonical form.
func (m *MethodNormalizer) Canonical(raw string) string {
	key := Normalize(raw)
	if key == "" {
		return MethodOther
	}
	if canonical, ok := m.synonyms[key]; ok {
		return canonical
	}
	for _, canonical := range canonicalMethods {
		if key == canonical {
			return canonical
		}
	}
	if closest := m.matcher.Closest(strings.ToLower(key)); closest != "" && sharesPrefix(key, closest, 3) {
		return closest
	}
	return MethodOther
}

// sharesPrefix guards the fuzzy fallback so unrelated free text is not
// forced onto a canonical method.
func sharesPrefix(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return a == b
	}
	return a[:n] == b[:n]
}
