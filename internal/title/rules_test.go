package title

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "TRANSFERENCIA BANCARIA", Normalize("Transferência Bancária"))
	require.Equal(t, "ADIANTAMENTO CAMBIO", Normalize("  adiantamento/câmbio "))
	require.Equal(t, "SAO PAULO LTDA", Normalize("São Paulo - LTDA."))
	require.Equal(t, "", Normalize("  ---  "))
}

func TestMethodNormalizerSynonyms(t *testing.T) {
	m := NewMethodNormalizer(DefaultRuleSet())

	require.Equal(t, MethodPix, m.Canonical("pix"))
	require.Equal(t, MethodBoleto, m.Canonical("Boleto Bancário"))
	require.Equal(t, MethodTransfer, m.Canonical("TED"))
	require.Equal(t, MethodCreditCard, m.Canonical("Cartão de Crédito"))
	require.Equal(t, MethodCompensation, m.Canonical("encontro de contas"))
	require.Equal(t, MethodOther, m.Canonical(""))
}

func TestMethodNormalizerFuzzyFallback(t *testing.T) {
	m := NewMethodNormalizer(DefaultRuleSet())

	// Typos close to a canonical method resolve via fuzzy match.
	require.Equal(t, MethodBoleto, m.Canonical("BOLETOS"))
	require.Equal(t, MethodTransfer, m.Canonical("TRANSFERENCIAS"))

	// Unrelated free text never gets forced onto a method.
	require.Equal(t, MethodOther, m.Canonical("FOLHA DE PAGAMENTO"))
}

func TestRuleSetValidate(t *testing.T) {
	rules := DefaultRuleSet()
	require.NoError(t, rules.Validate())

	rules.AgingCutoffs = []int{7, 7, 30}
	require.Error(t, rules.Validate())

	rules = DefaultRuleSet()
	rules.ABCThresholdB = 50 // below threshold A
	require.Error(t, rules.Validate())
}

func TestLoadRuleSetOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	payload := `{"intercompany_patterns":["GRUPO TESTE"],"aging_cutoffs":[5,10,20,40],"abc_threshold_a":70,"abc_threshold_b":90}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	rules, err := LoadRuleSet(path)
	require.NoError(t, err)
	require.Equal(t, []string{"GRUPO TESTE"}, rules.IntercompanyPatterns)
	require.Equal(t, []int{5, 10, 20, 40}, rules.AgingCutoffs)
	require.InDelta(t, 70.0, rules.ABCThresholdA, 0.001)

	// Defaults survive for fields the override file does not mention.
	require.NotEmpty(t, rules.FinancialCostTokens)
}

func TestLoadRuleSetEmptyPath(t *testing.T) {
	rules, err := LoadRuleSet("")
	require.NoError(t, err)
	require.Equal(t, DefaultRuleSet(), rules)
}
