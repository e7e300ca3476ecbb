package validation

import "testing"

func TestSanitizeDescription(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "Pagamento Cliente", "Pagamento Cliente"},
		{"html stripped", "<script>alert(1)</script>Taxa", "Taxa"},
		{"formula trigger neutralized", "=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"leading at neutralized", "@cmd", "'@cmd"},
		{"leading dash neutralized", "-desconto", "'-desconto"},
		{"control characters dropped", "Tarifa\x00mensal", "Tarifamensal"},
		{"empty stays empty", "", ""},
		{"accented text preserved", "Sem descrição", "Sem descrição"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeDescription(tc.input); got != tc.expected {
				t.Errorf("SanitizeDescription(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitizeForFormulaInjectionIgnoresLeadingSpace(t *testing.T) {
	// The trigger check runs on the trimmed string but the original spacing
	// is preserved in the output.
	got := SanitizeForFormulaInjection("  =1+1")
	if got != "'  =1+1" {
		t.Errorf("SanitizeForFormulaInjection(%q) = %q", "  =1+1", got)
	}
}
