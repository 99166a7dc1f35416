package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fitlog/internal/domain"
)

func TestClassifyIMC_Boundaries(t *testing.T) {
	tests := []struct {
		imc  string
		want string
	}{
		{"18.49", "Bajo de Peso"},
		{"18.5", "Peso normal"},
		{"24.69", "Peso normal"},
		{"25.07", "Peso normal"},
		{"25.08", "Sobrepeso"},
		{"29.99", "Sobrepeso"},
		{"30", "Obesidad Ligera"},
		{"35.00", "Obesidad"},
		{"39.99", "Obesidad"},
		{"40.00", "Obesidad Grave"},
		{"55", "Obesidad Grave"},
		{"25,5", "Sobrepeso"},
		{"", "N/A"},
		{"n/a", "N/A"},
	}
	for _, tc := range tests {
		t.Run(tc.imc, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ClassifyIMC(tc.imc).Label)
		})
	}
}

func TestIMCTable_Partition(t *testing.T) {
	for i := 1; i < len(domain.IMCTable); i++ {
		prev, cur := domain.IMCTable[i-1], domain.IMCTable[i]
		assert.Equal(t, prev.Max, cur.Min, "gap between %q and %q", prev.Label, cur.Label)
		assert.Greater(t, cur.Severity, prev.Severity, "severity must grow with IMC")
	}
}

func TestLegacyIMCTable_HasGaps(t *testing.T) {
	// 24.95 falls between the old "Peso normal" and "Sobrepeso" bands.
	found := false
	for _, b := range domain.LegacyIMCTable {
		if 24.95 >= b.Min && 24.95 < b.Max {
			found = true
		}
	}
	assert.False(t, found)
	assert.Equal(t, "Peso normal", domain.ClassifyIMC("24.95").Label)
}
