package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalizedNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"thousands separator with unit", "50,000 KG", 50000},
		{"currency", "$1,234.56", 1234.56},
		{"plain", "42", 42},
		{"negative", "-3.5", -3.5},
		{"decimal with unit", "98.6%", 98.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocalizedNumber(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("not numeric", func(t *testing.T) {
		_, err := ParseLocalizedNumber("N/A")
		assert.ErrorIs(t, err, ErrNotNumeric)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseLocalizedNumber("")
		assert.ErrorIs(t, err, ErrNotNumeric)
	})
}

func TestClassify(t *testing.T) {
	t.Run("normal metric", func(t *testing.T) {
		assert.Equal(t, StatusComplies, Classify(100, 100, false))
		assert.Equal(t, StatusComplies, Classify(120, 100, false))
		assert.Equal(t, StatusAlert, Classify(95, 100, false))
		assert.Equal(t, StatusAlert, Classify(90, 100, false)) // boundary stays alert
		assert.Equal(t, StatusNotCompliant, Classify(89.99, 100, false))
	})

	t.Run("inverted metric", func(t *testing.T) {
		assert.Equal(t, StatusComplies, Classify(58, 60, true))
		assert.Equal(t, StatusComplies, Classify(60, 60, true))
		assert.Equal(t, StatusAlert, Classify(65, 60, true))
		assert.Equal(t, StatusAlert, Classify(66, 60, true))
		assert.Equal(t, StatusNotCompliant, Classify(70, 60, true))
	})

	t.Run("zero target", func(t *testing.T) {
		assert.Equal(t, StatusComplies, Classify(0, 0, false))
		assert.Equal(t, StatusAlert, Classify(5, 0, false))
	})
}

func TestClassifyStrings(t *testing.T) {
	assert.Equal(t, StatusNotCompliant, ClassifyStrings("50,000 KG", "55,620 KG", false))
	assert.Equal(t, StatusComplies, ClassifyStrings("58 días", "60", true))
	assert.Equal(t, StatusAlert, ClassifyStrings("90", "100", false))

	t.Run("unparseable value", func(t *testing.T) {
		assert.Equal(t, StatusNotCompliant, ClassifyStrings("pendiente", "100", false))
	})
	t.Run("unparseable target", func(t *testing.T) {
		assert.Equal(t, StatusNotCompliant, ClassifyStrings("100", "TBD", false))
	})
}

func TestCompliancePercent(t *testing.T) {
	assert.Equal(t, "89.9%", CompliancePercent("50,000 KG", "55,620 KG", false))
	assert.Equal(t, "110.0%", CompliancePercent("110", "100", false))
	assert.Equal(t, "103.4%", CompliancePercent("58", "60", true))
	assert.Equal(t, "0.0%", CompliancePercent("N/A", "100", false))

	t.Run("inverted zero value", func(t *testing.T) {
		assert.Equal(t, "200.0%", CompliancePercent("0", "60", true))
	})
	t.Run("zero target", func(t *testing.T) {
		assert.Equal(t, "100.0%", CompliancePercent("5", "0", false))
		assert.Equal(t, "0.0%", CompliancePercent("0", "0", false))
	})
}

func TestSuggestInverted(t *testing.T) {
	assert.True(t, SuggestInverted("Días de cobro promedio"))
	assert.True(t, SuggestInverted("Tiempo de entrega nacional"))
	assert.True(t, SuggestInverted("Gastos operativos"))
	assert.False(t, SuggestInverted("Volumen de ventas"))
	assert.False(t, SuggestInverted("Margen bruto"))
}

func TestIsCriticalTransition(t *testing.T) {
	tests := []struct {
		from, to  Status
		critical  bool
		recovered bool
	}{
		{StatusComplies, StatusNotCompliant, true, false},
		{StatusAlert, StatusNotCompliant, true, false},
		{StatusNotCompliant, StatusComplies, true, true},
		{StatusComplies, StatusAlert, false, false},
		{StatusAlert, StatusComplies, false, false},
		{StatusNotCompliant, StatusAlert, false, false},
		{StatusComplies, StatusComplies, false, false},
	}
	for _, tt := range tests {
		critical, recovered := IsCriticalTransition(tt.from, tt.to)
		assert.Equal(t, tt.critical, critical, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.recovered, recovered, "%s -> %s", tt.from, tt.to)
	}
}
