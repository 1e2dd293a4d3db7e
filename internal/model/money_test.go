package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice string
		discount  string
		want      string
	}{
		{"plain", 2, "12.50", "0", "25.00"},
		{"with discount", 2, "12.50", "5.00", "20.00"},
		{"discount floors at zero", 1, "3.00", "10.00", "0"},
		{"fractional price", 3, "3.50", "0", "10.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.quantity,
				decimal.RequireFromString(tt.unitPrice),
				decimal.RequireFromString(tt.discount))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestVATOf(t *testing.T) {
	got := VATOf(decimal.RequireFromString("59.30"))
	assert.True(t, got.Equal(decimal.RequireFromString("11.86")), "got %s", got)

	// Rounded to two decimals.
	got = VATOf(decimal.RequireFromString("0.03"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.01")), "got %s", got)
}
