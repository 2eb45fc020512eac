package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipsafe/slipsafe/constants"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &v
}

func TestExtractVAT(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain label", "VAT: 15.00", "15.00"},
		{"no colon", "VAT 15.00", "15.00"},
		{"with rate", "VAT @ 15%: 28.57", "28.57"},
		{"tax label", "TAX: 8.70", "8.70"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVAT(tt.text)
			require.NotNil(t, got)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	assert.Nil(t, ExtractVAT("no tax lines here"))
}

func TestReconcileTaxExtractedWins(t *testing.T) {
	res := ReconcileTax(dec(t, "115.00"), nil, dec(t, "15.00"))

	assert.Equal(t, constants.VATSourceExtracted, res.VATSource)
	require.NotNil(t, res.VATAmount)
	assert.True(t, res.VATAmount.Equal(decimal.RequireFromString("15.00")))
	require.NotNil(t, res.Subtotal)
	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("100.00")))
}

func TestReconcileTaxExtractedKeepsKnownSubtotal(t *testing.T) {
	res := ReconcileTax(dec(t, "115.00"), dec(t, "100.00"), dec(t, "15.00"))

	assert.Equal(t, constants.VATSourceExtracted, res.VATSource)
	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("100.00")))
}

func TestReconcileTaxCalculatedFromSubtotal(t *testing.T) {
	// Implied rate 28.57/190.43 ≈ 15%, inside the acceptance band.
	res := ReconcileTax(dec(t, "219.00"), dec(t, "190.43"), nil)

	assert.Equal(t, constants.VATSourceCalculated, res.VATSource)
	require.NotNil(t, res.VATAmount)
	assert.True(t, res.VATAmount.Equal(decimal.RequireFromString("28.57")))
	require.NotNil(t, res.Subtotal)
	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("190.43")))
}

func TestReconcileTaxImpliedRateOutOfBand(t *testing.T) {
	// 50.00 VAT on a 50.00 subtotal implies 100%: the subtotal line was
	// misread, so the assumed inclusive rate applies instead.
	res := ReconcileTax(dec(t, "100.00"), dec(t, "50.00"), nil)

	assert.Equal(t, constants.VATSourceCalculated, res.VATSource)
	require.NotNil(t, res.VATAmount)
	assert.True(t, res.VATAmount.Equal(decimal.RequireFromString("13.04")), "got %s", res.VATAmount)
	require.NotNil(t, res.Subtotal)
	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("86.96")))
}

func TestReconcileTaxAssumedInclusiveRate(t *testing.T) {
	res := ReconcileTax(dec(t, "115.00"), nil, nil)

	assert.Equal(t, constants.VATSourceCalculated, res.VATSource)
	require.NotNil(t, res.VATAmount)
	assert.True(t, res.VATAmount.Equal(decimal.RequireFromString("15.00")))
	require.NotNil(t, res.Subtotal)
	assert.True(t, res.Subtotal.Equal(decimal.RequireFromString("100.00")))
}

func TestReconcileTaxNothingKnown(t *testing.T) {
	res := ReconcileTax(nil, nil, nil)

	assert.Equal(t, constants.VATSourceNone, res.VATSource)
	assert.Nil(t, res.VATAmount)
	assert.Nil(t, res.Subtotal)
}
