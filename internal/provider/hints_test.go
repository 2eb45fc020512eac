package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHints(t *testing.T) {
	raw := "```json\n" +
		`{"merchant": "BRICK PARADISE HARDWARE CC", "date": "01/01/2025", "total": "115.00", "vat_amount": "15.00"}` +
		"\n```"

	h, err := ParseHints(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", h.Merchant)
	assert.Equal(t, "01/01/2025", h.Date)
	assert.Equal(t, "115.00", h.Total)
	assert.Equal(t, "15.00", h.VATAmount)
}

func TestParseHintsCoercesAndRenames(t *testing.T) {
	raw := `some preamble {"merchant_name": "BUILD MART", "amount": 219.0, "vat": 28.57, "extra_field": "x"} trailing`

	h, err := ParseHints(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "BUILD MART", h.Merchant)
	assert.Equal(t, "219.00", h.Total)
	assert.Equal(t, "28.57", h.VATAmount)
}

func TestParseHintsDropsNullAndEmpty(t *testing.T) {
	raw := `{"merchant": "BUILD MART", "total": null, "subtotal": "", "invoice_number": "  "}`

	h, err := ParseHints(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "BUILD MART", h.Merchant)
	assert.Empty(t, h.Total)
	assert.Empty(t, h.Subtotal)
	assert.Empty(t, h.InvoiceNumber)
}

func TestParseHintsRejectsNonJSON(t *testing.T) {
	_, err := ParseHints("no structured data here", nil)
	assert.Error(t, err)
}

func TestParseHintsRejectsMalformedMoney(t *testing.T) {
	_, err := ParseHints(`{"total": "about a hundred"}`, nil)
	assert.Error(t, err)
}
