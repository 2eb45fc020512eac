package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipsafe/slipsafe/constants"
)

func TestPipelineHardwareSlip(t *testing.T) {
	text := "BRICK PARADISE HARDWARE CC\n" +
		"45 Industrial Park\n" +
		"Date: 01/01/2025\n" +
		"Subtotal: 100.00\n" +
		"VAT: 15.00\n" +
		"TOTAL : 115.00\n" +
		"30 DAY RETURN POLICY"

	rec := NewPipeline(nil).Run(text)

	require.Nil(t, rec.Err)
	require.NotNil(t, rec.Merchant)
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", *rec.Merchant)

	require.NotNil(t, rec.NormalizedDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *rec.NormalizedDate)

	require.NotNil(t, rec.Total)
	assert.True(t, rec.Total.Equal(decimal.RequireFromString("115.00")))
	require.NotNil(t, rec.VATAmount)
	assert.True(t, rec.VATAmount.Equal(decimal.RequireFromString("15.00")))
	assert.Equal(t, constants.VATSourceExtracted, rec.VATSource)
	require.NotNil(t, rec.Subtotal)
	assert.True(t, rec.Subtotal.Equal(decimal.RequireFromString("100.00")))

	assert.Equal(t, constants.RefundFull, rec.Policy.RefundType)
	require.NotNil(t, rec.Policy.ReturnPolicyDays)
	assert.Equal(t, 30, *rec.Policy.ReturnPolicyDays)

	assert.Equal(t, constants.ConfidenceHigh, rec.Confidence)
	assert.InDelta(t, 1.0, rec.RawConfidenceScore, 1e-9)
}

func TestPipelineTooShortText(t *testing.T) {
	rec := NewPipeline(nil).Run("   abc  ")

	require.NotNil(t, rec.Err)
	assert.Equal(t, constants.ErrNoTextDetected, rec.Err.Code)
	assert.False(t, rec.Err.CanRetry)
}

func TestPipelineUnreadableTextIsLowQuality(t *testing.T) {
	rec := NewPipeline(nil).Run("@@ ## !! ~~ ^^ || {} [] == ::")

	require.NotNil(t, rec.Err)
	assert.Equal(t, constants.ErrLowQualityImage, rec.Err.Code)
	assert.True(t, rec.Err.CanRetry)
	assert.Nil(t, rec.Merchant)
	assert.Nil(t, rec.NormalizedDate)
	assert.Nil(t, rec.Total)
}

func TestPipelinePartialExtraction(t *testing.T) {
	rec := NewPipeline(nil).Run("BRICK PARADISE HARDWARE CC\nhave a nice day")

	require.NotNil(t, rec.Err)
	assert.Equal(t, constants.ErrPartialExtraction, rec.Err.Code)
	assert.ElementsMatch(t, []string{"date", "total"}, rec.Err.MissingFields)

	// The partial record still carries what was found.
	require.NotNil(t, rec.Merchant)
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", *rec.Merchant)
}

func TestPipelineAssumedVATWhenOnlyTotal(t *testing.T) {
	rec := NewPipeline(nil).Run("BUILD MART STORE\nDate: 2025-03-12\nTOTAL: 230.00")

	require.Nil(t, rec.Err)
	require.NotNil(t, rec.VATAmount)
	assert.True(t, rec.VATAmount.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, constants.VATSourceCalculated, rec.VATSource)
	require.NotNil(t, rec.Subtotal)
	assert.True(t, rec.Subtotal.Equal(decimal.RequireFromString("200.00")))
}

func TestPipelineUnparseableDateWarns(t *testing.T) {
	rec := NewPipeline(nil).Run("BUILD MART STORE\nDate: 99/99/2025\nTOTAL: 50.00")

	require.NotNil(t, rec.NormalizedDate)
	assert.NotEmpty(t, rec.Warnings)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "99/99/2025", *rec.Date)
}
