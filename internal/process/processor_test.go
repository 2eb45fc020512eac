package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/deadline"
	"github.com/slipsafe/slipsafe/internal/entity"
	"github.com/slipsafe/slipsafe/internal/extract"
	"github.com/slipsafe/slipsafe/internal/provider"
)

type fakeSupplier struct {
	res provider.SupplyResult
	err error
}

func (f *fakeSupplier) Supply(_ context.Context, _ provider.Input) (provider.SupplyResult, error) {
	return f.res, f.err
}

type fakeRules struct {
	rule *entity.MerchantRule
}

func (f *fakeRules) Lookup(_ context.Context, _ uuid.UUID, _ string) (*entity.MerchantRule, error) {
	return f.rule, nil
}

func newProcessor(s provider.TextSupplier, rules deadline.RuleLookup) *Processor {
	return NewProcessor(nil, s, extract.NewPipeline(nil), deadline.NewCalculator(rules, nil))
}

const slipText = "BRICK PARADISE HARDWARE CC\n" +
	"Date: 01/01/2025\n" +
	"Subtotal: 100.00\n" +
	"VAT: 15.00\n" +
	"TOTAL : 115.00\n" +
	"30 DAY RETURN POLICY"

func TestProcessFullFlow(t *testing.T) {
	p := newProcessor(&fakeSupplier{res: provider.SupplyResult{Text: slipText, Method: "text", Confidence: 0.9}}, &fakeRules{})

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{Text: slipText})
	require.NoError(t, err)
	require.Nil(t, rec.Receipt.Err)

	require.NotNil(t, rec.Receipt.Merchant)
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", *rec.Receipt.Merchant)
	require.NotNil(t, rec.Deadlines.ReturnBy)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), *rec.Deadlines.ReturnBy)
	assert.NotEqual(t, uuid.Nil, rec.ID)
}

func TestProcessSupplierFailure(t *testing.T) {
	p := newProcessor(&fakeSupplier{err: errors.New("all suppliers down")}, nil)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	require.NotNil(t, rec.Receipt.Err)
	assert.Equal(t, constants.ErrProcessingFailed, rec.Receipt.Err.Code)
	assert.True(t, rec.Receipt.Err.CanRetry)
}

func TestProcessLowProviderConfidence(t *testing.T) {
	p := newProcessor(&fakeSupplier{res: provider.SupplyResult{Text: slipText, Confidence: 0.05}}, nil)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	require.NotNil(t, rec.Receipt.Err)
	assert.Equal(t, constants.ErrLowQualityImage, rec.Receipt.Err.Code)
}

func TestProcessHintsFillMissingFields(t *testing.T) {
	// Text pass finds nothing usable; hints supply all three core fields and
	// clear the partial-extraction error.
	res := provider.SupplyResult{
		Text:       "loyalty programme terms and conditions apply to this slip",
		Confidence: 0.8,
		Hints: &provider.ReceiptHints{
			Merchant:  "BUILD MART",
			Date:      "01/01/2025",
			Total:     "115.00",
			VATAmount: "15.00",
		},
	}
	p := newProcessor(&fakeSupplier{res: res}, nil)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	assert.Nil(t, rec.Receipt.Err)

	require.NotNil(t, rec.Receipt.Merchant)
	assert.Equal(t, "BUILD MART", *rec.Receipt.Merchant)
	require.NotNil(t, rec.Receipt.NormalizedDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *rec.Receipt.NormalizedDate)
	require.NotNil(t, rec.Receipt.Total)
	assert.True(t, rec.Receipt.Total.Equal(decimal.RequireFromString("115.00")))
	assert.Equal(t, constants.VATSourceExtracted, rec.Receipt.VATSource)
	assert.Equal(t, constants.ConfidenceHigh, rec.Receipt.Confidence)
}

func TestProcessHintAmountsShareSanityBound(t *testing.T) {
	// Hint amounts obey the same 0 < amount < 1,000,000 bound as amounts
	// read from the receipt text.
	res := provider.SupplyResult{
		Text:       "loyalty programme terms and conditions apply to this slip",
		Confidence: 0.8,
		Hints: &provider.ReceiptHints{
			Total:     "99999999.99",
			VATAmount: "-4.00",
		},
	}
	p := newProcessor(&fakeSupplier{res: res}, nil)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	assert.Nil(t, rec.Receipt.Total)
	assert.Nil(t, rec.Receipt.VATAmount)
	assert.Equal(t, constants.VATSourceNone, rec.Receipt.VATSource)
}

func TestProcessHintsDoNotOverrideExtracted(t *testing.T) {
	res := provider.SupplyResult{
		Text:       slipText,
		Confidence: 0.9,
		Hints:      &provider.ReceiptHints{Merchant: "WRONG NAME", Total: "999.99"},
	}
	p := newProcessor(&fakeSupplier{res: res}, nil)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", *rec.Receipt.Merchant)
	assert.True(t, rec.Receipt.Total.Equal(decimal.RequireFromString("115.00")))
}

func TestProcessRuleFallbackPopulatesDeadlines(t *testing.T) {
	text := "BUILD MART STORE\nDate: 2025-03-12\nTOTAL: 230.00"
	rules := &fakeRules{rule: &entity.MerchantRule{ReturnPolicyDays: 30, WarrantyMonths: 12}}
	p := newProcessor(&fakeSupplier{res: provider.SupplyResult{Text: text, Confidence: 0.9}}, rules)

	rec, err := p.Process(context.Background(), uuid.New(), provider.Input{})
	require.NoError(t, err)
	require.NotNil(t, rec.Deadlines.ReturnBy)
	assert.Equal(t, time.Date(2025, 4, 11, 0, 0, 0, 0, time.UTC), *rec.Deadlines.ReturnBy)
	assert.Equal(t, constants.PolicySourceMerchantDefault, rec.Receipt.Policy.PolicySource)
}
