package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/entity"
)

func TestPurchasesXLSX(t *testing.T) {
	merchant := "BRICK PARADISE HARDWARE CC"
	total := decimal.RequireFromString("115.00")
	vat := decimal.RequireFromString("15.00")
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	returnBy := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	days := 30

	records := []*entity.PurchaseRecord{
		{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Receipt: entity.ExtractedReceipt{
				Merchant:       &merchant,
				NormalizedDate: &date,
				Total:          &total,
				VATAmount:      &vat,
				VATSource:      constants.VATSourceExtracted,
				Policy: entity.PolicyInfo{
					RefundType:       constants.RefundFull,
					ReturnPolicyDays: &days,
				},
				Confidence: constants.ConfidenceHigh,
			},
			Deadlines: entity.Deadlines{ReturnBy: &returnBy},
		},
		{
			ID:      uuid.New(),
			Receipt: entity.ExtractedReceipt{Confidence: constants.ConfidenceLow},
		},
	}

	data, err := NewService(nil).PurchasesXLSX(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Purchases")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 records

	assert.Equal(t, "Merchant", rows[0][0])
	assert.Equal(t, "BRICK PARADISE HARDWARE CC", rows[1][0])
	assert.Equal(t, "2025-01-01", rows[1][1])
	assert.Equal(t, "115.00", rows[1][2])
	assert.Equal(t, "15.00", rows[1][3])
	assert.Equal(t, "full", rows[1][6])
	assert.Equal(t, "2025-01-31", rows[1][7])
	assert.Equal(t, "high", rows[1][9])
}

func TestPurchasesXLSXEmpty(t *testing.T) {
	data, err := NewService(nil).PurchasesXLSX(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
