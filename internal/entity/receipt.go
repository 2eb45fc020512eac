package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/slipsafe/slipsafe/constants"
)

// ExtractedReceipt is the structured output of the extraction pipeline for
// one receipt text payload. All optional fields are nil when not found.
type ExtractedReceipt struct {
	Merchant       *string             `json:"merchant,omitempty"`
	Date           *string             `json:"date,omitempty"` // raw token as it appeared on the slip
	NormalizedDate *time.Time          `json:"normalized_date,omitempty"`
	Total          *decimal.Decimal    `json:"total,omitempty"`
	Subtotal       *decimal.Decimal    `json:"subtotal,omitempty"`
	VATAmount      *decimal.Decimal    `json:"vat_amount,omitempty"`
	VATSource      constants.VATSource `json:"vat_source"`
	InvoiceNumber  *string             `json:"invoice_number,omitempty"`
	Policy         PolicyInfo          `json:"policy"`

	Confidence         constants.ConfidenceLevel `json:"confidence"`
	RawConfidenceScore float64                   `json:"raw_confidence_score"`

	Warnings []string  `json:"warnings,omitempty"`
	Err      *OCRError `json:"error,omitempty"`
}

// MissingCoreFields names whichever of merchant/date/total were not extracted.
func (r *ExtractedReceipt) MissingCoreFields() []string {
	var missing []string
	if r.Merchant == nil {
		missing = append(missing, "merchant")
	}
	if r.NormalizedDate == nil {
		missing = append(missing, "date")
	}
	if r.Total == nil {
		missing = append(missing, "total")
	}
	return missing
}
