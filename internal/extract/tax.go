package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/slipsafe/slipsafe/constants"
)

// South African VAT has been 15% since April 2018; receipts here quote
// VAT-inclusive totals.
var (
	vatRate        = decimal.NewFromFloat(0.15)
	vatDivisor     = decimal.NewFromFloat(1.15)
	minImpliedRate = decimal.NewFromFloat(0.05)
	maxImpliedRate = decimal.NewFromFloat(0.30)
)

var vatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bVAT(?:[^\S\n]*@?[^\S\n]*15[^\S\n]*%)?[^\S\n]*:?` + amountPattern),
	regexp.MustCompile(`(?i)\bTAX[^\S\n]*:?` + amountPattern),
}

// TaxResult is the reconciled VAT/subtotal view of a receipt.
type TaxResult struct {
	VATAmount *decimal.Decimal
	Subtotal  *decimal.Decimal
	VATSource constants.VATSource
}

// ExtractVAT finds an explicitly printed VAT/tax amount in the text.
func ExtractVAT(text string) *decimal.Decimal {
	for _, re := range vatPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				return v
			}
		}
	}
	return nil
}

// ReconcileTax derives the VAT amount and subtotal when they are not
// explicitly present, preferring extraction over inference:
//
//  1. explicit VAT on the slip wins (source=extracted);
//  2. else total minus a smaller known subtotal, accepted only when the
//     implied rate sits inside the 5%–30% sanity band (source=calculated);
//  3. else assume the 15% VAT-inclusive rate (source=calculated).
//
// When VAT is known but the subtotal is not, the subtotal is derived as
// total minus VAT.
func ReconcileTax(total, subtotal, extractedVAT *decimal.Decimal) TaxResult {
	res := TaxResult{Subtotal: subtotal, VATSource: constants.VATSourceNone}

	if extractedVAT != nil {
		res.VATAmount = extractedVAT
		res.VATSource = constants.VATSourceExtracted
		if subtotal == nil && total != nil {
			derived := total.Sub(*extractedVAT)
			if derived.IsPositive() {
				res.Subtotal = &derived
			}
		}
		return res
	}

	if total == nil {
		return res
	}

	if subtotal != nil && subtotal.LessThan(*total) && subtotal.IsPositive() {
		vat := total.Sub(*subtotal)
		rate := vat.Div(*subtotal)
		if rate.GreaterThanOrEqual(minImpliedRate) && rate.LessThanOrEqual(maxImpliedRate) {
			res.VATAmount = &vat
			res.VATSource = constants.VATSourceCalculated
			return res
		}
		// Implied rate out of band: the subtotal line was probably
		// misdetected, so fall through to the assumed rate.
	}

	vat := total.Div(vatDivisor).Mul(vatRate).Round(2)
	derived := total.Sub(vat)
	res.VATAmount = &vat
	res.Subtotal = &derived
	res.VATSource = constants.VATSourceCalculated
	return res
}
