package constants

import "strings"

// RefundType is the canonical refund classification for a receipt policy.
type RefundType string

// Stable values (store these exact strings in DB and exports).
const (
	RefundFull         RefundType = "full"
	RefundStoreCredit  RefundType = "store_credit"
	RefundExchangeOnly RefundType = "exchange_only"
	RefundPartial      RefundType = "partial"
	RefundNone         RefundType = "none"
	RefundNotSpecified RefundType = "not_specified"
)

// PolicySource records where a policy value came from.
type PolicySource string

const (
	PolicySourceExtracted       PolicySource = "extracted"
	PolicySourceMerchantDefault PolicySource = "merchant_default"
	PolicySourceUserEntered     PolicySource = "user_entered"
)

// VATSource records the provenance of the VAT figure on a receipt.
type VATSource string

const (
	VATSourceExtracted  VATSource = "extracted"
	VATSourceCalculated VATSource = "calculated"
	VATSourceNone       VATSource = "none"
)

// LifetimeWarrantyMonths is the sentinel month count recorded when a receipt
// advertises a lifetime warranty.
const LifetimeWarrantyMonths = 120

var allRefundTypes = []RefundType{
	RefundFull,
	RefundStoreCredit,
	RefundExchangeOnly,
	RefundPartial,
	RefundNone,
	RefundNotSpecified,
}

// CanonicalizeRefundType maps free-form labels (e.g. from provider hints or
// user edits) onto the canonical enum.
func CanonicalizeRefundType(input string) (RefundType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return RefundNotSpecified, false
	}

	synonyms := map[string]RefundType{
		"refund":        RefundFull,
		"full refund":   RefundFull,
		"cash refund":   RefundFull,
		"credit":        RefundStoreCredit,
		"credit note":   RefundStoreCredit,
		"store credit":  RefundStoreCredit,
		"exchange":      RefundExchangeOnly,
		"exchange only": RefundExchangeOnly,
		"no returns":    RefundNone,
		"no refund":     RefundNone,
		"final sale":    RefundNone,
	}
	if rt, ok := synonyms[normalized]; ok {
		return rt, true
	}

	for _, rt := range allRefundTypes {
		if normalized == string(rt) {
			return rt, true
		}
	}
	return RefundNotSpecified, false
}
