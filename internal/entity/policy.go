package entity

import (
	"github.com/slipsafe/slipsafe/constants"
)

// PolicyInfo is the normalized return/exchange/warranty policy read off a
// receipt. A ReturnPolicyDays of 0 means returns are explicitly barred; nil
// means the receipt said nothing and a merchant default may apply.
type PolicyInfo struct {
	ReturnPolicyDays  *int                 `json:"return_policy_days,omitempty"`
	ReturnPolicyTerms *string              `json:"return_policy_terms,omitempty"`
	RefundType        constants.RefundType `json:"refund_type,omitempty"`

	ExchangePolicyDays  *int    `json:"exchange_policy_days,omitempty"`
	ExchangePolicyTerms *string `json:"exchange_policy_terms,omitempty"`

	WarrantyMonths *int    `json:"warranty_months,omitempty"`
	WarrantyTerms  *string `json:"warranty_terms,omitempty"`

	PolicySource constants.PolicySource `json:"policy_source,omitempty"`
}

// ReturnsBarred reports whether the policy unconditionally bars returns.
// When true, no return deadline may ever be computed, regardless of any
// merchant rule.
func (p *PolicyInfo) ReturnsBarred() bool {
	if p.RefundType == constants.RefundNone {
		return true
	}
	return p.ReturnPolicyDays != nil && *p.ReturnPolicyDays == 0
}
