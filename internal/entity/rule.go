package entity

import (
	"time"

	"github.com/google/uuid"
)

// MerchantRule is a per-user override used as a fallback when a receipt does
// not state explicit return/warranty terms. Keyed by (user, normalized
// merchant name). Read-only to the extraction core.
type MerchantRule struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	MerchantName     string    `json:"merchant_name"` // normalized: upper-cased, whitespace-collapsed
	ReturnPolicyDays int       `json:"return_policy_days"`
	WarrantyMonths   int       `json:"warranty_months"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
