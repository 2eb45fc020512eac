package entity

import (
	"time"

	"github.com/google/uuid"
)

// Deadlines are computed once per extraction/confirmation event and never
// mutated in place; a later edit of policy fields triggers a fresh
// recomputation.
type Deadlines struct {
	ReturnBy     *time.Time `json:"return_by,omitempty"`
	WarrantyEnds *time.Time `json:"warranty_ends,omitempty"`
}

// PurchaseRecord is the final per-receipt artifact: the extracted receipt
// plus the deadlines derived from its policy and any merchant rule.
type PurchaseRecord struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Receipt   ExtractedReceipt `json:"receipt"`
	Deadlines Deadlines        `json:"deadlines"`
	CreatedAt time.Time        `json:"created_at"`
}
