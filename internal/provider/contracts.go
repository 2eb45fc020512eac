// Package provider supplies receipt text (and optional structured hints)
// from pluggable sources: a vision model, local OCR, or pasted text.
package provider

import (
	"context"
)

// Input is one receipt to read: raw image bytes with a MIME type, or
// already-recognized text.
type Input struct {
	ImageData   []byte
	ContentType string
	Text        string // when set, suppliers may pass it through untouched
}

// ReceiptHints is a partial structured record a provider may return
// alongside the text. All fields optional; the extraction pipeline still
// runs as a validating pass over the text, with hints filling the gaps.
type ReceiptHints struct {
	Merchant      string `json:"merchant,omitempty"`
	Date          string `json:"date,omitempty"` // YYYY-MM-DD preferred, free-form accepted
	Total         string `json:"total,omitempty"`
	Subtotal      string `json:"subtotal,omitempty"`
	VATAmount     string `json:"vat_amount,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	PolicyText    string `json:"policy_text,omitempty"`
}

// SupplyResult is what a text supplier hands to the orchestrator.
type SupplyResult struct {
	Text       string
	Hints      *ReceiptHints
	Confidence float32 // provider's own 0..1 estimate; 0 = unknown
	Method     string  // "gemini-vision" | "tesseract-ocr" | "passthrough"
	Warnings   []string
}

// TextSupplier is a single-shot text-or-structured-data source. No
// pipeline-internal retries: fallback between suppliers is the Chain's job.
type TextSupplier interface {
	Supply(ctx context.Context, in Input) (SupplyResult, error)
}
