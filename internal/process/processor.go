// Package process wires the supplier chain, extraction pipeline and
// deadline calculator into one per-receipt flow.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/common"
	"github.com/slipsafe/slipsafe/internal/deadline"
	"github.com/slipsafe/slipsafe/internal/entity"
	"github.com/slipsafe/slipsafe/internal/extract"
	"github.com/slipsafe/slipsafe/internal/provider"
)

// minProviderConfidence is the floor under which a supplier's own estimate
// marks the whole result as a low-quality image.
const minProviderConfidence = 0.10

// Processor runs supply -> extract -> deadlines for one receipt.
type Processor struct {
	logger   *slog.Logger
	supplier provider.TextSupplier
	pipeline *extract.Pipeline
	deadline *deadline.Calculator
}

func NewProcessor(logger *slog.Logger, supplier provider.TextSupplier, pipeline *extract.Pipeline, calc *deadline.Calculator) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, supplier: supplier, pipeline: pipeline, deadline: calc}
}

// Process acquires text for the input, extracts a structured receipt and
// computes deadlines. A taxonomy error on the receipt does not abort the
// flow: the partial record comes back so the caller can pre-fill fields.
func (p *Processor) Process(ctx context.Context, userID uuid.UUID, in provider.Input) (*entity.PurchaseRecord, error) {
	requestID := common.RequestIDFromContext(ctx)

	supplied, err := p.supplier.Supply(ctx, in)
	if err != nil {
		p.logger.Error("process.supply.failed", "request_id", requestID, "err", err)
		rec := &entity.ExtractedReceipt{
			VATSource:  constants.VATSourceNone,
			Confidence: constants.ConfidenceLow,
			Err:        entity.NewOCRError(constants.ErrProcessingFailed),
		}
		return p.finish(ctx, userID, rec), nil
	}
	p.logger.Info("process.supply.ok",
		"request_id", requestID,
		"method", supplied.Method,
		"bytes", len(supplied.Text),
		"provider_confidence", supplied.Confidence,
		"has_hints", supplied.Hints != nil,
	)

	rec := p.pipeline.Run(supplied.Text)
	rec.Warnings = append(rec.Warnings, supplied.Warnings...)

	if supplied.Hints != nil {
		p.applyHints(rec, supplied.Hints)
	}

	// An extremely unsure provider overrides a merely-partial verdict.
	if supplied.Confidence > 0 && supplied.Confidence < minProviderConfidence {
		rec.Err = entity.NewOCRError(constants.ErrLowQualityImage)
	}

	return p.finish(ctx, userID, rec), nil
}

// finish computes deadlines where possible and assembles the record.
func (p *Processor) finish(ctx context.Context, userID uuid.UUID, rec *entity.ExtractedReceipt) *entity.PurchaseRecord {
	out := &entity.PurchaseRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Receipt:   *rec,
		CreatedAt: time.Now().UTC(),
	}

	if rec.NormalizedDate != nil && p.deadline != nil {
		merchant := ""
		if rec.Merchant != nil {
			merchant = *rec.Merchant
		}
		deadlines, err := p.deadline.Compute(ctx, userID, *rec.NormalizedDate, &out.Receipt.Policy, merchant)
		if err != nil {
			p.logger.Error("process.deadlines.failed", "err", err)
			out.Receipt.Warnings = append(out.Receipt.Warnings, fmt.Sprintf("deadline computation failed: %v", err))
		} else {
			out.Deadlines = deadlines
		}
	}
	return out
}

// applyHints overlays provider hints onto fields the text pass could not
// fill. Hints go through the same normalizers as extracted text, so this is
// a validating pass, not a bypass.
func (p *Processor) applyHints(rec *entity.ExtractedReceipt, hints *provider.ReceiptHints) {
	if rec.Merchant == nil && hints.Merchant != "" {
		m := hints.Merchant
		rec.Merchant = &m
	}
	if rec.NormalizedDate == nil && hints.Date != "" {
		normalized, warns := extract.NormalizeDate(hints.Date)
		d := hints.Date
		rec.Date = &d
		rec.NormalizedDate = &normalized
		rec.Warnings = append(rec.Warnings, warns...)
	}
	if rec.Total == nil && hints.Total != "" {
		if v, ok := extract.ParseAmount(hints.Total); ok {
			rec.Total = v
		}
	}
	if rec.Subtotal == nil && hints.Subtotal != "" {
		if v, ok := extract.ParseAmount(hints.Subtotal); ok {
			rec.Subtotal = v
		}
	}
	if rec.VATAmount == nil && hints.VATAmount != "" {
		if v, ok := extract.ParseAmount(hints.VATAmount); ok {
			rec.VATAmount = v
			rec.VATSource = constants.VATSourceExtracted
		}
	}
	if rec.InvoiceNumber == nil && hints.InvoiceNumber != "" {
		n := hints.InvoiceNumber
		rec.InvoiceNumber = &n
	}
	if rec.Policy.PolicySource == "" && hints.PolicyText != "" {
		rec.Policy = extract.AnalyzePolicy(hints.PolicyText)
	}

	// Filled fields change the picture: rescore and re-grade the error.
	rec.RawConfidenceScore, rec.Confidence = extract.ScoreConfidence(rec.Merchant, rec.NormalizedDate, rec.Total)
	if rec.Err != nil && (rec.Err.Code == constants.ErrPartialExtraction || rec.Err.Code == constants.ErrLowQualityImage) {
		missing := rec.MissingCoreFields()
		switch {
		case len(missing) == 0:
			rec.Err = nil
		case len(missing) == 3:
			rec.Err = entity.NewOCRError(constants.ErrLowQualityImage)
		default:
			rec.Err = entity.NewPartialExtractionError(missing)
		}
	}
}
