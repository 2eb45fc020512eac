package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/entity"
)

// minTextLength is the threshold under which recognized text is treated as
// no text at all.
const minTextLength = 10

// Pipeline sequences field extraction, date normalization, tax
// reconciliation, policy analysis and confidence scoring over a single text
// payload. It is a pure, synchronous computation: no I/O, no shared state.
type Pipeline struct {
	logger *slog.Logger
}

func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Run extracts a structured receipt from raw text. It never panics past the
// pipeline boundary: an internal fault is converted to PROCESSING_FAILED and
// the best-effort partial record is still returned so the UI can pre-fill
// what it can.
func (p *Pipeline) Run(text string) (rec *entity.ExtractedReceipt) {
	rec = &entity.ExtractedReceipt{
		VATSource:  constants.VATSourceNone,
		Confidence: constants.ConfidenceLow,
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline.extract.panic", "panic", fmt.Sprint(r))
			rec.Err = entity.NewOCRError(constants.ErrProcessingFailed)
		}
	}()

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minTextLength {
		p.logger.Warn("pipeline.extract.no_text", "bytes", len(trimmed))
		rec.Err = entity.NewOCRError(constants.ErrNoTextDetected)
		return rec
	}

	fields := ExtractFields(text)
	rec.Merchant = fields.Merchant
	rec.Date = fields.DateToken
	rec.Total = fields.Total
	rec.Subtotal = fields.Subtotal
	rec.InvoiceNumber = fields.InvoiceNumber

	if fields.DateToken != nil {
		normalized, warns := NormalizeDate(*fields.DateToken)
		rec.NormalizedDate = &normalized
		rec.Warnings = append(rec.Warnings, warns...)
	}

	tax := ReconcileTax(fields.Total, fields.Subtotal, ExtractVAT(text))
	rec.VATAmount = tax.VATAmount
	rec.VATSource = tax.VATSource
	if tax.Subtotal != nil {
		rec.Subtotal = tax.Subtotal
	}

	rec.Policy = AnalyzePolicy(text)

	rec.RawConfidenceScore, rec.Confidence = ScoreConfidence(rec.Merchant, rec.NormalizedDate, rec.Total)

	missing := rec.MissingCoreFields()
	switch {
	case len(missing) == 3:
		// Non-trivial input yielded nothing readable.
		rec.Err = entity.NewOCRError(constants.ErrLowQualityImage)
	case len(missing) > 0:
		rec.Err = entity.NewPartialExtractionError(missing)
	}

	p.logger.Info("pipeline.extract.done",
		"merchant", strOrEmpty(rec.Merchant),
		"has_date", rec.NormalizedDate != nil,
		"has_total", rec.Total != nil,
		"vat_source", rec.VATSource,
		"refund_type", rec.Policy.RefundType,
		"confidence", rec.Confidence,
		"missing", len(missing),
	)
	return rec
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
