package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/slipsafe/slipsafe/internal/entity"
)

// Service produces XLSX bytes for processed purchase records.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// PurchasesXLSX returns an XLSX workbook (as bytes) listing the given
// records, one row per purchase, deadlines included.
func (s *Service) PurchasesXLSX(records []*entity.PurchaseRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Purchases"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	// Drop excelize's default sheet so the workbook opens on Purchases.
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Merchant",
		"Purchase Date",
		"Total",
		"VAT",
		"Subtotal",
		"Invoice #",
		"Refund Type",
		"Return By",
		"Warranty Ends",
		"Confidence",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, strOr(r.Receipt.Merchant, ""))
		write(2, dateOr(r.Receipt.NormalizedDate))
		write(3, decOr(r.Receipt.Total))
		write(4, decOr(r.Receipt.VATAmount))
		write(5, decOr(r.Receipt.Subtotal))
		write(6, strOr(r.Receipt.InvoiceNumber, ""))
		write(7, string(r.Receipt.Policy.RefundType))
		write(8, dateOr(r.Deadlines.ReturnBy))
		write(9, dateOr(r.Deadlines.WarrantyEnds))
		write(10, string(r.Receipt.Confidence))
		write(11, truncate(joinWarnings(r.Receipt.Warnings), 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // merchant
	_ = f.SetColWidth(sheet, "B", "B", 14) // date
	_ = f.SetColWidth(sheet, "C", "E", 12) // amounts
	_ = f.SetColWidth(sheet, "F", "F", 18) // invoice
	_ = f.SetColWidth(sheet, "G", "G", 16) // refund type
	_ = f.SetColWidth(sheet, "H", "I", 14) // deadlines
	_ = f.SetColWidth(sheet, "K", "K", 48) // warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func strOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func dateOr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func decOr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func joinWarnings(warnings []string) string {
	out := ""
	for i, w := range warnings {
		if i > 0 {
			out += "; "
		}
		out += w
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
