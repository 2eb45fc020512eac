package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// TesseractConfig controls the local OCR supplier.
type TesseractConfig struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"
	PSM       int    // 6 is good for a uniform block of text
	CacheDir  string // scratch dir for input files, default os.TempDir()
}

// Tesseract is the secondary, local OCR supplier. It shells out to the
// tesseract binary and estimates its own confidence from text features.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.TempDir()
	}
	return &Tesseract{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (t *Tesseract) Supply(ctx context.Context, in Input) (SupplyResult, error) {
	if in.Text != "" {
		// Already-recognized text: nothing to OCR.
		return SupplyResult{Text: in.Text, Confidence: heuristicConfidence(in.Text), Method: "passthrough"}, nil
	}
	if len(in.ImageData) == 0 {
		return SupplyResult{}, fmt.Errorf("tesseract: no image data")
	}

	tmp, err := os.CreateTemp(t.cfg.CacheDir, "slip-*"+extForContentType(in.ContentType))
	if err != nil {
		return SupplyResult{}, fmt.Errorf("tesseract: temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(in.ImageData); err != nil {
		_ = tmp.Close()
		return SupplyResult{}, fmt.Errorf("tesseract: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return SupplyResult{}, fmt.Errorf("tesseract: close temp: %w", err)
	}

	args := []string{tmp.Name(), "stdout", "-l", t.cfg.Lang, "--psm", fmt.Sprint(t.cfg.PSM)}
	out, _, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return SupplyResult{}, fmt.Errorf("tesseract: %w", err)
	}

	text := strings.TrimSpace(string(out))
	res := SupplyResult{
		Text:       text,
		Confidence: heuristicConfidence(text),
		Method:     "tesseract-ocr",
	}
	t.logger.Debug("provider.tesseract.ok", "bytes", len(text), "confidence", res.Confidence)
	return res, nil
}

// extForContentType accepts both MIME types and bare extensions.
func extForContentType(ct string) string {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/png", "png":
		return ".png"
	case "image/jpeg", "image/jpg", "jpeg", "jpg":
		return ".jpg"
	case "image/tiff", "tif", "tiff":
		return ".tif"
	case "image/webp", "webp":
		return ".webp"
	default:
		if ext := filepath.Ext(ct); ext != "" {
			return ext
		}
		return ".png"
	}
}

var (
	reDateish     = regexp.MustCompile(`\b20\d{2}\b|\b\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}\b`)
	reCurrencyish = regexp.MustCompile(`(?i)\b(zar|usd|eur|gbp|vat)\b|[R$£€]`)
	reAmountish   = regexp.MustCompile(`\b\d{1,3}(,\d{3})*\.\d{2}\b|\b\d+\.\d{2}\b`)
)

// heuristicConfidence scores decoded text by common receipt artifacts:
// date-ish, currency-ish and amount-ish tokens each add to a small base.
func heuristicConfidence(txt string) float32 {
	score := float32(0.2)
	if reDateish.MatchString(txt) {
		score += 0.2
	}
	if reCurrencyish.MatchString(txt) {
		score += 0.15
	}
	if reAmountish.MatchString(txt) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
