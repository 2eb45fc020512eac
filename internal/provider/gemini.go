package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiPrompt asks for the full transcription plus a structured hint block.
// The pipeline re-validates everything, so the hints are a head start, not
// the source of truth.
const geminiPrompt = `You are reading a retail receipt or till slip. Do two things:

1. Transcribe ALL visible text, line by line, preserving the original line order.
2. Extract these fields into JSON:
{
  "merchant": "business name as printed",
  "date": "the purchase date token exactly as printed",
  "total": "0.00",
  "subtotal": "0.00",
  "vat_amount": "0.00",
  "invoice_number": "invoice or till slip number",
  "policy_text": "any return, exchange, refund or warranty wording, verbatim"
}

Respond with the transcription first, then the JSON object on its own lines.
Use null for fields you cannot find. Do not use markdown code blocks.`

// GeminiConfig controls the vision supplier.
type GeminiConfig struct {
	APIKey string
	Model  string // default "gemini-2.0-flash"
}

// Gemini is the primary supplier: a vision model that returns both a
// transcription and structured hints.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(cfg.Model), logger: logger}, nil
}

func (g *Gemini) Supply(ctx context.Context, in Input) (SupplyResult, error) {
	if in.Text != "" {
		return SupplyResult{Text: in.Text, Confidence: heuristicConfidence(in.Text), Method: "passthrough"}, nil
	}
	if len(in.ImageData) == 0 {
		return SupplyResult{}, fmt.Errorf("gemini: no image data")
	}

	parts := []genai.Part{
		genai.ImageData(imageFormat(in.ContentType), in.ImageData),
		genai.Text(geminiPrompt),
	}
	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return SupplyResult{}, fmt.Errorf("gemini: generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return SupplyResult{}, fmt.Errorf("gemini: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	full := sb.String()

	res := SupplyResult{Method: "gemini-vision"}
	res.Hints, err = ParseHints(full, g.logger)
	if err != nil {
		// Keep the transcription; the pipeline can still work the text.
		res.Warnings = append(res.Warnings, fmt.Sprintf("gemini hints unusable: %v", err))
		g.logger.Warn("provider.gemini.hints_failed", "error", err)
	}

	res.Text = transcriptionOnly(full)
	res.Confidence = heuristicConfidence(res.Text)
	g.logger.Debug("provider.gemini.ok",
		"bytes", len(res.Text), "has_hints", res.Hints != nil, "confidence", res.Confidence)
	return res, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// transcriptionOnly drops the trailing JSON hint block from the response so
// the pipeline sees only receipt text.
func transcriptionOnly(full string) string {
	s := stripFences(full)
	if i := strings.LastIndex(s, "{"); i > 0 {
		if strings.LastIndex(s, "}") > i {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func imageFormat(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.Contains(ct, "png"):
		return "png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "jpeg"
	case strings.Contains(ct, "webp"):
		return "webp"
	default:
		return "png"
	}
}
