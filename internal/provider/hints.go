package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// hintsSchema constrains what we accept from a vision model before trusting
// it as structured hints. Money fields are decimal strings; the date is
// free-form (the pipeline's normalizer owns disambiguation).
func hintsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"merchant":       map[string]any{"type": "string", "minLength": 1},
			"date":           map[string]any{"type": "string", "minLength": 4},
			"total":          decimalProp(),
			"subtotal":       decimalProp(),
			"vat_amount":     decimalProp(),
			"invoice_number": map[string]any{"type": "string"},
			"policy_text":    map[string]any{"type": "string"},
		},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^\d+(\.\d{1,2})?$`,
	}
}

// ParseHints cleans a model's JSON response into validated ReceiptHints:
// markdown fences stripped, numbers coerced to strings, empty/null and
// unknown keys dropped, then schema-validated. A response that survives
// none of this returns (nil, error) and the caller falls back to plain text.
func ParseHints(raw string, logger *slog.Logger) (*ReceiptHints, error) {
	if logger == nil {
		logger = slog.Default()
	}

	text := stripFences(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("hints: no JSON object in response")
	}
	text = text[start : end+1]

	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		return nil, fmt.Errorf("hints: decode: %w", err)
	}

	dropped := sanitizeHintMap(m)
	if len(dropped) > 0 {
		logger.Warn("provider.hints.sanitized", "dropped", dropped)
	}

	clean, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("hints: encode: %w", err)
	}
	if err := validateAgainstSchema(hintsSchema(), clean); err != nil {
		return nil, err
	}

	var h ReceiptHints
	if err := json.Unmarshal(clean, &h); err != nil {
		return nil, fmt.Errorf("hints: bind: %w", err)
	}
	return &h, nil
}

// sanitizeHintMap mutates m toward the schema: coerces numeric money fields
// to strings, trims strings, drops null/empty values and unknown keys.
// Returns the list of dropped/renamed keys for logging.
func sanitizeHintMap(m map[string]any) []string {
	var dropped []string

	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	rename("merchant_name", "merchant")
	rename("store", "merchant")
	rename("amount", "total")
	rename("vat", "vat_amount")
	rename("tax", "vat_amount")
	rename("invoice", "invoice_number")

	moneyFields := []string{"total", "subtotal", "vat_amount"}
	for _, k := range moneyFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			m[k] = fmt.Sprintf("%.2f", t)
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	allowed := map[string]struct{}{
		"merchant": {}, "date": {}, "total": {}, "subtotal": {},
		"vat_amount": {}, "invoice_number": {}, "policy_text": {},
	}
	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}
	return dropped
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("hints.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("hints.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("hints do not match schema: %w", err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
