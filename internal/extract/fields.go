package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Fields is the raw field-extraction result before normalization.
type Fields struct {
	Merchant      *string
	DateToken     *string
	Total         *decimal.Decimal
	Subtotal      *decimal.Decimal
	InvoiceNumber *string
}

// headerZoneLines bounds the merchant search to the top of the slip.
const headerZoneLines = 15

// maxAmount is the sanity cap on any monetary field.
var maxAmount = decimal.NewFromInt(1_000_000)

var businessKeywords = []string{
	"HARDWARE", "STORE", "SUPERMARKET", "PHARMACY", "BUTCHERY", "BAKERY",
	"LIQUOR", "MOTORS", "ELECTRONICS", "FURNITURE", "BUILDERS", "TIMBER",
	"CAFE", "RESTAURANT", "GARAGE", "MARKET", "WHOLESALERS", "TRADING",
	"HYPER", "WAREHOUSE", "SPARES", "PAINT", "TILES", "OUTFITTERS",
}

// Legal-entity suffixes. A merchant line is cut at (and including) the first
// trailing suffix so registration numbers and slogans after it drop off.
var reLegalSuffix = regexp.MustCompile(`(?i)\b((?:PTY\s*\(?LTD\)?|\(PTY\)\s*LTD|PTY|LTD|CC|INC|LLC|BK|T/A))\b`)

var reNameWithSuffix = regexp.MustCompile(`(?i)^[A-Z][\w&'.\- ]{2,}\s+(?:PTY\s*\(?LTD\)?|\(PTY\)\s*LTD|PTY|LTD|CC|INC|LLC|BK)\.?$`)

var nonMerchantLabels = []string{
	"RECEIPT", "INVOICE", "TAX INVOICE", "TOTAL", "SUBTOTAL", "CASH SALE",
	"CREDIT", "THANK YOU", "WELCOME", "CUSTOMER COPY", "DUPLICATE", "VAT",
	"TEL", "FAX", "DATE", "TIME", "SLIP",
}

var addressKeywords = []string{
	"STREET", "STR ", " ST ", "AVENUE", " AVE", "ROAD", " RD ", "DRIVE",
	"LANE", "BOULEVARD", "CENTRE", "CENTER", "MALL", "PLAZA", "BOX ",
	"P.O.", "PO BOX", "SUITE", "FLOOR", "CNR ", "CORNER",
}

var (
	reProductCode = regexp.MustCompile(`^[A-Za-z]{1,3}\d{4,}$`)
	reLongDigits  = regexp.MustCompile(`\d{5,}`)
	reNoisePunct  = regexp.MustCompile(`[~^*_=|<>{}\[\]\\]`)
)

// ExtractFields pulls merchant, raw date token, total, subtotal and invoice
// number out of raw receipt text.
func ExtractFields(text string) Fields {
	lines := nonEmptyLines(text)
	f := Fields{}
	f.Merchant = extractMerchant(lines)
	f.DateToken = extractDateToken(text)
	f.Total = extractTotal(text)
	f.Subtotal = extractSubtotal(text)
	f.InvoiceNumber = extractInvoiceNumber(text, lines)
	return f
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// --- merchant ---

// merchantTiers is the documented priority order: a later tier is only tried
// when every earlier tier found nothing in the header zone.
var merchantTiers = []struct {
	name  string
	match func(line string) bool
}{
	{"business-keyword", func(line string) bool {
		upper := strings.ToUpper(line)
		for _, kw := range businessKeywords {
			if strings.Contains(upper, kw) {
				return true
			}
		}
		return false
	}},
	{"legal-suffix", func(line string) bool {
		return reNameWithSuffix.MatchString(line)
	}},
	{"allcaps-ampersand", func(line string) bool {
		return isAllCaps(line) && strings.Contains(line, "&")
	}},
	{"allcaps-long", func(line string) bool {
		return isAllCaps(line) && len(line) >= 8
	}},
	{"store-name", looksLikeStoreName},
}

func extractMerchant(lines []string) *string {
	header := lines
	if len(header) > headerZoneLines {
		header = header[:headerZoneLines]
	}
	for _, tier := range merchantTiers {
		for _, line := range header {
			if !isMerchantCandidate(line) {
				continue
			}
			if tier.match(line) {
				name := trimAtLegalSuffix(line)
				return &name
			}
		}
	}
	return nil
}

// isMerchantCandidate filters OCR noise and non-name header lines.
func isMerchantCandidate(line string) bool {
	if len(line) < 5 {
		return false
	}
	upper := strings.ToUpper(line)
	for _, label := range nonMerchantLabels {
		if hasLabelPrefix(upper, label) {
			return false
		}
	}
	if reProductCode.MatchString(strings.ReplaceAll(line, " ", "")) {
		return false
	}
	for _, kw := range addressKeywords {
		if strings.Contains(" "+upper+" ", kw) {
			return false
		}
	}
	// Phone / VAT registration numbers.
	if reLongDigits.MatchString(line) {
		return false
	}
	if alphaRatio(line) < 0.5 {
		return false
	}
	if len(reNoisePunct.FindAllString(line, -1)) > 2 {
		return false
	}
	// 3+ repeated punctuation marks are an OCR artifact signature.
	if hasRepeatedPunct(line) {
		return false
	}
	return true
}

// hasLabelPrefix reports that line starts with label as a whole word, so
// "THANK YOU FOR SHOPPING" is caught while "TELKOM STORE" is not.
func hasLabelPrefix(line, label string) bool {
	if !strings.HasPrefix(line, label) {
		return false
	}
	rest := line[len(label):]
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', ':', '.', ',', '-', '#':
		return true
	}
	return false
}

// hasRepeatedPunct reports a run of three or more identical punctuation
// runes, the OCR artifact signature for divider and box-drawing lines.
func hasRepeatedPunct(line string) bool {
	var prev rune
	run := 0
	for _, r := range line {
		if !isPunctRune(r) {
			prev, run = 0, 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run >= 3 {
			return true
		}
	}
	return false
}

func isPunctRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func trimAtLegalSuffix(line string) string {
	loc := reLegalSuffix.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:loc[1]])
}

func isAllCaps(line string) bool {
	hasLetter := false
	for _, r := range line {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func alphaRatio(line string) float64 {
	if line == "" {
		return 0
	}
	letters := 0
	total := 0
	for _, r := range line {
		if r == ' ' {
			continue
		}
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

func looksLikeStoreName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 1 || len(words) > 6 {
		return false
	}
	return alphaRatio(line) >= 0.7
}

// --- date token ---

var (
	reDateLabeled = regexp.MustCompile(`(?i)\bdate\s*:?\s*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\.?,?\s+\d{4}|[A-Za-z]+\.?\s+\d{1,2},?\s+\d{4})`)
	reDateAnywhere = regexp.MustCompile(`\b(\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})\b`)
	reDateTextual  = regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{4}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})\b`)
)

func extractDateToken(text string) *string {
	if m := reDateLabeled.FindStringSubmatch(text); m != nil {
		tok := strings.TrimSpace(m[1])
		return &tok
	}
	if m := reDateAnywhere.FindStringSubmatch(text); m != nil {
		tok := strings.TrimSpace(m[1])
		return &tok
	}
	if m := reDateTextual.FindStringSubmatch(text); m != nil {
		tok := strings.TrimSpace(m[1])
		return &tok
	}
	return nil
}

// --- totals ---

const amountPattern = `(?:R|\$|€|£)?[^\S\n]*([\d,]+(?:\.\d{1,2})?)`

// totalPatterns is an ordered list: labelled totals beat payment lines beat
// bare currency amounts. The first match that survives the subtotal-context
// check and the sanity bound wins.
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bTOTAL[^\S\n]*:` + amountPattern),
	regexp.MustCompile(`(?i)\bTOTAL\b[^\S\n]*` + amountPattern),
	regexp.MustCompile(`(?i)\bGRAND\s+TOTAL\s*:?[^\S\n]*` + amountPattern),
	regexp.MustCompile(`(?i)\bAMOUNT\s+DUE\s*:?[^\S\n]*` + amountPattern),
	regexp.MustCompile(`(?i)\bCARD\s*:[^\S\n]*` + amountPattern),
	regexp.MustCompile(`(?i)\bCASH\s*:[^\S\n]*` + amountPattern),
	regexp.MustCompile(`(?:R|\$|€|£)\s*([\d,]+\.\d{2})\b`),
}

var subtotalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSUB[^\S\n]*-?[^\S\n]*TOTAL[^\S\n]*:?` + amountPattern),
	regexp.MustCompile(`(?i)\bSUBTOT\w*[^\S\n]*:?` + amountPattern),
}

func extractTotal(text string) *decimal.Decimal {
	for _, re := range totalPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			// Reject matches sitting in subtotal context.
			start := m[0]
			winStart := start - 12
			if winStart < 0 {
				winStart = 0
			}
			if strings.Contains(strings.ToLower(text[winStart:start]), "sub") {
				continue
			}
			amount := text[m[2]:m[3]]
			if v, ok := ParseAmount(amount); ok {
				return v
			}
		}
	}
	return nil
}

func extractSubtotal(text string) *decimal.Decimal {
	for _, re := range subtotalPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, ok := ParseAmount(m[1]); ok {
				return v
			}
		}
	}
	return nil
}

// ParseAmount parses a currency token and applies the sanity bound
// 0 < amount < 1,000,000. Every monetary value entering a receipt goes
// through this bound, whatever its origin.
func ParseAmount(tok string) (*decimal.Decimal, bool) {
	tok = strings.ReplaceAll(strings.TrimSpace(tok), ",", "")
	v, err := decimal.NewFromString(tok)
	if err != nil {
		return nil, false
	}
	if !v.IsPositive() || v.GreaterThanOrEqual(maxAmount) {
		return nil, false
	}
	return &v, true
}

// --- invoice numbers ---

var (
	reInvoiceLine      = regexp.MustCompile(`(?i)\b(invoice|inv)\b`)
	reInvoiceToken     = regexp.MustCompile(`\b([A-Za-z]{1,4}[-/]?\d{5,15})\b`)
	reBareInvoiceToken = regexp.MustCompile(`\b(\d{6,15})\b`)
	reWholeTextInvoice = regexp.MustCompile(`(?i)\b(?:order|receipt|confirmation|transaction|reference)\s*(?:no\.?|number|#)?\s*:?\s*#?\s*([A-Za-z]{0,4}[-/]?\d{4,15})\b`)
	reTXInvoice        = regexp.MustCompile(`(?i)\bTX:\s*(\d{4,10})\b`)
	rePhoneShape       = regexp.MustCompile(`^0\d{9,}$`)
	reDateShape        = regexp.MustCompile(`^(?:\d{4}[-/.]\d{1,2}[-/.]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|(?:19|20)\d{6})$`)
)

// extractInvoiceNumber is line-scoped first: a token on the same line as an
// "invoice"/"inv" mention beats any whole-text pattern.
func extractInvoiceNumber(text string, lines []string) *string {
	for _, line := range lines {
		if !reInvoiceLine.MatchString(line) {
			continue
		}
		if m := reInvoiceToken.FindStringSubmatch(line); m != nil {
			if tok := cleanInvoiceToken(m[1]); tok != nil {
				return tok
			}
		}
		if m := reBareInvoiceToken.FindStringSubmatch(line); m != nil {
			if tok := cleanInvoiceToken(m[1]); tok != nil {
				return tok
			}
		}
	}

	if m := reWholeTextInvoice.FindStringSubmatch(text); m != nil {
		if tok := cleanInvoiceToken(m[1]); tok != nil {
			return tok
		}
	}
	if m := reTXInvoice.FindStringSubmatch(text); m != nil {
		if tok := cleanInvoiceToken(m[1]); tok != nil {
			return tok
		}
	}
	return nil
}

func cleanInvoiceToken(tok string) *string {
	tok = strings.TrimSpace(tok)
	if rePhoneShape.MatchString(tok) || reDateShape.MatchString(tok) {
		return nil
	}
	return &tok
}
