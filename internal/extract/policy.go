package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/slipsafe/slipsafe/constants"
	"github.com/slipsafe/slipsafe/internal/entity"
)

// Conditional restrictions: returns barred only absent some condition
// (missing invoice, no receipt). Returns remain possible, so these must be
// recognized BEFORE the unconditional ban patterns: "no refund without
// original invoice" contains "no refund", and the order is load-bearing.
var conditionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bno\s+(?:refunds?|returns?|exchanges?)\s+(?:will\s+be\s+\w+\s+)?without\b[^.\n]*`),
	regexp.MustCompile(`(?i)\b(?:must|should)\s+(?:have|present|produce|retain)\s+(?:the\s+|your\s+|an?\s+)?(?:original\s+)?(?:receipt|invoice|slip|proof\s+of\s+purchase)\b[^.\n]*`),
	regexp.MustCompile(`(?i)\b(?:refunds?|returns?|exchanges?)\s+only\s+(?:with|against|on\s+presentation\s+of)\b[^.\n]*`),
	regexp.MustCompile(`(?i)\bproof\s+of\s+purchase\s+(?:is\s+)?required\b[^.\n]*`),
	regexp.MustCompile(`(?i)\bsubject\s+to\s+(?:the\s+)?(?:original\s+)?(?:receipt|invoice|packaging)\b[^.\n]*`),
}

// Unconditional bans: a terminal state. Checked on text with conditional
// clauses masked out so a condition never reads as a ban.
var unconditionalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ball\s+sales?\s+(?:are\s+)?final\b`),
	regexp.MustCompile(`(?i)\bfinal\s+sale\b`),
	regexp.MustCompile(`(?i)\babsolutely\s+no\s+(?:returns?|refunds?)\b`),
	regexp.MustCompile(`(?i)\bstrictly\s+no\s+(?:returns?|refunds?)\b`),
	regexp.MustCompile(`(?i)\bno\s+(?:returns?|refunds?)(?:\s+(?:accepted|allowed|given|whatsoever))?\s*(?:[.!\n]|$)`),
	regexp.MustCompile(`(?i)\bnon[-\s]?refundable\b`),
	regexp.MustCompile(`(?i)\bnot\s+returnable\b`),
}

var exchangeOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bexchanges?\s+only\b`),
	regexp.MustCompile(`(?i)\bno\s+cash\s+refunds?\b`),
	regexp.MustCompile(`(?i)\bcredit\s+note\s+only\b`),
	regexp.MustCompile(`(?i)\bexchange\s+or\s+credit\s+(?:note\s+)?only\b`),
}

var storeCreditPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bstore\s+credit\b`),
	regexp.MustCompile(`(?i)\bshop\s+credit\b`),
	regexp.MustCompile(`(?i)\brefund(?:ed|s)?\s+(?:as|in|to)\s+(?:store\s+)?credit\b`),
}

// A handling or restocking fee implies a non-full refund even when the text
// is otherwise unqualified.
var feePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:handling|restocking|re-stocking|admin(?:istration)?)\s+fee\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s*%\s+(?:handling|restocking|re-stocking|cancellation)\b`),
}

var (
	reReturnDays   = regexp.MustCompile(`(?i)\b(\d{1,3})[-\s]*days?\b[^.\n]{0,40}?\b(?:return|refund|money\s+back)`)
	reReturnWithin = regexp.MustCompile(`(?i)\b(?:return|refund)\w*\b[^.\n]{0,40}?\bwithin\s+(\d{1,3})\s*days?\b`)
	reExchangeDays = regexp.MustCompile(`(?i)\b(\d{1,3})[-\s]*days?\b[^.\n]{0,40}?\bexchange`)
	reExchWithin   = regexp.MustCompile(`(?i)\bexchange\w*\b[^.\n]{0,40}?\bwithin\s+(\d{1,3})\s*days?\b`)

	reWarrantyMonths = regexp.MustCompile(`(?i)\b(\d{1,3})[-\s]*(month|year)s?\b[^.\n]{0,40}?\b(?:warranty|guarantee)`)
	reWarrantyAfter  = regexp.MustCompile(`(?i)\b(?:warranty|guarantee)\b[^.\n]{0,40}?\b(\d{1,3})\s*(month|year)s?\b`)
	reLifetime       = regexp.MustCompile(`(?i)\b(?:lifetime\s+(?:warranty|guarantee)|guaranteed?\s+for\s+life)\b`)

	// Item-level carve-outs ("sand, cement not returnable") are recorded in
	// the terms text; only a receipt-wide ban downgrades the policy.
	reCarveOut = regexp.MustCompile(`(?i)([\w ,&'/-]{3,60}?)\s+(?:are|is)?\s*(?:not\s+returnable|non[-\s]?refundable|non[-\s]?returnable)\b[^.\n]*`)
)

// AnalyzePolicy scans receipt text for return/exchange/warranty clauses and
// classifies them into a structured policy record. The precedence of the
// classification steps is a business rule, not incidental ordering:
//
//	conditional restriction > unconditional ban > exchange-only >
//	store credit > handling fee (partial) > plain N-day return (full)
func AnalyzePolicy(text string) entity.PolicyInfo {
	p := entity.PolicyInfo{}
	var terms []string

	// Day counts are collected up front; which classification consumes them
	// depends on the steps below.
	returnDays := findDayCount(text, reReturnDays, reReturnWithin)
	exchangeDays := findDayCount(text, reExchangeDays, reExchWithin)

	conditional, masked := matchConditional(text)
	if len(conditional) > 0 {
		// Returns ARE allowed; record the condition verbatim. Days only if
		// explicitly stated, otherwise nil so a merchant rule can apply.
		terms = append(terms, conditional...)
		if returnDays != nil {
			p.ReturnPolicyDays = returnDays
		}
		p.PolicySource = constants.PolicySourceExtracted
	}

	if ban := matchFirst(masked, unconditionalPatterns); ban != "" && !isCarveOut(masked, ban, returnDays) {
		zero := 0
		p.RefundType = constants.RefundNone
		p.ReturnPolicyDays = &zero
		terms = append(terms, ban)
		p.PolicySource = constants.PolicySourceExtracted
	} else {
		if carve := reCarveOut.FindString(masked); carve != "" {
			terms = append(terms, strings.TrimSpace(carve))
			p.PolicySource = constants.PolicySourceExtracted
		}
		switch {
		case matchAny(masked, exchangeOnlyPatterns):
			p.RefundType = constants.RefundExchangeOnly
		case matchAny(masked, storeCreditPatterns):
			p.RefundType = constants.RefundStoreCredit
		case matchAny(masked, feePatterns):
			p.RefundType = constants.RefundPartial
		case returnDays != nil:
			p.RefundType = constants.RefundFull
		}
		if p.RefundType != "" {
			p.PolicySource = constants.PolicySourceExtracted
			if returnDays != nil {
				p.ReturnPolicyDays = returnDays
			}
		}
	}

	if p.ReturnPolicyDays != nil || p.RefundType != "" {
		if m := reReturnDays.FindString(text); m != "" {
			terms = append(terms, strings.TrimSpace(m))
		} else if m := reReturnWithin.FindString(text); m != "" {
			terms = append(terms, strings.TrimSpace(m))
		}
	}
	if len(terms) > 0 {
		joined := strings.Join(dedupe(terms), "; ")
		p.ReturnPolicyTerms = &joined
	}

	if exchangeDays != nil && !p.ReturnsBarred() {
		p.ExchangePolicyDays = exchangeDays
		if m := reExchangeDays.FindString(text); m != "" {
			s := strings.TrimSpace(m)
			p.ExchangePolicyTerms = &s
		} else if m := reExchWithin.FindString(text); m != "" {
			s := strings.TrimSpace(m)
			p.ExchangePolicyTerms = &s
		}
		p.PolicySource = constants.PolicySourceExtracted
	}

	applyWarranty(text, &p)

	if p.RefundType == "" && p.PolicySource == constants.PolicySourceExtracted {
		p.RefundType = constants.RefundNotSpecified
	}
	return p
}

// matchConditional returns the matched conditional clauses and the text with
// those clauses masked out, so later ban patterns cannot re-match them.
func matchConditional(text string) ([]string, string) {
	var matched []string
	masked := text
	for _, re := range conditionalPatterns {
		for _, m := range re.FindAllString(masked, -1) {
			matched = append(matched, strings.TrimSpace(m))
		}
		masked = re.ReplaceAllString(masked, " ")
	}
	return matched, masked
}

// isCarveOut reports whether a ban match is an item-specific exclusion
// rather than a receipt-wide ban: it names items and the receipt elsewhere
// grants a positive day-count return.
func isCarveOut(text, ban string, returnDays *int) bool {
	if returnDays == nil || *returnDays <= 0 {
		return false
	}
	lower := strings.ToLower(ban)
	if !strings.Contains(lower, "returnable") && !strings.Contains(lower, "refundable") {
		return false
	}
	return reCarveOut.MatchString(text)
}

func applyWarranty(text string, p *entity.PolicyInfo) {
	if reLifetime.MatchString(text) {
		months := constants.LifetimeWarrantyMonths
		p.WarrantyMonths = &months
		s := strings.TrimSpace(reLifetime.FindString(text))
		p.WarrantyTerms = &s
		p.PolicySource = constants.PolicySourceExtracted
		return
	}
	var n int
	var unit, clause string
	if m := reWarrantyMonths.FindStringSubmatch(text); m != nil {
		n, _ = strconv.Atoi(m[1])
		unit = strings.ToLower(m[2])
		clause = reWarrantyMonths.FindString(text)
	} else if m := reWarrantyAfter.FindStringSubmatch(text); m != nil {
		n, _ = strconv.Atoi(m[1])
		unit = strings.ToLower(m[2])
		clause = reWarrantyAfter.FindString(text)
	} else {
		return
	}
	if unit == "year" {
		n *= 12
	}
	if n <= 0 {
		return
	}
	p.WarrantyMonths = &n
	s := strings.TrimSpace(clause)
	p.WarrantyTerms = &s
	p.PolicySource = constants.PolicySourceExtracted
}

func findDayCount(text string, patterns ...*regexp.Regexp) *int {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n < 1000 {
				return &n
			}
		}
	}
	return nil
}

func matchFirst(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func matchAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
