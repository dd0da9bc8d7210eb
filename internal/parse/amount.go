package parse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns cover the currency conventions seen on real receipts:
// explicit "amount due" phrasing, naira and dollar symbols, OPay-style
// hash prefixes, total/amount labels, and bare numbers on their own line.
// All are swept; disambiguation happens in scoring, not pattern order.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)amount\s+due\s+\$([0-9,]+\.?\d{0,2})\s*USD`),
	regexp.MustCompile(`(?i)\$([0-9,]+\.?\d{0,2})\s*USD\s+due`),
	regexp.MustCompile(`(?i)amount\s+due[:\s]+[₦$]?\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`₦\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`#([0-9,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)([0-9,]+\.?\d{0,2})\s*naira`),
	regexp.MustCompile(`\$\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)([0-9,]+\.?\d{0,2})\s*USD`),
	regexp.MustCompile(`(?i)total[:\s]+[₦$]?\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?i)amount[:\s]+[₦$]?\s*([0-9,]+\.?\d{0,2})`),
	regexp.MustCompile(`(?m)^([0-9]{1,3}(?:,[0-9]{3})*\.?[0-9]{0,2})$`),
}

// amountKeywords near a candidate suggest it is the final payable figure.
var amountKeywords = []string{"total", "due", "amount due", "pay"}

const amountKeywordWindow = 50

type amountCandidate struct {
	value decimal.Decimal
	pos   int // byte offset of the match in the text
}

// extractAmount returns the best-guess total. Receipts mix item prices,
// subtotals and totals with no structural markers, so candidates are scored
// by document position, capped magnitude and keyword proximity rather than
// taken first-come.
func (p *Pipeline) extractAmount(text string) *decimal.Decimal {
	var candidates []amountCandidate
	for _, re := range amountPatterns {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			if idx[2] < 0 {
				continue
			}
			v, err := parseMoney(text[idx[2]:idx[3]])
			if err != nil {
				continue // unparsable candidate, not a failure
			}
			if v.GreaterThan(p.cfg.MaxAmount) {
				continue // presumed transaction/reference ID
			}
			candidates = append(candidates, amountCandidate{value: v, pos: idx[0]})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	significant := candidates[:0:0]
	for _, c := range candidates {
		if c.value.GreaterThanOrEqual(p.cfg.MinAmount) {
			significant = append(significant, c)
		}
	}
	if len(significant) == 0 {
		// everything looked like sub-unit noise; better to report the
		// first raw candidate than nothing at all
		v := candidates[0].value
		return &v
	}

	best := significant[0]
	bestScore := p.scoreAmount(text, significant[0])
	for _, c := range significant[1:] {
		if s := p.scoreAmount(text, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return &best.value
}

// scoreAmount combines normalized position (later is likelier a total),
// capped magnitude, and a fixed bonus for nearby total/due keywords.
func (p *Pipeline) scoreAmount(text string, c amountCandidate) float64 {
	score := float64(c.pos) / float64(len(text)) * 100

	magnitude, _ := c.value.Float64()
	if magnitude > 1000 {
		magnitude = 1000
	}
	score += magnitude

	lo := c.pos - amountKeywordWindow
	if lo < 0 {
		lo = 0
	}
	hi := c.pos + amountKeywordWindow
	if hi > len(text) {
		hi = len(text)
	}
	if containsAny(strings.ToLower(text[lo:hi]), amountKeywords) {
		score += 50
	}
	return score
}

// parseMoney parses a numeral with optional thousands separators.
func parseMoney(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.TrimSuffix(raw, ".")
	return decimal.NewFromString(raw)
}
