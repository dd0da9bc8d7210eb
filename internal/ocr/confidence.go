package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateish = regexp.MustCompile(`\b(20\d{2})\b|\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)
	reCurrish = regexp.MustCompile(`\b(usd|ngn|naira|eur|gbp)\b|[$₦£€#]`)
	reAmtish  = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+\.\d{2}\b`)
)

// heuristicConfidence estimates how receipt-like the decoded text is.
// Date-ish, currency-ish and amount-ish artifacts each add to a small base.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reCurrish.MatchString(txtL) {
		score += 0.15
	}
	if reAmtish.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1 // enough content
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
