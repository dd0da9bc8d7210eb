package parse

import (
	"regexp"
	"strings"
	"unicode"
)

// vendorAliases are known high-confidence vendors matched before any
// pattern work; the first substring hit wins.
var vendorAliases = []struct {
	substr    string // lowercase needle
	canonical string
}{
	{"railway corporation", "Railway Corporation"},
	{"electro galactica", "Electro Galactica Company LTD"},
}

// vendorLabels anchor the payee name to the remainder of a labelled line.
var vendorLabels = []string{
	"recipient details",
	"merchant:",
	"payee:",
}

// vendorPatterns are tried in order against the full text; the first
// sufficiently long, non-bank match wins. Patterns that deliberately target
// banks set allowBank.
var vendorPatterns = []struct {
	re        *regexp.Regexp
	allowBank bool
}{
	// "Recipient Details ACME STORES LTD"
	{re: regexp.MustCompile(`(?i)recipient\s+details\s+([A-Z][A-Z\s&.-]+(?:LTD|LIMITED|INC|COMPANY|CORP|PLC))`)},
	// Trade names ending in STORES/SHOPPING/COMMUNICATIONS/BANK/NIGERIA,
	// optionally followed by a legal suffix.
	{re: regexp.MustCompile(`(?i)([A-Z][A-Za-z\s&.-]+(?:STORES?|SHOPPING|COMMUNICATIONS?|BANK|NIGERIA)(?:\s+(?:LIMITED|LTD|PLC))?)`), allowBank: true},
	// Mixed-case company names with a legal suffix.
	{re: regexp.MustCompile(`(?i)([A-Z][A-Za-z\s&.-]+(?:Corporation|Corp|Ltd|Limited|Inc|Company|LLC|PLC))`)},
	// All-caps runs with a legal suffix.
	{re: regexp.MustCompile(`([A-Z][A-Z\s]{2,20}(?:LTD|LIMITED|INC|COMPANY|CORP|PLC))`)},
}

// vendorSkipTokens disqualify a line from the uppercase-line fallback.
var vendorSkipTokens = []string{"invoice", "receipt", "transaction", "date", "bill to", "@"}

const maxVendorLineLength = 49

// extractVendor resolves the best-guess payee name through an ordered
// fallback chain; each stage runs only if the previous one found nothing.
func (p *Pipeline) extractVendor(text string) *string {
	if v := lookupVendorAlias(text); v != "" {
		return &v
	}
	if v := p.vendorFromLabel(text); v != "" {
		return &v
	}
	if v := p.vendorFromPatterns(text); v != "" {
		return &v
	}
	if v := p.vendorFromUppercaseLine(text); v != "" {
		return &v
	}
	return nil
}

func lookupVendorAlias(text string) string {
	lower := strings.ToLower(text)
	for _, a := range vendorAliases {
		if strings.Contains(lower, a.substr) {
			return a.canonical
		}
	}
	return ""
}

func (p *Pipeline) vendorFromLabel(text string) string {
	for _, line := range nonEmptyLines(text) {
		lower := strings.ToLower(line)
		for _, label := range vendorLabels {
			idx := strings.Index(lower, label)
			if idx < 0 {
				continue
			}
			candidate := strings.TrimSpace(line[idx+len(label):])
			candidate = strings.TrimLeft(candidate, ":- ")
			if len(candidate) >= p.cfg.MinVendorLength {
				return candidate
			}
		}
	}
	return ""
}

func (p *Pipeline) vendorFromPatterns(text string) string {
	for _, vp := range vendorPatterns {
		for _, m := range vp.re.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			// keep only the first line of a multi-line match
			if i := strings.IndexByte(candidate, '\n'); i >= 0 {
				candidate = strings.TrimSpace(candidate[:i])
			}
			if len(candidate) < p.cfg.MinVendorLength {
				continue
			}
			if !vp.allowBank && strings.Contains(strings.ToLower(candidate), "bank") {
				continue
			}
			return candidate
		}
	}
	return ""
}

// vendorFromUppercaseLine scans the first five non-empty lines for a
// shouty line that looks like a storefront header.
func (p *Pipeline) vendorFromUppercaseLine(text string) string {
	lines := nonEmptyLines(text)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		if containsAny(lower, vendorSkipTokens) {
			continue
		}
		if len(line) < p.cfg.MinVendorLength || len(line) > maxVendorLineLength {
			continue
		}
		if uppercaseRatio(line) > 0.5 {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// uppercaseRatio is the share of uppercase letters among non-space runes.
func uppercaseRatio(line string) float64 {
	var upper, total int
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
