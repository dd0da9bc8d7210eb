package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lineItemPatterns are tried in order per line; the first match wins and
// the rest are skipped. Group arity decides how the captures map onto
// (name, quantity, unit price, total price).
var lineItemPatterns = []*regexp.Regexp{
	// "Big Pack Pcs 2 800.00": name, unit label, quantity, total
	regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s.,&-]+?)\s+(Pcs?|REGULAR)\s+(\d+)\s+([0-9,]+\.?\d{0,2})$`),
	// "Item Name 800.00": name, total (quantity 1)
	regexp.MustCompile(`^([A-Za-z][A-Za-z\s.,&-]+?)\s+([0-9,]+\.?\d{0,2})$`),
	// "Item Name x 2 800.00" and looser separator variants
	regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z\s.,&-]+?)\s+(?:Pcs?|REGULAR|x)?\s*(\d+)?\s*x?\s*([0-9,]+\.?\d{0,2})$`),
}

// lineItemSkipTokens mark header, summary and decoration lines that can
// never be purchasable items.
var lineItemSkipTokens = []string{
	"item name", "subtotal", "total", "discount", "settled", "thank you", "receipt", "====",
}

const minItemLineLength = 5

var titleCaser = cases.Title(language.English)

// extractLineItems pulls purchasable item rows out of the text, preserving
// source line order.
func (p *Pipeline) extractLineItems(text string) []LineItem {
	items := []LineItem{}
	for _, line := range nonEmptyLines(text) {
		if containsAny(strings.ToLower(line), lineItemSkipTokens) {
			continue
		}
		if len(line) < minItemLineLength || !containsDigit(line) {
			continue
		}
		for _, re := range lineItemPatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if item, ok := p.buildLineItem(m[1:]); ok {
				items = append(items, item)
			}
			break // first matching pattern settles the line
		}
	}
	return items
}

// buildLineItem maps captured groups onto a LineItem per group arity.
func (p *Pipeline) buildLineItem(groups []string) (LineItem, bool) {
	var (
		name     string
		quantity int
		total    decimal.Decimal
		err      error
	)

	switch len(groups) {
	case 4: // name, unit label, quantity, total
		name = groups[0]
		quantity, _ = strconv.Atoi(groups[2])
		total, err = parseMoney(groups[3])
	case 3: // name, optional quantity, price
		name = groups[0]
		switch {
		case isDigits(groups[1]):
			quantity, _ = strconv.Atoi(groups[1])
			total, err = parseMoney(groups[2])
		case groups[1] != "":
			// middle capture is the price itself, not a quantity
			quantity = 1
			total, err = parseMoney(groups[1])
		default:
			quantity = 1
			total, err = parseMoney(groups[2])
		}
	case 2: // name, total
		name = groups[0]
		quantity = 1
		total, err = parseMoney(groups[1])
	default:
		return LineItem{}, false
	}
	if err != nil {
		return LineItem{}, false
	}
	if total.LessThan(p.cfg.MinItemTotal) {
		return LineItem{}, false // sub-threshold rows are noise, not items
	}

	unit := total
	if quantity > 1 {
		unit = total.DivRound(decimal.NewFromInt(int64(quantity)), 2)
	}
	if quantity < 1 {
		quantity = 1
	}

	return LineItem{
		Name:       titleCaser.String(strings.ToLower(strings.TrimSpace(name))),
		Quantity:   quantity,
		UnitPrice:  unit,
		TotalPrice: total,
	}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
