package parse

import (
	"strings"

	"github.com/oduya/receipt-tracker/constants"
)

// categoryRules map categories to keyword substrings, evaluated in this
// fixed priority order against a lowercase vendor+text haystack. The first
// category with any keyword hit wins.
var categoryRules = []struct {
	category constants.Category
	keywords []string
}{
	{constants.Financial, []string{"opay", "bank", "transfer", "payment", "transaction", "mobile money", "fintech"}},
	{constants.Electronics, []string{"electro", "galactica", "electronics", "computer", "tech", "gadget"}},
	{constants.Technology, []string{"hosting", "domain", "server", "cloud", "software", "saas", "railway", "vercel", "netlify", "aws", "invoice"}},
	{constants.Business, []string{"company ltd", "limited", "corporation", "enterprise", "services", "consultant"}},
	{constants.Groceries, []string{"grocery", "supermarket", "food", "market", "shoprite", "spar", "provision"}},
	{constants.Restaurant, []string{"restaurant", "cafe", "pizza", "dining", "bar", "grill", "kitchen", "eatery"}},
	{constants.Fuel, []string{"fuel", "petrol", "filling station", "mobil", "oando"}},
	{constants.Retail, []string{"store", "shop", "mall", "boutique", "clothing", "fashion"}},
	{constants.Pharmacy, []string{"pharmacy", "medical", "drug", "health", "hospital", "clinic"}},
	{constants.Transportation, []string{"uber", "bolt", "taxi", "bus", "transport", "travel"}},
	{constants.Utilities, []string{"electric", "water", "nepa", "internet", "phone", "utility", "telecom", "mtn", "airtel"}},
	{constants.Education, []string{"school", "university", "education", "training", "course"}},
}

// companyIndicators rule a vendor out of the person-name heuristic.
var companyIndicators = []string{
	"ltd", "limited", "inc", "corp", "company", "plc", "stores", "bank", "communications",
}

// classify assigns exactly one category label for the receipt, defaulting
// to "other" when no rule matches.
func classify(vendor *string, text string) constants.Category {
	var v string
	if vendor != nil {
		v = *vendor
	}
	haystack := strings.ToLower(v + " " + text)

	for _, rule := range categoryRules {
		if containsAny(haystack, rule.keywords) {
			return rule.category
		}
	}

	// A multi-word vendor with no corporate marker reads like a person's
	// name: treat the receipt as a personal transfer.
	if v != "" && len(strings.Fields(v)) >= 2 && !containsAny(strings.ToLower(v), companyIndicators) {
		return constants.Personal
	}

	return constants.Other
}
