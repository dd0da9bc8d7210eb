package constants

import (
	"strings"
)

// Category is one label from the closed expense taxonomy.
type Category string

const (
	Technology     Category = "technology"
	Business       Category = "business"
	Financial      Category = "financial"
	Electronics    Category = "electronics"
	Groceries      Category = "groceries"
	Restaurant     Category = "restaurant"
	Fuel           Category = "fuel"
	Retail         Category = "retail"
	Pharmacy       Category = "pharmacy"
	Transportation Category = "transportation"
	Utilities      Category = "utilities"
	Education      Category = "education"
	Personal       Category = "personal"
	Other          Category = "other"
)

var allCategories = []Category{
	Technology,
	Business,
	Financial,
	Electronics,
	Groceries,
	Restaurant,
	Fuel,
	Retail,
	Pharmacy,
	Transportation,
	Utilities,
	Education,
	Personal,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form labels onto the closed set.
// Returns Other (and false) when the input is unknown.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"tech":        Technology,
		"software":    Technology,
		"finance":     Financial,
		"banking":     Financial,
		"grocery":     Groceries,
		"supermarket": Groceries,
		"restaurants": Restaurant,
		"dining":      Restaurant,
		"transport":   Transportation,
		"travel":      Transportation,
		"utility":     Utilities,
		"telecom":     Utilities,
		"medical":     Pharmacy,
		"petrol":      Fuel,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}
