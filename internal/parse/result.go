package parse

import "github.com/shopspring/decimal"

// Result is the outcome of one extraction pass over raw receipt text.
// Fields the extractors could not determine are nil; that alone never
// marks the result as failed.
type Result struct {
	Vendor    *string          `json:"vendor"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *string          `json:"date"`
	Category  string           `json:"category"`
	LineItems []LineItem       `json:"line_items"`
	RawText   string           `json:"raw_text"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
}

// LineItem is one purchased item row. UnitPrice and TotalPrice are always
// both populated; whichever the source line did not encode is derived from
// the other.
type LineItem struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}
