package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt represents an extracted receipt for data transfer between layers.
// TxDate is kept as the display text found on the receipt; no calendar
// normalization is attempted.
type Receipt struct {
	ID         uuid.UUID        `json:"id"`
	FileID     *uuid.UUID       `json:"file_id,omitempty"`
	Vendor     *string          `json:"vendor"`
	Amount     *decimal.Decimal `json:"amount"`
	TxDate     *string          `json:"date"`
	Category   string           `json:"category"`
	RawText    string           `json:"raw_text"`
	Success    bool             `json:"success"`
	Error      *string          `json:"error,omitempty"`
	LineItems  []LineItem       `json:"line_items"`
	SourceFile *string          `json:"source_file,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// LineItem is one purchased item row belonging to a receipt.
type LineItem struct {
	ID         uuid.UUID       `json:"id"`
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Position   int             `json:"position"`
}
