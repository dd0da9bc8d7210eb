// Package parse turns noisy OCR or PDF-layer text into structured receipt
// fields. It is pure: no I/O, no shared state, deterministic per input.
package parse

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/oduya/receipt-tracker/constants"
)

// ErrInsufficientText is the fixed message reported when the input is too
// short to analyze meaningfully.
const ErrInsufficientText = "Could not extract meaningful text from file"

// Pipeline runs the four field extractors and the category classifier over
// a single document's text. Safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

func NewPipeline(cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Pipeline{cfg: cfg, logger: logger}
}

// Process is the single entry point: text in, Result out. It never fails;
// extraction problems are captured into the result, not raised.
func (p *Pipeline) Process(text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("extraction fault", "error", r)
			res = failedResult(text, fmt.Sprintf("extraction failed: %v", r))
		}
	}()

	if len(strings.TrimSpace(text)) < p.cfg.MinTextLength {
		return failedResult(text, ErrInsufficientText)
	}

	// extractors are independent and order-insensitive
	vendor := p.extractVendor(text)
	amount := p.extractAmount(text)
	date := extractDate(text)
	items := p.extractLineItems(text)
	category := classify(vendor, text)

	p.logger.Debug("extraction done",
		"vendor_found", vendor != nil,
		"amount_found", amount != nil,
		"date_found", date != nil,
		"category", string(category),
		"line_items", len(items),
	)

	return Result{
		Vendor:    vendor,
		Amount:    amount,
		Date:      date,
		Category:  string(category),
		LineItems: items,
		RawText:   text,
		Success:   true,
	}
}

func failedResult(text, msg string) Result {
	return Result{
		Category:  string(constants.Other),
		LineItems: []LineItem{},
		RawText:   text,
		Success:   false,
		Error:     msg,
	}
}
