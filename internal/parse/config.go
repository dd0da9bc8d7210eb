package parse

import "github.com/shopspring/decimal"

// Config holds the tunable thresholds of the extraction pipeline.
// Zero values are replaced with defaults by NewPipeline.
type Config struct {
	// MinTextLength is the minimum trimmed input length considered
	// analyzable; shorter inputs fail fast with ErrInsufficientText.
	MinTextLength int

	// MinAmount is the significance floor for amount candidates; values
	// below it are presumed unit prices or fees rather than totals.
	MinAmount decimal.Decimal

	// MaxAmount is the plausibility ceiling for amount candidates; values
	// above it are presumed transaction or reference IDs.
	MaxAmount decimal.Decimal

	// MinItemTotal is the noise floor for line items; rows cheaper than
	// this are dropped as artifacts rather than genuine purchases.
	MinItemTotal decimal.Decimal

	// MinVendorLength is the shortest string accepted as a vendor name.
	MinVendorLength int
}

func (c *Config) applyDefaults() {
	if c.MinTextLength <= 0 {
		c.MinTextLength = 10
	}
	if c.MinAmount.IsZero() {
		c.MinAmount = decimal.NewFromFloat(0.50)
	}
	if c.MaxAmount.IsZero() {
		c.MaxAmount = decimal.NewFromInt(1_000_000)
	}
	if c.MinItemTotal.IsZero() {
		c.MinItemTotal = decimal.NewFromInt(10)
	}
	if c.MinVendorLength <= 0 {
		c.MinVendorLength = 4
	}
}
