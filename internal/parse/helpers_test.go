package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// decCmp compares decimals by value, ignoring exponent representation.
var decCmp = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return NewPipeline(Config{}, nil)
}

func strptr(s string) *string { return &s }

func decptr(d decimal.Decimal) *decimal.Decimal { return &d }
