package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProcessFullReceipt(t *testing.T) {
	p := newTestPipeline(t)

	text := "TOTAL: $12.34\nBig Store LTD\n2024-12-31"
	got := p.Process(text)

	want := Result{
		Vendor:    strptr("Big Store LTD"),
		Amount:    decptr(dec(t, "12.34")),
		Date:      strptr("2024-12-31"),
		Category:  "retail",
		LineItems: []LineItem{},
		RawText:   text,
		Success:   true,
	}
	if diff := cmp.Diff(want, got, decCmp); diff != "" {
		t.Errorf("Process() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessMobileTransfer(t *testing.T) {
	p := newTestPipeline(t)

	got := p.Process("OPay\nTransfer of ₦7,000.00 completed\nNov 7th, 2025 17:53:25")
	if !got.Success {
		t.Fatalf("Process() success = false, error = %q", got.Error)
	}
	if got.Amount == nil || !got.Amount.Equal(dec(t, "7000.00")) {
		t.Errorf("Process() amount = %v, want 7000.00", got.Amount)
	}
	if got.Category != "financial" {
		t.Errorf("Process() category = %q, want financial", got.Category)
	}
	if got.Date == nil || *got.Date != "Nov 7th, 2025 17:53:25" {
		t.Errorf("Process() date = %v, want timestamp", got.Date)
	}
}

func TestProcessInsufficientText(t *testing.T) {
	p := newTestPipeline(t)

	for _, text := range []string{"", "hi", "   \n\t  "} {
		got := p.Process(text)
		if got.Success {
			t.Errorf("Process(%q) success = true, want false", text)
		}
		if got.Error != ErrInsufficientText {
			t.Errorf("Process(%q) error = %q, want %q", text, got.Error, ErrInsufficientText)
		}
		if got.Category != "other" {
			t.Errorf("Process(%q) category = %q, want other", text, got.Category)
		}
		if got.LineItems == nil || len(got.LineItems) != 0 {
			t.Errorf("Process(%q) line items = %v, want empty slice", text, got.LineItems)
		}
		if got.RawText != text {
			t.Errorf("Process(%q) raw text = %q, want input preserved", text, got.RawText)
		}
	}
}

func TestProcessIdempotent(t *testing.T) {
	p := newTestPipeline(t)

	text := "GOLDEN BAKERY\nBread Loaf 900.00\nTotal: 900.00\n12/01/2024"
	first := p.Process(text)
	second := p.Process(text)
	if diff := cmp.Diff(first, second, decCmp); diff != "" {
		t.Errorf("Process() not deterministic (-first +second):\n%s", diff)
	}
}

func TestProcessNeverFails(t *testing.T) {
	p := newTestPipeline(t)

	// hostile inputs must still come back as a Result
	inputs := []string{
		"\x00\x01\x02 binary garbage \xff\xfe with enough length",
		"((((((((((unbalanced))))\n$$$$\n#####",
		"𝕌𝕟𝕚𝕔𝕠𝕕𝕖 mathematical text ₦₦₦ 12.50",
	}
	for _, text := range inputs {
		got := p.Process(text)
		if got.RawText != text {
			t.Errorf("Process() raw text not preserved for %q", text)
		}
		if got.Category == "" {
			t.Errorf("Process(%q) category empty", text)
		}
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline(Config{}, nil)
	if p.cfg.MinTextLength != 10 {
		t.Errorf("MinTextLength = %d, want 10", p.cfg.MinTextLength)
	}
	if !p.cfg.MinAmount.Equal(dec(t, "0.5")) {
		t.Errorf("MinAmount = %s, want 0.5", p.cfg.MinAmount)
	}
	if !p.cfg.MaxAmount.Equal(dec(t, "1000000")) {
		t.Errorf("MaxAmount = %s, want 1000000", p.cfg.MaxAmount)
	}
	if !p.cfg.MinItemTotal.Equal(dec(t, "10")) {
		t.Errorf("MinItemTotal = %s, want 10", p.cfg.MinItemTotal)
	}
	if p.cfg.MinVendorLength != 4 {
		t.Errorf("MinVendorLength = %d, want 4", p.cfg.MinVendorLength)
	}
}
