package parse

import (
	"encoding/json"
	"testing"
)

func TestValidateResultJSON(t *testing.T) {
	p := newTestPipeline(t)

	for _, text := range []string{
		"TOTAL: $12.34\nBig Store LTD\n2024-12-31",
		"OPay\nTransfer of ₦7,000.00 completed",
		"hi", // failure results must validate too
	} {
		res := p.Process(text)
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("marshal result: %v", err)
		}
		if err := ValidateResultJSON(b); err != nil {
			t.Errorf("ValidateResultJSON() for %q: %v", text, err)
		}
	}
}

func TestValidateResultJSONRejectsBadCategory(t *testing.T) {
	bad := []byte(`{
		"vendor": null,
		"amount": null,
		"date": null,
		"category": "miscellaneous",
		"line_items": [],
		"raw_text": "x",
		"success": true
	}`)
	if err := ValidateResultJSON(bad); err == nil {
		t.Error("ValidateResultJSON() = nil for unknown category, want error")
	}
}

func TestValidateResultJSONRejectsMissingFields(t *testing.T) {
	if err := ValidateResultJSON([]byte(`{"success": true}`)); err == nil {
		t.Error("ValidateResultJSON() = nil for missing fields, want error")
	}
}
