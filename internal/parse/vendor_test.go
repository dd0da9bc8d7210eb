package parse

import "testing"

func TestExtractVendor(t *testing.T) {
	p := newTestPipeline(t)

	tests := []struct {
		name string
		text string
		want string // "" means no vendor expected
	}{
		{
			name: "known alias railway",
			text: "Thanks for using Railway Corporation hosting services",
			want: "Railway Corporation",
		},
		{
			name: "known alias electro galactica",
			text: "receipt from ELECTRO GALACTICA head office",
			want: "Electro Galactica Company LTD",
		},
		{
			name: "labelled merchant line",
			text: "Invoice #42\nMerchant: Corner Cafe\nTotal: 500.00",
			want: "Corner Cafe",
		},
		{
			name: "payee label with separator",
			text: "Payee:- Grand Ventures\nAmount: 1,200.00",
			want: "Grand Ventures",
		},
		{
			name: "trade name with legal suffix",
			text: "TOTAL: $12.34\nBig Store LTD\n2024-12-31",
			want: "Big Store LTD",
		},
		{
			name: "bank name via trade pattern",
			text: "First Trust Bank Ltd\ncredit alert",
			want: "First Trust Bank Ltd",
		},
		{
			name: "mixed case company suffix",
			text: "FLUX ENERGY COMPANY\n12/01/2024\npaid in full",
			want: "FLUX ENERGY COMPANY",
		},
		{
			name: "uppercase header fallback",
			text: "WIDGET WAREHOUSE\nitem one 450.00\nthanks",
			want: "WIDGET WAREHOUSE",
		},
		{
			name: "uppercase header skips noise lines",
			text: "RECEIPT\nTRANSACTION 991\nGOLDEN BAKERY\npaid",
			want: "GOLDEN BAKERY",
		},
		{
			name: "too short candidates rejected",
			text: "AB\npaid 500.00 cash",
			want: "",
		},
		{
			name: "nothing vendor-like",
			text: "paid 500 at the counter yesterday",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.extractVendor(tt.text)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("extractVendor() = %q, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("extractVendor() = nil, want %q", tt.want)
			}
			if *got != tt.want {
				t.Errorf("extractVendor() = %q, want %q", *got, tt.want)
			}
		})
	}
}

func TestUppercaseRatio(t *testing.T) {
	tests := []struct {
		line string
		want float64
	}{
		{"ACME", 1},
		{"acme", 0},
		{"Acme Ltd", 0.285714},
		{"   ", 0},
	}
	for _, tt := range tests {
		got := uppercaseRatio(tt.line)
		if diff := got - tt.want; diff > 0.001 || diff < -0.001 {
			t.Errorf("uppercaseRatio(%q) = %f, want %f", tt.line, got, tt.want)
		}
	}
}
