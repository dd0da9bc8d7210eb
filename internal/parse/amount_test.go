package parse

import (
	"strings"
	"testing"
)

func TestExtractAmount(t *testing.T) {
	p := newTestPipeline(t)

	tests := []struct {
		name string
		text string
		want string // "" means no amount expected
	}{
		{
			name: "dollar total",
			text: "TOTAL: $12.34\nBig Store LTD\n2024-12-31",
			want: "12.34",
		},
		{
			name: "naira with thousands separator",
			text: "Transfer of ₦7,000.00 completed",
			want: "7000.00",
		},
		{
			name: "hash prefixed mobile payment",
			text: "Transaction successful\n#5,000.00\nNov 7th, 2025",
			want: "5000.00",
		},
		{
			name: "amount due usd phrasing",
			text: "Invoice 2210\nAmount Due $25.00 USD\nthanks",
			want: "25.00",
		},
		{
			name: "bare naira word",
			text: "you paid 1500 naira at the gate",
			want: "1500",
		},
		{
			name: "standalone numeric line",
			text: "STATION MART\nbalance\n2,300.50\ngoodbye",
			want: "2300.50",
		},
		{
			name: "total outscores earlier labelled amount",
			text: "Amount: 250.00\n" + strings.Repeat("line item filler text\n", 4) + "Total: 900.00",
			want: "900.00",
		},
		{
			name: "implausibly large reference skipped",
			text: "Ref #123456789\nTotal: $45.00",
			want: "45.00",
		},
		{
			name: "sub-unit fallback when nothing significant",
			text: "processing fee $0.25 applied",
			want: "0.25",
		},
		{
			name: "no numerals",
			text: "no charge recorded on this slip",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.extractAmount(tt.text)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("extractAmount() = %s, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("extractAmount() = nil, want %s", tt.want)
			}
			if want := dec(t, tt.want); !got.Equal(want) {
				t.Errorf("extractAmount() = %s, want %s", got, want)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "7,000.00", want: "7000.00"},
		{raw: "1500", want: "1500"},
		{raw: "45.", want: "45"},
		{raw: "0.25", want: "0.25"},
		{raw: ",,", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseMoney(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseMoney(%q) error = nil, want error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMoney(%q) error = %v", tt.raw, err)
			continue
		}
		if !got.Equal(dec(t, tt.want)) {
			t.Errorf("parseMoney(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
