package parse

import (
	"testing"

	"github.com/oduya/receipt-tracker/constants"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		vendor *string
		text   string
		want   constants.Category
	}{
		{
			name: "mobile money app",
			text: "OPay\nTransaction successful\n#5,000.00",
			want: constants.Financial,
		},
		{
			name:   "electronics vendor beats business suffix",
			vendor: strptr("Electro Galactica Company LTD"),
			text:   "warranty card enclosed",
			want:   constants.Electronics,
		},
		{
			name:   "hosting invoice",
			vendor: strptr("Railway Corporation"),
			text:   "usage for November",
			want:   constants.Technology,
		},
		{
			name:   "retail storefront",
			vendor: strptr("Big Store LTD"),
			text:   "TOTAL: $12.34\n2024-12-31",
			want:   constants.Retail,
		},
		{
			name: "filling station",
			text: "OANDO\nPMS 45 litres\n38,000.00",
			want: constants.Fuel,
		},
		{
			name:   "person name falls back to personal",
			vendor: strptr("John Doe"),
			text:   "sent you 2,000.00 yesterday",
			want:   constants.Personal,
		},
		{
			name:   "company indicator blocks personal",
			vendor: strptr("Quiet Holdings Plc"),
			text:   "annual statement",
			want:   constants.Other,
		},
		{
			name: "nothing matches",
			text: "illegible smudged slip",
			want: constants.Other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.vendor, tt.text); got != tt.want {
				t.Errorf("classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
