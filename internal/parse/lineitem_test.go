package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractLineItems(t *testing.T) {
	p := newTestPipeline(t)

	tests := []struct {
		name string
		text string
		want []LineItem
	}{
		{
			name: "quantity with unit label",
			text: "Big Pack Pcs 2 800.00",
			want: []LineItem{{
				Name:       "Big Pack",
				Quantity:   2,
				UnitPrice:  dec(t, "400.00"),
				TotalPrice: dec(t, "800.00"),
			}},
		},
		{
			name: "name and price only",
			text: "Chicken Sandwich 1500.00",
			want: []LineItem{{
				Name:       "Chicken Sandwich",
				Quantity:   1,
				UnitPrice:  dec(t, "1500.00"),
				TotalPrice: dec(t, "1500.00"),
			}},
		},
		{
			name: "x separated quantity",
			text: "Water Bottle x 3 450.00",
			want: []LineItem{{
				Name:       "Water Bottle",
				Quantity:   3,
				UnitPrice:  dec(t, "150.00"),
				TotalPrice: dec(t, "450.00"),
			}},
		},
		{
			name: "order preserved across lines",
			text: "Rice Bag Pcs 2 3000.00\nPalm Oil 1200.00\nSoap Bar 350.00",
			want: []LineItem{
				{Name: "Rice Bag", Quantity: 2, UnitPrice: dec(t, "1500.00"), TotalPrice: dec(t, "3000.00")},
				{Name: "Palm Oil", Quantity: 1, UnitPrice: dec(t, "1200.00"), TotalPrice: dec(t, "1200.00")},
				{Name: "Soap Bar", Quantity: 1, UnitPrice: dec(t, "350.00"), TotalPrice: dec(t, "350.00")},
			},
		},
		{
			name: "summary and decoration lines skipped",
			text: "Item Name Qty Price\nBiscuits 250.00\nSubtotal 250.00\nTOTAL 250.00\n==========",
			want: []LineItem{
				{Name: "Biscuits", Quantity: 1, UnitPrice: dec(t, "250.00"), TotalPrice: dec(t, "250.00")},
			},
		},
		{
			name: "cheap rows dropped as noise",
			text: "Sachet Water 5.00\nBread Loaf 900.00",
			want: []LineItem{
				{Name: "Bread Loaf", Quantity: 1, UnitPrice: dec(t, "900.00"), TotalPrice: dec(t, "900.00")},
			},
		},
		{
			name: "no items",
			text: "Transaction successful\nNov 7th, 2025",
			want: []LineItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.extractLineItems(tt.text)
			if diff := cmp.Diff(tt.want, got, decCmp); diff != "" {
				t.Errorf("extractLineItems() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildLineItemArity(t *testing.T) {
	p := newTestPipeline(t)

	// middle capture holds the price when no quantity was printed
	item, ok := p.buildLineItem([]string{"fuel surcharge", "45.00", ""})
	if !ok {
		t.Fatal("buildLineItem() ok = false, want true")
	}
	if item.Quantity != 1 || !item.TotalPrice.Equal(dec(t, "45.00")) {
		t.Errorf("buildLineItem() = %+v, want quantity 1 total 45.00", item)
	}

	if _, ok := p.buildLineItem([]string{"broken"}); ok {
		t.Error("buildLineItem() ok = true for single group, want false")
	}
}
