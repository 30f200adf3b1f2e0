package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartbiz/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got)
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name         string
		in           Input
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "percent discount with tax and stamp",
			in: Input{
				Lines:           []Line{{UnitPrice: money("100"), Quantity: types.NewQuantity(10)}},
				DiscountValue:   money("10"),
				DiscountPercent: true,
				TaxRate:         money("19"),
				FiscalStamp:     money("1"),
			},
			wantSubtotal: "1000",
			wantDiscount: "100",
			wantTax:      "171",
			wantTotal:    "1072",
		},
		{
			name: "flat discount larger than subtotal clamps taxable to zero",
			in: Input{
				Lines:         []Line{{UnitPrice: money("20"), Quantity: types.NewQuantity(2)}},
				DiscountValue: money("75"),
				TaxRate:       money("19"),
				FiscalStamp:   money("1"),
			},
			wantSubtotal: "40",
			wantDiscount: "75",
			wantTax:      "0",
			wantTotal:    "1",
		},
		{
			name: "negative inputs are treated as zero",
			in: Input{
				Lines:           []Line{{UnitPrice: money("10"), Quantity: types.NewQuantity(3)}},
				DiscountValue:   money("-5"),
				TaxRate:         money("-19"),
				FiscalStamp:     money("-1"),
				AdditionalCosts: money("-2"),
			},
			wantSubtotal: "30",
			wantDiscount: "0",
			wantTax:      "0",
			wantTotal:    "30",
		},
		{
			name: "additional costs are not taxed",
			in: Input{
				Lines: []Line{
					{UnitPrice: money("5"), Quantity: types.NewQuantity(20)},
					{UnitPrice: money("2.5"), Quantity: types.Quantity(15_000)},
				},
				TaxRate:         money("10"),
				AdditionalCosts: money("12.5"),
			},
			wantSubtotal: "103.75",
			wantDiscount: "0",
			wantTax:      "10.375",
			wantTotal:    "126.625",
		},
		{
			name:         "empty document",
			in:           Input{},
			wantSubtotal: "0",
			wantDiscount: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Price(tt.in)
			assertMoney(t, tt.wantSubtotal, got.Subtotal)
			assertMoney(t, tt.wantDiscount, got.Discount)
			assertMoney(t, tt.wantTax, got.Tax)
			assertMoney(t, tt.wantTotal, got.Total)
		})
	}
}

func TestPrice_NoRounding(t *testing.T) {
	got := Price(Input{
		Lines:   []Line{{UnitPrice: money("0.333"), Quantity: types.NewQuantity(1)}},
		TaxRate: money("7"),
	})

	assertMoney(t, "0.35631", got.Total)
	assertMoney(t, "0.36", got.Round(2).Total)
}

func TestLinesTotal(t *testing.T) {
	assertMoney(t, "100", LinesTotal([]Line{{UnitPrice: money("5"), Quantity: types.NewQuantity(20)}}))
}

func TestForeignUnitPrice(t *testing.T) {
	assertMoney(t, "50", ForeignUnitPrice(money("100"), money("2")))
	assertMoney(t, "100", ForeignUnitPrice(money("100"), money("0")))
	assertMoney(t, "33.33333333", ForeignUnitPrice(money("100"), money("3")))
	assertMoney(t, "250", ToBase(money("125"), money("2")))
}
