// Package pricing computes document totals: subtotal, discount, tax,
// fiscal stamp and additional costs, plus currency conversion helpers.
//
// The engine never rounds. Callers that display or print amounts use
// Totals.Round with the currency's decimal places.
package pricing

import (
	"github.com/shopspring/decimal"

	"smartbiz/internal/core/types"
)

var hundred = decimal.NewFromInt(100)

// Line is one priced line.
type Line struct {
	UnitPrice types.Money
	Quantity  types.Quantity
}

// Input is everything the total depends on.
type Input struct {
	Lines []Line

	// DiscountValue is a percentage when DiscountPercent is true, an amount otherwise.
	DiscountValue   types.Money
	DiscountPercent bool

	// TaxRate is a percentage, e.g. 19 for 19%.
	TaxRate         types.Money
	FiscalStamp     types.Money
	AdditionalCosts types.Money
}

// Totals is the result of pricing a document.
type Totals struct {
	Subtotal types.Money `json:"subtotal"`
	Discount types.Money `json:"discount"`
	Taxable  types.Money `json:"taxable"`
	Tax      types.Money `json:"tax"`
	Total    types.Money `json:"total"`
}

// Price runs the pricing algorithm:
//
//	subtotal = Σ(price × quantity)
//	discount = percent ? subtotal × value/100 : value
//	taxable  = max(0, subtotal − discount)
//	tax      = taxable × taxRate/100
//	total    = taxable + tax + fiscalStamp + additionalCosts
//
// Negative discount value, tax rate, stamp and costs are treated as zero.
func Price(in Input) Totals {
	subtotal := decimal.Zero
	for _, l := range in.Lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(l.Quantity.Decimal()))
	}

	discountValue := types.NonNegative(in.DiscountValue)
	discount := discountValue
	if in.DiscountPercent {
		discount = subtotal.Mul(discountValue).Div(hundred)
	}

	taxable := types.NonNegative(subtotal.Sub(discount))
	tax := taxable.Mul(types.NonNegative(in.TaxRate)).Div(hundred)

	total := taxable.
		Add(tax).
		Add(types.NonNegative(in.FiscalStamp)).
		Add(types.NonNegative(in.AdditionalCosts))

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    total,
	}
}

// Round rounds every amount half away from zero to places decimals.
func (t Totals) Round(places int32) Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(places),
		Discount: t.Discount.Round(places),
		Taxable:  t.Taxable.Round(places),
		Tax:      t.Tax.Round(places),
		Total:    t.Total.Round(places),
	}
}

// LinesTotal returns Σ(price × quantity) with no adjustments.
func LinesTotal(lines []Line) types.Money {
	return Price(Input{Lines: lines}).Subtotal
}

// divisionPrecision bounds the digits kept by ForeignUnitPrice.
const divisionPrecision = 8

// ForeignUnitPrice converts a base-currency price into the document currency.
// A non-positive rate leaves the price unchanged.
func ForeignUnitPrice(base types.Money, rate types.Money) types.Money {
	if !rate.IsPositive() {
		return base
	}
	return base.DivRound(rate, divisionPrecision)
}

// ToBase converts a document-currency amount into the base currency.
func ToBase(amount types.Money, rate types.Money) types.Money {
	if !rate.IsPositive() {
		return amount
	}
	return amount.Mul(rate)
}
