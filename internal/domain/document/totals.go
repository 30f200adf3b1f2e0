package document

import (
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/pricing"
)

// PricingInput builds the pricing input from the document's lines and adjustments.
func PricingInput(doc Document) pricing.Input {
	h := doc.Head()
	lines := make([]pricing.Line, 0, len(h.Items))
	for _, li := range h.Items {
		lines = append(lines, pricing.Line{UnitPrice: li.Price, Quantity: li.Quantity})
	}
	return pricing.Input{
		Lines:           lines,
		DiscountValue:   h.DiscountValue,
		DiscountPercent: h.DiscountType != DiscountAmount,
		TaxRate:         h.TaxRate,
		FiscalStamp:     h.FiscalStamp,
		AdditionalCosts: doc.AdditionalCosts(),
	}
}

// Reprice recomputes Subtotal, Discount and Amount. Amount is never set
// any other way, except for RFQ quotes (see QuoteTotal).
func Reprice(doc Document) pricing.Totals {
	t := pricing.Price(PricingInput(doc))
	h := doc.Head()
	h.Subtotal = t.Subtotal
	h.Discount = t.Discount
	h.Amount = t.Total
	return t
}

// QuoteTotal sets the amount of an RFQ to the plain sum of quoted lines.
func QuoteTotal(doc Document) {
	h := doc.Head()
	lines := make([]pricing.Line, 0, len(h.Items))
	for _, li := range h.Items {
		lines = append(lines, pricing.Line{UnitPrice: li.Price, Quantity: li.Quantity})
	}
	total := pricing.LinesTotal(lines)
	h.Subtotal = total
	h.Discount = types.Zero()
	h.Amount = total
}
