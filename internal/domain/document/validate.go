package document

import (
	"context"
	"fmt"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
)

// Validate checks structural invariants that need no storage access.
// Catalog checks (partner and warehouse exist) belong to the conversion engine.
func Validate(ctx context.Context, doc Document) error {
	h := doc.Head()

	if !h.Domain.Valid() {
		return apperror.NewValidation("unknown domain").WithDetail("domain", h.Domain)
	}
	if !h.Domain.Has(h.Type) {
		return apperror.NewValidation("unknown document type for domain").
			WithDetail("domain", h.Domain).
			WithDetail("type", h.Type)
	}

	p := doc.Partner()
	if id.IsNil(p.ID) && p.Name == "" {
		return apperror.NewValidation(partnerLabel(h.Domain) + " is required").
			WithDetail("field", partnerField(h.Domain))
	}

	if len(h.Items) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "items")
	}

	seen := make(map[string]struct{}, len(h.Items))
	for i, li := range h.Items {
		field := fmt.Sprintf("items[%d]", i)
		if li.ID == "" {
			return apperror.NewValidation("line item id is required").WithDetail("field", field+".id")
		}
		if _, dup := seen[li.ID]; dup {
			return apperror.NewValidation("duplicate line item").WithDetail("field", field+".id").WithDetail("id", li.ID)
		}
		seen[li.ID] = struct{}{}

		if !li.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", field+".quantity").
				WithDetail("quantity", li.Quantity)
		}
		if li.Price.IsNegative() {
			return apperror.NewValidation("price must not be negative").
				WithDetail("field", field+".price")
		}
		if f := li.Fulfilled(); f < 0 || f > li.Quantity {
			return apperror.NewValidation("fulfilled quantity out of range").
				WithDetail("field", field+".fulfilledQuantity").
				WithDetail("fulfilled", f).
				WithDetail("quantity", li.Quantity)
		}
	}

	if h.Currency == "" {
		return apperror.NewValidation("currency is required").WithDetail("field", "currency")
	}
	if !h.ExchangeRate.IsPositive() {
		return apperror.NewValidation("exchange rate must be positive").WithDetail("field", "exchangeRate")
	}

	switch h.DiscountType {
	case DiscountPercent, DiscountAmount:
	default:
		return apperror.NewValidation("unknown discount type").WithDetail("field", "discountType")
	}

	if h.Type == TypeReturn {
		switch h.StockAction {
		case StockReintegrate, StockQuarantine:
		default:
			return apperror.NewValidation("stock action must be reintegrate or quarantine").
				WithDetail("field", "stockAction")
		}
	}

	return nil
}

func partnerLabel(d Domain) string {
	if d == DomainPurchase {
		return "supplier"
	}
	return "client"
}

func partnerField(d Domain) string {
	return partnerLabel(d) + "Id"
}
