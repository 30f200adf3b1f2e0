// Package fulfillment tracks partial receipt of purchase orders and the RFQ
// quote/accept cycle.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/tx"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/document"
	"smartbiz/pkg/logger"
)

var (
	purchaseOrder    = document.Kind{Domain: document.DomainPurchase, Type: document.TypeOrder}
	goodsReceipt     = document.Kind{Domain: document.DomainPurchase, Type: document.TypeDelivery}
	requestForQuotes = document.Kind{Domain: document.DomainPurchase, Type: document.TypeRFQ}
)

// Tracker receives goods against purchase orders.
type Tracker struct {
	store     *document.Store
	txManager tx.Manager
}

// NewTracker creates a tracker.
func NewTracker(store *document.Store, txManager tx.Manager) *Tracker {
	return &Tracker{store: store, txManager: txManager}
}

// ReceiveOptions override what the GRN inherits from the order.
type ReceiveOptions struct {
	WarehouseID *id.ID
	Date        time.Time
	Notes       string
}

// Receipt is the outcome of one receive call.
type Receipt struct {
	GRN   *document.PurchaseDocument `json:"grn"`
	Order *document.PurchaseDocument `json:"order"`
}

// Receive records goods received against a pending purchase order.
// Requested quantities are keyed by line item id and clamped to what is still
// outstanding; lines not in requested receive nothing. A nil map receives
// everything outstanding.
func (t *Tracker) Receive(ctx context.Context, orderID id.ID, requested map[string]types.Quantity, opts ReceiveOptions) (*Receipt, error) {
	var out *Receipt

	err := t.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := t.loadPurchase(ctx, orderID, purchaseOrder)
		if err != nil {
			return err
		}
		if order.Status != document.StatusPending {
			return apperror.NewInvalidConversion(purchaseOrder.String(), goodsReceipt.String()).
				WithDetail("status", order.Status)
		}

		received := clampToRemaining(order.Items, requested)

		grn := document.New(goodsReceipt).(*document.PurchaseDocument)
		grn.SetPartner(order.Partner())
		grn.Currency = order.Currency
		grn.ExchangeRate = order.ExchangeRate
		grn.TaxRate = order.TaxRate
		// An amount discount belongs to the order as a whole and is not split across receipts.
		if order.DiscountType == document.DiscountPercent {
			grn.DiscountValue = order.DiscountValue
		}
		grn.WarehouseID = order.WarehouseID
		if opts.WarehouseID != nil {
			grn.WarehouseID = opts.WarehouseID
		}
		grn.LinkedDocumentID = &order.ID
		grn.Date = opts.Date
		grn.Notes = opts.Notes

		for i, li := range order.Items {
			q := received[i]
			if q <= 0 {
				continue
			}
			grn.Items = append(grn.Items, document.LineItem{
				ID:          li.ID,
				Description: li.Description,
				Quantity:    q,
				Price:       li.Price,
			})
		}
		if len(grn.Items) == 0 {
			return apperror.NewEmptySelection("nothing left to receive for the selected items").
				WithDetail("orderId", order.ID.String())
		}
		document.Reprice(grn)

		if err := t.store.Create(ctx, grn); err != nil {
			return fmt.Errorf("create goods receipt: %w", err)
		}

		for i := range order.Items {
			li := &order.Items[i]
			f := li.Fulfilled() + received[i]
			li.FulfilledQuantity = &f
		}
		document.SettleReceipt(&order.Header)

		if err := t.store.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		logger.Info(ctx, "goods received",
			"order", order.Number,
			"grn", grn.Number,
			"lines", len(grn.Items),
			"status", order.Status)

		out = &Receipt{GRN: grn, Order: order}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// clampToRemaining returns the quantity to receive per line, index-aligned with items.
func clampToRemaining(items document.Items, requested map[string]types.Quantity) []types.Quantity {
	out := make([]types.Quantity, len(items))
	for i, li := range items {
		if requested == nil {
			out[i] = li.Remaining()
			continue
		}
		out[i] = requested[li.ID].Clamp(li.Remaining())
	}
	return out
}

// QuoteRFQ stores the supplier's prices. Lines absent from prices keep their
// price. The RFQ total is the plain line sum and its status becomes responded.
func (t *Tracker) QuoteRFQ(ctx context.Context, rfqID id.ID, prices map[string]types.Money) (*document.PurchaseDocument, error) {
	var out *document.PurchaseDocument

	err := t.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rfq, err := t.loadPurchase(ctx, rfqID, requestForQuotes)
		if err != nil {
			return err
		}
		if rfq.Status != document.StatusSent && rfq.Status != document.StatusResponded {
			return apperror.NewInvalidStatusTransition(requestForQuotes.String(), string(rfq.Status), string(document.StatusResponded))
		}

		for itemID, price := range prices {
			i := rfq.Items.Find(itemID)
			if i < 0 {
				return apperror.NewValidation("unknown line item").WithDetail("id", itemID)
			}
			if price.IsNegative() {
				return apperror.NewValidation("price must not be negative").WithDetail("id", itemID)
			}
			rfq.Items[i].Price = price
		}

		document.QuoteTotal(rfq)
		rfq.Status = document.StatusResponded

		if err := t.store.Update(ctx, rfq); err != nil {
			return fmt.Errorf("update rfq: %w", err)
		}

		logger.Info(ctx, "rfq quoted", "rfq", rfq.Number, "amount", rfq.Amount.String())
		out = rfq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptOptions override what the purchase order inherits from the RFQ.
type AcceptOptions struct {
	WarehouseID *id.ID
	Date        time.Time
	Due         *time.Time
	Notes       string
}

// Acceptance is the outcome of accepting a quote.
type Acceptance struct {
	Order *document.PurchaseDocument `json:"order"`
	RFQ   *document.PurchaseDocument `json:"rfq"`
}

// AcceptRFQ creates a pending purchase order from a responded RFQ with the
// quoted lines and marks the RFQ accepted.
func (t *Tracker) AcceptRFQ(ctx context.Context, rfqID id.ID, opts AcceptOptions) (*Acceptance, error) {
	var out *Acceptance

	err := t.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rfq, err := t.loadPurchase(ctx, rfqID, requestForQuotes)
		if err != nil {
			return err
		}
		if rfq.Status != document.StatusResponded {
			return apperror.NewInvalidConversion(requestForQuotes.String(), purchaseOrder.String()).
				WithDetail("status", rfq.Status)
		}

		po := document.New(purchaseOrder).(*document.PurchaseDocument)
		po.SetPartner(rfq.Partner())
		po.Currency = rfq.Currency
		po.ExchangeRate = rfq.ExchangeRate
		po.TaxRate = rfq.TaxRate
		po.WarehouseID = rfq.WarehouseID
		if opts.WarehouseID != nil {
			po.WarehouseID = opts.WarehouseID
		}
		po.LinkedDocumentID = &rfq.ID
		po.Date = opts.Date
		po.Due = opts.Due
		po.Notes = opts.Notes
		for _, li := range rfq.Items {
			po.Items = append(po.Items, document.LineItem{
				ID:          li.ID,
				Description: li.Description,
				Quantity:    li.Quantity,
				Price:       li.Price,
			})
		}
		document.Reprice(po)

		if err := t.store.Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}

		rfq.Status = document.StatusAccepted
		if err := t.store.Update(ctx, rfq); err != nil {
			return fmt.Errorf("update rfq: %w", err)
		}

		logger.Info(ctx, "rfq accepted", "rfq", rfq.Number, "order", po.Number)
		out = &Acceptance{Order: po, RFQ: rfq}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tracker) loadPurchase(ctx context.Context, docID id.ID, kind document.Kind) (*document.PurchaseDocument, error) {
	doc, err := t.store.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	p, ok := doc.(*document.PurchaseDocument)
	if !ok || p.Kind() != kind {
		return nil, apperror.NewValidation(fmt.Sprintf("document is not a %s", kind)).
			WithDetail("id", docID.String()).
			WithDetail("kind", doc.Head().Kind().String())
	}
	return p, nil
}
