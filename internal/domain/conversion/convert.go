package conversion

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/fulfillment"
	"smartbiz/internal/domain/returns"
	"smartbiz/pkg/logger"
)

// Overrides adjust what a successor inherits from its source.
type Overrides struct {
	// Quantities selects a subset of source lines (by line id); each quantity
	// is clamped to the source line. Nil carries every line in full.
	Quantities map[string]types.Quantity `json:"quantities,omitempty"`

	WarehouseID *id.ID     `json:"warehouseId,omitempty"`
	Date        time.Time  `json:"date"`
	Due         *time.Time `json:"dueDate,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	// Return documents only
	ReturnReason string               `json:"returnReason,omitempty"`
	StockAction  document.StockAction `json:"stockAction,omitempty"`
}

// Convert creates a successor of type target from the source document.
// Purchase order receipts, RFQ acceptance and returns are delegated to their
// components; every other edge copies the source.
func (e *Engine) Convert(ctx context.Context, sourceID id.ID, target document.Type, ov Overrides) (doc document.Document, err error) {
	ctx, span := e.start(ctx, "conversion.Convert",
		attribute.String("document.source", sourceID.String()),
		attribute.String("document.target", string(target)))
	defer func() { end(span, err) }()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		src, err := e.store.FindByID(ctx, sourceID)
		if err != nil {
			return err
		}
		sh := src.Head()

		edge, err := e.chain.Resolve(sh, target)
		if err != nil {
			return err
		}

		switch {
		case target == document.TypeReturn:
			doc, err = e.returns.Create(ctx, src, returns.Request{
				Items:       ov.Quantities,
				Reason:      ov.ReturnReason,
				StockAction: ov.StockAction,
				WarehouseID: ov.WarehouseID,
				Date:        ov.Date,
			})
			return err

		case sh.Domain == document.DomainPurchase && sh.Type == document.TypeOrder && target == document.TypeDelivery:
			receipt, err := e.tracker.Receive(ctx, sh.ID, ov.Quantities, fulfillment.ReceiveOptions{
				WarehouseID: ov.WarehouseID,
				Date:        ov.Date,
				Notes:       ov.Notes,
			})
			if err != nil {
				return err
			}
			doc = receipt.GRN
			return nil

		case sh.Domain == document.DomainPurchase && sh.Type == document.TypeRFQ && target == document.TypeOrder:
			accepted, err := e.tracker.AcceptRFQ(ctx, sh.ID, fulfillment.AcceptOptions{
				WarehouseID: ov.WarehouseID,
				Date:        ov.Date,
				Due:         ov.Due,
				Notes:       ov.Notes,
			})
			if err != nil {
				return err
			}
			doc = accepted.Order
			return nil
		}

		doc, err = successor(src, target, ov)
		if err != nil {
			return err
		}
		if err := e.store.Create(ctx, doc); err != nil {
			return err
		}

		if edge.SourceStatus != "" && sh.Status != edge.SourceStatus {
			sh.Status = edge.SourceStatus
			if err := e.store.Update(ctx, src); err != nil {
				return fmt.Errorf("update source status: %w", err)
			}
		}

		logger.Info(ctx, "document converted",
			"source", sh.Number,
			"target", doc.Head().Number,
			"kind", doc.Head().Kind().String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// successor copies the source into a new document of type target. Partner,
// currency, rate, warehouse and pricing adjustments are carried; fulfilled
// counters are not.
func successor(src document.Document, target document.Type, ov Overrides) (document.Document, error) {
	sh := src.Head()
	doc := document.New(document.Kind{Domain: sh.Domain, Type: target})
	h := doc.Head()

	doc.SetPartner(src.Partner())
	h.Currency = sh.Currency
	h.ExchangeRate = sh.ExchangeRate
	h.DiscountValue = sh.DiscountValue
	h.DiscountType = sh.DiscountType
	h.TaxRate = sh.TaxRate
	h.FiscalStamp = sh.FiscalStamp
	h.WarehouseID = sh.WarehouseID
	h.Due = sh.Due
	h.LinkedDocumentID = &sh.ID
	h.Date = ov.Date
	h.Notes = ov.Notes
	if ov.WarehouseID != nil {
		h.WarehouseID = ov.WarehouseID
	}
	if ov.Due != nil {
		h.Due = ov.Due
	}

	if sp, ok := src.(*document.PurchaseDocument); ok {
		p := doc.(*document.PurchaseDocument)
		p.Costs = sp.Costs
		p.RequesterName = sp.RequesterName
		p.Department = sp.Department
	}

	for _, li := range sh.Items {
		q := li.Quantity
		if ov.Quantities != nil {
			q = ov.Quantities[li.ID].Clamp(li.Quantity)
		}
		if q <= 0 {
			continue
		}
		h.Items = append(h.Items, document.LineItem{
			ID:          li.ID,
			Description: li.Description,
			Quantity:    q,
			Price:       li.Price,
		})
	}
	if len(h.Items) == 0 {
		return nil, apperror.NewEmptySelection("no items selected for conversion").
			WithDetail("sourceId", sh.ID.String())
	}

	document.Reprice(doc)
	return doc, nil
}

// Receive records goods against a purchase order.
func (e *Engine) Receive(ctx context.Context, orderID id.ID, requested map[string]types.Quantity, opts fulfillment.ReceiveOptions) (r *fulfillment.Receipt, err error) {
	ctx, span := e.start(ctx, "conversion.Receive", attribute.String("document.order", orderID.String()))
	defer func() { end(span, err) }()

	return e.tracker.Receive(ctx, orderID, requested, opts)
}

// QuoteRFQ stores supplier prices on an RFQ.
func (e *Engine) QuoteRFQ(ctx context.Context, rfqID id.ID, prices map[string]types.Money) (doc *document.PurchaseDocument, err error) {
	ctx, span := e.start(ctx, "conversion.QuoteRFQ", attribute.String("document.rfq", rfqID.String()))
	defer func() { end(span, err) }()

	return e.tracker.QuoteRFQ(ctx, rfqID, prices)
}

// AcceptRFQ turns a responded RFQ into a purchase order.
func (e *Engine) AcceptRFQ(ctx context.Context, rfqID id.ID, opts fulfillment.AcceptOptions) (a *fulfillment.Acceptance, err error) {
	ctx, span := e.start(ctx, "conversion.AcceptRFQ", attribute.String("document.rfq", rfqID.String()))
	defer func() { end(span, err) }()

	return e.tracker.AcceptRFQ(ctx, rfqID, opts)
}

// CreateReturn creates a return against a source document, checking the
// domain's return guard first.
func (e *Engine) CreateReturn(ctx context.Context, sourceID id.ID, req returns.Request) (document.Document, error) {
	return e.Convert(ctx, sourceID, document.TypeReturn, Overrides{
		Quantities:   req.Items,
		WarehouseID:  req.WarehouseID,
		Date:         req.Date,
		ReturnReason: req.Reason,
		StockAction:  req.StockAction,
	})
}
