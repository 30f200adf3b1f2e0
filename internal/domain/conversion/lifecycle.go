package conversion

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/document"
	"smartbiz/pkg/logger"
)

// TransitionStatus moves a document to a new status by hand. Cancelling a
// document that posted stock reverses its movements.
func (e *Engine) TransitionStatus(ctx context.Context, docID id.ID, to document.Status) (doc document.Document, err error) {
	ctx, span := e.start(ctx, "conversion.TransitionStatus",
		attribute.String("document.id", docID.String()),
		attribute.String("document.status", string(to)))
	defer func() { end(span, err) }()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := e.store.FindByID(ctx, docID)
		if err != nil {
			return err
		}
		h := d.Head()
		from := h.Status

		if err := document.CheckTransition(h.Kind(), from, to); err != nil {
			return err
		}

		if to == document.StatusCancelled {
			if _, err := e.recorder.Reverse(ctx, d); err != nil {
				return fmt.Errorf("reverse stock: %w", err)
			}
		}

		h.Status = to
		if err := e.store.Update(ctx, d); err != nil {
			return err
		}

		logger.Info(ctx, "document status changed",
			"number", h.Number,
			"from", from,
			"to", to)
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// EditItems replaces the lines of an editable document and reprices it.
// Lines are matched by id so fulfilled quantities survive; a line may not drop
// below what was already received. Documents that posted stock are frozen.
func (e *Engine) EditItems(ctx context.Context, docID id.ID, items []DraftItem) (doc document.Document, err error) {
	ctx, span := e.start(ctx, "conversion.EditItems", attribute.String("document.id", docID.String()))
	defer func() { end(span, err) }()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := e.store.FindByID(ctx, docID)
		if err != nil {
			return err
		}
		h := d.Head()

		if !document.IsEditable(h) {
			return apperror.NewBusinessRule("DOCUMENT_NOT_EDITABLE", "document lines can no longer change").
				WithDetail("status", h.Status)
		}
		posted, err := e.recorder.Posted(ctx, h.ID)
		if err != nil {
			return err
		}
		if posted > 0 {
			return apperror.NewBusinessRule("DOCUMENT_POSTED", "document has posted stock movements").
				WithDetail("movements", posted)
		}

		incoming := make([]DraftItem, len(items))
		copy(incoming, items)
		for i := range incoming {
			j := h.Items.Find(incoming[i].ProductID)
			if j < 0 {
				continue
			}
			cur := h.Items[j]
			if incoming[i].Price == nil {
				incoming[i].Price = &cur.Price
			}
			if incoming[i].Description == "" {
				incoming[i].Description = cur.Description
			}
			if cur.FulfilledQuantity != nil {
				f := *cur.FulfilledQuantity
				incoming[i].Fulfilled = &f
			}
		}

		next, err := e.resolveItems(ctx, h.Domain, h.ExchangeRate, incoming)
		if err != nil {
			return err
		}

		for _, old := range h.Items {
			if old.Fulfilled() <= 0 {
				continue
			}
			j := next.Find(old.ID)
			if j < 0 {
				return apperror.NewValidation("a partially received line cannot be removed").
					WithDetail("id", old.ID)
			}
			if next[j].Quantity < old.Fulfilled() {
				return apperror.NewValidation("quantity cannot drop below the received quantity").
					WithDetail("id", old.ID).
					WithDetail("fulfilled", old.Fulfilled())
			}
		}

		h.Items = next
		// Trimming lines down to what arrived completes the order.
		document.SettleReceipt(h)
		if h.Kind() == (document.Kind{Domain: document.DomainPurchase, Type: document.TypeRFQ}) {
			document.QuoteTotal(d)
		} else {
			document.Reprice(d)
		}

		if err := e.store.Update(ctx, d); err != nil {
			return err
		}

		logger.Info(ctx, "document lines edited", "number", h.Number, "lines", len(h.Items))
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteResult reports what a delete left behind.
type DeleteResult struct {
	// MovementsKept is the number of stock movements the document posted.
	// They are not reversed: deleting is not cancelling.
	MovementsKept int `json:"movementsKept"`
}

// Delete removes a document permanently. Successors keep their (now
// dangling) reference and posted stock stays where it is.
func (e *Engine) Delete(ctx context.Context, docID id.ID) (res DeleteResult, err error) {
	ctx, span := e.start(ctx, "conversion.Delete", attribute.String("document.id", docID.String()))
	defer func() { end(span, err) }()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		posted, err := e.recorder.Posted(ctx, docID)
		if err != nil {
			return err
		}
		if err := e.store.Delete(ctx, docID); err != nil {
			return err
		}
		if posted > 0 {
			logger.Warn(ctx, "deleted document keeps its stock movements",
				"id", docID,
				"movements", posted)
		}
		res.MovementsKept = posted
		return nil
	})
	return res, err
}

// Get returns a document.
func (e *Engine) Get(ctx context.Context, docID id.ID) (document.Document, error) {
	return e.store.FindByID(ctx, docID)
}

// List returns documents of a domain.
func (e *Engine) List(ctx context.Context, d document.Domain, f document.Filter) ([]document.Document, error) {
	return e.store.List(ctx, d, f)
}

// Linked returns the predecessor of a document, or nil when it is unset or deleted.
func (e *Engine) Linked(ctx context.Context, doc document.Document) (document.Document, error) {
	return e.store.FindLinked(ctx, doc)
}

// Targets lists the types a document can currently be converted to.
func (e *Engine) Targets(ctx context.Context, docID id.ID) ([]document.Type, error) {
	d, err := e.store.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return e.chain.Targets(d.Head()), nil
}
