// Package returns creates reverse-flow documents.
//
// A return never changes its source document: fulfilled quantities on the
// source stay as they were, and a return and its source remain independently
// editable. Callers that need net delivered quantities must subtract returns
// themselves.
package returns

import (
	"context"
	"fmt"
	"time"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/document"
	"smartbiz/pkg/logger"
)

// Request describes what is being returned.
type Request struct {
	// Items maps source line ids to returned quantities. Nil returns every line in full.
	Items       map[string]types.Quantity
	Reason      string
	StockAction document.StockAction
	// WarehouseID defaults to the source document's warehouse
	WarehouseID *id.ID
	Date        time.Time
}

// Handler creates return documents.
type Handler struct {
	store *document.Store
}

// NewHandler creates a return handler.
func NewHandler(store *document.Store) *Handler {
	return &Handler{store: store}
}

// Create builds and persists a return against source. Quantities are clamped
// to the source line quantity. The return is priced with the source tax rate
// only and starts processed.
func (h *Handler) Create(ctx context.Context, source document.Document, req Request) (document.Document, error) {
	switch req.StockAction {
	case document.StockReintegrate, document.StockQuarantine:
	default:
		return nil, apperror.NewValidation("stock action must be reintegrate or quarantine").
			WithDetail("field", "stockAction")
	}

	src := source.Head()
	ret := document.New(document.Kind{Domain: src.Domain, Type: document.TypeReturn})
	rh := ret.Head()

	ret.SetPartner(source.Partner())
	rh.Currency = src.Currency
	rh.ExchangeRate = src.ExchangeRate
	rh.TaxRate = src.TaxRate
	rh.LinkedDocumentID = &src.ID
	rh.WarehouseID = src.WarehouseID
	if req.WarehouseID != nil {
		rh.WarehouseID = req.WarehouseID
	}
	rh.ReturnReason = req.Reason
	rh.StockAction = req.StockAction
	rh.Date = req.Date

	for _, li := range src.Items {
		q := li.Quantity
		if req.Items != nil {
			q = req.Items[li.ID].Clamp(li.Quantity)
		}
		if q <= 0 {
			continue
		}
		rh.Items = append(rh.Items, document.LineItem{
			ID:          li.ID,
			Description: li.Description,
			Quantity:    q,
			Price:       li.Price,
		})
	}
	if len(rh.Items) == 0 {
		return nil, apperror.NewEmptySelection("no items selected for return").
			WithDetail("sourceId", src.ID.String())
	}

	document.Reprice(ret)

	if err := h.store.Create(ctx, ret); err != nil {
		return nil, fmt.Errorf("create return: %w", err)
	}

	logger.Info(ctx, "return processed",
		"return", rh.Number,
		"source", src.Number,
		"stock_action", rh.StockAction,
		"amount", rh.Amount.String())

	return ret, nil
}
