package dto

import (
	"time"

	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/conversion"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/fulfillment"
	"smartbiz/internal/domain/returns"
)

// ConvertRequest is the body of POST /documents/:id/convert.
type ConvertRequest struct {
	Target document.Type `json:"target" binding:"required"`
	conversion.Overrides
}

// ReceiveRequest is the body of POST /documents/:id/receive.
// A missing items map receives everything outstanding.
type ReceiveRequest struct {
	Items       map[string]types.Quantity `json:"items"`
	WarehouseID *id.ID                    `json:"warehouseId"`
	Date        time.Time                 `json:"date"`
	Notes       string                    `json:"notes"`
}

func (r ReceiveRequest) Options() fulfillment.ReceiveOptions {
	return fulfillment.ReceiveOptions{WarehouseID: r.WarehouseID, Date: r.Date, Notes: r.Notes}
}

// QuoteRequest is the body of POST /documents/:id/quote.
type QuoteRequest struct {
	Prices map[string]types.Money `json:"prices" binding:"required"`
}

// AcceptRequest is the body of POST /documents/:id/accept.
type AcceptRequest struct {
	WarehouseID *id.ID     `json:"warehouseId"`
	Date        time.Time  `json:"date"`
	Due         *time.Time `json:"dueDate"`
	Notes       string     `json:"notes"`
}

func (r AcceptRequest) Options() fulfillment.AcceptOptions {
	return fulfillment.AcceptOptions{WarehouseID: r.WarehouseID, Date: r.Date, Due: r.Due, Notes: r.Notes}
}

// ReturnRequest is the body of POST /documents/:id/return.
type ReturnRequest struct {
	Items       map[string]types.Quantity `json:"items"`
	Reason      string                    `json:"reason"`
	StockAction document.StockAction      `json:"stockAction"`
	WarehouseID *id.ID                    `json:"warehouseId"`
	Date        time.Time                 `json:"date"`
}

func (r ReturnRequest) ToDomain() returns.Request {
	return returns.Request{
		Items:       r.Items,
		Reason:      r.Reason,
		StockAction: r.StockAction,
		WarehouseID: r.WarehouseID,
		Date:        r.Date,
	}
}

// StatusRequest is the body of POST /documents/:id/status.
type StatusRequest struct {
	Status document.Status `json:"status" binding:"required"`
}

// ItemsRequest is the body of PUT /documents/:id/items.
type ItemsRequest struct {
	Items []conversion.DraftItem `json:"items"`
}

// DocumentResponse is a document with the conversions currently open to it.
type DocumentResponse struct {
	Document document.Document `json:"document"`
	Targets  []document.Type   `json:"targets"`
}

// PrintResponse is everything a print template needs: the document, the
// partner as currently in the catalog (nil when deleted) and the predecessor.
type PrintResponse struct {
	Document document.Document `json:"document"`
	Partner  *catalog.Partner  `json:"partner"`
	Linked   *LinkedSummary    `json:"linked,omitempty"`
}

// LinkedSummary identifies a predecessor on a printout.
type LinkedSummary struct {
	ID     id.ID           `json:"id"`
	Type   document.Type   `json:"type"`
	Number string          `json:"number"`
	Status document.Status `json:"status"`
}

// NewLinkedSummary returns nil for a nil document.
func NewLinkedSummary(doc document.Document) *LinkedSummary {
	if doc == nil {
		return nil
	}
	h := doc.Head()
	return &LinkedSummary{ID: h.ID, Type: h.Type, Number: h.Number, Status: h.Status}
}

// DocumentFilter is the query string of the list endpoints.
type DocumentFilter struct {
	Type             string `form:"type"`
	Status           string `form:"status"`
	PartnerID        string `form:"partnerId"`
	LinkedDocumentID string `form:"linkedDocumentId"`
	Search           string `form:"search"`
	Limit            int    `form:"limit,default=50" binding:"min=0,max=500"`
	Offset           int    `form:"offset" binding:"min=0"`
}

// ToDomain parses the ids of the filter.
func (f DocumentFilter) ToDomain() (document.Filter, error) {
	out := document.Filter{Search: f.Search, Limit: f.Limit, Offset: f.Offset}
	if f.Type != "" {
		t := document.Type(f.Type)
		out.Type = &t
	}
	if f.Status != "" {
		s := document.Status(f.Status)
		out.Status = &s
	}
	if f.PartnerID != "" {
		pid, err := id.Parse(f.PartnerID)
		if err != nil {
			return out, err
		}
		out.PartnerID = &pid
	}
	if f.LinkedDocumentID != "" {
		lid, err := id.Parse(f.LinkedDocumentID)
		if err != nil {
			return out, err
		}
		out.LinkedDocumentID = &lid
	}
	return out, nil
}
