package handlers

import (
	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/conversion"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/infrastructure/http/v1/dto"
)

// DocumentHandler exposes the conversion engine.
type DocumentHandler struct {
	*BaseHandler
	engine   *conversion.Engine
	partners catalog.Partners
	stock    *stock.Service
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(base *BaseHandler, engine *conversion.Engine, partners catalog.Partners, stockSvc *stock.Service) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler: base,
		engine:      engine,
		partners:    partners,
		stock:       stockSvc,
	}
}

// Submit handles POST /:domain/documents
func (h *DocumentHandler) Submit(domain document.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var draft conversion.Draft
		if !h.BindJSON(c, &draft) {
			return
		}
		draft.Domain = domain

		doc, err := h.engine.Submit(c.Request.Context(), draft)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Created(c, doc)
	}
}

// List handles GET /:domain/documents
func (h *DocumentHandler) List(domain document.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.DocumentFilter
		if !h.BindQuery(c, &q) {
			return
		}
		filter, err := q.ToDomain()
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id in filter").WithDetail("error", err.Error()))
			return
		}

		docs, err := h.engine.List(c.Request.Context(), domain, filter)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.NewListResponse(docs, filter.Limit, filter.Offset))
	}
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	doc, err := h.engine.Get(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	targets, err := h.engine.Targets(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.DocumentResponse{Document: doc, Targets: targets})
}

// Print handles GET /documents/:id/print. Read-only: nothing is stored.
func (h *DocumentHandler) Print(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	doc, err := h.engine.Get(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.PrintResponse{Document: doc}

	if pid := doc.Partner().ID; !id.IsNil(pid) {
		partner, err := h.partners.GetPartner(ctx, pid)
		switch {
		case err == nil:
			resp.Partner = partner
		case !apperror.IsNotFound(err):
			h.Error(c, err)
			return
		}
	}

	linked, err := h.engine.Linked(ctx, doc)
	if err != nil {
		h.Error(c, err)
		return
	}
	resp.Linked = dto.NewLinkedSummary(linked)

	h.OK(c, resp)
}

// Convert handles POST /documents/:id/convert
func (h *DocumentHandler) Convert(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ConvertRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.engine.Convert(c.Request.Context(), docID, req.Target, req.Overrides)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Receive handles POST /documents/:id/receive
func (h *DocumentHandler) Receive(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipt, err := h.engine.Receive(c.Request.Context(), docID, req.Items, req.Options())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, receipt)
}

// Quote handles POST /documents/:id/quote
func (h *DocumentHandler) Quote(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rfq, err := h.engine.QuoteRFQ(c.Request.Context(), docID, req.Prices)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rfq)
}

// Accept handles POST /documents/:id/accept
func (h *DocumentHandler) Accept(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AcceptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	acceptance, err := h.engine.AcceptRFQ(c.Request.Context(), docID, req.Options())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, acceptance)
}

// Return handles POST /documents/:id/return
func (h *DocumentHandler) Return(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.engine.CreateReturn(c.Request.Context(), docID, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ret)
}

// TransitionStatus handles POST /documents/:id/status
func (h *DocumentHandler) TransitionStatus(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.engine.TransitionStatus(c.Request.Context(), docID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// EditItems handles PUT /documents/:id/items
func (h *DocumentHandler) EditItems(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.engine.EditItems(c.Request.Context(), docID, req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Delete handles DELETE /documents/:id and reports the stock movements left in place.
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	res, err := h.engine.Delete(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Movements handles GET /documents/:id/movements
func (h *DocumentHandler) Movements(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	movements, err := h.stock.GetMovementsByRecorder(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromStockMovements(movements), 0, 0))
}
