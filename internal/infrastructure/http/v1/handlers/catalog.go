package handlers

import (
	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/infrastructure/http/v1/dto"
)

// CatalogStore is the catalog as seen by the admin API.
type CatalogStore interface {
	catalog.Reader
	catalog.Writer
	catalog.ProductLister
}

// CatalogHandler maintains products, partners and warehouses.
type CatalogHandler struct {
	*BaseHandler
	store CatalogStore
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, store CatalogStore) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, store: store}
}

// ListProducts handles GET /catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	products, err := h.store.ListProducts(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products, limit, offset))
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// PutProduct handles POST /catalog/products and PUT /catalog/products/:id
func (h *CatalogHandler) PutProduct(c *gin.Context) {
	var p catalog.Product
	if !h.bindEntity(c, &p, &p.ID) {
		return
	}
	saved, err := h.store.PutProduct(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.saved(c, saved)
}

// DeleteProduct handles DELETE /catalog/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// GetPartner handles GET /catalog/partners/:id
func (h *CatalogHandler) GetPartner(c *gin.Context) {
	partnerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPartner(c.Request.Context(), partnerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// PutPartner handles POST /catalog/partners and PUT /catalog/partners/:id
func (h *CatalogHandler) PutPartner(c *gin.Context) {
	var p catalog.Partner
	if !h.bindEntity(c, &p, &p.ID) {
		return
	}
	saved, err := h.store.PutPartner(c.Request.Context(), p)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.saved(c, saved)
}

// GetWarehouse handles GET /catalog/warehouses/:id
func (h *CatalogHandler) GetWarehouse(c *gin.Context) {
	warehouseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	w, err := h.store.GetWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, w)
}

// PutWarehouse handles POST /catalog/warehouses and PUT /catalog/warehouses/:id
func (h *CatalogHandler) PutWarehouse(c *gin.Context) {
	var w catalog.Warehouse
	if !h.bindEntity(c, &w, &w.ID) {
		return
	}
	saved, err := h.store.PutWarehouse(c.Request.Context(), w)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.saved(c, saved)
}

// Settings handles GET /catalog/settings
func (h *CatalogHandler) Settings(c *gin.Context) {
	s, err := h.store.Settings(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// bindEntity binds the body; on PUT the path id wins over the body.
func (h *CatalogHandler) bindEntity(c *gin.Context, obj any, entityID *id.ID) bool {
	if !h.BindJSON(c, obj) {
		return false
	}
	if c.Param("id") == "" {
		return true
	}
	pathID, ok := h.ParseID(c, "id")
	if !ok {
		return false
	}
	*entityID = pathID
	return true
}

func (h *CatalogHandler) saved(c *gin.Context, v any) {
	if c.Param("id") == "" {
		h.Created(c, v)
		return
	}
	h.OK(c, v)
}
