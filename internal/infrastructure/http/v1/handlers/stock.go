package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// GetBalances handles GET /stock/balances
func (h *StockHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, ok := h.ParseOptionalID(c, "warehouseId")
	if !ok {
		return
	}
	productID, ok := h.ParseOptionalID(c, "productId")
	if !ok {
		return
	}

	var (
		balances []entity.StockBalance
		err      error
	)
	switch {
	case warehouseID != nil && productID != nil:
		var b entity.StockBalance
		b, err = h.service.GetBalance(ctx, *warehouseID, *productID)
		balances = []entity.StockBalance{b}
	case warehouseID != nil:
		balances, err = h.service.GetWarehouseStock(ctx, *warehouseID)
	case productID != nil:
		balances, err = h.service.GetBalancesByProduct(ctx, *productID)
	default:
		err = apperror.NewValidation("warehouseId or productId is required")
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(dto.FromStockBalances(balances), 0, 0))
}

// GetMovements handles GET /stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
	productID, ok := h.ParseOptionalID(c, "productId")
	if !ok {
		return
	}
	if productID == nil {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if filter.WarehouseID, ok = h.ParseOptionalID(c, "warehouseId"); !ok {
		return
	}
	if rt := c.Query("recordType"); rt != "" {
		recordType := entity.RecordType(rt)
		filter.RecordType = &recordType
	}
	for key, dst := range map[string]**time.Time{"fromDate": &filter.FromDate, "toDate": &filter.ToDate} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid "+key+" format, expected RFC3339").WithDetail("field", key))
			return
		}
		*dst = &t
	}

	movements, err := h.service.GetMovementHistory(c.Request.Context(), *productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromStockMovements(movements), filter.Limit, filter.Offset))
}

// GetProductAvailability handles GET /stock/availability/:productId
func (h *StockHandler) GetProductAvailability(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	qty, err := h.service.GetProductAvailability(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AvailabilityResponse{ProductID: productID.String(), Quantity: qty.Float64()})
}

// Recalculate handles POST /stock/recalculate
func (h *StockHandler) Recalculate(c *gin.Context) {
	var warehouseID, productID *id.ID
	var ok bool
	if warehouseID, ok = h.ParseOptionalID(c, "warehouseId"); !ok {
		return
	}
	if productID, ok = h.ParseOptionalID(c, "productId"); !ok {
		return
	}

	if err := h.service.Recalculate(c.Request.Context(), warehouseID, productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
