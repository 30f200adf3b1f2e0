package dto

import (
	"time"

	"smartbiz/internal/core/entity"
)

// StockBalanceResponse represents stock balance in API responses.
type StockBalanceResponse struct {
	WarehouseID    string     `json:"warehouseId"`
	ProductID      string     `json:"productId"`
	Quantity       float64    `json:"quantity"`
	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO.
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	// A cell that never moved has no last movement; render it absent.
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return StockBalanceResponse{
		WarehouseID:    b.WarehouseID.String(),
		ProductID:      b.ProductID.String(),
		Quantity:       b.Quantity.Float64(),
		LastMovementAt: lastMovement,
	}
}

// StockMovementResponse represents stock movement in API responses.
type StockMovementResponse struct {
	LineID         string    `json:"lineId"`
	RecorderID     string    `json:"recorderId"`
	RecorderType   string    `json:"recorderType"`
	RecorderNumber string    `json:"recorderNumber"`
	Period         time.Time `json:"period"`
	RecordType     string    `json:"recordType"`
	WarehouseID    string    `json:"warehouseId"`
	ProductID      string    `json:"productId"`
	Quantity       float64   `json:"quantity"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		LineID:         m.LineID.String(),
		RecorderID:     m.RecorderID.String(),
		RecorderType:   m.RecorderType,
		RecorderNumber: m.RecorderNumber,
		Period:         m.Period,
		RecordType:     string(m.RecordType),
		WarehouseID:    m.WarehouseID.String(),
		ProductID:      m.ProductID.String(),
		Quantity:       m.Quantity.Float64(),
		CreatedAt:      m.CreatedAt,
	}
}

// FromStockMovements converts a slice.
func FromStockMovements(ms []entity.StockMovement) []StockMovementResponse {
	out := make([]StockMovementResponse, len(ms))
	for i, m := range ms {
		out[i] = FromStockMovement(m)
	}
	return out
}

// FromStockBalances converts a slice.
func FromStockBalances(bs []entity.StockBalance) []StockBalanceResponse {
	out := make([]StockBalanceResponse, len(bs))
	for i, b := range bs {
		out[i] = FromStockBalance(b)
	}
	return out
}

// AvailabilityResponse is the total quantity of a product over all warehouses.
type AvailabilityResponse struct {
	ProductID string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
}
