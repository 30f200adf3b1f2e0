// Package stock provides the stock accumulation register: immutable movement
// rows tagged with the document that produced them, and balances per
// (warehouse, product).
package stock

import (
	"context"
	"time"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
)

// Repository defines operations for the stock register.
// Implementations keep balances in step with movements inside the caller's transaction.
type Repository interface {
	// Movement operations

	// CreateMovements inserts movements and applies their signed quantities to balances
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteMovementsByRecorder removes all movements of a document and
	// takes them back out of the balances. Returns the number removed.
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID) (int, error)

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// Balance operations

	// GetBalance returns current balance for warehouse+product (zero when absent)
	GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns balance with row lock for stock control
	GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error)

	// GetBalancesByWarehouse returns balances for a warehouse
	GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]entity.StockBalance, error)

	// GetBalancesByProduct returns balances across all warehouses for a product
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error)

	// Reporting

	// GetMovementHistory returns movement history for a product, newest first
	GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// Maintenance

	// RecalculateBalances rebuilds balances from movements. Nil arguments mean all.
	RecalculateBalances(ctx context.Context, warehouseID, productID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
}

// Match reports whether b passes the filter.
func (f BalanceFilter) Match(b entity.StockBalance) bool {
	if f.ExcludeZero && b.Quantity.IsZero() {
		return false
	}
	if len(f.ProductIDs) == 0 {
		return true
	}
	for _, pid := range f.ProductIDs {
		if pid == b.ProductID {
			return true
		}
	}
	return false
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	WarehouseID *id.ID
	RecordType  *entity.RecordType
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// Match reports whether m passes the filter (paging is applied by the caller).
func (f MovementFilter) Match(m entity.StockMovement) bool {
	if f.WarehouseID != nil && *f.WarehouseID != m.WarehouseID {
		return false
	}
	if f.RecordType != nil && *f.RecordType != m.RecordType {
		return false
	}
	if f.FromDate != nil && m.Period.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && m.Period.After(*f.ToDate) {
		return false
	}
	return true
}

// StockReservation represents a stock check request.
type StockReservation struct {
	WarehouseID id.ID
	ProductID   id.ID
	RequiredQty types.Quantity
}
