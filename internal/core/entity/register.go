package entity

import (
	"time"

	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable: they are inserted once and never updated.
type MovementBase struct {
	// LineID is the unique identifier of this movement line
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is "<domain>/<type>" of the recorder, e.g. "purchase/delivery"
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderNumber is the document number, kept for stock history screens
	RecorderNumber string `db:"recorder_number" json:"recorderNumber"`

	// Period is the business date of the movement
	Period time.Time `db:"period" json:"period"`

	RecordType RecordType `db:"record_type" json:"recordType"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StockMovement is one line of the stock accumulation register.
type StockMovement struct {
	MovementBase

	// Dimensions
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	// Resource
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockKey identifies one balance cell of the stock register.
type StockKey struct {
	WarehouseID id.ID
	ProductID   id.ID
}

// Less orders keys by warehouse, then product.
func (k StockKey) Less(other StockKey) bool {
	if k.WarehouseID != other.WarehouseID {
		return k.WarehouseID.String() < other.WarehouseID.String()
	}
	return k.ProductID.String() < other.ProductID.String()
}

// Key returns the balance cell the movement changes.
func (m *StockMovement) Key() StockKey {
	return StockKey{WarehouseID: m.WarehouseID, ProductID: m.ProductID}
}

// StockBalance is the current quantity of a product in a warehouse.
type StockBalance struct {
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID `db:"product_id" json:"productId"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
