package stock

import (
	"context"
	"fmt"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller (the conversion engine).
type Service struct {
	repo  Repository
	locks *Locker
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		locks: NewLocker(),
	}
}

// RecordMovements records stock movements of one document.
// With checkAvailability set, expense movements are first checked against
// current balances and INSUFFICIENT_STOCK is returned on shortfall.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement, checkAvailability bool) error {
	if len(movements) == 0 {
		return nil
	}

	keys := make([]entity.StockKey, 0, len(movements))
	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if id.IsNil(m.WarehouseID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: warehouse_id is required", i))
		}
		keys = append(keys, m.Key())
	}

	unlock := s.locks.Lock(keys)
	defer unlock()

	if checkAvailability {
		if err := s.CheckAndReserveStock(ctx, expenses(movements)); err != nil {
			return err
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
		"recorder_type", movements[0].RecorderType,
	)

	return nil
}

// ReverseMovements removes the movements of a document and restores balances.
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID) (int, error) {
	existing, err := s.repo.GetMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return 0, fmt.Errorf("get movements: %w", err)
	}
	if len(existing) == 0 {
		return 0, nil
	}

	keys := make([]entity.StockKey, 0, len(existing))
	for _, m := range existing {
		keys = append(keys, m.Key())
	}
	unlock := s.locks.Lock(keys)
	defer unlock()

	n, err := s.repo.DeleteMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed stock movements",
		"recorder_id", recorderID,
		"count", n,
	)

	return n, nil
}

// CheckAndReserveStock validates stock availability with pessimistic locking.
// Should be called within a transaction before creating expense movements.
func (s *Service) CheckAndReserveStock(ctx context.Context, items []StockReservation) error {
	for _, item := range items {
		balance, err := s.repo.GetBalanceForUpdate(ctx, item.WarehouseID, item.ProductID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", item.ProductID, err)
		}

		if balance.Quantity < item.RequiredQty {
			return apperror.NewInsufficientStock(
				item.ProductID.String(),
				item.RequiredQty.Float64(),
				balance.Quantity.Float64(),
			).WithDetail("warehouseId", item.WarehouseID.String())
		}
	}

	return nil
}

// expenses sums expense quantities per cell, in first-seen order.
func expenses(movements []entity.StockMovement) []StockReservation {
	var out []StockReservation
	index := make(map[entity.StockKey]int)
	for _, m := range movements {
		if m.RecordType != entity.RecordTypeExpense {
			continue
		}
		k := m.Key()
		if i, ok := index[k]; ok {
			out[i].RequiredQty += m.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, StockReservation{WarehouseID: k.WarehouseID, ProductID: k.ProductID, RequiredQty: m.Quantity})
	}
	return out
}

// GetBalance returns the balance of one cell.
func (s *Service) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return s.repo.GetBalance(ctx, warehouseID, productID)
}

// GetProductAvailability returns available quantity across warehouses.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get balances: %w", err)
	}

	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}

	return total, nil
}

// GetBalancesByProduct returns non-zero balances of a product per warehouse.
func (s *Service) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByProduct(ctx, productID)
}

// GetWarehouseStock returns all products with stock in a warehouse.
func (s *Service) GetWarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByWarehouse(ctx, warehouseID, BalanceFilter{
		ExcludeZero: true,
	})
}

// GetMovementsByRecorder returns the movements a document produced.
func (s *Service) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	return s.repo.GetMovementsByRecorder(ctx, recorderID)
}

// GetMovementHistory returns movements of a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, filter)
}

// Recalculate rebuilds balances from movements.
func (s *Service) Recalculate(ctx context.Context, warehouseID, productID *id.ID) error {
	if err := s.repo.RecalculateBalances(ctx, warehouseID, productID); err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}
	logger.Info(ctx, "recalculated stock balances")
	return nil
}
