package memory

import (
	"context"
	"sort"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository over the shared DB.
type StockRepo struct {
	db *DB
}

// NewStockRepo creates the stock register repository.
func NewStockRepo(db *DB) *StockRepo {
	return &StockRepo{db: db}
}

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	return r.db.write(ctx, func(s *state) error {
		for _, m := range movements {
			s.movements = append(s.movements, m)
			applyMovement(s, m, 1)
		}
		return nil
	})
}

// applyMovement adds (sign=1) or removes (sign=-1) m from the balances.
func applyMovement(s *state, m entity.StockMovement, sign int64) {
	k := m.Key()
	b, ok := s.balances[k]
	if !ok {
		b = entity.StockBalance{WarehouseID: k.WarehouseID, ProductID: k.ProductID}
	}
	delta := m.SignedQuantity()
	if sign < 0 {
		delta = delta.Neg()
	}
	b.Quantity += delta
	if m.CreatedAt.After(b.LastMovementAt) {
		b.LastMovementAt = m.CreatedAt
	}
	b.UpdatedAt = m.CreatedAt
	s.balances[k] = b
}

func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID) (int, error) {
	var n int
	err := r.db.write(ctx, func(s *state) error {
		kept := make([]entity.StockMovement, 0, len(s.movements))
		for _, m := range s.movements {
			if m.RecorderID == recorderID {
				applyMovement(s, m, -1)
				n++
				continue
			}
			kept = append(kept, m)
		}
		s.movements = kept
		return nil
	})
	return n, err
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	r.db.read(func(s *state) {
		for _, m := range s.movements {
			if m.RecorderID == recorderID {
				out = append(out, m)
			}
		}
	})
	return out, nil
}

func (r *StockRepo) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	k := entity.StockKey{WarehouseID: warehouseID, ProductID: productID}
	b := entity.StockBalance{WarehouseID: warehouseID, ProductID: productID}
	r.db.read(func(s *state) {
		if stored, ok := s.balances[k]; ok {
			b = stored
		}
	})
	return b, nil
}

// GetBalanceForUpdate is GetBalance: writers are already serialised by the
// transaction lock.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, warehouseID, productID)
}

func (r *StockRepo) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	r.db.read(func(s *state) {
		for _, b := range s.balances {
			if b.WarehouseID == warehouseID && filter.Match(b) {
				out = append(out, b)
			}
		}
	})
	sortBalances(out)
	return out, nil
}

func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	r.db.read(func(s *state) {
		for _, b := range s.balances {
			if b.ProductID == productID {
				out = append(out, b)
			}
		}
	})
	sortBalances(out)
	return out, nil
}

func (r *StockRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	r.db.read(func(s *state) {
		for _, m := range s.movements {
			if m.ProductID == productID && filter.Match(m) {
				out = append(out, m)
			}
		}
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].Period.After(out[j].Period) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *StockRepo) RecalculateBalances(ctx context.Context, warehouseID, productID *id.ID) error {
	return r.db.write(ctx, func(s *state) error {
		inScope := func(k entity.StockKey) bool {
			return (warehouseID == nil || k.WarehouseID == *warehouseID) &&
				(productID == nil || k.ProductID == *productID)
		}
		for k := range s.balances {
			if inScope(k) {
				delete(s.balances, k)
			}
		}
		for _, m := range s.movements {
			if inScope(m.Key()) {
				applyMovement(s, m, 1)
			}
		}
		return nil
	})
}

func sortBalances(bs []entity.StockBalance) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].WarehouseID != bs[j].WarehouseID {
			return bs[i].WarehouseID.String() < bs[j].WarehouseID.String()
		}
		return bs[i].ProductID.String() < bs[j].ProductID.String()
	})
}
