// Package register_repo provides the PostgreSQL stock register.
package register_repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockBalancesTable  = "reg_stock_balances"
)

var (
	movementColumns = postgres.ExtractDBColumns[entity.StockMovement]()
	balanceColumns  = postgres.ExtractDBColumns[entity.StockBalance]()
)

// upsertBalanceSQL adds a signed delta to one balance cell, creating it on
// first use.
const upsertBalanceSQL = `
	INSERT INTO reg_stock_balances (warehouse_id, product_id, quantity, last_movement_at, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (warehouse_id, product_id) DO UPDATE SET
		quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
		last_movement_at = GREATEST(reg_stock_balances.last_movement_at, EXCLUDED.last_movement_at),
		updated_at = NOW()`

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates the stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements copies movements in and applies them to balances.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rows := make([][]any, 0, len(movements))
		for i := range movements {
			_, vals := postgres.Pick(postgres.StructToMap(&movements[i]), movementColumns)
			rows = append(rows, vals)
		}
		if _, err := r.txManager.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}

		return r.txManager.ExecuteBatch(ctx, balanceDeltas(movements, 1))
	})
}

// balanceDeltas aggregates movements per cell, in a fixed key order so
// concurrent writers take row locks in the same sequence.
func balanceDeltas(movements []entity.StockMovement, sign types.Quantity) []postgres.BatchQuery {
	type cell struct {
		delta types.Quantity
		last  time.Time
	}
	cells := make(map[entity.StockKey]*cell)
	for i := range movements {
		m := &movements[i]
		c, ok := cells[m.Key()]
		if !ok {
			c = &cell{}
			cells[m.Key()] = c
		}
		c.delta += m.SignedQuantity() * sign
		if m.Period.After(c.last) {
			c.last = m.Period
		}
	}

	keys := make([]entity.StockKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	out := make([]postgres.BatchQuery, 0, len(keys))
	for _, k := range keys {
		c := cells[k]
		out = append(out, postgres.BatchQuery{
			SQL:  upsertBalanceSQL,
			Args: []any{k.WarehouseID, k.ProductID, c.delta, c.last},
		})
	}
	return out
}

// DeleteMovementsByRecorder removes the movements of a document and takes
// them back out of the balances.
func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID) (int, error) {
	var removed []entity.StockMovement
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.builder.Delete(stockMovementsTable).
			Where(squirrel.Eq{"recorder_id": recorderID}).
			Suffix("RETURNING " + joinColumns(movementColumns)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}

		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &removed, sql, args...); err != nil {
			return fmt.Errorf("delete movements: %w", err)
		}
		if len(removed) == 0 {
			return nil
		}
		return r.txManager.ExecuteBatch(ctx, balanceDeltas(removed, -1))
	})
	if err != nil {
		return 0, err
	}
	return len(removed), nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at", "line_id")

	return r.selectMovements(ctx, q)
}

// GetBalance returns current balance for warehouse+product.
func (r *StockRepo) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, warehouseID, productID, "")
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, warehouseID, productID, "FOR UPDATE")
}

func (r *StockRepo) getBalance(ctx context.Context, warehouseID, productID id.ID, suffix string) (entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID, "product_id": productID})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return entity.StockBalance{}, fmt.Errorf("build query: %w", err)
	}

	var balance entity.StockBalance
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{WarehouseID: warehouseID, ProductID: productID}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// GetBalancesByWarehouse returns balances for a warehouse.
func (r *StockRepo) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	return r.selectBalances(ctx, q.OrderBy("product_id"))
}

// GetBalancesByProduct returns non-zero balances for a product across warehouses.
func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	q := r.builder.Select(balanceColumns...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("warehouse_id")

	return r.selectBalances(ctx, q)
}

func historyQuery(b squirrel.StatementBuilderType, productID id.ID, filter stock.MovementFilter) squirrel.SelectBuilder {
	q := b.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// GetMovementHistory returns movement history for a product.
func (r *StockRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return r.selectMovements(ctx, historyQuery(r.builder, productID, filter))
}

func recalcQueries(b squirrel.StatementBuilderType, warehouseID, productID *id.ID) (squirrel.DeleteBuilder, squirrel.InsertBuilder) {
	where := squirrel.Eq{}
	if warehouseID != nil {
		where["warehouse_id"] = *warehouseID
	}
	if productID != nil {
		where["product_id"] = *productID
	}

	del := b.Delete(stockBalancesTable)
	sums := b.Select(
		"warehouse_id",
		"product_id",
		"SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END)",
		"MAX(period)",
		"NOW()",
	).From(stockMovementsTable)

	if len(where) > 0 {
		del = del.Where(where)
		sums = sums.Where(where)
	}
	sums = sums.GroupBy("warehouse_id", "product_id")

	ins := b.Insert(stockBalancesTable).
		Columns("warehouse_id", "product_id", "quantity", "last_movement_at", "updated_at").
		Select(sums)
	return del, ins
}

// RecalculateBalances rebuilds balances from the movement log.
func (r *StockRepo) RecalculateBalances(ctx context.Context, warehouseID, productID *id.ID) error {
	del, ins := recalcQueries(r.builder, warehouseID, productID)

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		sql, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("clear balances: %w", err)
		}

		sql, args, err = ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("rebuild balances: %w", err)
		}
		return nil
	})
}

func (r *StockRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]entity.StockMovement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

func (r *StockRepo) selectBalances(ctx context.Context, q squirrel.SelectBuilder) ([]entity.StockBalance, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}
	return balances, nil
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
