package register_repo

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/registers/stock"
)

func movement(wh, product id.ID, rt entity.RecordType, qty int64, period time.Time) entity.StockMovement {
	return entity.StockMovement{
		MovementBase: entity.MovementBase{LineID: id.New(), RecordType: rt, Period: period},
		WarehouseID:  wh,
		ProductID:    product,
		Quantity:     types.NewQuantity(qty),
	}
}

func TestBalanceDeltas_AggregatesPerCell(t *testing.T) {
	wh, a, b := id.New(), id.New(), id.New()
	early := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	movements := []entity.StockMovement{
		movement(wh, a, entity.RecordTypeReceipt, 10, early),
		movement(wh, a, entity.RecordTypeExpense, 3, late),
		movement(wh, b, entity.RecordTypeExpense, 2, early),
	}

	queries := balanceDeltas(movements, 1)
	require.Len(t, queries, 2)

	byProduct := map[id.ID][]any{}
	for _, q := range queries {
		assert.Equal(t, upsertBalanceSQL, q.SQL)
		byProduct[q.Args[1].(id.ID)] = q.Args
	}
	assert.Equal(t, types.NewQuantity(7), byProduct[a][2])
	assert.Equal(t, late, byProduct[a][3])
	assert.Equal(t, types.NewQuantity(-2), byProduct[b][2])

	reversed := balanceDeltas(movements, -1)
	for _, q := range reversed {
		if q.Args[1].(id.ID) == a {
			assert.Equal(t, types.NewQuantity(-7), q.Args[2])
		}
	}

	first := entity.StockKey{WarehouseID: queries[0].Args[0].(id.ID), ProductID: queries[0].Args[1].(id.ID)}
	second := entity.StockKey{WarehouseID: queries[1].Args[0].(id.ID), ProductID: queries[1].Args[1].(id.ID)}
	assert.True(t, first.Less(second), "cells are locked in key order")
}

func TestHistoryQuery(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	product, wh := id.New(), id.New()
	expense := entity.RecordTypeExpense

	sql, args, err := historyQuery(b, product, stock.MovementFilter{
		WarehouseID: &wh,
		RecordType:  &expense,
		Limit:       50,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM reg_stock_movements WHERE product_id = $1 AND warehouse_id = $2 AND record_type = $3")
	assert.Contains(t, sql, "ORDER BY period DESC, created_at DESC LIMIT 50")
	assert.Equal(t, []any{product, wh, expense}, args)
}

func TestRecalcQueries(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	del, ins := recalcQueries(b, nil, nil)
	sql, args, err := del.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM reg_stock_balances", sql)
	assert.Empty(t, args)

	sql, _, err = ins.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO reg_stock_balances (warehouse_id,product_id,quantity,last_movement_at,updated_at) SELECT")
	assert.Contains(t, sql, "GROUP BY warehouse_id, product_id")

	wh := id.New()
	del, ins = recalcQueries(b, &wh, nil)
	sql, args, err = del.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM reg_stock_balances WHERE warehouse_id = $1", sql)
	assert.Equal(t, []any{wh}, args)

	sql, args, err = ins.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE warehouse_id = $1 GROUP BY")
	assert.Equal(t, []any{wh}, args)
}
