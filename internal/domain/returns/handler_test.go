package returns_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/returns"
	"smartbiz/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (*document.Store, *returns.Handler, *document.SalesDocument) {
	t.Helper()
	db := memory.NewDB()
	store := document.NewStore(memory.NewDocumentRepo(db), memory.NewNumerator(db), db)

	inv := document.New(document.Kind{Domain: document.DomainSales, Type: document.TypeInvoice}).(*document.SalesDocument)
	inv.ClientName = "Acme"
	inv.Currency = "EUR"
	inv.TaxRate = types.MustMoney("19")
	inv.DiscountValue = types.MustMoney("10")
	inv.FiscalStamp = types.MustMoney("1")
	wh := id.New()
	inv.WarehouseID = &wh
	inv.Items = document.Items{
		{ID: id.New().String(), Description: "Chair", Quantity: types.NewQuantity(4), Price: types.MustMoney("100")},
		{ID: id.New().String(), Description: "Desk", Quantity: types.NewQuantity(1), Price: types.MustMoney("300")},
	}
	document.Reprice(inv)
	require.NoError(t, store.Create(context.Background(), inv))

	return store, returns.NewHandler(store), inv
}

func TestCreate_ClampsToOriginalQuantity(t *testing.T) {
	store, h, inv := setup(t)
	ctx := context.Background()
	chair := inv.Items[0]

	ret, err := h.Create(ctx, inv, returns.Request{
		Items:       map[string]types.Quantity{chair.ID: types.NewQuantity(9)},
		Reason:      "damaged",
		StockAction: document.StockReintegrate,
	})
	require.NoError(t, err)

	rh := ret.Head()
	require.Len(t, rh.Items, 1)
	assert.Equal(t, chair.Quantity, rh.Items[0].Quantity)
	assert.Equal(t, document.StatusProcessed, rh.Status)
	assert.Equal(t, "RET-001", rh.Number)
	assert.Equal(t, inv.ID, rh.Linked())
	assert.Equal(t, inv.Warehouse(), rh.Warehouse())
	assert.Equal(t, "damaged", rh.ReturnReason)

	// 4 × 100 = 400, tax 19% only: 476. No discount, no stamp.
	assert.True(t, rh.Amount.Equal(types.MustMoney("476")), rh.Amount.String())

	src, err := store.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.Version, src.Head().Version, "source is untouched")
}

func TestCreate_NilItemsReturnsEverything(t *testing.T) {
	_, h, inv := setup(t)

	ret, err := h.Create(context.Background(), inv, returns.Request{StockAction: document.StockQuarantine})
	require.NoError(t, err)
	assert.Len(t, ret.Head().Items, 2)
}

func TestCreate_Rejects(t *testing.T) {
	_, h, inv := setup(t)
	ctx := context.Background()

	_, err := h.Create(ctx, inv, returns.Request{
		Items:       map[string]types.Quantity{inv.Items[0].ID: types.NewQuantity(-1)},
		StockAction: document.StockReintegrate,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptySelection))

	_, err = h.Create(ctx, inv, returns.Request{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
