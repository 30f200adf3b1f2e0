package document

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
)

func validPurchaseOrder() *PurchaseDocument {
	doc := New(Kind{DomainPurchase, TypeOrder}).(*PurchaseDocument)
	doc.SupplierID = id.New()
	doc.SupplierName = "Parts Ltd"
	doc.Currency = "USD"
	doc.Items = Items{{ID: id.New().String(), Quantity: types.NewQuantity(20), Price: types.MustMoney("5")}}
	return doc
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *PurchaseDocument)
		field  string
	}{
		{"valid", func(*PurchaseDocument) {}, ""},
		{"missing supplier", func(d *PurchaseDocument) { d.SupplierID = id.Nil(); d.SupplierName = "" }, "supplierId"},
		{"no items", func(d *PurchaseDocument) { d.Items = nil }, "items"},
		{"zero quantity", func(d *PurchaseDocument) { d.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(d *PurchaseDocument) { d.Items[0].Price = types.MustMoney("-1") }, "items[0].price"},
		{"over fulfilled", func(d *PurchaseDocument) {
			q := types.NewQuantity(21)
			d.Items[0].FulfilledQuantity = &q
		}, "items[0].fulfilledQuantity"},
		{"duplicate line", func(d *PurchaseDocument) { d.Items = append(d.Items, d.Items[0]) }, "items[1].id"},
		{"missing currency", func(d *PurchaseDocument) { d.Currency = "" }, "currency"},
		{"zero rate", func(d *PurchaseDocument) { d.ExchangeRate = types.Zero() }, "exchangeRate"},
		{"return without action", func(d *PurchaseDocument) { d.Type = TypeReturn }, "stockAction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validPurchaseOrder()
			tt.mutate(doc)

			err := Validate(context.Background(), doc)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestLineItem(t *testing.T) {
	custom := LineItem{ID: NewCustomItemID(), Quantity: types.NewQuantity(3), Price: types.MustMoney("2.5")}
	_, ok := custom.ProductID()
	assert.False(t, ok)
	assert.True(t, custom.IsCustom())
	assert.True(t, custom.Total().Equal(types.MustMoney("7.5")))

	pid := id.New()
	half := types.NewQuantity(1)
	li := LineItem{ID: pid.String(), Quantity: types.NewQuantity(3), FulfilledQuantity: &half}
	got, ok := li.ProductID()
	assert.True(t, ok)
	assert.Equal(t, pid, got)
	assert.Equal(t, types.NewQuantity(2), li.Remaining())
	assert.False(t, li.IsFullyFulfilled())
}

func TestClone_IsDeep(t *testing.T) {
	doc := validPurchaseOrder()
	q := types.NewQuantity(1)
	doc.Items[0].FulfilledQuantity = &q
	wh := id.New()
	doc.WarehouseID = &wh

	c := doc.Clone().(*PurchaseDocument)
	*c.Items[0].FulfilledQuantity = types.NewQuantity(5)
	c.Items[0].Price = types.MustMoney("9")
	*c.WarehouseID = id.New()

	assert.Equal(t, types.NewQuantity(1), *doc.Items[0].FulfilledQuantity)
	assert.True(t, doc.Items[0].Price.Equal(types.MustMoney("5")))
	assert.Equal(t, wh, *doc.WarehouseID)
}
