package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/infrastructure/storage/memory"
)

type env struct {
	store    *document.Store
	svc      *stock.Service
	recorder *stock.Recorder
	cat      *memory.Catalog
	wh       catalog.Warehouse
	goods    catalog.Product
	service  catalog.Product
}

func newEnv(t *testing.T, opts ...stock.RecorderOption) *env {
	t.Helper()
	ctx := context.Background()
	db := memory.NewDB()

	e := &env{
		store: document.NewStore(memory.NewDocumentRepo(db), memory.NewNumerator(db), db),
		svc:   stock.NewService(memory.NewStockRepo(db)),
		cat:   memory.NewCatalog(db, catalog.Settings{BaseCurrency: "EUR"}),
	}
	e.recorder = stock.NewRecorder(e.svc, e.store, e.cat, e.cat, opts...)

	var err error
	e.wh, err = e.cat.PutWarehouse(ctx, catalog.Warehouse{Catalog: entity.Catalog{Name: "Main"}, IsActive: true})
	require.NoError(t, err)
	e.goods, err = e.cat.PutProduct(ctx, catalog.Product{Catalog: entity.Catalog{Name: "Chair"}, Type: catalog.TypeGoods})
	require.NoError(t, err)
	e.service, err = e.cat.PutProduct(ctx, catalog.Product{Catalog: entity.Catalog{Name: "Assembly"}, Type: catalog.TypeService})
	require.NoError(t, err)
	return e
}

func (e *env) create(t *testing.T, domain document.Domain, typ document.Type, linked *id.ID, qty int64) document.Document {
	t.Helper()
	doc := document.New(document.Kind{Domain: domain, Type: typ})
	doc.SetPartner(document.PartnerRef{Name: "Acme"})
	h := doc.Head()
	h.Currency = "EUR"
	h.WarehouseID = &e.wh.ID
	h.LinkedDocumentID = linked
	h.StockAction = document.StockReintegrate
	h.Items = document.Items{
		{ID: e.goods.ID.String(), Quantity: types.NewQuantity(qty), Price: types.MustMoney("10")},
		{ID: e.service.ID.String(), Quantity: types.NewQuantity(1), Price: types.MustMoney("50")},
		{ID: document.NewCustomItemID(), Description: "Gift wrap", Quantity: types.NewQuantity(1), Price: types.MustMoney("2")},
	}
	document.Reprice(doc)
	require.NoError(t, e.store.Create(context.Background(), doc))
	return doc
}

func (e *env) balance(t *testing.T) types.Quantity {
	t.Helper()
	b, err := e.svc.GetBalance(context.Background(), e.wh.ID, e.goods.ID)
	require.NoError(t, err)
	return b.Quantity
}

func TestRecorder_Rules(t *testing.T) {
	sales, purchase := document.DomainSales, document.DomainPurchase

	tests := []struct {
		name   string
		domain document.Domain
		typ    document.Type
		want   entity.RecordType
		moves  bool
	}{
		{"sales delivery", sales, document.TypeDelivery, entity.RecordTypeExpense, true},
		{"sales issue", sales, document.TypeIssue, entity.RecordTypeExpense, true},
		{"sales invoice without delivery", sales, document.TypeInvoice, entity.RecordTypeExpense, true},
		{"sales return", sales, document.TypeReturn, entity.RecordTypeReceipt, true},
		{"sales order", sales, document.TypeOrder, "", false},
		{"sales estimate", sales, document.TypeEstimate, "", false},
		{"grn", purchase, document.TypeDelivery, entity.RecordTypeReceipt, true},
		{"purchase invoice without grn", purchase, document.TypeInvoice, entity.RecordTypeReceipt, true},
		{"purchase return", purchase, document.TypeReturn, entity.RecordTypeExpense, true},
		{"purchase order", purchase, document.TypeOrder, "", false},
		{"rfq", purchase, document.TypeRFQ, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, stock.AllowNegativeStock(true))
			doc := e.create(t, tt.domain, tt.typ, nil, 3)

			rt, moves, err := e.recorder.Direction(context.Background(), doc)
			require.NoError(t, err)
			assert.Equal(t, tt.moves, moves)
			if moves {
				assert.Equal(t, tt.want, rt)
			}
		})
	}
}

func TestRecorder_ApplySkipsServicesAndCustomLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	grn := e.create(t, document.DomainPurchase, document.TypeDelivery, nil, 7)

	n, err := e.recorder.Apply(ctx, grn)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, types.NewQuantity(7), e.balance(t))

	movements, err := e.svc.GetMovementsByRecorder(ctx, grn.Head().ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "purchase/delivery", movements[0].RecorderType)
	assert.Equal(t, grn.Head().Number, movements[0].RecorderNumber)
}

func TestRecorder_InvoiceAfterDeliveryDoesNotMoveStock(t *testing.T) {
	e := newEnv(t, stock.AllowNegativeStock(true))
	ctx := context.Background()

	order := e.create(t, document.DomainSales, document.TypeOrder, nil, 2)
	orderID := order.Head().ID
	delivery := e.create(t, document.DomainSales, document.TypeDelivery, &orderID, 2)

	deliveryID := delivery.Head().ID
	fromDelivery := e.create(t, document.DomainSales, document.TypeInvoice, &deliveryID, 2)
	_, moves, err := e.recorder.Direction(ctx, fromDelivery)
	require.NoError(t, err)
	assert.False(t, moves, "invoice linked to a delivery")

	fromOrder := e.create(t, document.DomainSales, document.TypeInvoice, &orderID, 2)
	_, moves, err = e.recorder.Direction(ctx, fromOrder)
	require.NoError(t, err)
	assert.False(t, moves, "invoice linked to an order that was delivered")

	undelivered := e.create(t, document.DomainSales, document.TypeOrder, nil, 2)
	undeliveredID := undelivered.Head().ID
	direct := e.create(t, document.DomainSales, document.TypeInvoice, &undeliveredID, 2)
	_, moves, err = e.recorder.Direction(ctx, direct)
	require.NoError(t, err)
	assert.True(t, moves)

	require.NoError(t, e.store.Delete(ctx, undeliveredID))
	_, moves, err = e.recorder.Direction(ctx, direct)
	require.NoError(t, err)
	assert.True(t, moves, "dangling predecessor is treated as no predecessor")
}

func TestRecorder_InvoiceAcrossEstimateChain(t *testing.T) {
	e := newEnv(t, stock.AllowNegativeStock(true))
	ctx := context.Background()

	est := e.create(t, document.DomainSales, document.TypeEstimate, nil, 3)
	estID := est.Head().ID
	order := e.create(t, document.DomainSales, document.TypeOrder, &estID, 3)
	orderID := order.Head().ID

	fromEstimate := e.create(t, document.DomainSales, document.TypeInvoice, &estID, 3)
	_, moves, err := e.recorder.Direction(ctx, fromEstimate)
	require.NoError(t, err)
	assert.True(t, moves, "nothing delivered yet")

	e.create(t, document.DomainSales, document.TypeDelivery, &orderID, 3)

	_, moves, err = e.recorder.Direction(ctx, fromEstimate)
	require.NoError(t, err)
	assert.False(t, moves, "delivered through the estimate's order")

	other := e.create(t, document.DomainSales, document.TypeEstimate, nil, 1)
	otherID := other.Head().ID
	e.create(t, document.DomainSales, document.TypeDelivery, &otherID, 1)
	otherOrder := e.create(t, document.DomainSales, document.TypeOrder, &otherID, 1)
	otherOrderID := otherOrder.Head().ID

	fromOrder := e.create(t, document.DomainSales, document.TypeInvoice, &otherOrderID, 1)
	_, moves, err = e.recorder.Direction(ctx, fromOrder)
	require.NoError(t, err)
	assert.False(t, moves, "delivered straight from the estimate")
}

func TestRecorder_QuarantineReturnDoesNotMove(t *testing.T) {
	e := newEnv(t)
	doc := e.create(t, document.DomainSales, document.TypeReturn, nil, 1)
	doc.Head().StockAction = document.StockQuarantine

	_, moves, err := e.recorder.Direction(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, moves)
}

func TestRecorder_InsufficientStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	delivery := e.create(t, document.DomainSales, document.TypeDelivery, nil, 5)
	_, err := e.recorder.Apply(ctx, delivery)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, types.Quantity(0), e.balance(t))

	permissive := newEnv(t, stock.AllowNegativeStock(true))
	delivery = permissive.create(t, document.DomainSales, document.TypeDelivery, nil, 5)
	_, err = permissive.recorder.Apply(ctx, delivery)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(-5), permissive.balance(t))
}

func TestRecorder_ReverseRestoresBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	grn := e.create(t, document.DomainPurchase, document.TypeDelivery, nil, 4)
	_, err := e.recorder.Apply(ctx, grn)
	require.NoError(t, err)

	n, err := e.recorder.Reverse(ctx, grn)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, types.Quantity(0), e.balance(t))
}

func TestRecorder_PlanRequiresWarehouse(t *testing.T) {
	ctrl := gomock.NewController(t)
	products := catalog.NewMockProducts(ctrl)
	warehouses := catalog.NewMockWarehouses(ctrl)

	productID := id.New()
	inactive := id.New()

	products.EXPECT().GetProduct(gomock.Any(), productID).
		Return(&catalog.Product{Catalog: entity.Catalog{BaseEntity: entity.BaseEntity{ID: productID}, Name: "Chair"}, Type: catalog.TypeGoods}, nil).
		AnyTimes()
	warehouses.EXPECT().GetWarehouse(gomock.Any(), inactive).
		Return(&catalog.Warehouse{Catalog: entity.Catalog{BaseEntity: entity.BaseEntity{ID: inactive}, Name: "Old"}}, nil)

	r := stock.NewRecorder(stock.NewService(nil), nil, products, warehouses)

	doc := document.New(document.Kind{Domain: document.DomainSales, Type: document.TypeIssue})
	doc.Head().Items = document.Items{{ID: productID.String(), Quantity: types.NewQuantity(1)}}

	err := r.Check(context.Background(), doc)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "warehouseId", appErr.Details["field"])

	doc.Head().WarehouseID = &inactive
	err = r.Check(context.Background(), doc)
	assert.True(t, apperror.HasCode(err, "WAREHOUSE_INACTIVE"))
}
