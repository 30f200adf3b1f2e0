package conversion_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/conversion"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/fulfillment"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/domain/returns"
	"smartbiz/internal/infrastructure/storage/memory"
)

type world struct {
	engine  *conversion.Engine
	stock   *stock.Service
	catalog *memory.Catalog

	warehouse catalog.Warehouse
	chair     catalog.Product
	client    catalog.Partner
	supplier  catalog.Partner
}

func newWorld(t *testing.T) *world {
	t.Helper()
	ctx := context.Background()

	db := memory.NewDB()
	store := document.NewStore(memory.NewDocumentRepo(db), memory.NewNumerator(db), db)
	cat := memory.NewCatalog(db, catalog.Settings{BaseCurrency: "TND"})
	svc := stock.NewService(memory.NewStockRepo(db))

	w := &world{stock: svc, catalog: cat}
	w.engine = conversion.NewEngine(conversion.Deps{
		Store:     store,
		Recorder:  stock.NewRecorder(svc, store, cat, cat),
		Catalog:   cat,
		Tracker:   fulfillment.NewTracker(store, db),
		Returns:   returns.NewHandler(store),
		TxManager: db,
	})

	var err error
	w.warehouse, err = cat.PutWarehouse(ctx, catalog.Warehouse{Catalog: entity.Catalog{Name: "Main"}, IsActive: true})
	require.NoError(t, err)
	w.chair, err = cat.PutProduct(ctx, catalog.Product{
		Catalog: entity.Catalog{Name: "Chair", Code: "CH-1"},
		Type:    catalog.TypeGoods,
		Price:   types.MustMoney("30"),
		Cost:    types.MustMoney("5"),
	})
	require.NoError(t, err)
	w.client, err = cat.PutPartner(ctx, catalog.Partner{Catalog: entity.Catalog{Name: "Acme"}, Role: catalog.RoleClient})
	require.NoError(t, err)
	w.supplier, err = cat.PutPartner(ctx, catalog.Partner{Catalog: entity.Catalog{Name: "Parts Ltd"}, Role: catalog.RoleSupplier})
	require.NoError(t, err)
	return w
}

func (w *world) draft(domain document.Domain, typ document.Type, qty int64) conversion.Draft {
	partner := w.client.ID
	if domain == document.DomainPurchase {
		partner = w.supplier.ID
	}
	return conversion.Draft{
		Domain:      domain,
		Type:        typ,
		PartnerID:   &partner,
		WarehouseID: &w.warehouse.ID,
		Items:       []conversion.DraftItem{{ProductID: w.chair.ID.String(), Quantity: types.NewQuantity(qty)}},
	}
}

func (w *world) submit(t *testing.T, d conversion.Draft) document.Document {
	t.Helper()
	doc, err := w.engine.Submit(context.Background(), d)
	require.NoError(t, err)
	return doc
}

func (w *world) balance(t *testing.T) types.Quantity {
	t.Helper()
	b, err := w.stock.GetBalance(context.Background(), w.warehouse.ID, w.chair.ID)
	require.NoError(t, err)
	return b.Quantity
}

func money(s string) types.Money { return types.MustMoney(s) }

func TestPurchaseFlow_OrderReceiveReturn(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	d := w.draft(document.DomainPurchase, document.TypeOrder, 20)
	order := w.submit(t, d)
	oh := order.Head()
	assert.Equal(t, "PO-001", oh.Number)
	assert.True(t, oh.Amount.Equal(money("100")), oh.Amount.String())
	lineID := oh.Items[0].ID

	grn, err := w.engine.Convert(ctx, oh.ID, document.TypeDelivery, conversion.Overrides{
		Quantities: map[string]types.Quantity{lineID: types.NewQuantity(12)},
	})
	require.NoError(t, err)
	assert.Equal(t, "GRN-001", grn.Head().Number)
	assert.Equal(t, types.NewQuantity(12), w.balance(t))

	r, err := w.engine.Receive(ctx, oh.ID, map[string]types.Quantity{lineID: types.NewQuantity(8)}, fulfillment.ReceiveOptions{})
	require.NoError(t, err)
	assert.Equal(t, document.StatusReceived, r.Order.Status)
	assert.Equal(t, types.NewQuantity(20), w.balance(t))

	ret, err := w.engine.CreateReturn(ctx, oh.ID, returns.Request{
		Items:       map[string]types.Quantity{lineID: types.NewQuantity(5)},
		Reason:      "wrong color",
		StockAction: document.StockReintegrate,
	})
	require.NoError(t, err)
	assert.True(t, ret.Head().Amount.Equal(money("25")), ret.Head().Amount.String())
	assert.Equal(t, oh.ID, ret.Head().Linked())
	assert.Equal(t, types.NewQuantity(15), w.balance(t))

	src, err := w.engine.Get(ctx, oh.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(20), src.Head().Items[0].Fulfilled(), "returns leave the order's counters alone")
	assert.Equal(t, document.StatusReceived, src.Head().Status)
}

func TestConvert_CarriesTermsAndSubset(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	d := w.draft(document.DomainSales, document.TypeEstimate, 3)
	d.Currency = "EUR"
	rate := money("3")
	d.ExchangeRate = &rate
	d.TaxRate = ptr(money("19"))
	d.DiscountValue = money("10")
	d.Items = append(d.Items, conversion.DraftItem{Description: "Delivery fee", Quantity: types.NewQuantity(1), Price: ptr(money("4"))})
	est := w.submit(t, d)
	eh := est.Head()
	require.Len(t, eh.Items, 2)

	order, err := w.engine.Convert(ctx, eh.ID, document.TypeOrder, conversion.Overrides{
		Quantities: map[string]types.Quantity{eh.Items[0].ID: types.NewQuantity(2)},
		Notes:      "rush",
	})
	require.NoError(t, err)

	h := order.Head()
	assert.Equal(t, eh.ID, h.Linked())
	assert.Equal(t, est.Partner(), order.Partner())
	assert.Equal(t, "EUR", h.Currency)
	assert.True(t, h.ExchangeRate.Equal(rate))
	assert.True(t, h.TaxRate.Equal(money("19")))
	assert.Equal(t, "rush", h.Notes)
	require.Len(t, h.Items, 1, "unselected lines are dropped")
	assert.Equal(t, types.NewQuantity(2), h.Items[0].Quantity)
	assert.True(t, h.Items[0].Price.Equal(money("10")), "30 TND at rate 3")

	_, err = w.engine.Convert(ctx, eh.ID, document.TypeOrder, conversion.Overrides{
		Quantities: map[string]types.Quantity{},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptySelection))

	_, err = w.engine.Convert(ctx, eh.ID, document.TypeIssue, conversion.Overrides{})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversion))
}

func TestSubmit_Currency(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	d := w.draft(document.DomainSales, document.TypeEstimate, 1)
	d.ExchangeRate = ptr(money("5"))
	doc := w.submit(t, d)
	assert.Equal(t, "TND", doc.Head().Currency)
	assert.True(t, doc.Head().ExchangeRate.Equal(money("1")), "base currency forces rate 1")
	assert.True(t, doc.Head().Items[0].Price.Equal(money("30")))

	for _, rate := range []*types.Money{nil, ptr(money("0")), ptr(money("-2")), ptr(money("1"))} {
		d := w.draft(document.DomainSales, document.TypeEstimate, 1)
		d.Currency = "USD"
		d.ExchangeRate = rate
		_, err := w.engine.Submit(ctx, d)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	}

	d = w.draft(document.DomainPurchase, document.TypeOrder, 1)
	d.Currency = "USD"
	d.ExchangeRate = ptr(money("2"))
	doc = w.submit(t, d)
	assert.True(t, doc.Head().Items[0].Price.Equal(money("2.5")), "purchase defaults to cost")
}

func TestSubmit_Rejects(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.engine.Submit(ctx, w.draft(document.DomainSales, document.TypeReturn, 1))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	d := w.draft(document.DomainSales, document.TypeInvoice, 1)
	d.PartnerID = &w.supplier.ID
	_, err = w.engine.Submit(ctx, d)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "supplier on a sales document")

	d = w.draft(document.DomainSales, document.TypeEstimate, 1)
	d.Items = []conversion.DraftItem{{ProductID: id.New().String(), Quantity: types.NewQuantity(1)}}
	_, err = w.engine.Submit(ctx, d)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "unknown product")

	d = w.draft(document.DomainSales, document.TypeEstimate, 1)
	d.Items = []conversion.DraftItem{{Description: "Free text", Quantity: types.NewQuantity(1)}}
	_, err = w.engine.Submit(ctx, d)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "custom line without price")
}

func TestSubmit_MissingWarehouseWritesNothing(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	d := w.draft(document.DomainPurchase, document.TypeDelivery, 5)
	d.WarehouseID = nil
	_, err := w.engine.Submit(ctx, d)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "warehouseId", appErr.Details["field"])

	docs, err := w.engine.List(ctx, document.DomainPurchase, document.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)

	grn := w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 5))
	assert.Equal(t, "GRN-001", grn.Head().Number, "failed submit consumed no number")
	assert.Equal(t, types.NewQuantity(5), w.balance(t))
}

func TestSalesInvoice_StockOnlyWithoutDelivery(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 50))

	order := w.submit(t, w.draft(document.DomainSales, document.TypeOrder, 10))
	assert.Equal(t, types.NewQuantity(50), w.balance(t), "orders do not move stock")

	delivery, err := w.engine.Convert(ctx, order.Head().ID, document.TypeDelivery, conversion.Overrides{
		Quantities: map[string]types.Quantity{order.Head().Items[0].ID: types.NewQuantity(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(46), w.balance(t))

	_, err = w.engine.Convert(ctx, delivery.Head().ID, document.TypeInvoice, conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(46), w.balance(t), "invoice of a delivery")

	_, err = w.engine.Convert(ctx, order.Head().ID, document.TypeInvoice, conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(46), w.balance(t), "invoice of a delivered order")

	w.submit(t, w.draft(document.DomainSales, document.TypeInvoice, 2))
	assert.Equal(t, types.NewQuantity(44), w.balance(t), "direct invoice")
}

func TestSalesInvoice_DeliveredEstimate(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 10))

	est := w.submit(t, w.draft(document.DomainSales, document.TypeEstimate, 4))
	_, err := w.engine.Convert(ctx, est.Head().ID, document.TypeDelivery, conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(6), w.balance(t))

	_, err = w.engine.Convert(ctx, est.Head().ID, document.TypeInvoice, conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(6), w.balance(t), "invoice of a delivered estimate")

	order, err := w.engine.Convert(ctx, est.Head().ID, document.TypeOrder, conversion.Overrides{})
	require.NoError(t, err)
	_, err = w.engine.Convert(ctx, order.Head().ID, document.TypeInvoice, conversion.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(6), w.balance(t), "estimate delivered before the order")
}

func TestSubmit_InsufficientStock(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 3))

	_, err := w.engine.Submit(ctx, w.draft(document.DomainSales, document.TypeIssue, 4))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, types.NewQuantity(3), w.balance(t))

	docs, err := w.engine.List(ctx, document.DomainSales, document.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs, "rolled back with the movements")
}

func TestTransitionStatus_CancelReversesStock(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 10))

	inv := w.submit(t, w.draft(document.DomainSales, document.TypeInvoice, 3))
	assert.Equal(t, types.NewQuantity(7), w.balance(t))

	doc, err := w.engine.TransitionStatus(ctx, inv.Head().ID, document.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, document.StatusCancelled, doc.Head().Status)
	assert.Equal(t, types.NewQuantity(10), w.balance(t))

	_, err = w.engine.TransitionStatus(ctx, inv.Head().ID, document.StatusPaid)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition))

	targets, err := w.engine.Targets(ctx, inv.Head().ID)
	require.NoError(t, err)
	assert.Equal(t, []document.Type{document.TypeReturn}, targets, "invoices can always be returned")
}

func TestDelete_KeepsMovements(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	order := w.submit(t, w.draft(document.DomainPurchase, document.TypeOrder, 4))
	grn, err := w.engine.Convert(ctx, order.Head().ID, document.TypeDelivery, conversion.Overrides{})
	require.NoError(t, err)

	res, err := w.engine.Delete(ctx, grn.Head().ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.MovementsKept)
	assert.Equal(t, types.NewQuantity(4), w.balance(t))

	_, err = w.engine.Get(ctx, grn.Head().ID)
	assert.True(t, apperror.IsNotFound(err))

	res, err = w.engine.Delete(ctx, order.Head().ID)
	require.NoError(t, err)
	assert.Zero(t, res.MovementsKept)
}

func TestEditItems(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	order := w.submit(t, w.draft(document.DomainSales, document.TypeOrder, 2))
	lineID := order.Head().Items[0].ID

	doc, err := w.engine.EditItems(ctx, order.Head().ID, []conversion.DraftItem{
		{ProductID: lineID, Quantity: types.NewQuantity(5)},
		{Description: "Engraving", Quantity: types.NewQuantity(1), Price: ptr(money("7"))},
	})
	require.NoError(t, err)
	h := doc.Head()
	require.Len(t, h.Items, 2)
	assert.True(t, h.Amount.Equal(money("157")), h.Amount.String())
	assert.Equal(t, 2, h.Version)

	delivery, err := w.engine.Convert(ctx, order.Head().ID, document.TypeDelivery, conversion.Overrides{})
	require.Error(t, err, "no stock on hand")
	assert.Nil(t, delivery)

	w.submit(t, w.draft(document.DomainPurchase, document.TypeDelivery, 10))
	inv := w.submit(t, w.draft(document.DomainSales, document.TypeInvoice, 1))
	_, err = w.engine.EditItems(ctx, inv.Head().ID, []conversion.DraftItem{{ProductID: lineID, Quantity: types.NewQuantity(2)}})
	assert.True(t, apperror.HasCode(err, "DOCUMENT_POSTED"))

	issue := w.submit(t, w.draft(document.DomainSales, document.TypeIssue, 1))
	_, err = w.engine.EditItems(ctx, issue.Head().ID, []conversion.DraftItem{{ProductID: lineID, Quantity: types.NewQuantity(2)}})
	assert.True(t, apperror.HasCode(err, "DOCUMENT_NOT_EDITABLE"))
}

func TestEditItems_KeepsReceivedQuantity(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	order := w.submit(t, w.draft(document.DomainPurchase, document.TypeOrder, 10))
	lineID := order.Head().Items[0].ID
	_, err := w.engine.Receive(ctx, order.Head().ID, map[string]types.Quantity{lineID: types.NewQuantity(6)}, fulfillment.ReceiveOptions{})
	require.NoError(t, err)

	_, err = w.engine.EditItems(ctx, order.Head().ID, []conversion.DraftItem{{ProductID: lineID, Quantity: types.NewQuantity(5)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = w.engine.EditItems(ctx, order.Head().ID, []conversion.DraftItem{{Description: "Other", Quantity: types.NewQuantity(1), Price: ptr(money("1"))}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "received line cannot be removed")

	doc, err := w.engine.EditItems(ctx, order.Head().ID, []conversion.DraftItem{{ProductID: lineID, Quantity: types.NewQuantity(12)}})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(6), doc.Head().Items[0].Fulfilled())
	assert.Equal(t, types.NewQuantity(6), doc.Head().Items[0].Remaining())
}

func TestEditItems_TrimToReceivedCompletesOrder(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	order := w.submit(t, w.draft(document.DomainPurchase, document.TypeOrder, 10))
	lineID := order.Head().Items[0].ID
	_, err := w.engine.Receive(ctx, order.Head().ID, map[string]types.Quantity{lineID: types.NewQuantity(6)}, fulfillment.ReceiveOptions{})
	require.NoError(t, err)

	doc, err := w.engine.EditItems(ctx, order.Head().ID, []conversion.DraftItem{{ProductID: lineID, Quantity: types.NewQuantity(6)}})
	require.NoError(t, err)
	assert.Equal(t, document.StatusReceived, doc.Head().Status)

	_, err = w.engine.Receive(ctx, order.Head().ID, map[string]types.Quantity{lineID: types.NewQuantity(1)}, fulfillment.ReceiveOptions{})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversion), "order is no longer pending")
}

func TestRFQFlow(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	pr := w.submit(t, w.draft(document.DomainPurchase, document.TypePurchaseRequest, 10))
	_, err := w.engine.Convert(ctx, pr.Head().ID, document.TypeRFQ, conversion.Overrides{})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversion), "request not approved")

	_, err = w.engine.TransitionStatus(ctx, pr.Head().ID, document.StatusApproved)
	require.NoError(t, err)

	rfq, err := w.engine.Convert(ctx, pr.Head().ID, document.TypeRFQ, conversion.Overrides{})
	require.NoError(t, err)
	lineID := rfq.Head().Items[0].ID

	_, err = w.engine.QuoteRFQ(ctx, rfq.Head().ID, map[string]types.Money{lineID: money("4")})
	require.NoError(t, err)

	order, err := w.engine.Convert(ctx, rfq.Head().ID, document.TypeOrder, conversion.Overrides{})
	require.NoError(t, err)
	assert.True(t, order.Head().Amount.Equal(money("40")), order.Head().Amount.String())

	stored, err := w.engine.Get(ctx, rfq.Head().ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusAccepted, stored.Head().Status)

	linked, err := w.engine.Linked(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, rfq.Head().ID, linked.Head().ID)
}

func ptr[T any](v T) *T { return &v }
