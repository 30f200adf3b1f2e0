package stock

import (
	"context"
	"fmt"
	"time"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/document"
)

// Documents is the part of the document store the recorder needs to decide
// whether an invoice follows a delivery.
type Documents interface {
	FindLinked(ctx context.Context, doc document.Document) (document.Document, error)
	Successors(ctx context.Context, doc document.Document) ([]document.Document, error)
}

// rule decides whether and in which direction a document moves stock.
type rule func(ctx context.Context, r *Recorder, doc document.Document) (entity.RecordType, bool, error)

var rules = map[document.Kind]rule{
	{Domain: document.DomainSales, Type: document.TypeDelivery}: always(entity.RecordTypeExpense),
	{Domain: document.DomainSales, Type: document.TypeIssue}:    always(entity.RecordTypeExpense),
	{Domain: document.DomainSales, Type: document.TypeInvoice}:  withoutPriorDelivery(entity.RecordTypeExpense),
	{Domain: document.DomainSales, Type: document.TypeReturn}:   whenReintegrated(entity.RecordTypeReceipt),

	{Domain: document.DomainPurchase, Type: document.TypeDelivery}: always(entity.RecordTypeReceipt),
	{Domain: document.DomainPurchase, Type: document.TypeInvoice}:  withoutPriorDelivery(entity.RecordTypeReceipt),
	{Domain: document.DomainPurchase, Type: document.TypeReturn}:   whenReintegrated(entity.RecordTypeExpense),
}

func always(rt entity.RecordType) rule {
	return func(context.Context, *Recorder, document.Document) (entity.RecordType, bool, error) {
		return rt, true, nil
	}
}

func whenReintegrated(rt entity.RecordType) rule {
	return func(_ context.Context, _ *Recorder, doc document.Document) (entity.RecordType, bool, error) {
		return rt, doc.Head().StockAction == document.StockReintegrate, nil
	}
}

// withoutPriorDelivery moves stock only when the goods were not already moved
// by a delivery. A delivery counts when it is the predecessor itself, hangs
// off the predecessor or one of its orders, or hangs off an earlier document
// of the chain (estimate, order, request).
func withoutPriorDelivery(rt entity.RecordType) rule {
	return func(ctx context.Context, r *Recorder, doc document.Document) (entity.RecordType, bool, error) {
		linked, err := r.docs.FindLinked(ctx, doc)
		if err != nil {
			return rt, false, fmt.Errorf("find predecessor: %w", err)
		}
		if linked == nil {
			return rt, true, nil
		}
		if linked.Head().Type == document.TypeDelivery {
			return rt, false, nil
		}

		visited := map[id.ID]bool{doc.Head().ID: true}

		delivered, err := r.deliveredBelow(ctx, linked, visited)
		if err != nil || delivered {
			return rt, false, err
		}

		for a := linked; ; {
			a, err = r.docs.FindLinked(ctx, a)
			if err != nil {
				return rt, false, fmt.Errorf("find predecessor: %w", err)
			}
			if a == nil || visited[a.Head().ID] || !upstream(a.Head().Type) {
				return rt, true, nil
			}
			visited[a.Head().ID] = true

			successors, err := r.docs.Successors(ctx, a)
			if err != nil {
				return rt, false, fmt.Errorf("find successors: %w", err)
			}
			for _, s := range successors {
				if s.Head().Type == document.TypeDelivery {
					return rt, false, nil
				}
			}
		}
	}
}

// upstream types come before deliveries in a chain.
func upstream(t document.Type) bool {
	switch t {
	case document.TypeEstimate, document.TypeOrder, document.TypeRFQ, document.TypePurchaseRequest:
		return true
	}
	return false
}

// deliveredBelow reports whether an unvisited delivery descends from doc
// through upstream documents.
func (r *Recorder) deliveredBelow(ctx context.Context, doc document.Document, visited map[id.ID]bool) (bool, error) {
	visited[doc.Head().ID] = true
	successors, err := r.docs.Successors(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("find successors: %w", err)
	}
	for _, s := range successors {
		sh := s.Head()
		if visited[sh.ID] {
			continue
		}
		if sh.Type == document.TypeDelivery {
			return true, nil
		}
		if upstream(sh.Type) {
			found, err := r.deliveredBelow(ctx, s, visited)
			if err != nil || found {
				return found, err
			}
		}
	}
	return false, nil
}

// Plan is the set of movements a document would produce.
type Plan struct {
	RecordType entity.RecordType
	Warehouse  *catalog.Warehouse
	Movements  []entity.StockMovement
}

// Recorder turns documents into stock movements.
type Recorder struct {
	svc           *Service
	docs          Documents
	products      catalog.Products
	warehouses    catalog.Warehouses
	allowNegative bool
	now           func() time.Time
}

// RecorderOption customizes a Recorder.
type RecorderOption func(*Recorder)

// AllowNegativeStock disables availability checks for expense movements.
func AllowNegativeStock(allow bool) RecorderOption {
	return func(r *Recorder) { r.allowNegative = allow }
}

// WithRecorderClock replaces time.Now for movement timestamps.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a recorder.
func NewRecorder(svc *Service, docs Documents, products catalog.Products, warehouses catalog.Warehouses, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		svc:        svc,
		docs:       docs,
		products:   products,
		warehouses: warehouses,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Direction reports whether doc moves stock and in which direction.
func (r *Recorder) Direction(ctx context.Context, doc document.Document) (entity.RecordType, bool, error) {
	fn, ok := rules[doc.Head().Kind()]
	if !ok {
		return "", false, nil
	}
	return fn(ctx, r, doc)
}

// Plan builds the movements for doc without writing anything. It returns nil
// when doc does not affect stock. A missing or unusable warehouse fails here,
// before any write.
func (r *Recorder) Plan(ctx context.Context, doc document.Document) (*Plan, error) {
	rt, moves, err := r.Direction(ctx, doc)
	if err != nil || !moves {
		return nil, err
	}

	h := doc.Head()
	var movements []entity.StockMovement
	for _, li := range h.Items {
		productID, ok := li.ProductID()
		if !ok {
			continue
		}
		physical, err := r.isPhysical(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !physical {
			continue
		}
		movements = append(movements, entity.StockMovement{
			MovementBase: entity.MovementBase{
				RecordType: rt,
				Period:     h.Date,
			},
			ProductID: productID,
			Quantity:  li.Quantity,
		})
	}
	if len(movements) == 0 {
		return nil, nil
	}

	wh, err := r.warehouse(ctx, h)
	if err != nil {
		return nil, err
	}
	for i := range movements {
		movements[i].WarehouseID = wh.ID
	}

	return &Plan{RecordType: rt, Warehouse: wh, Movements: movements}, nil
}

// Check validates that doc can post its movements.
func (r *Recorder) Check(ctx context.Context, doc document.Document) error {
	_, err := r.Plan(ctx, doc)
	return err
}

// Apply records the movements of a persisted document. Returns the number of
// movements written.
func (r *Recorder) Apply(ctx context.Context, doc document.Document) (int, error) {
	plan, err := r.Plan(ctx, doc)
	if err != nil || plan == nil {
		return 0, err
	}

	h := doc.Head()
	now := r.now()
	for i := range plan.Movements {
		m := &plan.Movements[i]
		m.LineID = id.New()
		m.RecorderID = h.ID
		m.RecorderType = h.Kind().String()
		m.RecorderNumber = h.Number
		m.CreatedAt = now
	}

	check := plan.RecordType == entity.RecordTypeExpense && !r.allowNegative && !plan.Warehouse.AllowNegativeStock
	if err := r.svc.RecordMovements(ctx, plan.Movements, check); err != nil {
		return 0, err
	}
	return len(plan.Movements), nil
}

// Reverse removes the movements doc produced.
func (r *Recorder) Reverse(ctx context.Context, doc document.Document) (int, error) {
	return r.svc.ReverseMovements(ctx, doc.Head().ID)
}

// Posted returns the number of movements currently recorded for doc.
func (r *Recorder) Posted(ctx context.Context, docID id.ID) (int, error) {
	movements, err := r.svc.GetMovementsByRecorder(ctx, docID)
	if err != nil {
		return 0, err
	}
	return len(movements), nil
}

// isPhysical treats products missing from the catalog as physical: the line
// was snapshotted when the product existed.
func (r *Recorder) isPhysical(ctx context.Context, productID id.ID) (bool, error) {
	p, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("get product %s: %w", productID, err)
	}
	return p.IsPhysical(), nil
}

func (r *Recorder) warehouse(ctx context.Context, h *document.Header) (*catalog.Warehouse, error) {
	if h.WarehouseID == nil || id.IsNil(*h.WarehouseID) {
		return nil, apperror.NewValidation("warehouse is required when items affect stock").
			WithDetail("field", "warehouseId").
			WithDetail("kind", h.Kind().String())
	}

	wh, err := r.warehouses.GetWarehouse(ctx, *h.WarehouseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("warehouse not found").
				WithDetail("field", "warehouseId").
				WithDetail("id", h.WarehouseID.String())
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	if !wh.CanMoveStock() {
		return nil, apperror.NewBusinessRule("WAREHOUSE_INACTIVE", "warehouse does not accept stock movements").
			WithDetail("id", wh.ID.String())
	}
	return wh, nil
}
