// Package conversion is the entry point for every document write: draft
// submission, conversion into successors, status changes, item edits and
// deletion. Each action runs in one transaction, so the document, the
// predecessor update and the stock movements land together or not at all.
package conversion

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/tx"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/domain/document"
	"smartbiz/internal/domain/fulfillment"
	"smartbiz/internal/domain/pricing"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/internal/domain/returns"
	"smartbiz/pkg/logger"
)

var tracer = otel.Tracer("smartbiz/conversion")

// Engine orchestrates the document components.
type Engine struct {
	store     *document.Store
	chain     *document.Chain
	recorder  *stock.Recorder
	catalog   catalog.Reader
	tracker   *fulfillment.Tracker
	returns   *returns.Handler
	txManager tx.Manager
}

// Deps groups the collaborators of the engine.
type Deps struct {
	Store     *document.Store
	Chain     *document.Chain
	Recorder  *stock.Recorder
	Catalog   catalog.Reader
	Tracker   *fulfillment.Tracker
	Returns   *returns.Handler
	TxManager tx.Manager
}

// NewEngine creates the engine and registers the stock hooks on the store:
// movements are planned (and the warehouse checked) before anything is
// written, and recorded right after the document is inserted.
func NewEngine(d Deps) *Engine {
	e := &Engine{
		store:     d.Store,
		chain:     d.Chain,
		recorder:  d.Recorder,
		catalog:   d.Catalog,
		tracker:   d.Tracker,
		returns:   d.Returns,
		txManager: d.TxManager,
	}
	if e.chain == nil {
		e.chain = document.MustDefaultChain()
	}

	e.store.Hooks().OnBeforeCreate(func(ctx context.Context, doc document.Document) error {
		return e.recorder.Check(ctx, doc)
	})
	e.store.Hooks().OnAfterCreate(func(ctx context.Context, doc document.Document) error {
		_, err := e.recorder.Apply(ctx, doc)
		return err
	})

	return e
}

// DraftItem is one cart line. An empty ProductID makes a custom line, which
// needs a description and a price.
type DraftItem struct {
	ProductID   string          `json:"productId,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    types.Quantity  `json:"quantity"`
	Price       *types.Money    `json:"price,omitempty"`
	Fulfilled   *types.Quantity `json:"-"`
}

// Draft is a cart submitted by a user.
type Draft struct {
	Domain document.Domain `json:"domain"`
	Type   document.Type   `json:"type"`

	PartnerID   *id.ID `json:"partnerId,omitempty"`
	PartnerName string `json:"partnerName,omitempty"`

	Date     time.Time  `json:"date"`
	Due      *time.Time `json:"dueDate,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`

	Currency     string       `json:"currency,omitempty"`
	ExchangeRate *types.Money `json:"exchangeRate,omitempty"`
	WarehouseID  *id.ID       `json:"warehouseId,omitempty"`

	DiscountValue   types.Money           `json:"discountValue"`
	DiscountType    document.DiscountType `json:"discountType,omitempty"`
	TaxRate         *types.Money          `json:"taxRate,omitempty"`
	FiscalStamp     *types.Money          `json:"fiscalStamp,omitempty"`
	AdditionalCosts types.Money           `json:"additionalCosts"`

	RequesterName string `json:"requesterName,omitempty"`
	Department    string `json:"department,omitempty"`
	Notes         string `json:"notes,omitempty"`

	Items []DraftItem `json:"items"`
}

// Submit turns a draft into a persisted, numbered document.
func (e *Engine) Submit(ctx context.Context, d Draft) (doc document.Document, err error) {
	kind := document.Kind{Domain: d.Domain, Type: d.Type}
	ctx, span := e.start(ctx, "conversion.Submit", attribute.String("document.kind", kind.String()))
	defer func() { end(span, err) }()

	if !d.Domain.Valid() || !d.Domain.Has(d.Type) {
		return nil, apperror.NewValidation("unknown document type").WithDetail("kind", kind.String())
	}
	if d.Type == document.TypeReturn {
		return nil, apperror.NewValidation("returns are created from a source document").
			WithDetail("field", "type")
	}

	settings, err := e.catalog.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	doc = document.New(kind)
	h := doc.Head()

	partner, err := e.resolvePartner(ctx, d.Domain, d.PartnerID, d.PartnerName)
	if err != nil {
		return nil, err
	}
	doc.SetPartner(partner)

	h.Currency, h.ExchangeRate, err = resolveCurrency(settings, d.Currency, d.ExchangeRate)
	if err != nil {
		return nil, err
	}

	h.Items, err = e.resolveItems(ctx, d.Domain, h.ExchangeRate, d.Items)
	if err != nil {
		return nil, err
	}

	h.Date = d.Date
	h.Due = d.Due
	h.WarehouseID = d.WarehouseID
	h.Notes = d.Notes
	h.DiscountValue = types.NonNegative(d.DiscountValue)
	if d.DiscountType != "" {
		h.DiscountType = d.DiscountType
	}
	h.TaxRate = types.NonNegative(orDefault(d.TaxRate, settings.DefaultTaxRate))
	h.FiscalStamp = types.NonNegative(orDefault(d.FiscalStamp, settings.DefaultFiscalStamp))

	if p, ok := doc.(*document.PurchaseDocument); ok {
		p.Costs = types.NonNegative(d.AdditionalCosts)
		p.Deadline = d.Deadline
		p.RequesterName = d.RequesterName
		p.Department = d.Department
	}

	document.Reprice(doc)

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return e.store.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "draft submitted", "kind", kind.String(), "number", h.Number)
	return doc, nil
}

func (e *Engine) resolvePartner(ctx context.Context, domain document.Domain, partnerID *id.ID, name string) (document.PartnerRef, error) {
	if partnerID == nil || id.IsNil(*partnerID) {
		return document.PartnerRef{Name: name}, nil
	}

	p, err := e.catalog.GetPartner(ctx, *partnerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return document.PartnerRef{}, apperror.NewValidation("partner not found").
				WithDetail("field", "partnerId").
				WithDetail("id", partnerID.String())
		}
		return document.PartnerRef{}, fmt.Errorf("get partner: %w", err)
	}

	if domain == document.DomainSales && !p.IsClient() {
		return document.PartnerRef{}, apperror.NewValidation("partner is not a client").WithDetail("field", "partnerId")
	}
	if domain == document.DomainPurchase && !p.IsSupplier() {
		return document.PartnerRef{}, apperror.NewValidation("partner is not a supplier").WithDetail("field", "partnerId")
	}

	if name == "" {
		name = p.Name
	}
	return document.PartnerRef{ID: p.ID, Name: name}, nil
}

// resolveCurrency applies the exchange-rate rule: the base currency always
// has rate 1; any other currency needs a user-entered positive rate other than 1.
func resolveCurrency(settings catalog.Settings, currency string, rate *types.Money) (string, types.Money, error) {
	one := types.MustMoney("1")

	if currency == "" || currency == settings.BaseCurrency {
		return settings.BaseCurrency, one, nil
	}
	if rate == nil || !rate.IsPositive() || rate.Equal(one) {
		return "", types.Zero(), apperror.NewValidation("exchange rate for a foreign currency must be positive and not 1").
			WithDetail("field", "exchangeRate").
			WithDetail("currency", currency)
	}
	return currency, *rate, nil
}

// resolveItems snapshots catalog data into lines. Default prices come from
// the catalog in base currency (sales price or purchase cost) converted with
// the document rate.
func (e *Engine) resolveItems(ctx context.Context, domain document.Domain, rate types.Money, in []DraftItem) (document.Items, error) {
	out := make(document.Items, 0, len(in))
	for i, di := range in {
		field := fmt.Sprintf("items[%d]", i)
		li := document.LineItem{
			Description:       di.Description,
			Quantity:          di.Quantity,
			FulfilledQuantity: di.Fulfilled,
		}

		if di.ProductID == "" {
			if di.Description == "" || di.Price == nil {
				return nil, apperror.NewValidation("custom line needs a description and a price").
					WithDetail("field", field)
			}
			li.ID = document.NewCustomItemID()
			li.Price = *di.Price
			out = append(out, li)
			continue
		}

		if _, err := id.Parse(di.ProductID); err != nil {
			// Lines already on a document keep their synthetic id.
			li.ID = di.ProductID
			if di.Price == nil {
				return nil, apperror.NewValidation("custom line needs a price").WithDetail("field", field)
			}
			li.Price = *di.Price
			out = append(out, li)
			continue
		}

		productID := id.MustParse(di.ProductID)
		p, err := e.catalog.GetProduct(ctx, productID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewValidation("product not found").
					WithDetail("field", field+".productId").
					WithDetail("id", di.ProductID)
			}
			return nil, fmt.Errorf("get product: %w", err)
		}

		li.ID = p.ID.String()
		if li.Description == "" {
			li.Description = p.Name
		}
		if di.Price != nil {
			li.Price = *di.Price
		} else {
			base := p.Price
			if domain == document.DomainPurchase {
				base = p.Cost
			}
			li.Price = pricing.ForeignUnitPrice(base, rate)
		}
		out = append(out, li)
	}
	return out, nil
}

func orDefault(v *types.Money, def types.Money) types.Money {
	if v == nil {
		return def
	}
	return *v
}

func (e *Engine) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
