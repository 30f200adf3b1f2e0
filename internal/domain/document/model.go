// Package document defines commercial documents of both domains (sales and
// purchase), their conversion chains and status tables, and the Store that
// persists and numbers them.
package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
)

// Domain separates customer-facing documents from procurement documents.
type Domain string

const (
	DomainSales    Domain = "sales"
	DomainPurchase Domain = "purchase"
)

// Type is the document type within a domain.
type Type string

const (
	TypeEstimate        Type = "estimate"
	TypeOrder           Type = "order"
	TypeDelivery        Type = "delivery" // goods-receipt note on the purchase side
	TypeInvoice         Type = "invoice"
	TypeIssue           Type = "issue"
	TypeReturn          Type = "return"
	TypePurchaseRequest Type = "pr"
	TypeRFQ             Type = "rfq"
)

var domainTypes = map[Domain][]Type{
	DomainSales:    {TypeEstimate, TypeOrder, TypeDelivery, TypeInvoice, TypeIssue, TypeReturn},
	DomainPurchase: {TypePurchaseRequest, TypeRFQ, TypeOrder, TypeDelivery, TypeInvoice, TypeReturn},
}

// Types returns the document types that exist in the domain.
func (d Domain) Types() []Type {
	return domainTypes[d]
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	_, ok := domainTypes[d]
	return ok
}

// Has reports whether t exists in the domain.
func (d Domain) Has(t Type) bool {
	for _, known := range domainTypes[d] {
		if known == t {
			return true
		}
	}
	return false
}

// Kind is a (domain, type) pair, the unit of numbering and chain rules.
type Kind struct {
	Domain Domain
	Type   Type
}

func (k Kind) String() string { return string(k.Domain) + "/" + string(k.Type) }

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusResponded Status = "responded"
	StatusAccepted  Status = "accepted"
	StatusReceived  Status = "received"
	StatusCompleted Status = "completed"
	StatusProcessed Status = "processed"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// StockAction decides what happens to returned goods.
type StockAction string

const (
	// StockReintegrate puts returned goods back into sellable stock (or out of it for purchase returns).
	StockReintegrate StockAction = "reintegrate"
	// StockQuarantine leaves stock untouched.
	StockQuarantine StockAction = "quarantine"
)

const customItemPrefix = "custom-"

// LineItem is one line of a document.
type LineItem struct {
	// ID is the product UUID, or "custom-<uuid>" for lines not in the catalog
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Quantity    types.Quantity `json:"quantity"`
	// Price is the unit price in the document currency
	Price types.Money `json:"price"`
	// FulfilledQuantity is tracked on purchase orders only
	FulfilledQuantity *types.Quantity `json:"fulfilledQuantity,omitempty"`
}

// NewCustomItemID returns a synthetic id for a non-catalog line.
func NewCustomItemID() string {
	return customItemPrefix + id.New().String()
}

// IsCustom reports whether the line is not backed by a catalog product.
func (li LineItem) IsCustom() bool {
	return strings.HasPrefix(li.ID, customItemPrefix)
}

// ProductID returns the catalog product id of the line.
func (li LineItem) ProductID() (id.ID, bool) {
	if li.IsCustom() {
		return id.Nil(), false
	}
	pid, err := id.Parse(li.ID)
	if err != nil || id.IsNil(pid) {
		return id.Nil(), false
	}
	return pid, true
}

// Fulfilled returns the received quantity (0 when not tracked).
func (li LineItem) Fulfilled() types.Quantity {
	if li.FulfilledQuantity == nil {
		return 0
	}
	return *li.FulfilledQuantity
}

// Remaining returns quantity still to be received.
func (li LineItem) Remaining() types.Quantity {
	r := li.Quantity - li.Fulfilled()
	if r < 0 {
		return 0
	}
	return r
}

// IsFullyFulfilled reports whether nothing is left to receive.
func (li LineItem) IsFullyFulfilled() bool {
	return li.Fulfilled() >= li.Quantity
}

// Total returns price × quantity.
func (li LineItem) Total() types.Money {
	return li.Price.Mul(li.Quantity.Decimal())
}

// Items is the ordered list of lines (stored as JSONB).
type Items []LineItem

// Find returns the index of the line with itemID or -1.
func (items Items) Find(itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// Value implements driver.Valuer; items are stored as a JSON array.
func (items Items) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (items *Items) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	default:
		return fmt.Errorf("cannot scan %T into Items", src)
	}
}

func (items Items) clone() Items {
	if items == nil {
		return nil
	}
	out := make(Items, len(items))
	for i, li := range items {
		out[i] = li
		if li.FulfilledQuantity != nil {
			q := *li.FulfilledQuantity
			out[i].FulfilledQuantity = &q
		}
	}
	return out
}

// Header holds the fields shared by sales and purchase documents.
type Header struct {
	entity.BaseDocument

	Domain Domain     `db:"domain" json:"domain"`
	Type   Type       `db:"type" json:"type"`
	Number string     `db:"number" json:"number"`
	Status Status     `db:"status" json:"status"`
	Date   time.Time  `db:"date" json:"date"`
	Due    *time.Time `db:"due_date" json:"dueDate,omitempty"`

	Items Items `db:"items" json:"items"`

	Currency     string      `db:"currency" json:"currency"`
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	Subtotal      types.Money  `db:"subtotal" json:"subtotal"`
	Discount      types.Money  `db:"discount" json:"discount"`
	DiscountValue types.Money  `db:"discount_value" json:"discountValue"`
	DiscountType  DiscountType `db:"discount_type" json:"discountType"`
	TaxRate       types.Money  `db:"tax_rate" json:"taxRate"`
	FiscalStamp   types.Money  `db:"fiscal_stamp" json:"fiscalStamp"`
	Amount        types.Money  `db:"amount" json:"amount"`

	WarehouseID      *id.ID `db:"warehouse_id" json:"warehouseId,omitempty"`
	LinkedDocumentID *id.ID `db:"linked_document_id" json:"linkedDocumentId,omitempty"`

	ReturnReason string      `db:"return_reason" json:"returnReason,omitempty"`
	StockAction  StockAction `db:"stock_action" json:"stockAction,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// Kind returns the (domain, type) pair of the document.
func (h *Header) Kind() Kind { return Kind{Domain: h.Domain, Type: h.Type} }

// Warehouse returns the warehouse id, or Nil when unset.
func (h *Header) Warehouse() id.ID {
	if h.WarehouseID == nil {
		return id.Nil()
	}
	return *h.WarehouseID
}

// Linked returns the predecessor id, or Nil when unset.
func (h *Header) Linked() id.ID {
	if h.LinkedDocumentID == nil {
		return id.Nil()
	}
	return *h.LinkedDocumentID
}

// BaseAmount converts the grand total into the base currency.
func (h *Header) BaseAmount() types.Money {
	if h.ExchangeRate.IsZero() {
		return h.Amount
	}
	return h.Amount.Mul(h.ExchangeRate)
}

func (h *Header) clone() Header {
	out := *h
	out.Items = h.Items.clone()
	out.Due = clonePtr(h.Due)
	out.WarehouseID = clonePtr(h.WarehouseID)
	out.LinkedDocumentID = clonePtr(h.LinkedDocumentID)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PartnerRef is the denormalized partner snapshot stored on a document.
type PartnerRef struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}

// Document is either a *SalesDocument or a *PurchaseDocument.
type Document interface {
	Head() *Header
	Partner() PartnerRef
	SetPartner(p PartnerRef)
	// AdditionalCosts is always zero for sales documents.
	AdditionalCosts() types.Money
	Clone() Document
}

// SalesDocument is a customer-facing document.
type SalesDocument struct {
	Header

	ClientID   id.ID  `db:"client_id" json:"clientId"`
	ClientName string `db:"client_name" json:"clientName"`
}

func (d *SalesDocument) Head() *Header { return &d.Header }

func (d *SalesDocument) Partner() PartnerRef {
	return PartnerRef{ID: d.ClientID, Name: d.ClientName}
}

func (d *SalesDocument) SetPartner(p PartnerRef) {
	d.ClientID = p.ID
	d.ClientName = p.Name
}

func (d *SalesDocument) AdditionalCosts() types.Money { return types.Zero() }

func (d *SalesDocument) Clone() Document {
	out := *d
	out.Header = d.Header.clone()
	return &out
}

// PurchaseDocument is a procurement document.
type PurchaseDocument struct {
	Header

	SupplierID   id.ID  `db:"supplier_id" json:"supplierId"`
	SupplierName string `db:"supplier_name" json:"supplierName"`

	Costs types.Money `db:"additional_costs" json:"additionalCosts"`

	// Deadline is the quote deadline of an RFQ
	Deadline *time.Time `db:"deadline" json:"deadline,omitempty"`

	// Purchase request fields
	RequesterName string `db:"requester_name" json:"requesterName,omitempty"`
	Department    string `db:"department" json:"department,omitempty"`
}

func (d *PurchaseDocument) Head() *Header { return &d.Header }

func (d *PurchaseDocument) Partner() PartnerRef {
	return PartnerRef{ID: d.SupplierID, Name: d.SupplierName}
}

func (d *PurchaseDocument) SetPartner(p PartnerRef) {
	d.SupplierID = p.ID
	d.SupplierName = p.Name
}

func (d *PurchaseDocument) AdditionalCosts() types.Money { return d.Costs }

func (d *PurchaseDocument) Clone() Document {
	out := *d
	out.Header = d.Header.clone()
	out.Deadline = clonePtr(d.Deadline)
	return &out
}

// New returns an empty document of the given kind with defaults applied.
func New(kind Kind) Document {
	h := Header{
		Domain:       kind.Domain,
		Type:         kind.Type,
		Status:       InitialStatus(kind),
		ExchangeRate: types.MustMoney("1"),
		DiscountType: DiscountPercent,
	}
	if kind.Domain == DomainPurchase {
		return &PurchaseDocument{Header: h}
	}
	return &SalesDocument{Header: h}
}

var (
	_ Document = (*SalesDocument)(nil)
	_ Document = (*PurchaseDocument)(nil)
)
