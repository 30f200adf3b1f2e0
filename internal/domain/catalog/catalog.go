// Package catalog defines the read-only reference data the document engine
// snapshots into documents: products, partners, warehouses and tax settings.
package catalog

//go:generate mockgen -source=catalog.go -destination=catalog_mock.go -package=catalog

import (
	"context"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods    ProductType = "goods"
	TypeMaterial ProductType = "material"
	TypeService  ProductType = "service"
	TypeWork     ProductType = "work"
)

// Product is a catalog item that can appear on a document line.
type Product struct {
	entity.Catalog

	Type ProductType `db:"type" json:"type"`

	// Unit is a display label ("pcs", "kg")
	Unit string `db:"unit" json:"unit,omitempty"`

	// Price is the sales price in base currency
	Price types.Money `db:"price" json:"price"`

	// Cost is the purchase cost in base currency
	Cost types.Money `db:"cost" json:"cost"`
}

// IsPhysical returns true if the item has physical presence (not a service).
func (p *Product) IsPhysical() bool {
	return p.Type != TypeService && p.Type != TypeWork
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch p.Type {
	case TypeGoods, TypeMaterial, TypeService, TypeWork:
	default:
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return apperror.NewValidation("price and cost must not be negative")
	}
	return nil
}

// PartnerRole says on which side of the business a partner appears.
type PartnerRole string

const (
	RoleClient   PartnerRole = "client"
	RoleSupplier PartnerRole = "supplier"
	RoleBoth     PartnerRole = "both"
)

// Partner is a client or supplier.
type Partner struct {
	entity.Catalog

	Role  PartnerRole `db:"role" json:"role"`
	Email string      `db:"email" json:"email,omitempty"`
	Phone string      `db:"phone" json:"phone,omitempty"`
}

// Validate implements entity.Validatable.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch p.Role {
	case RoleClient, RoleSupplier, RoleBoth:
		return nil
	}
	return apperror.NewValidation("invalid partner role").
		WithDetail("field", "role").
		WithDetail("value", string(p.Role))
}

// IsClient reports whether the partner may appear on sales documents.
func (p *Partner) IsClient() bool { return p.Role == RoleClient || p.Role == RoleBoth }

// IsSupplier reports whether the partner may appear on purchase documents.
func (p *Partner) IsSupplier() bool { return p.Role == RoleSupplier || p.Role == RoleBoth }

// Warehouse is a storage location.
type Warehouse struct {
	entity.Catalog

	IsActive bool `db:"is_active" json:"isActive"`

	// AllowNegativeStock overrides the global negative stock policy
	AllowNegativeStock bool `db:"allow_negative_stock" json:"allowNegativeStock"`
}

// CanMoveStock returns true if the warehouse accepts movements.
func (w *Warehouse) CanMoveStock() bool {
	return w.IsActive
}

// Settings is the tax and currency configuration.
type Settings struct {
	BaseCurrency       string      `json:"baseCurrency"`
	DefaultTaxRate     types.Money `json:"defaultTaxRate"`
	DefaultFiscalStamp types.Money `json:"defaultFiscalStamp"`
}

// Products looks up products by id.
type Products interface {
	GetProduct(ctx context.Context, productID id.ID) (*Product, error)
}

// Partners looks up clients and suppliers by id.
type Partners interface {
	GetPartner(ctx context.Context, partnerID id.ID) (*Partner, error)
}

// Warehouses looks up warehouses by id.
type Warehouses interface {
	GetWarehouse(ctx context.Context, warehouseID id.ID) (*Warehouse, error)
}

// SettingsProvider returns the current tax and currency configuration.
type SettingsProvider interface {
	Settings(ctx context.Context) (Settings, error)
}

// Reader bundles every lookup the document engine needs.
type Reader interface {
	Products
	Partners
	Warehouses
	SettingsProvider
}
