package catalog_repo

import (
	"context"

	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/catalog"
	"smartbiz/internal/infrastructure/storage/postgres"
)

const (
	productTable   = "cat_products"
	partnerTable   = "cat_partners"
	warehouseTable = "cat_warehouses"
)

// Repo is the PostgreSQL catalog. Settings come from configuration, not the
// database.
type Repo struct {
	products   *BaseCatalogRepo[catalog.Product]
	partners   *BaseCatalogRepo[catalog.Partner]
	warehouses *BaseCatalogRepo[catalog.Warehouse]
	settings   catalog.Settings
}

var (
	_ catalog.Reader        = (*Repo)(nil)
	_ catalog.Writer        = (*Repo)(nil)
	_ catalog.ProductLister = (*Repo)(nil)
)

// New creates the catalog repository.
func New(txManager *postgres.TxManager, settings catalog.Settings) *Repo {
	return &Repo{
		products:   NewBaseCatalogRepo[catalog.Product](txManager, productTable, "product"),
		partners:   NewBaseCatalogRepo[catalog.Partner](txManager, partnerTable, "partner"),
		warehouses: NewBaseCatalogRepo[catalog.Warehouse](txManager, warehouseTable, "warehouse"),
		settings:   settings,
	}
}

func (r *Repo) GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	return r.products.GetByID(ctx, productID)
}

func (r *Repo) GetPartner(ctx context.Context, partnerID id.ID) (*catalog.Partner, error) {
	return r.partners.GetByID(ctx, partnerID)
}

func (r *Repo) GetWarehouse(ctx context.Context, warehouseID id.ID) (*catalog.Warehouse, error) {
	return r.warehouses.GetByID(ctx, warehouseID)
}

func (r *Repo) Settings(ctx context.Context) (catalog.Settings, error) {
	return r.settings, nil
}

// PutProduct validates and stores a product.
func (r *Repo) PutProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if err := p.Validate(ctx); err != nil {
		return p, err
	}
	err := put(ctx, r.products, &p, &p.BaseEntity)
	return p, err
}

// PutPartner validates and stores a partner.
func (r *Repo) PutPartner(ctx context.Context, p catalog.Partner) (catalog.Partner, error) {
	if err := p.Validate(ctx); err != nil {
		return p, err
	}
	err := put(ctx, r.partners, &p, &p.BaseEntity)
	return p, err
}

// PutWarehouse validates and stores a warehouse.
func (r *Repo) PutWarehouse(ctx context.Context, w catalog.Warehouse) (catalog.Warehouse, error) {
	if err := w.Validate(ctx); err != nil {
		return w, err
	}
	err := put(ctx, r.warehouses, &w, &w.BaseEntity)
	return w, err
}

// DeleteProduct removes a product.
func (r *Repo) DeleteProduct(ctx context.Context, productID id.ID) error {
	return r.products.Delete(ctx, productID)
}

// ListProducts returns products whose name or code contains search.
func (r *Repo) ListProducts(ctx context.Context, search string, limit, offset int) ([]catalog.Product, error) {
	return r.products.List(ctx, search, limit, offset)
}

func put[T any](ctx context.Context, repo *BaseCatalogRepo[T], v *T, base *entity.BaseEntity) error {
	if id.IsNil(base.ID) {
		base.ID = id.New()
	}
	if base.Version == 0 {
		base.Version = 1
	}
	version, err := repo.Upsert(ctx, v)
	if err != nil {
		return err
	}
	base.SetVersion(version)
	return nil
}
