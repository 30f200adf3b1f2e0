package catalog

import (
	"context"

	"smartbiz/internal/core/id"
)

// Writer maintains catalog entries for the admin API. The document engine
// only reads the catalog. Put assigns an id when the entry has none.
type Writer interface {
	PutProduct(ctx context.Context, p Product) (Product, error)
	PutPartner(ctx context.Context, p Partner) (Partner, error)
	PutWarehouse(ctx context.Context, w Warehouse) (Warehouse, error)
	DeleteProduct(ctx context.Context, productID id.ID) error
}

// ProductLister backs the product search of the admin API.
type ProductLister interface {
	ListProducts(ctx context.Context, search string, limit, offset int) ([]Product, error)
}
