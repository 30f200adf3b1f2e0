package memory

import (
	"context"
	"sort"
	"strings"

	"smartbiz/internal/core/apperror"
	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/catalog"
)

// Catalog implements catalog.Reader over the shared DB. The Put methods are
// used by seeding and tests; the engine itself only reads.
type Catalog struct {
	db *DB
}

// NewCatalog creates the catalog store.
func NewCatalog(db *DB, settings catalog.Settings) *Catalog {
	_ = db.write(context.Background(), func(s *state) error {
		s.settings = settings
		return nil
	})
	return &Catalog{db: db}
}

var (
	_ catalog.Reader        = (*Catalog)(nil)
	_ catalog.Writer        = (*Catalog)(nil)
	_ catalog.ProductLister = (*Catalog)(nil)
)

func (c *Catalog) GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	var (
		p  catalog.Product
		ok bool
	)
	c.db.read(func(s *state) { p, ok = s.products[productID] })
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return &p, nil
}

func (c *Catalog) GetPartner(ctx context.Context, partnerID id.ID) (*catalog.Partner, error) {
	var (
		p  catalog.Partner
		ok bool
	)
	c.db.read(func(s *state) { p, ok = s.partners[partnerID] })
	if !ok {
		return nil, apperror.NewNotFound("partner", partnerID.String())
	}
	return &p, nil
}

func (c *Catalog) GetWarehouse(ctx context.Context, warehouseID id.ID) (*catalog.Warehouse, error) {
	var (
		w  catalog.Warehouse
		ok bool
	)
	c.db.read(func(s *state) { w, ok = s.warehouses[warehouseID] })
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return &w, nil
}

func (c *Catalog) Settings(ctx context.Context) (catalog.Settings, error) {
	var out catalog.Settings
	c.db.read(func(s *state) { out = s.settings })
	return out, nil
}

// PutProduct inserts or replaces a product. A nil ID is assigned.
func (c *Catalog) PutProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	if err := p.Validate(ctx); err != nil {
		return p, err
	}
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	return p, c.db.write(ctx, func(s *state) error {
		s.products[p.ID] = p
		return nil
	})
}

// PutPartner inserts or replaces a partner. A nil ID is assigned.
func (c *Catalog) PutPartner(ctx context.Context, p catalog.Partner) (catalog.Partner, error) {
	if err := p.Validate(ctx); err != nil {
		return p, err
	}
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	return p, c.db.write(ctx, func(s *state) error {
		s.partners[p.ID] = p
		return nil
	})
}

// PutWarehouse inserts or replaces a warehouse. A nil ID is assigned.
func (c *Catalog) PutWarehouse(ctx context.Context, w catalog.Warehouse) (catalog.Warehouse, error) {
	if err := w.Validate(ctx); err != nil {
		return w, err
	}
	if id.IsNil(w.ID) {
		w.ID = id.New()
	}
	return w, c.db.write(ctx, func(s *state) error {
		s.warehouses[w.ID] = w
		return nil
	})
}

// DeleteProduct removes a product. Documents keep their snapshots.
func (c *Catalog) DeleteProduct(ctx context.Context, productID id.ID) error {
	return c.db.write(ctx, func(s *state) error {
		delete(s.products, productID)
		return nil
	})
}

// ListProducts returns products whose name or code contains search,
// ordered by name.
func (c *Catalog) ListProducts(ctx context.Context, search string, limit, offset int) ([]catalog.Product, error) {
	needle := strings.ToLower(search)
	var out []catalog.Product
	c.db.read(func(s *state) {
		for _, p := range s.products {
			if needle == "" ||
				strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Code), needle) {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})

	if offset >= len(out) {
		return []catalog.Product{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
