package entity

import (
	"context"

	"smartbiz/internal/core/apperror"
)

// Catalog is the base type for reference data: products, partners, warehouses.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (SKU, partner code)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
