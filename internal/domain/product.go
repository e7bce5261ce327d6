package domain

import (
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Stock       int       `json:"stock" db:"stock"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SuggestedCategories is the category list offered to users when filling in a product.
// The server accepts any non-blank category.
var SuggestedCategories = []string{
	"Electronics",
	"Fashion",
	"Home",
	"Sports",
	"Books",
	"Other",
}

// ProductInput carries the fields of a create or update request.
// A nil field was not supplied by the caller.
type ProductInput struct {
	Name        *string  `json:"name,omitempty" validate:"required,notblank,max=255"`
	Price       *float64 `json:"price,omitempty" validate:"required,gt=0,lte=9999999999999.99"`
	Category    *string  `json:"category,omitempty" validate:"required,notblank,max=100"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	Description *string  `json:"description,omitempty"`
}

// NewProduct builds a product from a validated create input, applying defaults.
func (in ProductInput) NewProduct() *Product {
	product := &Product{}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	return product
}

// ApplyTo merges the supplied fields into product. Omitted or blank text fields
// keep the stored value.
func (in ProductInput) ApplyTo(product *Product) {
	if in.Name != nil && *in.Name != "" {
		product.Name = *in.Name
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Category != nil && *in.Category != "" {
		product.Category = *in.Category
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Description != nil && *in.Description != "" {
		product.Description = *in.Description
	}
}
