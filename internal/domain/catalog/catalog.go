// Package catalog provides browse access to the product catalog: published
// products only, optionally narrowed by filter criteria.
package catalog

import (
	"context"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/product"
)

// Filter narrows a product listing. Zero-valued fields do not constrain.
type Filter struct {
	Categories       []string
	PriceMin         *decimal.Decimal
	PriceMax         *decimal.Decimal
	MinRecyclability *decimal.Decimal
	InStock          bool
	Tags             []string
}

// Match reports whether a product satisfies every set criterion.
func (f Filter) Match(p product.Product) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if f.PriceMin != nil && p.Price.Amount.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.Amount.GreaterThan(*f.PriceMax) {
		return false
	}
	if f.MinRecyclability != nil && p.Sustainability.Recyclability.Percentage.LessThan(*f.MinRecyclability) {
		return false
	}
	if f.InStock && p.Inventory.Sellable() == 0 {
		return false
	}
	for _, tag := range f.Tags {
		if !slices.Contains(p.Tags, tag) {
			return false
		}
	}
	return true
}

// Service exposes catalog reads over the product repository.
type Service struct {
	products product.Repository
}

// NewService creates a catalog Service.
func NewService(products product.Repository) *Service {
	return &Service{products: products}
}

// List returns published products matching the filter, in repository order.
func (s *Service) List(ctx context.Context, f Filter) ([]product.Product, error) {
	all, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	out := make([]product.Product, 0, len(all))
	for _, p := range all {
		if p.Status != product.StatusPublished {
			continue
		}
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Get returns a single published product by id.
func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != product.StatusPublished {
		return nil, product.ErrNotFound
	}
	return p, nil
}
