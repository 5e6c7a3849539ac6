package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/product"
)

type staticRepo struct {
	products []product.Product
}

func (r *staticRepo) List(_ context.Context) ([]product.Product, error) {
	return r.products, nil
}

func (r *staticRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	dec := decimal.RequireFromString(v)
	return &dec
}

func testCatalog() *Service {
	return NewService(&staticRepo{products: []product.Product{
		{
			ID: "box", Category: "boxes", Status: product.StatusPublished,
			Price:          money.MustParse("1.00", "USD"),
			Tags:           []string{"recycled", "bestseller"},
			Inventory:      product.Inventory{Available: 100},
			Sustainability: product.Sustainability{Recyclability: product.Recyclability{Percentage: d("95")}},
		},
		{
			ID: "mailer", Category: "mailers", Status: product.StatusPublished,
			Price:          money.MustParse("0.45", "USD"),
			Tags:           []string{"compostable"},
			Inventory:      product.Inventory{Available: 10, Reserved: 10},
			Sustainability: product.Sustainability{Recyclability: product.Recyclability{Percentage: d("40")}},
		},
		{
			ID: "prototype", Category: "boxes", Status: product.StatusDraft,
			Price: money.MustParse("9.99", "USD"),
		},
	}})
}

func TestListExcludesUnpublished(t *testing.T) {
	got, err := testCatalog().List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "by category", filter: Filter{Categories: []string{"boxes"}}, want: []string{"box"}},
		{name: "by price max", filter: Filter{PriceMax: dp("0.50")}, want: []string{"mailer"}},
		{name: "by price min", filter: Filter{PriceMin: dp("0.50")}, want: []string{"box"}},
		{name: "by min recyclability", filter: Filter{MinRecyclability: dp("90")}, want: []string{"box"}},
		{name: "in stock only", filter: Filter{InStock: true}, want: []string{"box"}},
		{name: "by tag", filter: Filter{Tags: []string{"compostable"}}, want: []string{"mailer"}},
		{name: "no match", filter: Filter{Categories: []string{"labels"}}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testCatalog().List(context.Background(), tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}
		})
	}
}

func TestGetUnpublishedHidden(t *testing.T) {
	_, err := testCatalog().Get(context.Background(), "prototype")
	assert.ErrorIs(t, err, product.ErrNotFound)

	got, err := testCatalog().Get(context.Background(), "box")
	require.NoError(t, err)
	assert.Equal(t, "box", got.ID)
}
