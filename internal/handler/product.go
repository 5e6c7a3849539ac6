package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/catalog"
)

// ListProducts handles GET /api/products. Filter criteria come from query
// parameters; unset parameters do not constrain the listing.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_FILTER", err.Error(), nil)
		return
	}

	products, err := h.catalog.List(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": products})
}

// GetProduct handles GET /api/products/{productID}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": p})
}

func filterFromQuery(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		InStock: q.Get("inStock") == "true",
	}
	if v := q.Get("category"); v != "" {
		f.Categories = strings.Split(v, ",")
	}
	if v := q.Get("tags"); v != "" {
		f.Tags = strings.Split(v, ",")
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"priceMin", &f.PriceMin},
		{"priceMax", &f.PriceMax},
		{"minRecyclability", &f.MinRecyclability},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return catalog.Filter{}, err
		}
		*p.dst = &d
	}
	return f, nil
}
