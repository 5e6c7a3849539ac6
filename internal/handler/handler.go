// Package handler exposes the cart engine over HTTP with a chi router.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/catalog"
	"github.com/ecopack/cartengine/internal/domain/order"
)

// Handler bundles the HTTP endpoints over the domain services.
type Handler struct {
	carts    *cart.Service
	orders   *order.Service
	catalog  *catalog.Service
	validate *validator.Validate
}

// New constructs a Handler over the given services.
func New(carts *cart.Service, orders *order.Service, cat *catalog.Service) *Handler {
	return &Handler{
		carts:    carts,
		orders:   orders,
		catalog:  cat,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes mounts all API endpoints on a fresh chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.CreateCart)
			r.Route("/{cartID}", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/items", h.AddItem)
				r.Patch("/items/{itemID}", h.UpdateItem)
				r.Delete("/items/{itemID}", h.RemoveItem)
				r.Post("/discount", h.ApplyDiscount)
				r.Delete("/discount", h.RemoveDiscount)
				r.Put("/shipping", h.SetShipping)
				r.Put("/tax", h.SetTax)
				r.Post("/checkout", h.Checkout)
			})
		})
	})

	return r
}
