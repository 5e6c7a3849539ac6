package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Checkout handles POST /api/carts/{cartID}/checkout. On success the cart is
// consumed and the immutable order, including its sustainability report, is
// returned.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Checkout(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": o})
}
