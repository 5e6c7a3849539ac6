package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/money"
)

type createCartRequest struct {
	Currency string `json:"currency" validate:"required,len=3,uppercase"`
}

type addItemRequest struct {
	ProductID      string            `json:"productId" validate:"required"`
	Quantity       int               `json:"quantity" validate:"required,gt=0"`
	Customizations map[string]string `json:"customizations,omitempty"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

type setShippingRequest struct {
	ID            string          `json:"id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Carrier       string          `json:"carrier"`
	EstimatedDays int             `json:"estimatedDays" validate:"gte=0"`
	Price         decimal.Decimal `json:"price"`
	CarbonNeutral bool            `json:"carbonNeutral"`
}

// setTaxRequest carries either a flat amount or a percentage rate.
type setTaxRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
}

// CreateCart handles POST /api/carts.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.Create(r.Context(), req.Currency)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"data": c})
}

// GetCart handles GET /api/carts/{cartID}. Expired carts remain readable.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// AddItem handles POST /api/carts/{cartID}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.AddItem(r.Context(), chi.URLParam(r, "cartID"), req.ProductID, req.Quantity, req.Customizations)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// UpdateItem handles PATCH /api/carts/{cartID}/items/{itemID}. A quantity of
// zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.UpdateItemQuantity(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// RemoveItem handles DELETE /api/carts/{cartID}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// ApplyDiscount handles POST /api/carts/{cartID}/discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.ApplyDiscount(r.Context(), chi.URLParam(r, "cartID"), req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// RemoveDiscount handles DELETE /api/carts/{cartID}/discount.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveDiscount(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// SetShipping handles PUT /api/carts/{cartID}/shipping. The shipping option
// is resolved upstream; the engine only folds its price into the total.
func (h *Handler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req setShippingRequest
	if !h.decode(w, r, &req) {
		return
	}

	cartID := chi.URLParam(r, "cartID")
	existing, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	opt := cart.ShippingOption{
		ID:            req.ID,
		Name:          req.Name,
		Carrier:       req.Carrier,
		EstimatedDays: req.EstimatedDays,
		Price:         money.New(req.Price, existing.Currency),
		CarbonNeutral: req.CarbonNeutral,
	}
	c, err := h.carts.SetShipping(r.Context(), cartID, opt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// SetTax handles PUT /api/carts/{cartID}/tax. Exactly one of amount or rate
// must be set; a rate is re-derived from the discounted subtotal on every
// later mutation, a flat amount is kept as-is.
func (h *Handler) SetTax(w http.ResponseWriter, r *http.Request) {
	var req setTaxRequest
	if !h.decode(w, r, &req) {
		return
	}
	if (req.Amount == nil) == (req.Rate == nil) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "exactly one of amount or rate is required", nil)
		return
	}

	cartID := chi.URLParam(r, "cartID")
	var (
		c   *cart.Cart
		err error
	)
	if req.Rate != nil {
		c, err = h.carts.SetTaxRate(r.Context(), cartID, *req.Rate)
	} else {
		existing, getErr := h.carts.Get(r.Context(), cartID)
		if getErr != nil {
			writeDomainError(w, getErr)
			return
		}
		c, err = h.carts.SetTax(r.Context(), cartID, money.New(*req.Amount, existing.Currency))
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": c})
}

// decode parses and validates a JSON request body. It writes the error
// response itself and reports whether the caller should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var details []map[string]string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details = append(details, map[string]string{
					"field": fe.Field(),
					"rule":  fe.Tag(),
				})
			}
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request body failed validation", details)
		return false
	}
	return true
}
