package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/ecopack/cartengine/internal/domain/cart"
	"github.com/ecopack/cartengine/internal/domain/money"
	"github.com/ecopack/cartengine/internal/domain/order"
	"github.com/ecopack/cartengine/internal/domain/pricing"
	"github.com/ecopack/cartengine/internal/domain/product"
	"github.com/ecopack/cartengine/internal/domain/promotion"
)

// ErrorBody is the canonical error payload shape.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes an error response using the canonical error shape.
func respondError(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, map[string]any{
		"error": ErrorBody{Code: code, Message: message, Details: details},
	})
}

// writeDomainError maps domain errors onto HTTP statuses and stable codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		expired     *cart.ExpiredError
		itemMissing *cart.ItemNotFoundError
		dupDiscount *cart.DiscountAlreadyAppliedError
		belowMin    *pricing.QuantityBelowMinimumError
		badOption   *pricing.UnknownCustomizationError
		mismatch    *money.CurrencyMismatchError
	)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		respondError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, product.ErrNotFound):
		respondError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
	case errors.As(err, &itemMissing):
		respondError(w, http.StatusNotFound, "ITEM_NOT_FOUND", err.Error(), map[string]any{
			"itemId": itemMissing.ItemID,
		})
	case errors.As(err, &expired):
		respondError(w, http.StatusConflict, "CART_EXPIRED", err.Error(), map[string]any{
			"expiresAt": expired.ExpiresAt,
		})
	case errors.As(err, &dupDiscount):
		respondError(w, http.StatusConflict, "DISCOUNT_ALREADY_APPLIED", err.Error(), map[string]any{
			"existingCode": dupDiscount.Existing,
		})
	case errors.As(err, &belowMin):
		respondError(w, http.StatusUnprocessableEntity, "QUANTITY_BELOW_MINIMUM", err.Error(), map[string]any{
			"productId":       belowMin.ProductID,
			"minimumQuantity": belowMin.Minimum,
		})
	case errors.As(err, &badOption):
		respondError(w, http.StatusUnprocessableEntity, "UNKNOWN_CUSTOMIZATION", err.Error(), nil)
	case errors.As(err, &mismatch):
		respondError(w, http.StatusBadRequest, "CURRENCY_MISMATCH", err.Error(), nil)
	case errors.Is(err, promotion.ErrInvalidCode):
		respondError(w, http.StatusUnprocessableEntity, "INVALID_PROMO_CODE", "promotion code is not valid for this cart", nil)
	case errors.Is(err, promotion.ErrExpired):
		respondError(w, http.StatusUnprocessableEntity, "PROMO_EXPIRED", "promotion is no longer active", nil)
	case errors.Is(err, promotion.ErrUsageLimitReached):
		respondError(w, http.StatusUnprocessableEntity, "PROMO_USAGE_LIMIT", "promotion usage limit reached", nil)
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "EMPTY_CART", "cart has no items", nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
