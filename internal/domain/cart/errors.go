package cart

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested cart does not exist.
var ErrNotFound = errors.New("cart not found")

// ExpiredError indicates a mutation attempted on a cart past its expiry.
// The cart is left untouched.
type ExpiredError struct {
	CartID    string
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("cart %s expired at %s", e.CartID, e.ExpiresAt.Format(time.RFC3339))
}

// ItemNotFoundError indicates an update or removal referencing an unknown
// line item.
type ItemNotFoundError struct {
	CartID string
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s not found in cart %s", e.ItemID, e.CartID)
}

// DiscountAlreadyAppliedError indicates an attempt to apply a second
// discount. The existing discount must be removed first.
type DiscountAlreadyAppliedError struct {
	CartID    string
	Existing  string
	Attempted string
}

func (e *DiscountAlreadyAppliedError) Error() string {
	return fmt.Sprintf("cart %s already has discount %s applied (attempted %s)",
		e.CartID, e.Existing, e.Attempted)
}
