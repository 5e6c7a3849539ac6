// Package promotion validates promotion codes and computes discount amounts.
// The cart engine itself only applies already-validated discounts; the
// Validator is the promotion collaborator boundary.
package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ecopack/cartengine/internal/domain/money"
)

// Type enumerates the supported discount variants.
type Type string

const (
	// TypePercentage reduces the subtotal by a rate in [0, 100].
	TypePercentage Type = "percentage"
	// TypeFixed reduces the subtotal by a flat amount, clamped to the subtotal.
	TypeFixed Type = "fixed"
)

var (
	// ErrInvalidCode is returned when a promotion code is not found or the
	// cart does not satisfy the promotion's minimum item requirement.
	ErrInvalidCode = errors.New("invalid promotion code")
	// ErrExpired is returned when a promotion is outside its valid time window.
	ErrExpired = errors.New("promotion expired")
	// ErrUsageLimitReached is returned when a promotion has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
	// ErrInvalidRate is returned when a percentage rate falls outside [0, 100].
	ErrInvalidRate = errors.New("percentage rate outside [0, 100]")
)

// Rule is a stored promotion definition with its eligibility constraints.
type Rule struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	Currency    string
	MinItems    int
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Discount is a validated discount descriptor: either a percentage rate or a
// fixed amount, ready to be applied to a cart subtotal.
type Discount struct {
	Code        string          `json:"code"`
	Type        Type            `json:"type"`
	Rate        decimal.Decimal `json:"rate,omitempty"`
	Amount      money.Money     `json:"amount,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Repository provides lookup and mutation of promotion rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
