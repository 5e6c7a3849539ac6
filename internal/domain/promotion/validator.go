package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Validator validates a promotion code against the current cart state and
// returns an applicable discount descriptor. Consume records one use of a
// code; callers invoke it only after the cart has accepted the discount, so
// a rejected application never burns a use.
type Validator interface {
	Validate(ctx context.Context, code string, currency string, totalQuantity int) (*Discount, error)
	Consume(ctx context.Context, code string) error
}

// RepoValidator implements Validator by looking up promotion rules from a
// Repository and checking their eligibility constraints.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the rule for the given code, checks temporal validity,
// usage limits, and the minimum item count, and returns the discount
// descriptor for the cart currency. It does not touch the usage counter.
func (v *RepoValidator) Validate(ctx context.Context, code, currency string, totalQuantity int) (*Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup promotion")
	}

	now := v.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	if rule.MinItems > 0 && totalQuantity < rule.MinItems {
		return nil, ErrInvalidCode
	}

	d := descriptor(rule, currency)
	return &d, nil
}

// Consume increments the usage counter for the given code.
func (v *RepoValidator) Consume(ctx context.Context, code string) error {
	if err := v.repo.IncrementUses(ctx, code); err != nil {
		return errors.Wrap(err, "increment promotion uses")
	}
	return nil
}
