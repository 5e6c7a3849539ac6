package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecopack/cartengine/internal/domain/promotion"
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode looks up a promotion by its code, case-insensitively. Returns
// promotion.ErrInvalidCode when no matching promotion exists.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Rule, error) {
	var (
		rule       promotion.Rule
		kind       string
		validFrom  *time.Time
		validUntil *time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT code, type, value, currency, min_items, description,
		       valid_from, valid_until, max_uses, uses
		FROM promotions
		WHERE code = UPPER($1)`, code).
		Scan(&rule.Code, &kind, &rule.Value, &rule.Currency, &rule.MinItems,
			&rule.Description, &validFrom, &validUntil, &rule.MaxUses, &rule.Uses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	rule.Type = promotion.Type(kind)
	rule.ValidFrom = validFrom
	rule.ValidUntil = validUntil
	return &rule, nil
}

// IncrementUses bumps the use counter for a code. The usage cap is enforced
// in the same statement so concurrent applications cannot overshoot it.
func (r *PromotionRepository) IncrementUses(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE promotions
		SET uses = uses + 1
		WHERE code = UPPER($1)
		  AND (max_uses = 0 OR uses < max_uses)`, code)
	if err != nil {
		return fmt.Errorf("incrementing uses for %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrUsageLimitReached
	}
	return nil
}

// Upsert inserts or replaces a promotion rule. Used by the seeding and
// ingestion tools.
func (r *PromotionRepository) Upsert(ctx context.Context, rule *promotion.Rule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO promotions (code, type, value, currency, min_items, description,
		                        valid_from, valid_until, max_uses, uses)
		VALUES (UPPER($1), $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE
		SET type = EXCLUDED.type,
		    value = EXCLUDED.value,
		    currency = EXCLUDED.currency,
		    min_items = EXCLUDED.min_items,
		    description = EXCLUDED.description,
		    valid_from = EXCLUDED.valid_from,
		    valid_until = EXCLUDED.valid_until,
		    max_uses = EXCLUDED.max_uses`,
		rule.Code, string(rule.Type), rule.Value, rule.Currency, rule.MinItems,
		rule.Description, rule.ValidFrom, rule.ValidUntil, rule.MaxUses, rule.Uses)
	if err != nil {
		return fmt.Errorf("upserting promotion %q: %w", rule.Code, err)
	}
	return nil
}
