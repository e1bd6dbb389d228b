package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floravia/storefront/internal/promo"
)

const getPromoByCodeSQL = `SELECT code, discount_percent, valid_from, valid_to, active
	FROM promo_codes WHERE UPPER(code) = UPPER($1)`

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode looks up a promo code case-insensitively. The activation flag
// and validity window are returned as stored; validating them against "now"
// is the resolver's job. Returns promo.ErrNotFound when no record matches.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Code, error) {
	rows, err := r.pool.Query(ctx, getPromoByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promo code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanPromoCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, fmt.Errorf("finding promo code %q: %w", code, err)
	}
	return &c, nil
}

func scanPromoCode(row pgx.CollectableRow) (promo.Code, error) {
	var c promo.Code
	err := row.Scan(&c.Code, &c.DiscountPercent, &c.ValidFrom, &c.ValidTo, &c.Active)
	return c, err
}
