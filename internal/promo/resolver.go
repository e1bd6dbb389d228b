package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Resolver validates promo codes against the repository and the current time.
type Resolver struct {
	repo Repository
}

// NewResolver creates a Resolver backed by the given Repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve looks up code and checks it is active and valid at now. It is a
// pure read with no side effects. Every failed resolution collapses to
// ErrNotFound; infrastructure errors are wrapped and passed through.
func (r *Resolver) Resolve(ctx context.Context, code string, now time.Time) (*Code, error) {
	c, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}

	if !c.ValidAt(now) {
		return nil, ErrNotFound
	}
	return c, nil
}
