// Package promo implements promo-code resolution: a code string is matched
// case-insensitively against stored records and validated against the
// activation flag and the time-bounded validity window.
package promo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is the single outcome for every failed resolution: unknown
// code, deactivated code, or a code outside its validity window. Callers
// cannot distinguish the three cases; the storefront shows one uniform
// "code not found, expired or inactive" message.
var ErrNotFound = errors.New("promo code not found")

// Code is a percentage-discount token managed by the shop administrators.
// This package only reads codes; creation and editing happen elsewhere.
type Code struct {
	Code            string
	DiscountPercent int
	ValidFrom       time.Time
	ValidTo         time.Time
	Active          bool
}

// ValidAt reports whether the code is active and now falls inside the
// validity window. Both window ends are inclusive.
func (c *Code) ValidAt(now time.Time) bool {
	return c.Active && !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// Repository provides case-insensitive lookup of promo codes. It returns
// ErrNotFound when no record matches; activation and window checks are the
// resolver's job.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Code, error)
}
