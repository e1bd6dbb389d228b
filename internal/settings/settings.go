// Package settings holds the singleton shop configuration: scheduling
// tables, fees, and contact details. The record is edited by administrators
// and read-mostly at request time, so reads go through an atomic cache that
// is swapped wholesale on invalidation.
package settings

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/floravia/storefront/internal/schedule"
)

// Settings is an immutable snapshot of the shop configuration. Components
// receive it by value per call; there is no ambient configuration state.
type Settings struct {
	ShopName string

	Hours schedule.Config

	// DeliveryCost is the flat city delivery fee; pickup orders pay zero.
	DeliveryCost decimal.Decimal
	// CustomImagePrice is the site-wide fee for a custom postcard image.
	CustomImagePrice decimal.Decimal

	PickupAddress string
	ContactPhone  string
}

// Repository loads the singleton settings record.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
}
