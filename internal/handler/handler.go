// Package handler exposes the storefront core over JSON HTTP: slot queries,
// the ASAP availability check, the catalog listing, promo validation, and
// order placement.
package handler

import (
	"net/http"
	"time"

	"github.com/floravia/storefront/internal/catalog"
	"github.com/floravia/storefront/internal/checkout"
	"github.com/floravia/storefront/internal/promo"
)

// Handler serves the storefront API, delegating business logic to the
// injected domain services.
type Handler struct {
	products catalog.Repository
	promos   *promo.Resolver
	checkout *checkout.Service
	settings checkout.SettingsSource
	now      func() time.Time
}

// New constructs a Handler. now supplies the wall-clock time for slot and
// promo queries; pass time.Now in production wiring.
func New(
	products catalog.Repository,
	promos *promo.Resolver,
	checkoutSvc *checkout.Service,
	settings checkout.SettingsSource,
	now func() time.Time,
) *Handler {
	return &Handler{
		products: products,
		promos:   promos,
		checkout: checkoutSvc,
		settings: settings,
		now:      now,
	}
}

// Register mounts all API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/slots", h.Slots)
	mux.HandleFunc("GET /api/availability", h.Availability)
	mux.HandleFunc("GET /api/products", h.Products)
	mux.HandleFunc("POST /api/promo/validate", h.ValidatePromo)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
}
