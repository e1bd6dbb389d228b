// Package checkout places orders: it validates the cart and the chosen
// fulfillment window, resolves the promo code, snapshots all prices through
// the pricing pipeline, and persists the result.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/floravia/storefront/internal/catalog"
	"github.com/floravia/storefront/internal/pricing"
	"github.com/floravia/storefront/internal/promo"
	"github.com/floravia/storefront/internal/schedule"
	"github.com/floravia/storefront/internal/settings"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = errors.New("items required")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// ProductUnavailableError indicates a product exists but cannot be ordered.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available for order", e.ProductID)
}

// SlotUnavailableError indicates the chosen time window is not currently
// offered for the requested date and mode.
type SlotUnavailableError struct {
	Date  string
	Label string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %q is not available on %s", e.Label, e.Date)
}

// ClosedError indicates an ASAP order was placed while the shop cannot take
// one, carrying the availability reason.
type ClosedError struct {
	Reason string
}

func (e *ClosedError) Error() string {
	return "shop is not taking orders right now: " + e.Reason
}

// SettingsSource yields the current shop settings snapshot. Satisfied by
// both settings.Repository and the read-mostly settings.Cache.
type SettingsSource interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	Items       []ItemRequest
	Fulfillment Fulfillment
	Customer    Customer

	PromoCode       string
	PostcardID      string
	PostcardText    string
	WithCustomImage bool
}

// ItemRequest is an unpriced cart line; the service prices it from the
// catalog server-side.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// Service encapsulates order placement business logic.
type Service struct {
	products  catalog.Repository
	postcards catalog.PostcardRepository
	promos    *promo.Resolver
	settings  SettingsSource
	orders    Repository
	now       func() time.Time
}

// NewService creates a checkout Service. now supplies the wall-clock time
// and exists so tests can pin it; pass time.Now in production wiring.
func NewService(
	products catalog.Repository,
	postcards catalog.PostcardRepository,
	promos *promo.Resolver,
	settings SettingsSource,
	orders Repository,
	now func() time.Time,
) *Service {
	return &Service{
		products:  products,
		postcards: postcards,
		promos:    promos,
		settings:  settings,
		orders:    orders,
		now:       now,
	}
}

// PlaceOrder validates the cart and fulfillment choice, prices the order,
// and persists it. The returned order carries the pricing snapshot exactly
// as stored.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load settings")
	}

	loc, err := st.Hours.Location()
	if err != nil {
		return nil, err
	}
	now := s.now().In(loc)

	if err := s.checkFulfillment(req.Fulfillment, st, now); err != nil {
		return nil, err
	}

	// Batch fetch all products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	productMap := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		productMap[p.ID] = p
	}

	orderItems := make([]OrderItem, len(req.Items))
	lineItems := make([]pricing.LineItem, len(req.Items))
	for i, item := range req.Items {
		p, ok := productMap[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		if !p.Available {
			return nil, &ProductUnavailableError{ProductID: item.ProductID}
		}
		orderItems[i] = OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
		}
		lineItems[i] = pricing.LineItem{UnitPrice: p.Price, Quantity: item.Quantity}
	}

	// Resolve the promo code to a discount percent when one is provided.
	discountPercent := 0
	if req.PromoCode != "" {
		code, err := s.promos.Resolve(ctx, req.PromoCode, now)
		if err != nil {
			return nil, errors.Wrap(err, "resolve promo code")
		}
		discountPercent = code.DiscountPercent
	}

	// Delivery fee is flat per mode: the configured city rate for courier
	// delivery, nothing for pickup.
	deliveryFee := decimal.Zero
	if req.Fulfillment.Mode == schedule.ModeDelivery {
		deliveryFee = st.DeliveryCost
	}

	postcardFee, err := s.postcardFee(ctx, req, st)
	if err != nil {
		return nil, err
	}

	snapshot := pricing.Compose(lineItems, discountPercent, deliveryFee, postcardFee)
	if snapshot.Total.IsNegative() {
		zctx.From(ctx).Warn("order total is negative, check promo configuration",
			zap.String("promo_code", req.PromoCode),
			zap.Int("discount_percent", discountPercent),
			zap.String("total", snapshot.Total.String()),
		)
	}

	o := &Order{
		ID:              uuid.New().String(),
		Status:          StatusCreated,
		Customer:        req.Customer,
		Fulfillment:     req.Fulfillment,
		Items:           orderItems,
		PromoCode:       req.PromoCode,
		PostcardID:      req.PostcardID,
		PostcardText:    req.PostcardText,
		WithCustomImage: req.WithCustomImage,
		Pricing:         snapshot,
		CreatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// checkFulfillment verifies the order can actually be handed over as
// requested: ASAP orders require the shop to be open, scheduled orders
// require the chosen window to be among the currently offered slots.
func (s *Service) checkFulfillment(f Fulfillment, st *settings.Settings, now time.Time) error {
	if _, err := schedule.ParseMode(string(f.Mode)); err != nil {
		return err
	}

	if f.ASAP {
		av := schedule.CheckOpen(f.Mode, &st.Hours, now)
		if !av.Open {
			return &ClosedError{Reason: av.Reason}
		}
		return nil
	}

	slots, err := schedule.Generate(f.Date, f.Mode, &st.Hours, now)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot.Label == f.SlotLabel {
			return nil
		}
	}
	return &SlotUnavailableError{Date: f.Date, Label: f.SlotLabel}
}

// postcardFee snapshots the postcard add-on price at order-creation time.
func (s *Service) postcardFee(ctx context.Context, req PlaceOrderRequest, st *settings.Settings) (decimal.Decimal, error) {
	var catalogPrice *decimal.Decimal
	if req.PostcardID != "" {
		pc, err := s.postcards.GetByID(ctx, req.PostcardID)
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "get postcard %s", req.PostcardID)
		}
		catalogPrice = &pc.Price
	}
	return pricing.PostcardFee(req.WithCustomImage, st.CustomImagePrice, catalogPrice), nil
}
