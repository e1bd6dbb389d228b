package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floravia/storefront/internal/catalog"
	"github.com/floravia/storefront/internal/promo"
	"github.com/floravia/storefront/internal/schedule"
	"github.com/floravia/storefront/internal/settings"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID map[string]catalog.Product
	err  error
}

func (m *mockProductRepo) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockPostcardRepo struct {
	byID map[string]catalog.Postcard
}

func (m *mockPostcardRepo) GetByID(_ context.Context, id string) (*catalog.Postcard, error) {
	if pc, ok := m.byID[id]; ok {
		return &pc, nil
	}
	return nil, catalog.ErrNotFound
}

type mockPromoRepo struct {
	codes []promo.Code
}

func (m *mockPromoRepo) FindByCode(_ context.Context, code string) (*promo.Code, error) {
	for i := range m.codes {
		if strings.EqualFold(m.codes[i].Code, code) {
			return &m.codes[i], nil
		}
	}
	return nil, promo.ErrNotFound
}

type staticSettings struct {
	value *settings.Settings
}

func (s *staticSettings) Get(_ context.Context) (*settings.Settings, error) {
	return s.value, nil
}

type mockOrderRepo struct {
	lastOrder *Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.lastOrder = o
	return m.err
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		ShopName: "Floravia",
		Hours: schedule.Config{
			Delivery: schedule.ModeHours{
				Weekday: schedule.DayHours{Open: schedule.MustClock("09:00"), Close: schedule.MustClock("21:00")},
				Weekend: schedule.DayHours{Open: schedule.MustClock("10:00"), Close: schedule.MustClock("22:00")},
			},
			Pickup: schedule.ModeHours{
				Weekday: schedule.DayHours{Open: schedule.MustClock("09:00"), Close: schedule.MustClock("21:00")},
				Weekend: schedule.DayHours{Open: schedule.MustClock("10:00"), Close: schedule.MustClock("22:00")},
			},
			StepMinutes:        120,
			ProcessingMinutes:  50,
			CloseCutoffMinutes: 20,
			Timezone:           "Europe/Moscow",
		},
		DeliveryCost:     d("300.00"),
		CustomImagePrice: d("150.00"),
	}
}

// fixedNow is Wednesday 2024-06-05 10:05 in the shop timezone.
func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	now := time.Date(2024, 6, 5, 10, 5, 0, 0, loc)
	return func() time.Time { return now }
}

type fixture struct {
	service  *Service
	products *mockProductRepo
	orders   *mockOrderRepo
	promos   *mockPromoRepo
	settings *staticSettings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := &mockProductRepo{byID: map[string]catalog.Product{
		"rose-bouquet": {ID: "rose-bouquet", Name: "Rose bouquet", Price: d("500.00"), Available: true},
		"tulip-mix":    {ID: "tulip-mix", Name: "Tulip mix", Price: d("350.50"), Available: true},
		"wilted":       {ID: "wilted", Name: "Out of season", Price: d("100.00"), Available: false},
	}}
	postcards := &mockPostcardRepo{byID: map[string]catalog.Postcard{
		"birthday-card": {ID: "birthday-card", Name: "Birthday card", Price: d("200.00")},
	}}
	promos := &mockPromoRepo{codes: []promo.Code{
		{
			Code:            "SPRING10",
			DiscountPercent: 10,
			ValidFrom:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:         time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			Active:          true,
		},
		{
			Code:            "BROKEN",
			DiscountPercent: 150,
			ValidFrom:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:         time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			Active:          true,
		},
		{
			Code:            "EXPIRED",
			DiscountPercent: 20,
			ValidFrom:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			ValidTo:         time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
			Active:          true,
		},
	}}
	orders := &mockOrderRepo{}
	st := &staticSettings{value: testSettings()}

	svc := NewService(products, postcards, promo.NewResolver(promos), st, orders, fixedNow(t))
	return &fixture{service: svc, products: products, orders: orders, promos: promos, settings: st}
}

func deliveryAt(date, label string) Fulfillment {
	return Fulfillment{Mode: schedule.ModeDelivery, Date: date, SlotLabel: label}
}

// --- Tests ---

func TestPlaceOrder_FullBreakdown(t *testing.T) {
	f := newFixture(t)

	got, err := f.service.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 3}},
		Fulfillment: deliveryAt("2024-06-05", "11:00 - 13:00"),
		PromoCode:   "SPRING10",
		PostcardID:  "birthday-card",
		Customer:    Customer{FirstName: "Anna", Email: "anna@example.com"},
	})
	require.NoError(t, err)

	assert.True(t, got.Pricing.ItemsCost.Equal(d("1500.00")))
	assert.True(t, got.Pricing.DiscountAmount.Equal(d("150.00")))
	assert.True(t, got.Pricing.DeliveryCost.Equal(d("300.00")))
	assert.True(t, got.Pricing.PostcardCost.Equal(d("200.00")))
	assert.True(t, got.Pricing.Total.Equal(d("1850.00")))

	assert.Equal(t, StatusCreated, got.Status)
	assert.NotEmpty(t, got.ID)
	require.NotNil(t, f.orders.lastOrder)
	assert.Equal(t, got, f.orders.lastOrder)
}

func TestPlaceOrder_PickupHasNoDeliveryFee(t *testing.T) {
	f := newFixture(t)

	got, err := f.service.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:       []ItemRequest{{ProductID: "tulip-mix", Quantity: 1}},
		Fulfillment: Fulfillment{Mode: schedule.ModePickup, Date: "2024-06-07", SlotLabel: "09:00 - 11:00"},
	})
	require.NoError(t, err)

	assert.True(t, got.Pricing.DeliveryCost.IsZero())
	assert.True(t, got.Pricing.Total.Equal(d("350.50")))
}

func TestPlaceOrder_CustomImagePostcard(t *testing.T) {
	f := newFixture(t)

	got, err := f.service.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:           []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
		Fulfillment:     deliveryAt("2024-06-06", "09:00 - 11:00"),
		PostcardID:      "birthday-card",
		WithCustomImage: true,
		PostcardText:    "Happy birthday!",
	})
	require.NoError(t, err)

	// Custom image fee plus the catalog card used as backing design.
	assert.True(t, got.Pricing.PostcardCost.Equal(d("350.00")))
}

func TestPlaceOrder_SnapshotSurvivesCatalogEdits(t *testing.T) {
	f := newFixture(t)

	got, err := f.service.PlaceOrder(context.Background(), PlaceOrderRequest{
		Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 2}},
		Fulfillment: deliveryAt("2024-06-06", "09:00 - 11:00"),
	})
	require.NoError(t, err)

	// An admin raises the price after the order is placed.
	p := f.products.byID["rose-bouquet"]
	p.Price = d("999.00")
	f.products.byID["rose-bouquet"] = p

	assert.True(t, f.orders.lastOrder.Pricing.ItemsCost.Equal(d("1000.00")))
	assert.True(t, got.Items[0].UnitPrice.Equal(d("500.00")))
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fulfillment := deliveryAt("2024-06-06", "09:00 - 11:00")

	t.Run("empty items", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{Fulfillment: fulfillment})
		require.ErrorIs(t, err, ErrEmptyItems)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 0}},
			Fulfillment: fulfillment,
		})
		var iq *InvalidQuantityError
		require.ErrorAs(t, err, &iq)
		assert.Equal(t, "rose-bouquet", iq.ProductID)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "orchid", Quantity: 1}},
			Fulfillment: fulfillment,
		})
		var nf *ProductNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "orchid", nf.ProductID)
	})

	t.Run("unavailable product", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "wilted", Quantity: 1}},
			Fulfillment: fulfillment,
		})
		var ua *ProductUnavailableError
		require.ErrorAs(t, err, &ua)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: Fulfillment{Mode: "drone", Date: "2024-06-06", SlotLabel: "09:00 - 11:00"},
		})
		require.Error(t, err)
	})

	t.Run("unknown postcard", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: fulfillment,
			PostcardID:  "missing-card",
		})
		require.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

func TestPlaceOrder_PromoOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fulfillment := deliveryAt("2024-06-06", "09:00 - 11:00")

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: fulfillment,
			PromoCode:   "NOPE",
		})
		require.ErrorIs(t, err, promo.ErrNotFound)
	})

	t.Run("expired code", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: fulfillment,
			PromoCode:   "EXPIRED",
		})
		require.ErrorIs(t, err, promo.ErrNotFound)
	})

	t.Run("lowercase code resolves", func(t *testing.T) {
		got, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: fulfillment,
			PromoCode:   "spring10",
		})
		require.NoError(t, err)
		assert.True(t, got.Pricing.DiscountAmount.Equal(d("50.00")))
	})

	t.Run("discount above 100 percent is not clamped", func(t *testing.T) {
		got, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}},
			Fulfillment: Fulfillment{Mode: schedule.ModePickup, Date: "2024-06-06", SlotLabel: "09:00 - 11:00"},
			PromoCode:   "BROKEN",
		})
		require.NoError(t, err)
		assert.True(t, got.Pricing.Total.Equal(d("-250.00")))
	})
}

func TestPlaceOrder_FulfillmentWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []ItemRequest{{ProductID: "rose-bouquet", Quantity: 1}}

	t.Run("slot filtered out by processing buffer", func(t *testing.T) {
		// At 10:05 the 09:00 window for today is already behind the cutoff.
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       items,
			Fulfillment: deliveryAt("2024-06-05", "09:00 - 11:00"),
		})
		var su *SlotUnavailableError
		require.ErrorAs(t, err, &su)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       items,
			Fulfillment: deliveryAt("06/05/2024", "09:00 - 11:00"),
		})
		require.ErrorIs(t, err, schedule.ErrInvalidDate)
	})

	t.Run("asap while open", func(t *testing.T) {
		got, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       items,
			Fulfillment: Fulfillment{Mode: schedule.ModeDelivery, ASAP: true},
		})
		require.NoError(t, err)
		assert.True(t, got.Fulfillment.ASAP)
	})

	t.Run("asap while closed", func(t *testing.T) {
		closed := testSettings()
		closed.Hours.Delivery.Weekday.Open = schedule.MustClock("12:00")
		f.settings.value = closed
		defer func() { f.settings.value = testSettings() }()

		_, err := f.service.PlaceOrder(ctx, PlaceOrderRequest{
			Items:       items,
			Fulfillment: Fulfillment{Mode: schedule.ModeDelivery, ASAP: true},
		})
		var ce *ClosedError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "opens at 12:00", ce.Reason)
	})
}
