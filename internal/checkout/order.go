package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/floravia/storefront/internal/pricing"
	"github.com/floravia/storefront/internal/schedule"
)

// Status is the order lifecycle state, driven by the admin side after
// creation.
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Customer holds the contact and address fields captured at checkout.
type Customer struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	PostalCode string
	City       string
}

// OrderItem is a priced line item. UnitPrice is the catalog price at
// order-creation time; later catalog edits do not touch it.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Fulfillment describes how and when the order is handed over.
type Fulfillment struct {
	Mode schedule.Mode
	// Date is the chosen calendar date ("YYYY-MM-DD"); empty for ASAP orders.
	Date string
	// SlotLabel is the chosen window label; empty for ASAP orders.
	SlotLabel string
	ASAP      bool
}

// Order is a placed customer order. Pricing is an immutable snapshot
// computed once when the order is created.
type Order struct {
	ID          string
	Status      Status
	Customer    Customer
	Fulfillment Fulfillment
	Items       []OrderItem

	PromoCode       string
	PostcardID      string
	PostcardText    string
	WithCustomImage bool

	Pricing   pricing.Snapshot
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
