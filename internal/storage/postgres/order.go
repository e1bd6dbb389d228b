package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floravia/storefront/internal/checkout"
)

const (
	createOrderSQL = `INSERT INTO orders (
		id, status, mode, slot_date, slot_label, asap,
		first_name, last_name, email, phone, address, postal_code, city,
		promo_code, postcard_id, postcard_text, with_custom_image,
		items_cost, discount_amount, delivery_cost, postcard_cost, total,
		created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20, $21, $22,
		$23
	)`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`
)

var _ checkout.Repository = (*OrderRepository)(nil)

// OrderRepository implements checkout.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order and its line items in one transaction. The
// pricing columns store the snapshot exactly as computed; nothing rereads
// live catalog prices afterwards.
func (r *OrderRepository) Create(ctx context.Context, o *checkout.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var postcardID *string
	if o.PostcardID != "" {
		postcardID = &o.PostcardID
	}

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, string(o.Status), string(o.Fulfillment.Mode),
		nilIfEmpty(o.Fulfillment.Date), nilIfEmpty(o.Fulfillment.SlotLabel), o.Fulfillment.ASAP,
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone,
		o.Customer.Address, o.Customer.PostalCode, o.Customer.City,
		nilIfEmpty(o.PromoCode), postcardID, o.PostcardText, o.WithCustomImage,
		o.Pricing.ItemsCost, o.Pricing.DiscountAmount, o.Pricing.DeliveryCost,
		o.Pricing.PostcardCost, o.Pricing.Total,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, createOrderItemSQL,
			o.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("creating order item %q for order %q: %w", item.ProductID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
