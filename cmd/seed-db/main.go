// Command seed-db applies migrations and loads the demo catalog: products,
// postcards, and a couple of promo codes for manual testing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/floravia/storefront/internal/storage/postgres"
)

type productJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type postcardJSON struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

const upsertProductSQL = `
INSERT INTO products (id, name, slug, category, price, stock, available)
VALUES ($1, $2, $3, $4, $5, $6, TRUE)
ON CONFLICT (id) DO UPDATE SET
    name     = EXCLUDED.name,
    slug     = EXCLUDED.slug,
    category = EXCLUDED.category,
    price    = EXCLUDED.price,
    stock    = EXCLUDED.stock
`

const upsertPostcardSQL = `
INSERT INTO postcards (id, name, price)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    name  = EXCLUDED.name,
    price = EXCLUDED.price
`

const upsertPromoSQL = `
INSERT INTO promo_codes (code, discount_percent, valid_from, valid_to, active)
VALUES ($1, $2, $3, $4, TRUE)
ON CONFLICT (code) DO UPDATE SET
    discount_percent = EXCLUDED.discount_percent,
    valid_from       = EXCLUDED.valid_from,
    valid_to         = EXCLUDED.valid_to,
    active           = TRUE
`

func main() {
	var (
		databaseURL   string
		productsFile  string
		postcardsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&postcardsFile, "postcards-file", "db/seed/postcards.json", "path to postcards JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, postcardsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, postcardsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedPostcards(ctx, pool, postcardsFile); err != nil {
		return errors.Wrap(err, "seed postcards")
	}

	if err := seedPromoCodes(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promo codes")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Slug, p.Category, p.Price, p.Stock,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPostcards(ctx context.Context, pool *pgxpool.Pool, postcardsFile string) error {
	slog.Info("reading postcards file", slog.String("path", postcardsFile))

	data, err := os.ReadFile(postcardsFile)
	if err != nil {
		return errors.Wrap(err, "read postcards file")
	}

	var postcards []postcardJSON
	if err := json.Unmarshal(data, &postcards); err != nil {
		return errors.Wrap(err, "parse postcards JSON")
	}

	slog.Info("upserting postcards", slog.Int("count", len(postcards)))

	for _, p := range postcards {
		if _, err := pool.Exec(ctx, upsertPostcardSQL, p.ID, p.Name, p.Price); err != nil {
			return errors.Wrapf(err, "upsert postcard %s", p.ID)
		}

		slog.Info("upserted postcard", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedPromoCodes(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo promo codes")

	now := time.Now()
	codes := []struct {
		code    string
		percent int
		from    time.Time
		to      time.Time
	}{
		{code: "WELCOME10", percent: 10, from: now, to: now.AddDate(1, 0, 0)},
		{code: "SPRING20", percent: 20, from: now, to: now.AddDate(0, 3, 0)},
	}

	for _, c := range codes {
		if _, err := pool.Exec(ctx, upsertPromoSQL, c.code, c.percent, c.from, c.to); err != nil {
			return errors.Wrapf(err, "upsert promo code %s", c.code)
		}

		slog.Info("upserted promo code", slog.String("code", c.code), slog.Int("percent", c.percent))
	}

	return nil
}
