package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floravia/storefront/internal/catalog"
)

const (
	listProductsSQL = `SELECT id, name, slug, category, price, stock, available
		FROM products WHERE available ORDER BY name`

	getProductsByIDsSQL = `SELECT id, name, slug, category, price, stock, available
		FROM products WHERE id = ANY($1)`

	getPostcardByIDSQL = `SELECT id, name, price FROM postcards WHERE id = $1`
)

var (
	_ catalog.Repository         = (*CatalogRepository)(nil)
	_ catalog.PostcardRepository = (*PostcardRepository)(nil)
)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns the available products ordered by name.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByIDs returns products matching any of the given IDs, including ones
// currently flagged unavailable; the checkout service decides how to treat
// those.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Category, &p.Price, &p.Stock, &p.Available)
	return p, err
}

// PostcardRepository implements catalog.PostcardRepository backed by PostgreSQL.
type PostcardRepository struct {
	pool *pgxpool.Pool
}

// NewPostcardRepository returns a PostcardRepository that uses the given pool.
func NewPostcardRepository(pool *pgxpool.Pool) *PostcardRepository {
	return &PostcardRepository{pool: pool}
}

// GetByID returns a single postcard. Returns catalog.ErrNotFound when the
// postcard does not exist.
func (r *PostcardRepository) GetByID(ctx context.Context, id string) (*catalog.Postcard, error) {
	rows, err := r.pool.Query(ctx, getPostcardByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting postcard %q: %w", id, err)
	}

	pc, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (catalog.Postcard, error) {
		var p catalog.Postcard
		err := row.Scan(&p.ID, &p.Name, &p.Price)
		return p, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting postcard %q: %w", id, err)
	}
	return &pc, nil
}
