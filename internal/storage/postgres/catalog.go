package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodman/internal/domain/catalog"
)

const (
	listMenuSQL = `SELECT id, name, price, category, image, description FROM menu_items ORDER BY id`

	getMenuItemSQL = `SELECT id, name, price, category, image, description FROM menu_items WHERE id = $1`

	upsertMenuItemSQL = `INSERT INTO menu_items (id, name, price, category, image, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category,
			image = EXCLUDED.image, description = EXCLUDED.description`
)

var _ catalog.Repository = (*Catalog)(nil)

// Catalog implements catalog.Repository backed by the menu_items table.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog returns a Catalog that uses the given pool.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// List returns the whole menu ordered by ID.
func (r *Catalog) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listMenuSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list menu")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single menu item.
func (r *Catalog) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get menu item %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get menu item %d", id)
	}
	return &p, nil
}

// Upsert inserts or replaces the given products in one transaction.
func (r *Catalog) Upsert(ctx context.Context, products []catalog.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range products {
			batch.Queue(upsertMenuItemSQL, p.ID, p.Name, p.Price, p.Category, p.Image, p.Description)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert menu items")
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Image, &p.Description)
	p.Price = price
	return p, err
}
