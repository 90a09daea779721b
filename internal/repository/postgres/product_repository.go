// backend-go/internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetAll(ctx context.Context, businessID string) ([]domain.Product, error) {
	query := `
		SELECT id, business_id, name, sale_price, stock, created_at, updated_at
		FROM products
		WHERE business_id = $1
		ORDER BY name
	`
	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	query := `
		SELECT id, business_id, name, sale_price, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var product domain.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	query := `
		INSERT INTO products (id, business_id, name, sale_price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.BusinessID, product.Name, product.SalePrice, product.Stock)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// ApplyStockDeltas commits a reconciliation outcome in one transaction.
// Positive delta consumes stock, negative restores it. Stock never goes
// below zero and the -1 untracked sentinel is left untouched.
func (r *productRepository) ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE products
			SET stock = GREATEST(stock - $2, 0), updated_at = NOW()
			WHERE id = $1 AND stock <> -1
		`
		for _, d := range deltas {
			if _, err := tx.ExecContext(ctx, query, d.EntityID, int(d.Delta)); err != nil {
				return fmt.Errorf("failed to apply stock delta for %s: %w", d.EntityID, err)
			}
		}
		return nil
	})
}
