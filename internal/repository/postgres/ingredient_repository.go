// backend-go/internal/repository/postgres/ingredient_repository.go
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

type ingredientRepository struct {
	db *DB
}

func NewIngredientRepository(db *DB) *ingredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) GetAll(ctx context.Context, businessID string) ([]domain.Ingredient, error) {
	query := `
		SELECT id, business_id, name, unit, stock, min_stock, max_stock,
		       cost_per_unit, created_at, updated_at
		FROM ingredients
		WHERE business_id = $1
		ORDER BY name
	`
	ingredients := []domain.Ingredient{}
	if err := r.db.SelectContext(ctx, &ingredients, query, businessID); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *ingredientRepository) Get(ctx context.Context, id string) (domain.Ingredient, error) {
	query := `
		SELECT id, business_id, name, unit, stock, min_stock, max_stock,
		       cost_per_unit, created_at, updated_at
		FROM ingredients
		WHERE id = $1
	`
	var ingredient domain.Ingredient
	if err := r.db.GetContext(ctx, &ingredient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Ingredient{}, domain.ErrIngredientNotFound
		}
		return domain.Ingredient{}, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return ingredient, nil
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *domain.Ingredient) error {
	if ingredient.ID == "" {
		ingredient.ID = uuid.NewString()
	}
	query := `
		INSERT INTO ingredients (id, business_id, name, unit, stock, min_stock,
		                         max_stock, cost_per_unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		ingredient.ID, ingredient.BusinessID, ingredient.Name, ingredient.Unit,
		ingredient.Stock, ingredient.MinStock, ingredient.MaxStock, ingredient.CostPerUnit)
	if err != nil {
		return fmt.Errorf("failed to insert ingredient: %w", err)
	}
	return nil
}

func (r *ingredientRepository) UpdateCost(ctx context.Context, id string, costPerUnit float64) error {
	query := `
		UPDATE ingredients
		SET cost_per_unit = $2, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, costPerUnit)
	if err != nil {
		return fmt.Errorf("failed to update ingredient cost: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrIngredientNotFound
	}
	return nil
}

func (r *ingredientRepository) ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE ingredients
			SET stock = GREATEST(stock - $2, 0), updated_at = NOW()
			WHERE id = $1 AND stock <> -1
		`
		for _, d := range deltas {
			if _, err := tx.ExecContext(ctx, query, d.EntityID, d.Delta); err != nil {
				return fmt.Errorf("failed to apply stock delta for %s: %w", d.EntityID, err)
			}
		}
		return nil
	})
}

// Delete removes an ingredient unless any recipe entry still references it.
func (r *ingredientRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var refs int
		countQuery := `SELECT COUNT(*) FROM recipe_entries WHERE ingredient_id = $1`
		if err := tx.GetContext(ctx, &refs, countQuery, id); err != nil {
			return fmt.Errorf("failed to count recipe references: %w", err)
		}
		if refs > 0 {
			return domain.ErrIngredientInUse
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete ingredient: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return domain.ErrIngredientNotFound
		}
		return nil
	})
}
