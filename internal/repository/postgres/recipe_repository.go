// backend-go/internal/repository/postgres/recipe_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

type recipeRepository struct {
	db *DB
}

func NewRecipeRepository(db *DB) *recipeRepository {
	return &recipeRepository{db: db}
}

type recipeEntryRow struct {
	ProductID    string      `db:"product_id"`
	IngredientID string      `db:"ingredient_id"`
	Quantity     float64     `db:"quantity"`
	DisplayUnit  domain.Unit `db:"display_unit"`
	Position     int         `db:"position"`
}

// Get returns the recipe for a product. A product with no stored recipe
// yields an empty recipe, not an error.
func (r *recipeRepository) Get(ctx context.Context, productID string) (domain.Recipe, error) {
	recipe := domain.Recipe{ProductID: productID}

	var laborCost float64
	laborQuery := `SELECT labor_cost FROM recipes WHERE product_id = $1`
	if err := r.db.GetContext(ctx, &laborCost, laborQuery, productID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.Recipe{}, fmt.Errorf("failed to get recipe: %w", err)
		}
	}
	recipe.LaborCost = laborCost

	entriesQuery := `
		SELECT product_id, ingredient_id, quantity, display_unit, position
		FROM recipe_entries
		WHERE product_id = $1
		ORDER BY position
	`
	rows := []recipeEntryRow{}
	if err := r.db.SelectContext(ctx, &rows, entriesQuery, productID); err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to list recipe entries: %w", err)
	}
	for _, row := range rows {
		recipe.Entries = append(recipe.Entries, domain.RecipeEntry{
			IngredientID: row.IngredientID,
			Quantity:     row.Quantity,
			DisplayUnit:  row.DisplayUnit,
		})
	}
	return recipe, nil
}

func (r *recipeRepository) GetAll(ctx context.Context, businessID string) (map[string]domain.Recipe, error) {
	recipes := make(map[string]domain.Recipe)

	laborQuery := `
		SELECT r.product_id, r.labor_cost
		FROM recipes r
		JOIN products p ON p.id = r.product_id
		WHERE p.business_id = $1
	`
	laborRows := []struct {
		ProductID string  `db:"product_id"`
		LaborCost float64 `db:"labor_cost"`
	}{}
	if err := r.db.SelectContext(ctx, &laborRows, laborQuery, businessID); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	for _, row := range laborRows {
		recipes[row.ProductID] = domain.Recipe{ProductID: row.ProductID, LaborCost: row.LaborCost}
	}

	entriesQuery := `
		SELECT e.product_id, e.ingredient_id, e.quantity, e.display_unit, e.position
		FROM recipe_entries e
		JOIN products p ON p.id = e.product_id
		WHERE p.business_id = $1
		ORDER BY e.product_id, e.position
	`
	entryRows := []recipeEntryRow{}
	if err := r.db.SelectContext(ctx, &entryRows, entriesQuery, businessID); err != nil {
		return nil, fmt.Errorf("failed to list recipe entries: %w", err)
	}
	for _, row := range entryRows {
		recipe := recipes[row.ProductID]
		recipe.ProductID = row.ProductID
		recipe.Entries = append(recipe.Entries, domain.RecipeEntry{
			IngredientID: row.IngredientID,
			Quantity:     row.Quantity,
			DisplayUnit:  row.DisplayUnit,
		})
		recipes[row.ProductID] = recipe
	}
	return recipes, nil
}

// Set replaces the product's recipe wholesale. Entry order is preserved
// through the position column.
func (r *recipeRepository) Set(ctx context.Context, productID string, recipe domain.Recipe) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		upsert := `
			INSERT INTO recipes (product_id, labor_cost, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (product_id)
			DO UPDATE SET labor_cost = EXCLUDED.labor_cost, updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, upsert, productID, recipe.LaborCost); err != nil {
			return fmt.Errorf("failed to upsert recipe: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_entries WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("failed to clear recipe entries: %w", err)
		}

		insert := `
			INSERT INTO recipe_entries (product_id, ingredient_id, quantity, display_unit, position)
			VALUES ($1, $2, $3, $4, $5)
		`
		for i, e := range recipe.Entries {
			if _, err := tx.ExecContext(ctx, insert, productID, e.IngredientID, e.Quantity, e.DisplayUnit, i); err != nil {
				return fmt.Errorf("failed to insert recipe entry: %w", err)
			}
		}
		return nil
	})
}

func (r *recipeRepository) ReferencingProducts(ctx context.Context, ingredientID string) ([]string, error) {
	query := `
		SELECT DISTINCT product_id
		FROM recipe_entries
		WHERE ingredient_id = $1
		ORDER BY product_id
	`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, ingredientID); err != nil {
		return nil, fmt.Errorf("failed to list referencing products: %w", err)
	}
	return ids, nil
}
