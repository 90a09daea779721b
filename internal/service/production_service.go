package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/ledger"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

// ProductionService converts raw materials into finished goods: producing
// N units of a product consumes N times its recipe quantities from
// ingredient stock and adds N to the product's stock, as one all-or-nothing
// batch.
type ProductionService struct {
	products    repository.ProductStore
	ingredients repository.IngredientStore
	recipes     repository.RecipeStore
	orders      *OrderService // shares the per-business write lock
}

func NewProductionService(
	products repository.ProductStore,
	ingredients repository.IngredientStore,
	recipes repository.RecipeStore,
	orders *OrderService,
) *ProductionService {
	return &ProductionService{
		products:    products,
		ingredients: ingredients,
		recipes:     recipes,
		orders:      orders,
	}
}

// Produce records a production run. Ingredient consumption is validated
// against current stock before anything commits; untracked ingredients
// never block a run.
func (s *ProductionService) Produce(ctx context.Context, productID string, units int) error {
	if units <= 0 {
		return fmt.Errorf("units must be positive, got %d", units)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return err
	}

	unlock := s.orders.lockBusiness(product.BusinessID)
	defer unlock()

	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for %s: %w", productID, err)
	}
	if len(recipe.Entries) == 0 {
		return fmt.Errorf("product %s has no recipe to produce from", productID)
	}

	ingredients, err := s.ingredients.GetAll(ctx, product.BusinessID)
	if err != nil {
		return fmt.Errorf("fetch ingredients: %w", err)
	}

	stock := ledger.FromCatalog(product.BusinessID, nil, ingredients)
	deltas := make([]domain.StockDelta, 0, len(recipe.Entries))
	for _, e := range recipe.Entries {
		deltas = append(deltas, domain.StockDelta{
			EntityID: e.IngredientID,
			Delta:    e.Quantity * float64(units),
		})
	}
	if err := stock.BatchApply(deltas); err != nil {
		return err
	}

	if err := s.ingredients.ApplyStockDeltas(ctx, deltas); err != nil {
		return fmt.Errorf("apply ingredient deltas: %w", err)
	}
	if product.TracksStock() {
		increase := []domain.StockDelta{{EntityID: productID, Delta: -float64(units)}}
		if err := s.products.ApplyStockDeltas(ctx, increase); err != nil {
			return fmt.Errorf("apply product stock increase: %w", err)
		}
	}

	log.Info().
		Str("business_id", product.BusinessID).
		Str("product_id", productID).
		Int("units", units).
		Msg("production run recorded")
	return nil
}
