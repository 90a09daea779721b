package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

// CatalogService owns ingredient catalog maintenance: price updates,
// low-stock alerting and guarded deletion.
type CatalogService struct {
	ingredients repository.IngredientStore
	recipes     repository.RecipeStore
	profits     *ProfitabilityService
}

func NewCatalogService(
	ingredients repository.IngredientStore,
	recipes repository.RecipeStore,
	profits *ProfitabilityService,
) *CatalogService {
	return &CatalogService{
		ingredients: ingredients,
		recipes:     recipes,
		profits:     profits,
	}
}

// LowStockIngredients returns tracked ingredients at or below their
// minimum stock threshold, worst shortfall first.
func (s *CatalogService) LowStockIngredients(ctx context.Context, businessID string) ([]domain.Ingredient, error) {
	all, err := s.ingredients.GetAll(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("fetch ingredients: %w", err)
	}

	low := make([]domain.Ingredient, 0)
	for _, ing := range all {
		if ing.BelowMinimum() {
			low = append(low, ing)
		}
	}
	sort.Slice(low, func(i, j int) bool {
		return low[i].MinStock-low[i].Stock > low[j].MinStock-low[j].Stock
	})
	return low, nil
}

// UpdateIngredientCost sets a new cost per base unit and invalidates any
// cached profitability reports for the business.
func (s *CatalogService) UpdateIngredientCost(ctx context.Context, ingredientID string, costPerUnit float64) error {
	if costPerUnit < 0 {
		return fmt.Errorf("cost per unit must not be negative, got %v", costPerUnit)
	}

	ing, err := s.ingredients.Get(ctx, ingredientID)
	if err != nil {
		return err
	}
	if err := s.ingredients.UpdateCost(ctx, ingredientID, costPerUnit); err != nil {
		return fmt.Errorf("update ingredient %s: %w", ingredientID, err)
	}

	if s.profits != nil {
		s.profits.Invalidate(ctx, ing.BusinessID)
	}
	log.Info().
		Str("business_id", ing.BusinessID).
		Str("ingredient_id", ingredientID).
		Float64("cost_per_unit", costPerUnit).
		Msg("ingredient cost updated")
	return nil
}

// DeleteIngredient removes an ingredient unless a recipe still references
// it, in which case ErrIngredientInUse is returned with the offending
// products logged.
func (s *CatalogService) DeleteIngredient(ctx context.Context, ingredientID string) error {
	refs, err := s.recipes.ReferencingProducts(ctx, ingredientID)
	if err != nil {
		return fmt.Errorf("check recipe references: %w", err)
	}
	if len(refs) > 0 {
		log.Warn().
			Str("ingredient_id", ingredientID).
			Strs("product_ids", refs).
			Msg("ingredient deletion blocked by recipe references")
		return domain.ErrIngredientInUse
	}
	return s.ingredients.Delete(ctx, ingredientID)
}
