// Package recipe manages a product's bill of materials: an ordered,
// de-duplicated set of ingredient quantities plus an explicit labor cost.
package recipe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

type Service struct {
	recipes     repository.RecipeStore
	ingredients repository.IngredientStore
}

func NewService(recipes repository.RecipeStore, ingredients repository.IngredientStore) *Service {
	return &Service{recipes: recipes, ingredients: ingredients}
}

// AddIngredient upserts one recipe entry. The quantity may arrive in a
// display sub-unit; it is normalized to the ingredient's base unit before
// storage, and the entered unit is remembered as the display preference.
func (s *Service) AddIngredient(ctx context.Context, productID, ingredientID string, qty float64, unit domain.Unit) error {
	ingredient, err := s.ingredients.Get(ctx, ingredientID)
	if err != nil {
		return fmt.Errorf("lookup ingredient %s: %w", ingredientID, err)
	}
	if unit.Family() != ingredient.Unit.Family() {
		return &domain.InvalidUnitConversionError{From: unit, To: ingredient.Unit}
	}
	baseQty, err := domain.ToBase(unit, qty)
	if err != nil {
		return err
	}

	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for %s: %w", productID, err)
	}

	entry := domain.RecipeEntry{IngredientID: ingredientID, Quantity: baseQty, DisplayUnit: unit}
	replaced := false
	for i := range recipe.Entries {
		if recipe.Entries[i].IngredientID == ingredientID {
			recipe.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		recipe.Entries = append(recipe.Entries, entry)
	}

	return s.recipes.Set(ctx, productID, recipe)
}

// RemoveIngredient drops an ingredient's entry. Removing an ingredient
// that is not on the recipe is a no-op.
func (s *Service) RemoveIngredient(ctx context.Context, productID, ingredientID string) error {
	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for %s: %w", productID, err)
	}

	kept := recipe.Entries[:0]
	for _, e := range recipe.Entries {
		if e.IngredientID != ingredientID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(recipe.Entries) {
		return nil
	}
	recipe.Entries = kept

	return s.recipes.Set(ctx, productID, recipe)
}

// SetAll atomically replaces the recipe's entry list. Input naming the
// same ingredient twice is rejected before any mutation; quantities are
// expected in base units already (callers normalize capture-time units via
// AddIngredient). The labor cost is preserved.
func (s *Service) SetAll(ctx context.Context, productID string, entries []domain.RecipeEntry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.IngredientID] {
			return &domain.DuplicateIngredientError{IngredientID: e.IngredientID}
		}
		seen[e.IngredientID] = true
	}

	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for %s: %w", productID, err)
	}
	recipe.Entries = entries

	return s.recipes.Set(ctx, productID, recipe)
}

// SetLaborCost upserts the recipe's labor cost. Amounts at or below zero
// clear it; the operation is idempotent either way.
func (s *Service) SetLaborCost(ctx context.Context, productID string, amount float64) error {
	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return fmt.Errorf("load recipe for %s: %w", productID, err)
	}

	if amount <= 0 {
		amount = 0
	}
	if recipe.LaborCost == amount {
		return nil
	}
	recipe.LaborCost = amount

	return s.recipes.Set(ctx, productID, recipe)
}

// DisplayEntry is one recipe line prepared for the UI: quantity converted
// into the entry's stored display unit, or the magnitude-based default
// when no preference was captured.
type DisplayEntry struct {
	IngredientID   string      `json:"ingredient_id"`
	IngredientName string      `json:"ingredient_name"`
	Quantity       float64     `json:"quantity"`
	Unit           domain.Unit `json:"unit"`
}

// Display returns the recipe's ingredient lines for presentation plus the
// labor cost, surfaced separately and never as an ingredient row.
func (s *Service) Display(ctx context.Context, productID string) ([]DisplayEntry, float64, error) {
	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return nil, 0, fmt.Errorf("load recipe for %s: %w", productID, err)
	}

	entries := make([]DisplayEntry, 0, len(recipe.Entries))
	for _, e := range recipe.Entries {
		ingredient, err := s.ingredients.Get(ctx, e.IngredientID)
		if err != nil {
			log.Warn().
				Str("product_id", productID).
				Str("ingredient_id", e.IngredientID).
				Msg("recipe entry references a missing ingredient, hiding from display")
			continue
		}

		display := DisplayEntry{IngredientID: e.IngredientID, IngredientName: ingredient.Name}
		if e.DisplayUnit != "" {
			qty, err := domain.ToDisplayUnit(ingredient.Unit, e.DisplayUnit, e.Quantity)
			if err != nil {
				return nil, 0, err
			}
			display.Unit = e.DisplayUnit
			display.Quantity = qty
		} else {
			unit, qty, err := domain.ToDisplay(ingredient.Unit, e.Quantity)
			if err != nil {
				return nil, 0, err
			}
			display.Unit = unit
			display.Quantity = qty
		}
		entries = append(entries, display)
	}

	return entries, recipe.LaborCost, nil
}
