package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/ordena/backend-go/internal/costing"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

// ProductCost is a costing preview for a single product at current
// ingredient prices.
type ProductCost struct {
	ProductID     string               `json:"product_id"`
	ProductName   string               `json:"product_name"`
	SalePrice     float64              `json:"sale_price"`
	UnitCost      float64              `json:"unit_cost"`
	LaborCost     float64              `json:"labor_cost"`
	MarginAmount  float64              `json:"margin_amount"`
	MarginPercent float64              `json:"margin_percent"`
	Diagnostics   []costing.Diagnostic `json:"diagnostics,omitempty"`
}

// CostingService answers "what does one unit of this product cost to make,
// and what do we earn on it" from the product's recipe and the live
// ingredient catalog.
type CostingService struct {
	products    repository.ProductStore
	ingredients repository.IngredientStore
	recipes     repository.RecipeStore
	engine      costing.Engine
}

func NewCostingService(
	products repository.ProductStore,
	ingredients repository.IngredientStore,
	recipes repository.RecipeStore,
) *CostingService {
	return &CostingService{
		products:    products,
		ingredients: ingredients,
		recipes:     recipes,
	}
}

// ProductCost computes the current unit cost and margin for a product.
// Missing or unpriced ingredients contribute zero and are reported in
// Diagnostics rather than failing the preview.
func (s *CostingService) ProductCost(ctx context.Context, productID string) (ProductCost, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return ProductCost{}, err
	}
	recipe, err := s.recipes.Get(ctx, productID)
	if err != nil {
		return ProductCost{}, fmt.Errorf("load recipe for %s: %w", productID, err)
	}
	ingredients, err := s.ingredients.GetAll(ctx, product.BusinessID)
	if err != nil {
		return ProductCost{}, fmt.Errorf("fetch ingredients: %w", err)
	}

	unitCost, diags := s.engine.UnitCost(recipe, costing.LookupFromIngredients(ingredients))
	amount, percent := s.engine.Margin(product.SalePrice, unitCost)

	return ProductCost{
		ProductID:     product.ID,
		ProductName:   product.Name,
		SalePrice:     product.SalePrice,
		UnitCost:      unitCost,
		LaborCost:     recipe.LaborCost,
		MarginAmount:  amount,
		MarginPercent: percent,
		Diagnostics:   diags,
	}, nil
}
