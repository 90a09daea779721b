package costing

import (
	"testing"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

func lookupFor(costs map[string]float64) CostLookup {
	return func(id string) (float64, bool) {
		c, ok := costs[id]
		return c, ok
	}
}

func TestUnitCost(t *testing.T) {
	var engine Engine

	tests := []struct {
		name      string
		recipe    domain.Recipe
		costs     map[string]float64
		wantCost  float64
		wantDiags int
	}{
		{
			// 0.5 kg flour at 1000/kg + 1 box at 200 + labor 300.
			name: "caja scenario",
			recipe: domain.Recipe{
				ProductID: "caja",
				Entries: []domain.RecipeEntry{
					{IngredientID: "flour", Quantity: 0.5},
					{IngredientID: "box", Quantity: 1},
				},
				LaborCost: 300,
			},
			costs:    map[string]float64{"flour": 1000, "box": 200},
			wantCost: 1000,
		},
		{
			name: "missing ingredient contributes zero",
			recipe: domain.Recipe{
				Entries: []domain.RecipeEntry{
					{IngredientID: "flour", Quantity: 2},
					{IngredientID: "ghost", Quantity: 5},
				},
			},
			costs:     map[string]float64{"flour": 100},
			wantCost:  200,
			wantDiags: 1,
		},
		{
			name: "unpriced ingredient contributes zero",
			recipe: domain.Recipe{
				Entries: []domain.RecipeEntry{
					{IngredientID: "water", Quantity: 3},
				},
			},
			costs:     map[string]float64{"water": 0},
			wantDiags: 1,
		},
		{
			name:     "labor only",
			recipe:   domain.Recipe{LaborCost: 450},
			wantCost: 450,
		},
		{
			name: "fractional quantities do not accumulate float error",
			recipe: domain.Recipe{
				Entries: []domain.RecipeEntry{
					{IngredientID: "a", Quantity: 0.1},
					{IngredientID: "a2", Quantity: 0.2},
				},
			},
			costs:    map[string]float64{"a": 3, "a2": 3},
			wantCost: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, diags := engine.UnitCost(tt.recipe, lookupFor(tt.costs))
			if cost != tt.wantCost {
				t.Errorf("UnitCost = %v, want %v", cost, tt.wantCost)
			}
			if len(diags) != tt.wantDiags {
				t.Errorf("got %d diagnostics, want %d: %+v", len(diags), tt.wantDiags, diags)
			}
		})
	}
}

func TestMargin(t *testing.T) {
	var engine Engine

	tests := []struct {
		name                    string
		salePrice, unitCost     float64
		wantAmount, wantPercent float64
	}{
		{name: "standard margin", salePrice: 1000, unitCost: 400, wantAmount: 600, wantPercent: 60},
		{name: "zero price avoids division", salePrice: 0, unitCost: 100, wantAmount: -100, wantPercent: 0},
		{name: "selling at cost", salePrice: 250, unitCost: 250, wantAmount: 0, wantPercent: 0},
		{name: "negative margin", salePrice: 100, unitCost: 150, wantAmount: -50, wantPercent: -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, percent := engine.Margin(tt.salePrice, tt.unitCost)
			if amount != tt.wantAmount || percent != tt.wantPercent {
				t.Errorf("Margin(%v, %v) = (%v, %v), want (%v, %v)",
					tt.salePrice, tt.unitCost, amount, percent, tt.wantAmount, tt.wantPercent)
			}
		})
	}
}
