// Package costing derives a product's per-unit fabrication cost from its
// recipe and current ingredient prices. Costing degrades gracefully:
// partially configured recipes produce a cost plus diagnostics, never an
// error.
package costing

import (
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

// CostLookup resolves an ingredient's current cost per base unit. ok is
// false when the ingredient is unknown.
type CostLookup func(ingredientID string) (costPerUnit float64, ok bool)

// LookupFromIngredients builds a CostLookup over a fetched ingredient set.
func LookupFromIngredients(ingredients []domain.Ingredient) CostLookup {
	costs := make(map[string]float64, len(ingredients))
	for _, ing := range ingredients {
		costs[ing.ID] = ing.CostPerUnit
	}
	return func(id string) (float64, bool) {
		cost, ok := costs[id]
		return cost, ok
	}
}

const (
	ReasonMissingIngredient = "ingredient not found"
	ReasonNoCost            = "no cost configured"
)

// Diagnostic flags a recipe entry that contributed zero to the unit cost.
type Diagnostic struct {
	IngredientID string `json:"ingredient_id"`
	Reason       string `json:"reason"`
}

// Engine computes unit costs and margins. Intermediate money arithmetic
// runs on decimals so per-entry products do not accumulate float error.
type Engine struct{}

// UnitCost sums quantity times current cost per base unit across the
// recipe's entries, plus the labor cost. Entries whose ingredient is
// missing or has no configured cost contribute zero and are flagged.
func (Engine) UnitCost(recipe domain.Recipe, lookup CostLookup) (float64, []Diagnostic) {
	total := decimal.NewFromFloat(recipe.LaborCost)
	var diags []Diagnostic

	for _, e := range recipe.Entries {
		cost, ok := lookup(e.IngredientID)
		if !ok {
			diags = append(diags, Diagnostic{IngredientID: e.IngredientID, Reason: ReasonMissingIngredient})
			continue
		}
		if cost <= 0 {
			diags = append(diags, Diagnostic{IngredientID: e.IngredientID, Reason: ReasonNoCost})
			continue
		}
		line := decimal.NewFromFloat(e.Quantity).Mul(decimal.NewFromFloat(cost))
		total = total.Add(line)
	}

	return total.InexactFloat64(), diags
}

// Margin returns the gross margin amount and percentage for a sale price
// against a unit cost. The percentage is zero when the sale price is zero.
func (Engine) Margin(salePrice, unitCost float64) (amount, percent float64) {
	price := decimal.NewFromFloat(salePrice)
	gross := price.Sub(decimal.NewFromFloat(unitCost))
	amount = gross.InexactFloat64()
	if price.IsZero() {
		return amount, 0
	}
	percent = gross.Div(price).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return amount, percent
}
