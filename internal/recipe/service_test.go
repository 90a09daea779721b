package recipe

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

func fixture(t *testing.T) (*Service, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	ctx := context.Background()

	for _, ing := range []domain.Ingredient{
		{ID: "flour", BusinessID: "biz-1", Name: "Harina", Unit: domain.UnitKilogram, Stock: 20, CostPerUnit: 1000},
		{ID: "milk", BusinessID: "biz-1", Name: "Leche", Unit: domain.UnitLiter, Stock: 10, CostPerUnit: 800},
		{ID: "box", BusinessID: "biz-1", Name: "Caja carton", Unit: domain.UnitCount, Stock: 50, CostPerUnit: 200},
	} {
		ing := ing
		if err := store.Ingredients().Create(ctx, &ing); err != nil {
			t.Fatalf("seed ingredient: %v", err)
		}
	}

	return NewService(store.Recipes(), store.Ingredients()), store
}

func TestAddIngredientNormalizesToBaseUnit(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	if err := svc.AddIngredient(ctx, "caja", "flour", 500, domain.UnitGram); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recipe, err := store.Recipes().Get(ctx, "caja")
	if err != nil {
		t.Fatalf("load recipe: %v", err)
	}
	entry, ok := recipe.Entry("flour")
	if !ok {
		t.Fatal("entry missing")
	}
	if math.Abs(entry.Quantity-0.5) > 1e-9 {
		t.Errorf("stored quantity = %v, want 0.5 kg", entry.Quantity)
	}
	if entry.DisplayUnit != domain.UnitGram {
		t.Errorf("display preference = %s, want g", entry.DisplayUnit)
	}
}

func TestAddIngredientUpsertsSingleEntry(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	if err := svc.AddIngredient(ctx, "caja", "flour", 0.5, domain.UnitKilogram); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddIngredient(ctx, "caja", "flour", 750, domain.UnitGram); err != nil {
		t.Fatalf("second add: %v", err)
	}

	recipe, _ := store.Recipes().Get(ctx, "caja")
	if len(recipe.Entries) != 1 {
		t.Fatalf("expected single entry per ingredient, got %d", len(recipe.Entries))
	}
	if recipe.Entries[0].Quantity != 0.75 {
		t.Errorf("quantity = %v, want 0.75", recipe.Entries[0].Quantity)
	}
}

func TestAddIngredientRejectsCrossFamilyUnit(t *testing.T) {
	svc, _ := fixture(t)

	err := svc.AddIngredient(context.Background(), "caja", "milk", 2, domain.UnitKilogram)
	var convErr *domain.InvalidUnitConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected InvalidUnitConversionError, got %v", err)
	}
}

func TestSetAllRejectsDuplicates(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	err := svc.SetAll(ctx, "caja", []domain.RecipeEntry{
		{IngredientID: "flour", Quantity: 0.5},
		{IngredientID: "box", Quantity: 1},
		{IngredientID: "flour", Quantity: 0.2},
	})
	var dup *domain.DuplicateIngredientError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIngredientError, got %v", err)
	}
	if dup.IngredientID != "flour" {
		t.Errorf("duplicate names %s, want flour", dup.IngredientID)
	}

	recipe, _ := store.Recipes().Get(ctx, "caja")
	if len(recipe.Entries) != 0 {
		t.Error("rejected SetAll must not mutate the recipe")
	}
}

func TestSetAllPreservesLaborCost(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	if err := svc.SetLaborCost(ctx, "caja", 300); err != nil {
		t.Fatalf("set labor: %v", err)
	}
	if err := svc.SetAll(ctx, "caja", []domain.RecipeEntry{{IngredientID: "flour", Quantity: 0.5}}); err != nil {
		t.Fatalf("set all: %v", err)
	}

	recipe, _ := store.Recipes().Get(ctx, "caja")
	if recipe.LaborCost != 300 {
		t.Errorf("labor cost = %v, want 300", recipe.LaborCost)
	}
}

func TestSetLaborCostClearsOnNonPositive(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	if err := svc.SetLaborCost(ctx, "caja", 300); err != nil {
		t.Fatalf("set labor: %v", err)
	}
	if err := svc.SetLaborCost(ctx, "caja", -5); err != nil {
		t.Fatalf("clear labor: %v", err)
	}
	if err := svc.SetLaborCost(ctx, "caja", 0); err != nil {
		t.Fatalf("clearing twice must be idempotent: %v", err)
	}

	recipe, _ := store.Recipes().Get(ctx, "caja")
	if recipe.LaborCost != 0 {
		t.Errorf("labor cost = %v, want 0", recipe.LaborCost)
	}
}

func TestDisplayHidesLaborAndConverts(t *testing.T) {
	svc, _ := fixture(t)
	ctx := context.Background()

	if err := svc.AddIngredient(ctx, "caja", "flour", 400, domain.UnitGram); err != nil {
		t.Fatalf("add flour: %v", err)
	}
	if err := svc.AddIngredient(ctx, "caja", "box", 1, domain.UnitCount); err != nil {
		t.Fatalf("add box: %v", err)
	}
	if err := svc.SetLaborCost(ctx, "caja", 300); err != nil {
		t.Fatalf("set labor: %v", err)
	}

	entries, laborCost, err := svc.Display(ctx, "caja")
	if err != nil {
		t.Fatalf("display: %v", err)
	}
	if laborCost != 300 {
		t.Errorf("labor cost = %v, want 300", laborCost)
	}
	if len(entries) != 2 {
		t.Fatalf("labor must never appear as an entry; got %d entries", len(entries))
	}
	if entries[0].Unit != domain.UnitGram || entries[0].Quantity != 400 {
		t.Errorf("flour display = %v %s, want 400 g", entries[0].Quantity, entries[0].Unit)
	}
	if entries[0].IngredientName != "Harina" {
		t.Errorf("ingredient name = %s, want Harina", entries[0].IngredientName)
	}
}

func TestIngredientDeleteRejectedWhileReferenced(t *testing.T) {
	svc, store := fixture(t)
	ctx := context.Background()

	if err := svc.AddIngredient(ctx, "caja", "flour", 1, domain.UnitKilogram); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Ingredients().Delete(ctx, "flour"); !errors.Is(err, domain.ErrIngredientInUse) {
		t.Fatalf("expected ErrIngredientInUse, got %v", err)
	}

	if err := svc.RemoveIngredient(ctx, "caja", "flour"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Ingredients().Delete(ctx, "flour"); err != nil {
		t.Fatalf("delete after dereference: %v", err)
	}
}
