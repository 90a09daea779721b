package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

func seedProductionFixtures(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	seedCatalog(t, store)
	ingredients := []domain.Ingredient{
		{ID: "i-harina", BusinessID: testBusiness, Name: "Harina", Unit: domain.UnitKilogram, Stock: 2, CostPerUnit: 1000},
		{ID: "i-caja", BusinessID: testBusiness, Name: "Caja carton", Unit: domain.UnitCount, Stock: 8, CostPerUnit: 200},
		{ID: "i-agua", BusinessID: testBusiness, Name: "Agua", Unit: domain.UnitLiter, Stock: domain.UntrackedStock},
	}
	for i := range ingredients {
		if err := store.Ingredients().Create(ctx, &ingredients[i]); err != nil {
			t.Fatalf("seed ingredient %s: %v", ingredients[i].ID, err)
		}
	}

	recipe := domain.Recipe{
		ProductID: "p-torta",
		Entries: []domain.RecipeEntry{
			{IngredientID: "i-harina", Quantity: 0.5},
			{IngredientID: "i-caja", Quantity: 1},
			{IngredientID: "i-agua", Quantity: 0.2},
		},
		LaborCost: 300,
	}
	if err := store.Recipes().Set(ctx, "p-torta", recipe); err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
}

func ingredientStock(t *testing.T, store *repository.MemoryStore, id string) float64 {
	t.Helper()
	ing, err := store.Ingredients().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get ingredient %s: %v", id, err)
	}
	return ing.Stock
}

func TestProduceConsumesIngredientsAndRaisesProductStock(t *testing.T) {
	store := repository.NewMemoryStore()
	seedProductionFixtures(t, store)
	svc := NewProductionService(store, store.Ingredients(), store.Recipes(), newOrderService(store))

	if err := svc.Produce(context.Background(), "p-torta", 3); err != nil {
		t.Fatalf("Produce: %v", err)
	}

	if got := ingredientStock(t, store, "i-harina"); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("harina stock = %v, want 0.5", got)
	}
	if got := ingredientStock(t, store, "i-caja"); got != 5 {
		t.Fatalf("caja stock = %v, want 5", got)
	}
	if got := ingredientStock(t, store, "i-agua"); got != domain.UntrackedStock {
		t.Fatalf("agua stock = %v, want untracked sentinel", got)
	}
	if got := productStock(t, store, "p-torta"); got != 13 {
		t.Fatalf("torta stock = %d, want 13", got)
	}
}

func TestProduceInsufficientIngredientAborts(t *testing.T) {
	store := repository.NewMemoryStore()
	seedProductionFixtures(t, store)
	svc := NewProductionService(store, store.Ingredients(), store.Recipes(), newOrderService(store))

	// 5 units needs 2.5 kg flour; only 2 on hand.
	err := svc.Produce(context.Background(), "p-torta", 5)

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.EntityID != "i-harina" {
		t.Fatalf("failing entity = %s, want i-harina", insufficient.EntityID)
	}
	// No partial consumption, no product stock change.
	if got := ingredientStock(t, store, "i-caja"); got != 8 {
		t.Fatalf("caja stock = %v, want 8", got)
	}
	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d, want 10", got)
	}
}

func TestProduceRejectsRecipelessProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	seedProductionFixtures(t, store)
	svc := NewProductionService(store, store.Ingredients(), store.Recipes(), newOrderService(store))

	if err := svc.Produce(context.Background(), "p-cafe", 1); err == nil {
		t.Fatal("expected error for product without a recipe")
	}
	if err := svc.Produce(context.Background(), "p-torta", 0); err == nil {
		t.Fatal("expected error for non-positive units")
	}
}
