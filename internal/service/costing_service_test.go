package service

import (
	"context"
	"math"
	"testing"

	"github.com/andresuchdata/ordena/backend-go/internal/costing"
	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

func TestProductCostPreview(t *testing.T) {
	store := repository.NewMemoryStore()
	seedProductionFixtures(t, store)
	svc := NewCostingService(store, store.Ingredients(), store.Recipes())

	// 0.5 kg flour @ 1000 + 1 box @ 200 + 0.2 l water @ 0 + labor 300.
	got, err := svc.ProductCost(context.Background(), "p-torta")
	if err != nil {
		t.Fatalf("ProductCost: %v", err)
	}

	if math.Abs(got.UnitCost-1000) > 1e-9 {
		t.Fatalf("unit cost = %v, want 1000", got.UnitCost)
	}
	if got.LaborCost != 300 {
		t.Fatalf("labor cost = %v, want 300", got.LaborCost)
	}
	if math.Abs(got.MarginAmount-500) > 1e-9 {
		t.Fatalf("margin amount = %v, want 500", got.MarginAmount)
	}
	if math.Abs(got.MarginPercent-500.0/1500*100) > 1e-9 {
		t.Fatalf("margin percent = %v", got.MarginPercent)
	}

	// Water carries no cost, so it must be flagged rather than silently zero.
	if len(got.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v, want one entry", got.Diagnostics)
	}
	d := got.Diagnostics[0]
	if d.IngredientID != "i-agua" || d.Reason != costing.ReasonNoCost {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestProductCostRecipelessProductIsLaborOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	seedProductionFixtures(t, store)
	svc := NewCostingService(store, store.Ingredients(), store.Recipes())

	// No recipe stored: empty recipe, zero cost, full price as margin.
	got, err := svc.ProductCost(context.Background(), "p-cafe")
	if err != nil {
		t.Fatalf("ProductCost: %v", err)
	}
	if got.UnitCost != 0 {
		t.Fatalf("unit cost = %v, want 0", got.UnitCost)
	}
	if got.MarginAmount != 800 {
		t.Fatalf("margin amount = %v, want 800", got.MarginAmount)
	}
}

func TestProductCostUnknownProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewCostingService(store, store.Ingredients(), store.Recipes())

	if _, err := svc.ProductCost(context.Background(), "nope"); err != domain.ErrProductNotFound {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}
