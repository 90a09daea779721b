// Package repository defines the collaborator contracts the engine needs
// from the persistence layer: simple get/set/list operations over durable
// records keyed by identifier. Postgres implementations live in the
// postgres subpackage; in-memory implementations back tests and local runs.
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

type ProductStore interface {
	GetAll(ctx context.Context, businessID string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	// ApplyStockDeltas commits the outcome of a reconciliation run. It must
	// be atomic: either every delta lands or none do.
	ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error
}

type IngredientStore interface {
	GetAll(ctx context.Context, businessID string) ([]domain.Ingredient, error)
	Get(ctx context.Context, id string) (domain.Ingredient, error)
	Create(ctx context.Context, ingredient *domain.Ingredient) error
	UpdateCost(ctx context.Context, id string, costPerUnit float64) error
	ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error
	// Delete removes an ingredient. Implementations must reject deletion
	// while any recipe references it.
	Delete(ctx context.Context, id string) error
}

type RecipeStore interface {
	Get(ctx context.Context, productID string) (domain.Recipe, error)
	GetAll(ctx context.Context, businessID string) (map[string]domain.Recipe, error)
	Set(ctx context.Context, productID string, recipe domain.Recipe) error
	// ReferencingProducts lists products whose recipe contains the ingredient.
	ReferencingProducts(ctx context.Context, ingredientID string) ([]string, error)
}

type OrderStore interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	// GetPreviousLines returns the order's persisted line snapshot, used to
	// diff an edit against what stock was actually reserved.
	GetPreviousLines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	ReplaceLines(ctx context.Context, orderID string, lines []domain.OrderLine, total float64) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	// ListCompleted returns dispatched/delivered orders within the window.
	ListCompleted(ctx context.Context, businessID string, window domain.ReportWindow) ([]domain.Order, error)
}

type AnomalyStore interface {
	Record(ctx context.Context, anomalies []domain.ReconciliationAnomaly) error
	List(ctx context.Context, businessID string, since time.Time) ([]domain.ReconciliationAnomaly, error)
}
