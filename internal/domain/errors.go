package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProductNotFound is returned by stores when a product id is unknown.
	ErrProductNotFound = errors.New("product not found")

	// ErrIngredientNotFound is returned by stores when an ingredient id is unknown.
	ErrIngredientNotFound = errors.New("ingredient not found")

	// ErrOrderNotFound is returned by stores when an order id is unknown.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderImmutable rejects edits to orders that are already
	// dispatched, delivered or cancelled.
	ErrOrderImmutable = errors.New("order can no longer be edited")

	// ErrIngredientInUse rejects deletion of an ingredient that is still
	// referenced by at least one recipe.
	ErrIngredientInUse = errors.New("ingredient is referenced by a recipe")
)

// InvalidUnitConversionError signals a conversion between incompatible unit
// families. This is a programming-contract violation, not user input.
type InvalidUnitConversionError struct {
	From Unit
	To   Unit
}

func (e *InvalidUnitConversionError) Error() string {
	return fmt.Sprintf("invalid unit conversion: %s -> %s", e.From, e.To)
}

// DuplicateIngredientError rejects recipe input that names the same
// ingredient twice. Nothing is mutated when it is returned.
type DuplicateIngredientError struct {
	IngredientID string
}

func (e *DuplicateIngredientError) Error() string {
	return fmt.Sprintf("duplicate recipe ingredient: %s", e.IngredientID)
}

// InsufficientStockError is the recoverable business condition surfaced
// verbatim to the end user so they can adjust the requested quantity.
type InsufficientStockError struct {
	EntityID  string
	Available float64
	Requested float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %.3f, requested %.3f",
		e.EntityID, e.Available, e.Requested)
}

// ReconciliationAnomaly records a release that would have pushed stock
// negative. The quantity is clamped at zero and the anomaly is surfaced to
// an operator instead of failing the current operation, since it points at
// historical drift rather than a problem with the request being processed.
type ReconciliationAnomaly struct {
	ID         string    `json:"id" db:"id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Attempted  float64   `json:"attempted" db:"attempted"`
	Available  float64   `json:"available" db:"available"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
}
