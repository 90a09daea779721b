package domain

import "time"

// UntrackedStock is the sentinel stock value meaning the entity's stock is
// never checked or decremented.
const UntrackedStock = -1

// Ingredient is a raw material consumed when producing a product.
// Stock and MinStock are expressed in the ingredient's base unit.
type Ingredient struct {
	ID          string    `json:"id" db:"id"`
	BusinessID  string    `json:"business_id" db:"business_id"`
	Name        string    `json:"name" db:"name"`
	Unit        Unit      `json:"unit" db:"unit"`
	Stock       float64   `json:"stock" db:"stock"`
	MinStock    float64   `json:"min_stock" db:"min_stock"`
	MaxStock    *float64  `json:"max_stock,omitempty" db:"max_stock"`
	CostPerUnit float64   `json:"cost_per_unit" db:"cost_per_unit"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TracksStock reports whether the ingredient's stock is enforced.
func (i Ingredient) TracksStock() bool {
	return i.Stock != UntrackedStock
}

// BelowMinimum reports whether tracked stock has fallen under the reorder
// threshold.
func (i Ingredient) BelowMinimum() bool {
	return i.TracksStock() && i.Stock < i.MinStock
}

// Product is a finished good offered for sale. Stock -1 means unlimited.
type Product struct {
	ID         string    `json:"id" db:"id"`
	BusinessID string    `json:"business_id" db:"business_id"`
	Name       string    `json:"name" db:"name"`
	SalePrice  float64   `json:"sale_price" db:"sale_price"`
	Stock      int       `json:"stock" db:"stock"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TracksStock reports whether the product's stock is enforced.
func (p Product) TracksStock() bool {
	return p.Stock != UntrackedStock
}

// RecipeEntry is one line of a product's bill of materials. Quantity is
// always stored in the ingredient's base unit; DisplayUnit remembers the
// unit the quantity was captured in so display round-trips stay exact.
type RecipeEntry struct {
	IngredientID string  `json:"ingredient_id" db:"ingredient_id"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	DisplayUnit  Unit    `json:"display_unit,omitempty" db:"display_unit"`
}

// Recipe maps a product to the ingredients required to produce one unit.
// LaborCost is the non-material production cost in currency units; it is
// carried as an explicit field rather than a synthetic ingredient row and
// never appears in Entries.
type Recipe struct {
	ProductID string        `json:"product_id" db:"product_id"`
	Entries   []RecipeEntry `json:"entries"`
	LaborCost float64       `json:"labor_cost" db:"labor_cost"`
}

// Entry returns the entry for an ingredient, if present.
func (r Recipe) Entry(ingredientID string) (RecipeEntry, bool) {
	for _, e := range r.Entries {
		if e.IngredientID == ingredientID {
			return e, true
		}
	}
	return RecipeEntry{}, false
}

// OrderLine is one product/quantity pair on an order. ProductName is
// denormalized at capture time and backs name-fallback resolution for
// orders that outlive a product rename.
type OrderLine struct {
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
}

// Order is a customer order. Stock is mutated only through reconciliation
// of its line set, never by order-total arithmetic.
type Order struct {
	ID         string      `json:"id" db:"id"`
	BusinessID string      `json:"business_id" db:"business_id"`
	Lines      []OrderLine `json:"lines"`
	Total      float64     `json:"total" db:"total"`
	Status     OrderStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// LineTotal sums price times quantity across the order's lines.
func (o Order) LineTotal() float64 {
	var total float64
	for _, l := range o.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// StockDelta is one entity's pending stock change. Positive Delta consumes
// stock (a reservation), negative Delta restores it (a release).
type StockDelta struct {
	EntityID string  `json:"entity_id" db:"entity_id"`
	Delta    float64 `json:"delta" db:"delta"`
}
