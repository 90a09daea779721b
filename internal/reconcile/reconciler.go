// Package reconcile computes and applies the minimal stock deltas that
// keep the ledger consistent with an order's lifecycle events.
package reconcile

import (
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/ledger"
)

// Reconciler applies one order's desired line set against the stock ledger.
// All multi-line changes go through a single BatchApply, so a mid-batch
// shortfall leaves the ledger untouched and the whole request is rejected.
type Reconciler struct {
	ledger   *ledger.Ledger
	products map[string]domain.Product
}

func New(l *ledger.Ledger, products []domain.Product) *Reconciler {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Reconciler{ledger: l, products: byID}
}

// Create reserves stock for every line of a new order. Any single
// insufficient-stock failure aborts the batch and no partial order is
// ever reflected in the ledger. The committed deltas are returned for
// persistence.
func (r *Reconciler) Create(lines []domain.OrderLine) ([]domain.StockDelta, error) {
	deltas := r.lineDeltas(nil, lines)
	if err := r.ledger.BatchApply(deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// Edit diffs the order's previous line snapshot against the new lines and
// applies only the change: lines removed release their quantity, lines
// added reserve theirs, lines in both reserve or release the difference.
func (r *Reconciler) Edit(previous, next []domain.OrderLine) ([]domain.StockDelta, error) {
	deltas := r.lineDeltas(previous, next)
	if err := r.ledger.BatchApply(deltas); err != nil {
		return nil, err
	}
	return deltas, nil
}

// Delete releases every line unconditionally, restoring the stock a
// cancelled or removed order had reserved.
func (r *Reconciler) Delete(lines []domain.OrderLine) []domain.StockDelta {
	deltas := r.lineDeltas(lines, nil)
	for _, d := range deltas {
		r.ledger.Release(d.EntityID, -d.Delta)
	}
	return deltas
}

// lineDeltas folds two line sets into per-product net deltas, keyed by
// productId. Lines whose product no longer exists are skipped with a
// warning: the catalog evolves underneath historical orders, and a
// deleted definition cannot be reconciled against.
func (r *Reconciler) lineDeltas(previous, next []domain.OrderLine) []domain.StockDelta {
	type change struct {
		prev int
		next int
	}
	changes := make(map[string]*change)
	order := make([]string, 0, len(previous)+len(next))

	add := func(line domain.OrderLine, toNext bool) {
		if _, ok := r.products[line.ProductID]; !ok {
			log.Warn().
				Str("product_id", line.ProductID).
				Str("product_name", line.ProductName).
				Msg("order line references a missing product, skipping reconciliation")
			return
		}
		c, ok := changes[line.ProductID]
		if !ok {
			c = &change{}
			changes[line.ProductID] = c
			order = append(order, line.ProductID)
		}
		if toNext {
			c.next += line.Quantity
		} else {
			c.prev += line.Quantity
		}
	}

	for _, line := range previous {
		add(line, false)
	}
	for _, line := range next {
		add(line, true)
	}

	deltas := make([]domain.StockDelta, 0, len(order))
	for _, id := range order {
		c := changes[id]
		if c.next == c.prev {
			continue
		}
		deltas = append(deltas, domain.StockDelta{
			EntityID: id,
			Delta:    float64(c.next - c.prev),
		})
	}
	return deltas
}
