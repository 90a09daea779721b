// Package ledger holds the authoritative in-memory stock model a
// reconciliation run mutates. A ledger is built from freshly fetched
// catalog state, mutated through validated operations, and its committed
// deltas are handed back to the persistence layer. It is not safe for
// concurrent use; callers serialize writers per business.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

// epsilon absorbs float drift when checking quantities against zero.
const epsilon = 1e-9

type entry struct {
	qty     float64
	tracked bool
}

// Ledger maps entity ids (products and ingredients) to current stock.
type Ledger struct {
	businessID string
	entries    map[string]entry
	anomalies  []domain.ReconciliationAnomaly
}

// New returns an empty ledger for one business.
func New(businessID string) *Ledger {
	return &Ledger{
		businessID: businessID,
		entries:    make(map[string]entry),
	}
}

// FromCatalog seeds a ledger with the current product and ingredient stock.
func FromCatalog(businessID string, products []domain.Product, ingredients []domain.Ingredient) *Ledger {
	l := New(businessID)
	for _, p := range products {
		l.Track(p.ID, float64(p.Stock), p.TracksStock())
	}
	for _, i := range ingredients {
		l.Track(i.ID, i.Stock, i.TracksStock())
	}
	return l
}

// Track registers an entity. Untracked entities always report sufficient
// stock and are never decremented.
func (l *Ledger) Track(entityID string, qty float64, tracked bool) {
	if !tracked {
		qty = domain.UntrackedStock
	}
	l.entries[entityID] = entry{qty: qty, tracked: tracked}
}

// Quantity returns the current stock for an entity and whether it is known
// to the ledger.
func (l *Ledger) Quantity(entityID string) (float64, bool) {
	e, ok := l.entries[entityID]
	return e.qty, ok
}

// Tracked reports whether the entity's stock is enforced.
func (l *Ledger) Tracked(entityID string) bool {
	return l.entries[entityID].tracked
}

// Reserve consumes qty units of an entity's stock. A tracked entity with
// insufficient stock fails with InsufficientStockError and nothing is
// mutated.
func (l *Ledger) Reserve(entityID string, qty float64) error {
	e, ok := l.entries[entityID]
	if !ok || !e.tracked {
		return nil
	}
	if e.qty-qty < -epsilon {
		return &domain.InsufficientStockError{
			EntityID:  entityID,
			Available: e.qty,
			Requested: qty,
		}
	}
	e.qty -= qty
	l.entries[entityID] = e
	return nil
}

// Release restores qty units of an entity's stock. The result is clamped
// at zero; a clamp means recorded consumption exceeds recorded stock
// (historical drift) and is captured as a reconciliation anomaly instead
// of failing the current operation.
func (l *Ledger) Release(entityID string, qty float64) {
	e, ok := l.entries[entityID]
	if !ok || !e.tracked {
		return
	}
	next := e.qty + qty
	if next < -epsilon {
		l.flagAnomaly(entityID, qty, e.qty)
		next = 0
	}
	e.qty = next
	l.entries[entityID] = e
}

// BatchApply applies a multi-entity stock change transactionally: every
// delta is validated in sequence against a scratch view before any of them
// commits, so a failure leaves the ledger exactly as it was. Positive
// deltas consume stock, negative deltas restore it.
func (l *Ledger) BatchApply(deltas []domain.StockDelta) error {
	type clamp struct {
		entityID  string
		attempted float64
		available float64
	}
	scratch := make(map[string]float64, len(deltas))
	var clamps []clamp

	for _, d := range deltas {
		e, ok := l.entries[d.EntityID]
		if !ok || !e.tracked {
			continue
		}
		cur, seen := scratch[d.EntityID]
		if !seen {
			cur = e.qty
		}
		next := cur - d.Delta
		if next < -epsilon {
			if d.Delta > 0 {
				return &domain.InsufficientStockError{
					EntityID:  d.EntityID,
					Available: cur,
					Requested: d.Delta,
				}
			}
			// A release overshooting zero is drift, not a veto.
			clamps = append(clamps, clamp{entityID: d.EntityID, attempted: -d.Delta, available: cur})
			next = 0
		}
		scratch[d.EntityID] = next
	}

	for id, qty := range scratch {
		e := l.entries[id]
		e.qty = qty
		l.entries[id] = e
	}
	for _, c := range clamps {
		l.flagAnomaly(c.entityID, c.attempted, c.available)
	}
	return nil
}

// Anomalies drains the reconciliation anomalies recorded so far.
func (l *Ledger) Anomalies() []domain.ReconciliationAnomaly {
	out := l.anomalies
	l.anomalies = nil
	return out
}

func (l *Ledger) flagAnomaly(entityID string, attempted, available float64) {
	anomaly := domain.ReconciliationAnomaly{
		ID:         uuid.NewString(),
		BusinessID: l.businessID,
		EntityID:   entityID,
		Attempted:  attempted,
		Available:  available,
		OccurredAt: time.Now().UTC(),
	}
	l.anomalies = append(l.anomalies, anomaly)
	log.Warn().
		Str("business_id", l.businessID).
		Str("entity_id", entityID).
		Float64("attempted", attempted).
		Float64("available", available).
		Msg("stock clamped at zero, recorded reconciliation anomaly")
}
