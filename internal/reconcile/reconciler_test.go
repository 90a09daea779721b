package reconcile

import (
	"errors"
	"testing"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/ledger"
)

func fixture(stock int) (*Reconciler, *ledger.Ledger) {
	products := []domain.Product{
		{ID: "caja", BusinessID: "biz-1", Name: "Caja", Stock: stock},
		{ID: "torta", BusinessID: "biz-1", Name: "Torta", Stock: 4},
		{ID: "promo", BusinessID: "biz-1", Name: "Promo", Stock: domain.UntrackedStock},
	}
	l := ledger.FromCatalog("biz-1", products, nil)
	return New(l, products), l
}

func stockOf(t *testing.T, l *ledger.Ledger, id string) float64 {
	t.Helper()
	qty, ok := l.Quantity(id)
	if !ok {
		t.Fatalf("entity %s not in ledger", id)
	}
	return qty
}

func TestCreate(t *testing.T) {
	r, l := fixture(10)

	deltas, err := r.Create([]domain.OrderLine{
		{ProductID: "caja", Quantity: 3},
		{ProductID: "torta", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d", len(deltas))
	}
	if got := stockOf(t, l, "caja"); got != 7 {
		t.Errorf("caja stock = %v, want 7", got)
	}
	if got := stockOf(t, l, "torta"); got != 2 {
		t.Errorf("torta stock = %v, want 2", got)
	}
}

func TestCreateAbortsWholeBatch(t *testing.T) {
	r, l := fixture(10)

	_, err := r.Create([]domain.OrderLine{
		{ProductID: "caja", Quantity: 3},
		{ProductID: "torta", Quantity: 5}, // only 4 available
	})
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.EntityID != "torta" || insufficient.Available != 4 || insufficient.Requested != 5 {
		t.Errorf("shortfall detail wrong: %+v", insufficient)
	}
	if got := stockOf(t, l, "caja"); got != 10 {
		t.Errorf("failed batch must not touch caja, got %v", got)
	}
}

func TestEditReservesTheDifference(t *testing.T) {
	r, l := fixture(10)

	previous := []domain.OrderLine{{ProductID: "caja", Quantity: 3}}
	if _, err := r.Create(previous); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Create took 3 of 10 (stock 7); raising 3 -> 5 reserves 2 more.
	if _, err := r.Edit(previous, []domain.OrderLine{{ProductID: "caja", Quantity: 5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stockOf(t, l, "caja"); got != 5 {
		t.Errorf("caja stock = %v, want 5", got)
	}
}

func TestEditQuantityIncreaseAgainstCurrentStock(t *testing.T) {
	// Stock of 10 already reflects the order's original 3 units; the edit
	// only needs the 2-unit difference.
	r, l := fixture(10)

	if _, err := r.Edit(
		[]domain.OrderLine{{ProductID: "caja", Quantity: 3}},
		[]domain.OrderLine{{ProductID: "caja", Quantity: 5}},
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stockOf(t, l, "caja"); got != 8 {
		t.Errorf("caja stock = %v, want 8", got)
	}
}

func TestEditFailsCleanlyOnShortfall(t *testing.T) {
	r, l := fixture(1)

	// Quantity jump 3 -> 5 needs 2 more units but only 1 remains.
	_, err := r.Edit(
		[]domain.OrderLine{{ProductID: "caja", Quantity: 3}},
		[]domain.OrderLine{{ProductID: "caja", Quantity: 5}},
	)
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if got := stockOf(t, l, "caja"); got != 1 {
		t.Errorf("rejected edit must leave stock at 1, got %v", got)
	}
}

func TestEditReleasesRemovedLines(t *testing.T) {
	r, l := fixture(10)

	previous := []domain.OrderLine{
		{ProductID: "caja", Quantity: 3},
		{ProductID: "torta", Quantity: 2},
	}
	if _, err := r.Create(previous); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Drop torta entirely, keep caja as is, add a new promo line.
	next := []domain.OrderLine{
		{ProductID: "caja", Quantity: 3},
		{ProductID: "promo", Quantity: 7},
	}
	deltas, err := r.Edit(previous, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stockOf(t, l, "torta"); got != 4 {
		t.Errorf("torta should be fully released, got %v", got)
	}
	if got := stockOf(t, l, "caja"); got != 7 {
		t.Errorf("unchanged caja line must not move stock, got %v", got)
	}
	// Unchanged lines fold to zero and are omitted from the batch.
	for _, d := range deltas {
		if d.EntityID == "caja" {
			t.Errorf("caja should not appear in deltas: %+v", deltas)
		}
	}
}

func TestDeleteRestoresStock(t *testing.T) {
	r, l := fixture(10)

	lines := []domain.OrderLine{
		{ProductID: "caja", Quantity: 4},
		{ProductID: "promo", Quantity: 2},
	}
	if _, err := r.Create(lines); err != nil {
		t.Fatalf("setup: %v", err)
	}
	r.Delete(lines)

	if got := stockOf(t, l, "caja"); got != 10 {
		t.Errorf("caja stock = %v, want 10", got)
	}
	if got := stockOf(t, l, "promo"); got != domain.UntrackedStock {
		t.Errorf("untracked promo must stay untracked, got %v", got)
	}
}

func TestMissingProductLinesAreSkipped(t *testing.T) {
	r, l := fixture(10)

	deltas, err := r.Create([]domain.OrderLine{
		{ProductID: "caja", Quantity: 2},
		{ProductID: "deleted-product", ProductName: "Gone", Quantity: 99},
	})
	if err != nil {
		t.Fatalf("missing product must not fail the batch: %v", err)
	}
	if len(deltas) != 1 || deltas[0].EntityID != "caja" {
		t.Errorf("expected only caja delta, got %+v", deltas)
	}
	if got := stockOf(t, l, "caja"); got != 8 {
		t.Errorf("caja stock = %v, want 8", got)
	}
}
