package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

const testBusiness = "biz-1"

func seedCatalog(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	products := []domain.Product{
		{ID: "p-torta", BusinessID: testBusiness, Name: "Torta", SalePrice: 1500, Stock: 10},
		{ID: "p-cafe", BusinessID: testBusiness, Name: "Cafe", SalePrice: 800, Stock: domain.UntrackedStock},
		{ID: "p-caja", BusinessID: testBusiness, Name: "Caja", SalePrice: 2200, Stock: 5},
	}
	for i := range products {
		if err := store.Create(ctx, &products[i]); err != nil {
			t.Fatalf("seed product %s: %v", products[i].ID, err)
		}
	}
}

func productStock(t *testing.T, store *repository.MemoryStore, id string) int {
	t.Helper()
	p, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %s: %v", id, err)
	}
	return p.Stock
}

func newOrderService(store *repository.MemoryStore) *OrderService {
	return NewOrderService(store, store.Ingredients(), store.Orders(), store.Anomalies())
}

func TestCreateOrderReservesStock(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)

	order, err := svc.Create(context.Background(), testBusiness, []domain.OrderLine{
		{ProductID: "p-torta", Quantity: 3},
		{ProductID: "p-cafe", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected persisted order to have an id")
	}
	if order.Status != domain.OrderPending {
		t.Fatalf("status = %s, want %s", order.Status, domain.OrderPending)
	}
	if got := productStock(t, store, "p-torta"); got != 7 {
		t.Fatalf("torta stock = %d, want 7", got)
	}
	if got := productStock(t, store, "p-cafe"); got != domain.UntrackedStock {
		t.Fatalf("cafe stock = %d, want untracked sentinel", got)
	}

	// Names and prices come from the catalog when the caller omits them.
	if order.Lines[0].ProductName != "Torta" || order.Lines[0].UnitPrice != 1500 {
		t.Fatalf("line not denormalized: %+v", order.Lines[0])
	}
	if want := 3*1500.0 + 2*800.0; order.Total != want {
		t.Fatalf("total = %v, want %v", order.Total, want)
	}
}

func TestCreateOrderInsufficientStockRejectsWholeOrder(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)

	_, err := svc.Create(context.Background(), testBusiness, []domain.OrderLine{
		{ProductID: "p-torta", Quantity: 2},
		{ProductID: "p-caja", Quantity: 6}, // only 5 in stock
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if insufficient.EntityID != "p-caja" {
		t.Fatalf("failing entity = %s, want p-caja", insufficient.EntityID)
	}
	// Nothing committed, including the line that would have succeeded.
	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d, want 10", got)
	}
	if got := productStock(t, store, "p-caja"); got != 5 {
		t.Fatalf("caja stock = %d, want 5", got)
	}
}

func TestCreateOrderValidatesLines(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testBusiness, nil); err == nil {
		t.Fatal("expected error for empty line set")
	}
	if _, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 0}}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if _, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{Quantity: 1}}); err == nil {
		t.Fatal("expected error for missing product id")
	}
}

func TestEditOrderAppliesDifferenceOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 3}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Raising 3 -> 5 against stock 7 reserves only the 2-unit difference.
	edited, err := svc.Edit(ctx, order.ID, []domain.OrderLine{{ProductID: "p-torta", Quantity: 5}})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := productStock(t, store, "p-torta"); got != 5 {
		t.Fatalf("torta stock = %d, want 5", got)
	}
	if want := 5 * 1500.0; edited.Total != want {
		t.Fatalf("total = %v, want %v", edited.Total, want)
	}

	// Dropping the line on a later edit releases its reservation.
	if _, err := svc.Edit(ctx, order.ID, []domain.OrderLine{{ProductID: "p-cafe", Quantity: 1}}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d, want 10 after release", got)
	}
}

func TestEditRejectsImmutableOrder(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.UpdateStatus(ctx, order.ID, domain.OrderDispatched); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	_, err = svc.Edit(ctx, order.ID, []domain.OrderLine{{ProductID: "p-torta", Quantity: 2}})
	if !errors.Is(err, domain.ErrOrderImmutable) {
		t.Fatalf("err = %v, want ErrOrderImmutable", err)
	}
	if got := productStock(t, store, "p-torta"); got != 9 {
		t.Fatalf("torta stock = %d, want 9 unchanged", got)
	}
}

func TestCancelReleasesAndIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 4}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d, want 10 after cancel", got)
	}

	// Second cancel is a no-op and must not double-release.
	if err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d, want 10 after repeated cancel", got)
	}

	got, err := store.Orders().Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if got.Status != domain.OrderCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
}

func TestConcurrentCancelsReleaseOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 4}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 8 goroutines race the same cancel. Only one may release the lines;
	// stock above its initial 10 means a double release.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Cancel(ctx, order.ID); err != nil {
				t.Errorf("Cancel: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := productStock(t, store, "p-torta"); got != 10 {
		t.Fatalf("torta stock = %d after racing cancels, want 10", got)
	}
	anomalies, err := store.Anomalies().List(ctx, testBusiness, time.Time{})
	if err != nil {
		t.Fatalf("List anomalies: %v", err)
	}
	if len(anomalies) != 0 {
		t.Fatalf("anomalies = %d, want 0", len(anomalies))
	}
}

func TestEditRacingDispatchStaysConsistent(t *testing.T) {
	ctx := context.Background()

	// Either the edit lands before the dispatch or it observes the
	// dispatched order and is rejected; stock must match whichever order
	// survived.
	for i := 0; i < 50; i++ {
		store := repository.NewMemoryStore()
		seedCatalog(t, store)
		svc := newOrderService(store)

		order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 1}})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		var wg sync.WaitGroup
		var editErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, editErr = svc.Edit(ctx, order.ID, []domain.OrderLine{{ProductID: "p-torta", Quantity: 3}})
		}()
		go func() {
			defer wg.Done()
			if err := svc.UpdateStatus(ctx, order.ID, domain.OrderDispatched); err != nil {
				t.Errorf("UpdateStatus: %v", err)
			}
		}()
		wg.Wait()

		final, err := store.Orders().Get(ctx, order.ID)
		if err != nil {
			t.Fatalf("Get order: %v", err)
		}
		switch {
		case editErr == nil:
			if final.Lines[0].Quantity != 3 {
				t.Fatalf("accepted edit not persisted: quantity = %d", final.Lines[0].Quantity)
			}
			if got := productStock(t, store, "p-torta"); got != 7 {
				t.Fatalf("torta stock = %d, want 7 for edited order", got)
			}
		case errors.Is(editErr, domain.ErrOrderImmutable):
			if final.Lines[0].Quantity != 1 {
				t.Fatalf("rejected edit changed lines: quantity = %d", final.Lines[0].Quantity)
			}
			if got := productStock(t, store, "p-torta"); got != 9 {
				t.Fatalf("torta stock = %d, want 9 for untouched order", got)
			}
		default:
			t.Fatalf("Edit: %v", editErr)
		}
	}
}

func TestConcurrentCreatesNeverOversell(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	// 10 in stock, 20 goroutines each want 1. Exactly 10 must succeed.
	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-torta", Quantity: 1}})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *domain.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 10 {
		t.Fatalf("succeeded = %d, want 10", succeeded)
	}
	if got := productStock(t, store, "p-torta"); got != 0 {
		t.Fatalf("torta stock = %d, want 0", got)
	}
}

func TestCancelAgainstSaneStockRecordsNoAnomalies(t *testing.T) {
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := newOrderService(store)
	ctx := context.Background()

	order, err := svc.Create(ctx, testBusiness, []domain.OrderLine{{ProductID: "p-caja", Quantity: 2}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Cancel(ctx, order.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	anomalies, err := store.Anomalies().List(ctx, testBusiness, time.Time{})
	if err != nil {
		t.Fatalf("List anomalies: %v", err)
	}
	if len(anomalies) != 0 {
		t.Fatalf("anomalies = %d, want 0", len(anomalies))
	}
}
