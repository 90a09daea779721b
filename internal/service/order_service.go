package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/ledger"
	"github.com/andresuchdata/ordena/backend-go/internal/reconcile"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

// OrderService drives order lifecycle reconciliation. All stock mutations
// for one business are serialized behind a per-business mutex: a
// reconciliation run is a read-then-write sequence over shared quantities
// and two concurrent creations against the same low-stock product must not
// both observe sufficient stock.
type OrderService struct {
	products    repository.ProductStore
	ingredients repository.IngredientStore
	orders      repository.OrderStore
	anomalies   repository.AnomalyStore
	locks       sync.Map // businessID -> *sync.Mutex
}

func NewOrderService(
	products repository.ProductStore,
	ingredients repository.IngredientStore,
	orders repository.OrderStore,
	anomalies repository.AnomalyStore,
) *OrderService {
	return &OrderService{
		products:    products,
		ingredients: ingredients,
		orders:      orders,
		anomalies:   anomalies,
	}
}

func (s *OrderService) lockBusiness(businessID string) func() {
	mu, _ := s.locks.LoadOrStore(businessID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func validateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("order has no lines")
	}
	for i, line := range lines {
		if line.ProductID == "" {
			return fmt.Errorf("line %d: product id is required", i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive, got %d", i, line.Quantity)
		}
	}
	return nil
}

// fillLineDefaults denormalizes the product name and sale price onto lines
// that did not carry them, so historical orders stay resolvable after
// catalog changes.
func fillLineDefaults(lines []domain.OrderLine, products []domain.Product) []domain.OrderLine {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		if p, ok := byID[line.ProductID]; ok {
			if line.ProductName == "" {
				line.ProductName = p.Name
			}
			if line.UnitPrice == 0 {
				line.UnitPrice = p.SalePrice
			}
		}
		out[i] = line
	}
	return out
}

// Create reserves stock for every line and persists the order. A single
// insufficient-stock failure rejects the whole order; no partial order is
// ever persisted.
func (s *OrderService) Create(ctx context.Context, businessID string, lines []domain.OrderLine) (domain.Order, error) {
	if err := validateLines(lines); err != nil {
		return domain.Order{}, err
	}

	unlock := s.lockBusiness(businessID)
	defer unlock()

	products, err := s.products.GetAll(ctx, businessID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch products: %w", err)
	}
	lines = fillLineDefaults(lines, products)

	stock := ledger.FromCatalog(businessID, products, nil)
	deltas, err := reconcile.New(stock, products).Create(lines)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.commit(ctx, stock, deltas); err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		BusinessID: businessID,
		Lines:      lines,
		Status:     domain.OrderPending,
	}
	order.Total = order.LineTotal()
	if err := s.orders.Create(ctx, &order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	log.Info().
		Str("business_id", businessID).
		Str("order_id", order.ID).
		Int("lines", len(lines)).
		Msg("order created, stock reserved")
	return order, nil
}

// Edit re-reconciles a pending or in-progress order against its previous
// line snapshot, applying only the per-product difference. A mid-edit
// shortfall leaves stock untouched and rejects the edit wholesale.
func (s *OrderService) Edit(ctx context.Context, orderID string, lines []domain.OrderLine) (domain.Order, error) {
	if err := validateLines(lines); err != nil {
		return domain.Order{}, err
	}

	// The pre-lock fetch only resolves which business to lock; order state
	// read outside the lock is stale by definition.
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	unlock := s.lockBusiness(order.BusinessID)
	defer unlock()

	order, err = s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.Editable() {
		return domain.Order{}, domain.ErrOrderImmutable
	}

	previous, err := s.orders.GetPreviousLines(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch previous lines: %w", err)
	}
	products, err := s.products.GetAll(ctx, order.BusinessID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch products: %w", err)
	}
	lines = fillLineDefaults(lines, products)

	stock := ledger.FromCatalog(order.BusinessID, products, nil)
	deltas, err := reconcile.New(stock, products).Edit(previous, lines)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.commit(ctx, stock, deltas); err != nil {
		return domain.Order{}, err
	}

	order.Lines = lines
	order.Total = order.LineTotal()
	if err := s.orders.ReplaceLines(ctx, orderID, lines, order.Total); err != nil {
		return domain.Order{}, fmt.Errorf("persist lines: %w", err)
	}
	return order, nil
}

// Cancel releases every line unconditionally and marks the order
// cancelled. Releases never veto: drift shows up as recorded anomalies,
// not failures.
func (s *OrderService) Cancel(ctx context.Context, orderID string) error {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	unlock := s.lockBusiness(order.BusinessID)
	defer unlock()

	// Re-read under the lock: the already-cancelled check and the release
	// must be one critical section, or racing cancels each release the
	// same lines.
	order, err = s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == domain.OrderCancelled {
		return nil
	}

	products, err := s.products.GetAll(ctx, order.BusinessID)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}

	stock := ledger.FromCatalog(order.BusinessID, products, nil)
	deltas := reconcile.New(stock, products).Delete(order.Lines)
	if err := s.commit(ctx, stock, deltas); err != nil {
		return err
	}

	return s.orders.UpdateStatus(ctx, orderID, domain.OrderCancelled)
}

// UpdateStatus advances the order's lifecycle without touching stock.
// Transitions take the business lock so an edit cannot interleave with
// the order becoming immutable.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if status == domain.OrderCancelled {
		return s.Cancel(ctx, orderID)
	}
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	unlock := s.lockBusiness(order.BusinessID)
	defer unlock()

	return s.orders.UpdateStatus(ctx, orderID, status)
}

// commit persists the ledger outcome: the stock deltas atomically, then
// any reconciliation anomalies the run flagged.
func (s *OrderService) commit(ctx context.Context, stock *ledger.Ledger, deltas []domain.StockDelta) error {
	if len(deltas) > 0 {
		if err := s.products.ApplyStockDeltas(ctx, deltas); err != nil {
			return fmt.Errorf("apply stock deltas: %w", err)
		}
	}
	if anomalies := stock.Anomalies(); len(anomalies) > 0 && s.anomalies != nil {
		if err := s.anomalies.Record(ctx, anomalies); err != nil {
			log.Warn().Err(err).Msg("failed to record reconciliation anomalies")
		}
	}
	return nil
}
