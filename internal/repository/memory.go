package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

// MemoryStore implements every store contract over in-process maps.
type MemoryStore struct {
	mu          sync.RWMutex
	products    map[string]domain.Product
	ingredients map[string]domain.Ingredient
	recipes     map[string]domain.Recipe
	orders      map[string]domain.Order
	anomalies   []domain.ReconciliationAnomaly
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:    make(map[string]domain.Product),
		ingredients: make(map[string]domain.Ingredient),
		recipes:     make(map[string]domain.Recipe),
		orders:      make(map[string]domain.Order),
	}
}

// --- ProductStore ---

func (s *MemoryStore) GetAll(ctx context.Context, businessID string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Product
	for _, p := range s.products {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *MemoryStore) Create(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryStore) ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deltas {
		if p, ok := s.products[d.EntityID]; ok && p.TracksStock() {
			p.Stock -= int(d.Delta)
			if p.Stock < 0 {
				p.Stock = 0
			}
			p.UpdatedAt = time.Now().UTC()
			s.products[d.EntityID] = p
			continue
		}
		if ing, ok := s.ingredients[d.EntityID]; ok && ing.TracksStock() {
			ing.Stock -= d.Delta
			if ing.Stock < 0 {
				ing.Stock = 0
			}
			ing.UpdatedAt = time.Now().UTC()
			s.ingredients[d.EntityID] = ing
		}
	}
	return nil
}

// --- IngredientStore ---

// Ingredients exposes the store through its IngredientStore contract; the
// shared ApplyStockDeltas already covers both entity kinds.
func (s *MemoryStore) Ingredients() IngredientStore { return (*memoryIngredients)(s) }

type memoryIngredients MemoryStore

func (s *memoryIngredients) GetAll(ctx context.Context, businessID string) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Ingredient
	for _, ing := range s.ingredients {
		if ing.BusinessID == businessID {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (s *memoryIngredients) Get(ctx context.Context, id string) (domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ing, ok := s.ingredients[id]
	if !ok {
		return domain.Ingredient{}, domain.ErrIngredientNotFound
	}
	return ing, nil
}

func (s *memoryIngredients) Create(ctx context.Context, ingredient *domain.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ingredient.ID == "" {
		ingredient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ingredient.CreatedAt = now
	ingredient.UpdatedAt = now
	s.ingredients[ingredient.ID] = *ingredient
	return nil
}

func (s *memoryIngredients) UpdateCost(ctx context.Context, id string, costPerUnit float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ing, ok := s.ingredients[id]
	if !ok {
		return domain.ErrIngredientNotFound
	}
	ing.CostPerUnit = costPerUnit
	ing.UpdatedAt = time.Now().UTC()
	s.ingredients[id] = ing
	return nil
}

func (s *memoryIngredients) ApplyStockDeltas(ctx context.Context, deltas []domain.StockDelta) error {
	return (*MemoryStore)(s).ApplyStockDeltas(ctx, deltas)
}

func (s *memoryIngredients) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ingredients[id]; !ok {
		return domain.ErrIngredientNotFound
	}
	for _, r := range s.recipes {
		if _, used := r.Entry(id); used {
			return domain.ErrIngredientInUse
		}
	}
	delete(s.ingredients, id)
	return nil
}

// --- RecipeStore ---

func (s *MemoryStore) Recipes() RecipeStore { return (*memoryRecipes)(s) }

type memoryRecipes MemoryStore

func (s *memoryRecipes) Get(ctx context.Context, productID string) (domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.recipes[productID]; ok {
		return r, nil
	}
	return domain.Recipe{ProductID: productID}, nil
}

func (s *memoryRecipes) GetAll(ctx context.Context, businessID string) (map[string]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Recipe, len(s.recipes))
	for id, r := range s.recipes {
		if p, ok := s.products[id]; !ok || p.BusinessID == businessID {
			out[id] = r
		}
	}
	return out, nil
}

func (s *memoryRecipes) Set(ctx context.Context, productID string, recipe domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipe.ProductID = productID
	s.recipes[productID] = recipe
	return nil
}

func (s *memoryRecipes) ReferencingProducts(ctx context.Context, ingredientID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for id, r := range s.recipes {
		if _, used := r.Entry(ingredientID); used {
			out = append(out, id)
		}
	}
	return out, nil
}

// --- OrderStore ---

func (s *MemoryStore) Orders() OrderStore { return (*memoryOrders)(s) }

type memoryOrders MemoryStore

func (s *memoryOrders) Get(ctx context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *memoryOrders) Create(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = *order
	return nil
}

func (s *memoryOrders) GetPreviousLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	lines := make([]domain.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	return lines, nil
}

func (s *memoryOrders) ReplaceLines(ctx context.Context, orderID string, lines []domain.OrderLine, total float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Lines = lines
	o.Total = total
	o.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = o
	return nil
}

func (s *memoryOrders) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = o
	return nil
}

func (s *memoryOrders) ListCompleted(ctx context.Context, businessID string, window domain.ReportWindow) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.BusinessID == businessID && o.Status.Completed() && window.Contains(o.CreatedAt) {
			out = append(out, o)
		}
	}
	return out, nil
}

// --- AnomalyStore ---

func (s *MemoryStore) Anomalies() AnomalyStore { return (*memoryAnomalies)(s) }

type memoryAnomalies MemoryStore

func (s *memoryAnomalies) Record(ctx context.Context, anomalies []domain.ReconciliationAnomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, anomalies...)
	return nil
}

func (s *memoryAnomalies) List(ctx context.Context, businessID string, since time.Time) ([]domain.ReconciliationAnomaly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ReconciliationAnomaly
	for _, a := range s.anomalies {
		if a.BusinessID == businessID && !a.OccurredAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}
