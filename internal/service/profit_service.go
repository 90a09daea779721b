package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/ordena/backend-go/internal/cache"
	"github.com/andresuchdata/ordena/backend-go/internal/costing"
	"github.com/andresuchdata/ordena/backend-go/internal/domain"
	"github.com/andresuchdata/ordena/backend-go/internal/profit"
	"github.com/andresuchdata/ordena/backend-go/internal/repository"
)

// ProfitabilityService replays completed orders through the costing engine
// and rolls the results up per product. Reports are cached per business and
// window; cache failures degrade to recomputation, never to an error.
type ProfitabilityService struct {
	products    repository.ProductStore
	ingredients repository.IngredientStore
	recipes     repository.RecipeStore
	orders      repository.OrderStore
	cache       cache.ProfitCache
}

func NewProfitabilityService(
	products repository.ProductStore,
	ingredients repository.IngredientStore,
	recipes repository.RecipeStore,
	orders repository.OrderStore,
	profitCache cache.ProfitCache,
) *ProfitabilityService {
	if profitCache == nil {
		profitCache = cache.NewNoopProfitCache()
	}
	return &ProfitabilityService{
		products:    products,
		ingredients: ingredients,
		recipes:     recipes,
		orders:      orders,
		cache:       profitCache,
	}
}

// Report builds the profitability report for a business over the window.
func (s *ProfitabilityService) Report(ctx context.Context, businessID string, window domain.ReportWindow) (domain.ProfitReport, error) {
	if cached, ok, err := s.cache.GetReport(ctx, businessID, window); err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("profit cache read failed, recomputing")
	} else if ok {
		return cached, nil
	}

	orders, err := s.orders.ListCompleted(ctx, businessID, window)
	if err != nil {
		return domain.ProfitReport{}, fmt.Errorf("list completed orders: %w", err)
	}
	products, err := s.products.GetAll(ctx, businessID)
	if err != nil {
		return domain.ProfitReport{}, fmt.Errorf("fetch products: %w", err)
	}
	ingredients, err := s.ingredients.GetAll(ctx, businessID)
	if err != nil {
		return domain.ProfitReport{}, fmt.Errorf("fetch ingredients: %w", err)
	}
	recipes, err := s.recipes.GetAll(ctx, businessID)
	if err != nil {
		return domain.ProfitReport{}, fmt.Errorf("fetch recipes: %w", err)
	}

	agg := profit.NewAggregator(products, recipes, costing.LookupFromIngredients(ingredients))
	report := agg.Aggregate(businessID, orders, window)

	if err := s.cache.SetReport(ctx, report, window); err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("profit cache write failed")
	}
	return report, nil
}

// Invalidate drops all cached reports for a business. Called when catalog
// prices or recipes change so stale margins do not linger for the TTL.
func (s *ProfitabilityService) Invalidate(ctx context.Context, businessID string) {
	if err := s.cache.InvalidateBusiness(ctx, businessID); err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("profit cache invalidation failed")
	}
}
