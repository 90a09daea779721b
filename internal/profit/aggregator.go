// Package profit replays historical orders against current recipes and
// ingredient prices to produce per-product profitability rollups.
//
// Cost is recomputed at today's prices: price-at-time-of-sale is not
// tracked, so margins drift after ingredient price changes. That
// limitation is deliberate and documented rather than hidden.
package profit

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/ordena/backend-go/internal/costing"
	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

// Aggregator accumulates order lines into per-product rollups.
type Aggregator struct {
	engine   costing.Engine
	resolver *Resolver
	recipes  map[string]domain.Recipe
	costs    costing.CostLookup
}

// NewAggregator wires a replay over the current catalog: products for
// identity resolution, recipes keyed by product id, and the current
// ingredient cost lookup.
func NewAggregator(products []domain.Product, recipes map[string]domain.Recipe, costs costing.CostLookup) *Aggregator {
	return &Aggregator{
		resolver: NewResolver(products),
		recipes:  recipes,
		costs:    costs,
	}
}

type rollup struct {
	product  domain.Product
	units    int
	revenue  decimal.Decimal
	cost     decimal.Decimal
	uncosted bool
}

// Aggregate rolls a window of orders up into per-product revenue, cost and
// margin, sorted by profit descending. Cancelled orders are excluded; both
// orders of a product renamed since capture attribute to the single
// current product id via the name fallback.
func (a *Aggregator) Aggregate(businessID string, orders []domain.Order, window domain.ReportWindow) domain.ProfitReport {
	report := domain.ProfitReport{
		BusinessID:  businessID,
		From:        window.From,
		To:          window.To,
		GeneratedAt: time.Now().UTC(),
	}
	rollups := make(map[string]*rollup)

	unitCosts := make(map[string]decimal.Decimal)
	unitCostFor := func(productID string) (decimal.Decimal, bool) {
		if c, ok := unitCosts[productID]; ok {
			return c, true
		}
		recipe, ok := a.recipes[productID]
		if !ok {
			return decimal.Zero, false
		}
		cost, diags := a.engine.UnitCost(recipe, a.costs)
		if len(diags) > 0 {
			log.Debug().
				Str("product_id", productID).
				Int("flagged_entries", len(diags)).
				Msg("recipe costed with zero-contribution entries")
		}
		c := decimal.NewFromFloat(cost)
		unitCosts[productID] = c
		return c, true
	}

	for _, order := range orders {
		if !order.Status.ConsumesStock() || !window.Contains(order.CreatedAt) {
			continue
		}
		for _, line := range order.Lines {
			product, resolution := a.resolver.Resolve(line.ProductID, line.ProductName)

			key := product.ID
			name := product.Name
			if resolution == Unresolved {
				key = line.ProductID
				name = line.ProductName
			}

			r, ok := rollups[key]
			if !ok {
				r = &rollup{product: product}
				r.product.ID = key
				r.product.Name = name
				rollups[key] = r
			}

			qty := decimal.NewFromInt(int64(line.Quantity))
			r.units += line.Quantity
			r.revenue = r.revenue.Add(decimal.NewFromFloat(line.UnitPrice).Mul(qty))

			switch resolution {
			case Unresolved:
				// Common for new products awaiting recipe setup; the line
				// still counts toward revenue with zero cost.
				r.uncosted = true
				report.UncostedLines++
				continue
			case ResolvedByName:
				report.NameMatched++
				log.Warn().
					Str("product_id", line.ProductID).
					Str("product_name", line.ProductName).
					Str("resolved_id", product.ID).
					Msg("order line resolved by name fallback")
			}

			unitCost, ok := unitCostFor(product.ID)
			if !ok {
				r.uncosted = true
				report.UncostedLines++
				continue
			}
			r.cost = r.cost.Add(unitCost.Mul(qty))
		}
	}

	report.Rows = make([]domain.ProductProfit, 0, len(rollups))
	for _, r := range rollups {
		profit := r.revenue.Sub(r.cost)
		row := domain.ProductProfit{
			ProductID:   r.product.ID,
			ProductName: r.product.Name,
			UnitsSold:   r.units,
			Revenue:     r.revenue.InexactFloat64(),
			Cost:        r.cost.InexactFloat64(),
			Profit:      profit.InexactFloat64(),
		}
		if !r.revenue.IsZero() {
			row.Margin = profit.Div(r.revenue).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		report.Rows = append(report.Rows, row)
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].Profit != report.Rows[j].Profit {
			return report.Rows[i].Profit > report.Rows[j].Profit
		}
		return report.Rows[i].ProductID < report.Rows[j].ProductID
	})

	return report
}
