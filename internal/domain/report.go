package domain

import "time"

// ProductProfit is one row of the per-product profitability rollup.
// Cost is recomputed at current ingredient prices; historical
// price-at-time-of-sale is not tracked.
type ProductProfit struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitsSold   int     `json:"units_sold"`
	Revenue     float64 `json:"revenue"`
	Cost        float64 `json:"cost"`
	Profit      float64 `json:"profit"`
	Margin      float64 `json:"margin"`
}

// ProfitReport aggregates a window of completed orders.
type ProfitReport struct {
	BusinessID    string          `json:"business_id"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Rows          []ProductProfit `json:"rows"`
	UncostedLines int             `json:"uncosted_lines"`
	NameMatched   int             `json:"name_matched_lines"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// ReportWindow selects the orders a profitability report replays.
type ReportWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window. A zero bound is open.
func (w ReportWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}
