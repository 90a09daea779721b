package profit

import (
	"strings"

	"github.com/andresuchdata/ordena/backend-go/internal/domain"
)

// Resolution tags how an order line was matched to the current catalog, so
// callers can report degraded matches instead of silently trusting a name
// heuristic.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedByID
	ResolvedByName
)

func (r Resolution) String() string {
	switch r {
	case ResolvedByID:
		return "by_id"
	case ResolvedByName:
		return "by_name"
	default:
		return "unresolved"
	}
}

// Resolver matches historical order lines against the current product
// catalog: exact id first, then a case-insensitive name fallback for
// products that were re-captured under a different identifier over time.
type Resolver struct {
	byID   map[string]domain.Product
	byName map[string]domain.Product
}

func NewResolver(products []domain.Product) *Resolver {
	r := &Resolver{
		byID:   make(map[string]domain.Product, len(products)),
		byName: make(map[string]domain.Product, len(products)),
	}
	for _, p := range products {
		r.byID[p.ID] = p
		r.byName[normalizeName(p.Name)] = p
	}
	return r
}

// Resolve returns the current product an order line refers to and how the
// match was made.
func (r *Resolver) Resolve(productID, productName string) (domain.Product, Resolution) {
	if p, ok := r.byID[productID]; ok {
		return p, ResolvedByID
	}
	if p, ok := r.byName[normalizeName(productName)]; ok {
		return p, ResolvedByName
	}
	return domain.Product{}, Unresolved
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
