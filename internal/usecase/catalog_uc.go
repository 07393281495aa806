package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/danghuy/secondcell/internal/domain"
)

// Sort keys for catalog pages. Featured keeps the stable input order.
const (
	SortFeatured  = "featured"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// CatalogFilter is applied client-local over an already fetched window
// of at most 100 documents; it is not a server-side query capability.
type CatalogFilter struct {
	Search   string
	Type     domain.ProductType
	Brand    string
	PriceMin int
	PriceMax int // 0 means unbounded
	Sort     string
}

type CatalogUC struct {
	Products domain.ProductRepo
}

// List fetches the bounded window and filters/sorts it locally.
func (uc *CatalogUC) List(ctx context.Context, f CatalogFilter) ([]domain.Product, error) {
	window, err := uc.Products.List(ctx, domain.ProductQuery{Limit: 100})
	if err != nil {
		return nil, err
	}
	return Refine(window, f), nil
}

// Refine is the pure presentation filter: case-insensitive substring
// search over name/brand/description, equality type/brand filters, price
// bounds, then a stable sort.
func Refine(products []domain.Product, f CatalogFilter) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if p.Price < f.PriceMin {
			continue
		}
		if f.PriceMax > 0 && p.Price > f.PriceMax {
			continue
		}
		if needle != "" && !matches(&p, needle) {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

func matches(p *domain.Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}
