// Package query turns a fetched product collection into the page a client renders.
//
// Apply is pure: it performs no I/O, keeps no state between calls and never
// mutates its input. Callers own the view parameters and re-run it whenever
// one of them changes.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mrops-br/products-catalog-api/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is used when Params.PageSize is not positive.
const DefaultPageSize = 6

// SortKey selects the ordering of the filtered products.
type SortKey string

const (
	SortNone      SortKey = "none"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
)

// ParseSortKey maps the textual sort option to a SortKey. An empty string means SortNone.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortNone:
		return SortNone, nil
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return k, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q", s)
	}
}

// Params are the view parameters for one render.
type Params struct {
	Search   string
	Sort     SortKey
	Page     int
	PageSize int
	// Locale drives name collation; the zero value is language.Und.
	Locale language.Tag
}

// Page is the slice of products to render plus pagination metadata.
type Page struct {
	Items       []domain.Product
	TotalItems  int
	TotalPages  int
	CurrentPage int
	PageSize    int
}

// Apply filters, sorts and paginates products according to p.
func Apply(products []domain.Product, p Params) Page {
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered := filter(products, p.Search)
	sortStable(filtered, p.Sort, p.Locale)

	total := len(filtered)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	page := Page{
		Items:       []domain.Product{},
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		PageSize:    pageSize,
	}
	if p.Page < 1 || p.Page > page.TotalPages {
		return page
	}

	start := (p.Page - 1) * pageSize
	end := start + min(pageSize, total-start)
	page.Items = filtered[start:end]
	return page
}

// filter returns a new slice holding the products whose name contains the
// trimmed search term, compared case-folded.
func filter(products []domain.Product, search string) []domain.Product {
	term := strings.TrimSpace(search)
	out := make([]domain.Product, 0, len(products))
	if term == "" {
		return append(out, products...)
	}

	fold := cases.Fold()
	term = fold.String(term)
	for _, p := range products {
		if strings.Contains(fold.String(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

func sortStable(products []domain.Product, key SortKey, locale language.Tag) {
	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortNameAsc:
		// Collator keeps internal buffers, one per call.
		c := collate.New(locale)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}
