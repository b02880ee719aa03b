package dto

import (
	"github.com/mrops-br/products-catalog-api/internal/app/query"
	"github.com/mrops-br/products-catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Price is a decimal amount written to JSON as a number rather than a string.
// Decoding accepts both forms.
type Price struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// ProductRequest represents the body of a create or update request.
// ID is ignored on create.
type ProductRequest struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

// ToDomain converts the request into a domain Product carrying the request's ID.
func (r *ProductRequest) ToDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Image:       r.Image,
	}
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       Price  `json:"price"`
	Image       string `json:"image,omitempty"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       Price{p.Price.Round(domain.PriceScale)},
		Image:       p.Image,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

// ToDomain converts a fetched response back into a domain Product.
func (r *ProductResponse) ToDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price.Decimal,
		Image:       r.Image,
	}
}

// MessageResponse is the acknowledgement body of operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// PageResponse is a rendered catalog page.
type PageResponse struct {
	Items       []*ProductResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalPages  int                `json:"total_pages"`
	CurrentPage int                `json:"current_page"`
	PageSize    int                `json:"page_size"`
}

// ToPageResponse converts a query.Page to PageResponse
func ToPageResponse(page query.Page) *PageResponse {
	items := make([]*ProductResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToProductResponse(&page.Items[i])
	}
	return &PageResponse{
		Items:       items,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		PageSize:    page.PageSize,
	}
}
