package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PricePrecision is the total number of digits a price may carry.
	PricePrecision = 18
	// PriceScale is the number of fractional digits kept for a price.
	PriceScale = 2
)

// maxPrice is the smallest price that no longer fits NUMERIC(18,2).
var maxPrice = decimal.New(1, PricePrecision-PriceScale)

// Product represents the product entity
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
}

// NewProduct creates a new, not yet stored product with validation.
// The ID is left zero; the repository assigns it.
func NewProduct(name, description string, price decimal.Decimal, image string) (*Product, error) {
	product := &Product{
		Name:        name,
		Description: description,
		Price:       price.Round(PriceScale),
		Image:       image,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidProduct("name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return invalidProduct("description is required")
	}
	if !p.Price.IsPositive() {
		return invalidProduct("price must be positive")
	}
	if p.Price.GreaterThanOrEqual(maxPrice) {
		return invalidProduct("price exceeds 16 integer digits")
	}
	return nil
}

// Overwrite replaces every mutable field of p with the ones from src.
// The identifier is left untouched.
func (p *Product) Overwrite(src *Product) {
	p.Name = src.Name
	p.Description = src.Description
	p.Price = src.Price.Round(PriceScale)
	p.Image = src.Image
}
