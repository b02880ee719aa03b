package domain

import (
	"context"
)

// ProductRepository defines the contract for product storage.
//
// Create assigns a fresh ID to the product. Update overwrites every mutable
// field of the record with the product's ID in one step and returns
// ErrProductNotFound when no such record exists; Delete behaves the same way.
// Concurrent updates of one record are last-write-wins.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) error
}
