// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

// Store errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid record ID")
	ErrNilRecord = errors.New("record cannot be nil")
)

// ProductStore is the persistence boundary for products.
type ProductStore interface {
	// SaveProduct inserts the product when its ID is zero and overwrites it otherwise.
	SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error)

	// FindProductByID returns ErrNotFound when no product has the given ID.
	FindProductByID(ctx context.Context, id int64) (*model.Product, error)

	// FindAllProducts returns one page of all products.
	FindAllProducts(ctx context.Context, page model.PageRequest) (model.Page[model.Product], error)

	// FindProductsByNameContaining returns products whose name contains substring.
	FindProductsByNameContaining(
		ctx context.Context, substring string, page model.PageRequest,
	) (model.Page[model.Product], error)

	// FindProductsByNameContainingAndQuantityAtLeast additionally requires quantity >= threshold.
	FindProductsByNameContainingAndQuantityAtLeast(
		ctx context.Context, substring string, threshold int, page model.PageRequest,
	) (model.Page[model.Product], error)

	// DeleteProductByID removes the product and its reviews. Absent IDs are a no-op.
	DeleteProductByID(ctx context.Context, id int64) error
}

// ReviewStore is the persistence boundary for reviews.
type ReviewStore interface {
	SaveReview(ctx context.Context, review *model.Review) (*model.Review, error)
	FindReviewByID(ctx context.Context, id int64) (*model.Review, error)
	FindReviewsByProductID(
		ctx context.Context, productID int64, page model.PageRequest,
	) (model.Page[model.Review], error)
	DeleteReviewByID(ctx context.Context, id int64) error
}

// Pinger reports whether the backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is everything the catalog needs from storage.
type Store interface {
	ProductStore
	ReviewStore
	Pinger
	Close() error
}
