// Package handler provides HTTP request handlers for the catalog API.
package handler

import (
	"context"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

// Version is the application version.
const Version = "1.0.0"

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status string `json:"status"`
}

// ProductService is the product use-case surface the handler drives.
type ProductService interface {
	Create(ctx context.Context, req model.SaveProductRequest) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter *model.ProductFilter, page model.PageRequest) (model.Page[model.Product], error)
	Update(ctx context.Context, id int64, req model.SaveProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ReviewService is the review use-case surface the handler drives.
type ReviewService interface {
	Create(ctx context.Context, productID int64, req model.SaveReviewRequest) (*model.Review, error)
	Get(ctx context.Context, id int64) (*model.Review, error)
	ListByProduct(ctx context.Context, productID int64, page model.PageRequest) (model.Page[model.Review], error)
	Delete(ctx context.Context, id int64) error
}

// Pinger reports storage reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PageLimits bounds the page size accepted from clients.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}
