package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/product-catalog/internal/model"
	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// ProductService mediates product CRUD and picks the lookup strategy for listings.
// It holds no request state between calls.
type ProductService struct {
	store  store.ProductStore
	logger *zap.Logger
	tracer trace.Tracer
}

// NewProductService creates a ProductService backed by s.
func NewProductService(s store.ProductStore, logger *zap.Logger, tracer trace.Tracer) *ProductService {
	return &ProductService{
		store:  s,
		logger: logger,
		tracer: tracer,
	}
}

// Create persists a new product built from req and returns it with its generated ID.
func (s *ProductService) Create(ctx context.Context, req model.SaveProductRequest) (_ *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create",
		trace.WithAttributes(attribute.String("product.name", req.Name)))
	defer func() { finish(span, entityProduct, "create", err) }()

	s.logger.Info("creating product",
		zap.String("name", req.Name),
		zap.String("price", req.Price.String()),
		zap.Int("quantity", req.Quantity),
	)

	var product model.Product
	applySaveRequest(&product, req)

	saved, err := s.store.SaveProduct(ctx, &product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	span.SetAttributes(attribute.Int64("product.id", saved.ID))
	return saved, nil
}

// Get returns the product with the given ID or a *NotFoundError.
func (s *ProductService) Get(ctx context.Context, id int64) (_ *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Get",
		trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { finish(span, entityProduct, "get", err) }()

	s.logger.Info("retrieving product", zap.Int64("product_id", id))

	return s.get(ctx, id)
}

func (s *ProductService) get(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.store.FindProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: entityProduct, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return product, nil
}

// List returns one page of products, narrowed by filter when it carries a partial name.
// A nil filter lists everything.
func (s *ProductService) List(
	ctx context.Context, filter *model.ProductFilter, page model.PageRequest,
) (_ model.Page[model.Product], err error) {
	query := selectQuery(filter)

	ctx, span := s.tracer.Start(ctx, "ProductService.List", trace.WithAttributes(
		attribute.String("catalog.query", query.name()),
		attribute.Int("page.index", page.Page),
		attribute.Int("page.size", page.Size),
	))
	defer func() { finish(span, entityProduct, "list", err) }()

	s.logger.Info("retrieving products",
		zap.String("query", query.name()),
		zap.Int("page", page.Page),
		zap.Int("size", page.Size),
	)

	var result model.Page[model.Product]
	switch q := query.(type) {
	case queryByNameAndQuantity:
		result, err = s.store.FindProductsByNameContainingAndQuantityAtLeast(ctx, q.partialName, q.minimumQuantity, page)
	case queryByName:
		result, err = s.store.FindProductsByNameContaining(ctx, q.partialName, page)
	case queryAll:
		result, err = s.store.FindAllProducts(ctx, page)
	}
	if err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("list products: %w", err)
	}

	span.SetAttributes(attribute.Int64("page.total_elements", result.TotalElements))
	return result, nil
}

// Update overwrites every field of an existing product with req.
func (s *ProductService) Update(
	ctx context.Context, id int64, req model.SaveProductRequest,
) (_ *model.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Update",
		trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { finish(span, entityProduct, "update", err) }()

	s.logger.Info("updating product",
		zap.Int64("product_id", id),
		zap.String("name", req.Name),
		zap.Int("quantity", req.Quantity),
	)

	product, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	applySaveRequest(product, req)

	saved, err := s.store.SaveProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return saved, nil
}

// Delete removes the product and its reviews. Deleting an absent ID succeeds.
func (s *ProductService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete",
		trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { finish(span, entityProduct, "delete", err) }()

	s.logger.Info("deleting product", zap.Int64("product_id", id))

	if err := s.store.DeleteProductByID(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// applySaveRequest copies every request field onto p, zero values included.
// ID and timestamps are left alone.
func applySaveRequest(p *model.Product, req model.SaveProductRequest) {
	p.Name = req.Name
	p.Price = req.Price
	p.Description = req.Description
	p.ImagePath = req.ImagePath
	p.Quantity = req.Quantity
}
