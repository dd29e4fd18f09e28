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

// ReviewService manages reviews. Every review references an existing product.
type ReviewService struct {
	products store.ProductStore
	reviews  store.ReviewStore
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewReviewService creates a ReviewService.
func NewReviewService(
	products store.ProductStore, reviews store.ReviewStore, logger *zap.Logger, tracer trace.Tracer,
) *ReviewService {
	return &ReviewService{
		products: products,
		reviews:  reviews,
		logger:   logger,
		tracer:   tracer,
	}
}

// Create attaches a new review to the product.
func (s *ReviewService) Create(
	ctx context.Context, productID int64, req model.SaveReviewRequest,
) (_ *model.Review, err error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Create",
		trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer func() { finish(span, entityReview, "create", err) }()

	s.logger.Info("creating review", zap.Int64("product_id", productID))

	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	saved, err := s.reviews.SaveReview(ctx, &model.Review{Content: req.Content, ProductID: productID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: entityProduct, ID: productID}
	}
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	span.SetAttributes(attribute.Int64("review.id", saved.ID))
	return saved, nil
}

// Get returns the review with the given ID or a *NotFoundError.
func (s *ReviewService) Get(ctx context.Context, id int64) (_ *model.Review, err error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Get",
		trace.WithAttributes(attribute.Int64("review.id", id)))
	defer func() { finish(span, entityReview, "get", err) }()

	s.logger.Info("retrieving review", zap.Int64("review_id", id))

	review, err := s.reviews.FindReviewByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Entity: entityReview, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return review, nil
}

// ListByProduct returns one page of the product's reviews.
func (s *ReviewService) ListByProduct(
	ctx context.Context, productID int64, page model.PageRequest,
) (_ model.Page[model.Review], err error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.ListByProduct", trace.WithAttributes(
		attribute.Int64("product.id", productID),
		attribute.Int("page.index", page.Page),
		attribute.Int("page.size", page.Size),
	))
	defer func() { finish(span, entityReview, "list", err) }()

	s.logger.Info("retrieving reviews",
		zap.Int64("product_id", productID),
		zap.Int("page", page.Page),
		zap.Int("size", page.Size),
	)

	if err := s.requireProduct(ctx, productID); err != nil {
		return model.Page[model.Review]{}, err
	}

	result, err := s.reviews.FindReviewsByProductID(ctx, productID, page)
	if err != nil {
		return model.Page[model.Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	return result, nil
}

// Delete removes a review. Deleting an absent ID succeeds.
func (s *ReviewService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "ReviewService.Delete",
		trace.WithAttributes(attribute.Int64("review.id", id)))
	defer func() { finish(span, entityReview, "delete", err) }()

	s.logger.Info("deleting review", zap.Int64("review_id", id))

	if err := s.reviews.DeleteReviewByID(ctx, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

func (s *ReviewService) requireProduct(ctx context.Context, productID int64) error {
	_, err := s.products.FindProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: entityProduct, ID: productID}
	}
	if err != nil {
		return fmt.Errorf("find product %d: %w", productID, err)
	}
	return nil
}
