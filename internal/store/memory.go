package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

// MemoryStore implements Store with in-process maps.
// Name matching is byte-exact and therefore case-sensitive.
type MemoryStore struct {
	mu            sync.RWMutex
	products      map[int64]model.Product
	reviews       map[int64]model.Review
	nextProductID int64
	nextReviewID  int64
	now           func() time.Time
}

// NewMemoryStore creates a new MemoryStore instance.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]model.Product),
		reviews:  make(map[int64]model.Review),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaveProduct inserts or overwrites a product.
func (s *MemoryStore) SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	if product == nil {
		return nil, fmt.Errorf("save product: %w", ErrNilRecord)
	}

	if product.ID < 0 {
		return nil, ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *product
	now := s.now()
	saved.UpdatedAt = now

	if saved.ID == 0 {
		s.nextProductID++
		saved.ID = s.nextProductID
		saved.CreatedAt = now
	} else if existing, ok := s.products[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
		s.nextProductID = max(s.nextProductID, saved.ID)
	}

	s.products[saved.ID] = saved

	return &saved, nil
}

// FindProductByID retrieves a product by its ID.
func (s *MemoryStore) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &product, nil
}

// FindAllProducts returns one page of all products.
func (s *MemoryStore) FindAllProducts(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Product], error) {
	return s.findProducts(ctx, page, func(model.Product) bool { return true })
}

// FindProductsByNameContaining returns products whose name contains substring.
func (s *MemoryStore) FindProductsByNameContaining(
	ctx context.Context, substring string, page model.PageRequest,
) (model.Page[model.Product], error) {
	return s.findProducts(ctx, page, func(p model.Product) bool {
		return strings.Contains(p.Name, substring)
	})
}

// FindProductsByNameContainingAndQuantityAtLeast filters by name and minimum quantity.
func (s *MemoryStore) FindProductsByNameContainingAndQuantityAtLeast(
	ctx context.Context, substring string, threshold int, page model.PageRequest,
) (model.Page[model.Product], error) {
	return s.findProducts(ctx, page, func(p model.Product) bool {
		return strings.Contains(p.Name, substring) && p.Quantity >= threshold
	})
}

func (s *MemoryStore) findProducts(
	ctx context.Context, page model.PageRequest, keep func(model.Product) bool,
) (model.Page[model.Product], error) {
	if err := ctx.Err(); err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("list products: %w", err)
	}

	if err := page.Validate(); err != nil {
		return model.Page[model.Product]{}, fmt.Errorf("list products: %w", err)
	}

	s.mu.RLock()
	matches := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			matches = append(matches, p)
		}
	}
	s.mu.RUnlock()

	return paginate(matches, page, compareProducts), nil
}

// DeleteProductByID removes a product and the reviews that reference it.
func (s *MemoryStore) DeleteProductByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	for rid, r := range s.reviews {
		if r.ProductID == id {
			delete(s.reviews, rid)
		}
	}

	return nil
}

// SaveReview inserts or overwrites a review. The product must exist.
func (s *MemoryStore) SaveReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	if review == nil {
		return nil, fmt.Errorf("save review: %w", ErrNilRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[review.ProductID]; !ok {
		return nil, fmt.Errorf("save review: product %d: %w", review.ProductID, ErrNotFound)
	}

	saved := *review
	saved.Product = nil
	now := s.now()
	saved.UpdatedAt = now

	if saved.ID == 0 {
		s.nextReviewID++
		saved.ID = s.nextReviewID
		saved.CreatedAt = now
	} else if existing, ok := s.reviews[saved.ID]; ok {
		saved.CreatedAt = existing.CreatedAt
	} else {
		saved.CreatedAt = now
		s.nextReviewID = max(s.nextReviewID, saved.ID)
	}

	s.reviews[saved.ID] = saved

	return &saved, nil
}

// FindReviewByID retrieves a review by its ID.
func (s *MemoryStore) FindReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	review, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}

	return &review, nil
}

// FindReviewsByProductID returns one page of a product's reviews.
func (s *MemoryStore) FindReviewsByProductID(
	ctx context.Context, productID int64, page model.PageRequest,
) (model.Page[model.Review], error) {
	if err := ctx.Err(); err != nil {
		return model.Page[model.Review]{}, fmt.Errorf("list reviews: %w", err)
	}

	if err := page.Validate(); err != nil {
		return model.Page[model.Review]{}, fmt.Errorf("list reviews: %w", err)
	}

	s.mu.RLock()
	matches := make([]model.Review, 0)
	for _, r := range s.reviews {
		if r.ProductID == productID {
			matches = append(matches, r)
		}
	}
	s.mu.RUnlock()

	return paginate(matches, page, compareReviews), nil
}

// DeleteReviewByID removes a review. Absent IDs are a no-op.
func (s *MemoryStore) DeleteReviewByID(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reviews, id)

	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// paginate sorts items by the requested orders, falling back to ID, and slices out one page.
func paginate[T any](items []T, page model.PageRequest, compare func(a, b T, field string) int) model.Page[T] {
	orders := append(slices.Clone(page.Sort), model.SortOrder{Field: "id"})

	slices.SortStableFunc(items, func(a, b T) int {
		for _, o := range orders {
			c := compare(a, b, o.Field)
			if o.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	total := int64(len(items))
	start := min(page.Offset(), len(items))
	end := start + min(page.Size, len(items)-start)

	return model.NewPage(items[start:end], page, total)
}

func compareProducts(a, b model.Product, field string) int {
	switch field {
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "quantity":
		return cmp.Compare(a.Quantity, b.Quantity)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareReviews(a, b model.Review, field string) int {
	switch field {
	case "content":
		return cmp.Compare(a.Content, b.Content)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
