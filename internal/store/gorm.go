package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

// GormStore implements Store on top of a gorm connection.
// Name matching uses SQL LIKE, so case sensitivity follows the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the catalog tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Product{}, &model.Review{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SaveProduct inserts the product when its ID is zero and overwrites every column otherwise.
func (s *GormStore) SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if product == nil {
		return nil, fmt.Errorf("save product: %w", ErrNilRecord)
	}

	if product.ID < 0 {
		return nil, ErrInvalidID
	}

	saved := *product
	if err := s.db.WithContext(ctx).Save(&saved).Error; err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	return &saved, nil
}

// FindProductByID retrieves a product by its ID.
func (s *GormStore) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", id, err)
	}

	return &product, nil
}

// FindAllProducts returns one page of all products.
func (s *GormStore) FindAllProducts(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Product], error) {
	return findPage[model.Product](ctx, s.db, page)
}

// FindProductsByNameContaining returns products whose name contains substring.
func (s *GormStore) FindProductsByNameContaining(
	ctx context.Context, substring string, page model.PageRequest,
) (model.Page[model.Product], error) {
	return findPage[model.Product](ctx, s.db, page, nameContains(substring))
}

// FindProductsByNameContainingAndQuantityAtLeast filters by name and minimum quantity.
func (s *GormStore) FindProductsByNameContainingAndQuantityAtLeast(
	ctx context.Context, substring string, threshold int, page model.PageRequest,
) (model.Page[model.Product], error) {
	return findPage[model.Product](ctx, s.db, page, nameContains(substring), quantityAtLeast(threshold))
}

// DeleteProductByID removes the product and its reviews in one transaction.
func (s *GormStore) DeleteProductByID(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Product{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}

	return nil
}

// SaveReview inserts or overwrites a review. The referenced product must exist.
func (s *GormStore) SaveReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	if review == nil {
		return nil, fmt.Errorf("save review: %w", ErrNilRecord)
	}

	saved := *review
	saved.Product = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("id = ?", saved.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("product %d: %w", saved.ProductID, ErrNotFound)
		}
		return tx.Omit(clause.Associations).Save(&saved).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}

	return &saved, nil
}

// FindReviewByID retrieves a review by its ID.
func (s *GormStore) FindReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	var review model.Review
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find review %d: %w", id, err)
	}

	return &review, nil
}

// FindReviewsByProductID returns one page of a product's reviews.
func (s *GormStore) FindReviewsByProductID(
	ctx context.Context, productID int64, page model.PageRequest,
) (model.Page[model.Review], error) {
	return findPage[model.Review](ctx, s.db, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("product_id = ?", productID)
	})
}

// DeleteReviewByID removes a review. Absent IDs are a no-op.
func (s *GormStore) DeleteReviewByID(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Review{}).Error; err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	return nil
}

// Ping checks the underlying connection pool.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return sqlDB.Close()
}

type scope = func(*gorm.DB) *gorm.DB

// findPage counts the filtered rows and loads the requested page of them.
func findPage[T any](ctx context.Context, db *gorm.DB, page model.PageRequest, filters ...scope) (model.Page[T], error) {
	if err := page.Validate(); err != nil {
		return model.Page[T]{}, fmt.Errorf("find page: %w", err)
	}

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(filters...).Count(&total).Error; err != nil {
		return model.Page[T]{}, fmt.Errorf("count: %w", err)
	}

	order, err := ordered(page)
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("find page: %w", err)
	}

	items := make([]T, 0, min(int64(page.Size), total))
	if total > int64(page.Offset()) {
		q := db.WithContext(ctx).Scopes(filters...).Scopes(order).Offset(page.Offset()).Limit(page.Size)
		if err := q.Find(&items).Error; err != nil {
			return model.Page[T]{}, fmt.Errorf("find: %w", err)
		}
	}

	return model.NewPage(items, page, total), nil
}

// ordered applies the requested sort columns with id as the final tie-breaker.
func ordered(page model.PageRequest) (scope, error) {
	columns := make([]clause.OrderByColumn, 0, len(page.Sort)+1)
	byID := false
	for _, o := range page.Sort {
		col, err := o.Column()
		if err != nil {
			return nil, err
		}
		byID = byID || col == "id"
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: o.Descending})
	}
	if !byID {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, c := range columns {
			db = db.Order(c)
		}
		return db
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func nameContains(substring string) scope {
	pattern := "%" + likeEscaper.Replace(substring) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`name LIKE ? ESCAPE '\'`, pattern)
	}
}

func quantityAtLeast(threshold int) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("quantity >= ?", threshold)
	}
}
