// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for product requests.
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name cannot exceed 255 characters")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrPriceOutOfRange   = errors.New("price must be below 10000000000 with at most 2 decimal places")
	ErrNegativeQuantity  = errors.New("quantity cannot be negative")
	ErrDescriptionLimit  = errors.New("description cannot exceed 1000 characters")
	ErrImagePathTooLong  = errors.New("image path cannot exceed 1024 characters")
	ErrNegativeThreshold = errors.New("minimum quantity cannot be negative")
)

// Validation constants.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxImagePathLength   = 1024
	PriceScale           = 2
)

// maxPrice is the exclusive upper bound of the decimal(12,2) price column.
var maxPrice = decimal.New(1, 12-PriceScale)

// Product is a catalog entry. ID is assigned by the store on first save.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"size:255;not null;index"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Description string          `json:"description,omitempty"`
	ImagePath   string          `json:"imagePath,omitempty" gorm:"size:1024"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName pins the gorm table name.
func (Product) TableName() string {
	return "products"
}

// SaveProductRequest carries the fields used to create or overwrite a product.
type SaveProductRequest struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImagePath   string          `json:"imagePath"`
	Quantity    int             `json:"quantity"`
}

// Validate checks if the request has valid field values.
func (r *SaveProductRequest) Validate() error {
	if r.Name == "" {
		return ErrEmptyName
	}

	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}

	if r.Price.IsNegative() {
		return ErrNegativePrice
	}

	if r.Price.GreaterThanOrEqual(maxPrice) || !r.Price.Equal(r.Price.Truncate(PriceScale)) {
		return ErrPriceOutOfRange
	}

	if r.Quantity < 0 {
		return ErrNegativeQuantity
	}

	if len(r.Description) > MaxDescriptionLength {
		return ErrDescriptionLimit
	}

	if len(r.ImagePath) > MaxImagePathLength {
		return ErrImagePathTooLong
	}

	return nil
}

// ProductFilter narrows a product listing. Nil fields are absent.
type ProductFilter struct {
	PartialName     *string `json:"partialName,omitempty"`
	MinimumQuantity *int    `json:"minimumQuantity,omitempty"`
}

// Validate checks the filter's optional fields.
func (f *ProductFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinimumQuantity != nil && *f.MinimumQuantity < 0 {
		return ErrNegativeThreshold
	}
	return nil
}
