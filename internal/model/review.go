package model

import (
	"errors"
	"time"
)

// Review validation errors.
var (
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrContentLimit = errors.New("content cannot exceed 4000 characters")
)

// MaxContentLength bounds review content.
const MaxContentLength = 4000

// Review is a piece of customer feedback attached to exactly one product.
type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Content   string    `json:"content" gorm:"size:4000;not null"`
	ProductID int64     `json:"productId" gorm:"not null;index"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName pins the gorm table name.
func (Review) TableName() string {
	return "reviews"
}

// SaveReviewRequest carries the fields of a new review.
type SaveReviewRequest struct {
	Content string `json:"content"`
}

// Validate checks if the request has valid field values.
func (r *SaveReviewRequest) Validate() error {
	if r.Content == "" {
		return ErrEmptyContent
	}
	if len(r.Content) > MaxContentLength {
		return ErrContentLimit
	}
	return nil
}
