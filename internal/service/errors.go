package service

import (
	"fmt"

	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// Entity names used in errors, logs and metrics.
const (
	entityProduct = "product"
	entityReview  = "review"
)

// NotFoundError reports that no record of Entity has the given ID.
// It matches store.ErrNotFound under errors.Is.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}
