package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Pagination errors.
var (
	ErrNegativePage    = errors.New("page index cannot be negative")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrPageOutOfRange  = errors.New("page index is out of range")
	ErrUnknownSort     = errors.New("unknown sort field")
)

// Sortable product and review fields, keyed by their API name.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"content":   "content",
}

// SortOrder orders a page by one field.
type SortOrder struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// Column returns the storage column for the sort field.
func (o SortOrder) Column() (string, error) {
	col, ok := sortColumns[o.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSort, o.Field)
	}
	return col, nil
}

// String renders the order as "field,asc" or "field,desc".
func (o SortOrder) String() string {
	if o.Descending {
		return o.Field + ",desc"
	}
	return o.Field + ",asc"
}

// ParseSortOrder parses "field", "field,asc" or "field,desc".
func ParseSortOrder(raw string) (SortOrder, error) {
	field, dir, _ := strings.Cut(raw, ",")
	order := SortOrder{Field: strings.TrimSpace(field)}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		order.Descending = true
	default:
		return SortOrder{}, fmt.Errorf("invalid sort direction %q", dir)
	}

	if _, err := order.Column(); err != nil {
		return SortOrder{}, err
	}
	return order, nil
}

// PageRequest selects one page of a result set. Page is zero-based.
type PageRequest struct {
	Page int         `json:"page"`
	Size int         `json:"size"`
	Sort []SortOrder `json:"sort,omitempty"`
}

// Validate checks the page index, size and sort fields.
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return ErrNegativePage
	}
	if p.Size <= 0 {
		return ErrInvalidPageSize
	}
	if p.Page > math.MaxInt/p.Size {
		return ErrPageOutOfRange
	}
	for _, o := range p.Sort {
		if _, err := o.Column(); err != nil {
			return err
		}
	}
	return nil
}

// Offset returns the number of records preceding the page. It is only
// meaningful for a request that passed Validate.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a larger result set plus its metadata.
type Page[T any] struct {
	Content          []T   `json:"content"`
	Page             int   `json:"page"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
}

// NewPage assembles a page from its content and the total record count.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		size := int64(req.Size)
		pages := total / size
		if total%size != 0 {
			pages++
		}
		totalPages = int(pages)
	}

	return Page[T]{
		Content:          content,
		Page:             req.Page,
		Size:             req.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page >= totalPages-1,
	}
}
