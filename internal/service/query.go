package service

import "github.com/vyrodovalexey/product-catalog/internal/model"

// listQuery is the lookup strategy chosen for a product listing.
// Exactly one of queryByNameAndQuantity, queryByName or queryAll.
type listQuery interface {
	name() string
}

type queryByNameAndQuantity struct {
	partialName     string
	minimumQuantity int
}

type queryByName struct {
	partialName string
}

type queryAll struct{}

func (queryByNameAndQuantity) name() string { return "name_and_quantity" }
func (queryByName) name() string            { return "name" }
func (queryAll) name() string               { return "all" }

// selectQuery maps a filter onto a strategy, in priority order:
// name and quantity, then name alone, then everything.
// A minimum quantity without a partial name is ignored.
func selectQuery(f *model.ProductFilter) listQuery {
	switch {
	case f != nil && f.PartialName != nil && f.MinimumQuantity != nil:
		return queryByNameAndQuantity{partialName: *f.PartialName, minimumQuantity: *f.MinimumQuantity}
	case f != nil && f.PartialName != nil:
		return queryByName{partialName: *f.PartialName}
	default:
		return queryAll{}
	}
}
