package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

// Query parameter names.
const (
	paramPartialName     = "partialName"
	paramMinimumQuantity = "minimumQuantity"
	paramPage            = "page"
	paramSize            = "size"
	paramSort            = "sort"
)

var errInvalidID = errors.New("invalid ID")

// pathID parses the numeric {id} path segment.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}
	return id, nil
}

// parseFilter reads the optional partialName and minimumQuantity parameters.
// Absent parameters remain nil; an empty partialName is present.
func parseFilter(q url.Values) (*model.ProductFilter, error) {
	var filter model.ProductFilter

	if q.Has(paramPartialName) {
		name := q.Get(paramPartialName)
		filter.PartialName = &name
	}

	if raw := q.Get(paramMinimumQuantity); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", paramMinimumQuantity, raw)
		}
		filter.MinimumQuantity = &n
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return &filter, nil
}

// parsePage reads page, size and sort. Sizes above the limit are clamped.
func parsePage(q url.Values, limits PageLimits) (model.PageRequest, error) {
	page := model.PageRequest{Size: limits.DefaultSize}

	if raw := q.Get(paramPage); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.PageRequest{}, fmt.Errorf("invalid %s: %q", paramPage, raw)
		}
		page.Page = n
	}

	if raw := q.Get(paramSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return model.PageRequest{}, fmt.Errorf("invalid %s: %q", paramSize, raw)
		}
		page.Size = n
	}

	if limits.MaxSize > 0 && page.Size > limits.MaxSize {
		page.Size = limits.MaxSize
	}

	for _, raw := range q[paramSort] {
		order, err := model.ParseSortOrder(raw)
		if err != nil {
			return model.PageRequest{}, fmt.Errorf("invalid %s: %w", paramSort, err)
		}
		page.Sort = append(page.Sort, order)
	}

	if err := page.Validate(); err != nil {
		return model.PageRequest{}, err
	}

	return page, nil
}
