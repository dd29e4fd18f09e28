// Package service implements the catalog's product and review use cases.
package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// TracerName identifies spans started by this package.
const TracerName = "github.com/vyrodovalexey/product-catalog/internal/service"

// Operation outcomes recorded by catalogOperations.
const (
	resultSuccess  = "success"
	resultNotFound = "not_found"
	resultFailure  = "failure"
)

var catalogOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_operations_total",
		Help: "Catalog service operations by entity, operation and result",
	},
	[]string{"entity", "operation", "result"},
)

// finish closes span and records the outcome of one service operation.
func finish(span trace.Span, entity, operation string, err error) {
	defer span.End()

	result := resultSuccess
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, store.ErrNotFound):
		result = resultNotFound
		span.SetStatus(codes.Error, "not found")
	default:
		result = resultFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	catalogOperations.WithLabelValues(entity, operation, result).Inc()
}
