package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/product-catalog/internal/model"
	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RESTHandler handles REST API requests for products and reviews.
type RESTHandler struct {
	products ProductService
	reviews  ReviewService
	pinger   Pinger
	limits   PageLimits
	logger   *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(
	products ProductService,
	reviews ReviewService,
	pinger Pinger,
	limits PageLimits,
	logger *zap.Logger,
) *RESTHandler {
	return &RESTHandler{
		products: products,
		reviews:  reviews,
		pinger:   pinger,
		limits:   limits,
		logger:   logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
	api.HandleFunc("/products/{id}/reviews", h.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}/reviews", h.CreateReview).Methods(http.MethodPost)
	api.HandleFunc("/reviews/{id}", h.GetReview).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{id}", h.DeleteReview).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.Wrap(HealthResponse{Status: "healthy", Version: Version}))
}

// ReadyCheck handles GET /ready requests by pinging storage.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, model.Wrap(ReadyResponse{Status: "ready"}))
}

// ListProducts handles GET /api/v1/products requests.
func (h *RESTHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := parsePage(q, h.limits)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.products.List(r.Context(), filter, page)
	if err != nil {
		h.handleServiceError(w, err, "list products")
		return
	}

	h.writeJSON(w, http.StatusOK, model.Wrap(products))
}

// GetProduct handles GET /api/v1/products/{id} requests.
func (h *RESTHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get product")
		return
	}

	h.writeJSON(w, http.StatusOK, model.Wrap(product))
}

// CreateProduct handles POST /api/v1/products requests.
func (h *RESTHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input model.SaveProductRequest
	if !h.decode(w, r, &input) {
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Create(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err, "create product")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.Wrap(product))
}

// UpdateProduct handles PUT /api/v1/products/{id} requests.
func (h *RESTHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var input model.SaveProductRequest
	if !h.decode(w, r, &input) {
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Update(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, err, "update product")
		return
	}

	h.writeJSON(w, http.StatusOK, model.Wrap(product))
}

// DeleteProduct handles DELETE /api/v1/products/{id} requests.
func (h *RESTHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListReviews handles GET /api/v1/products/{id}/reviews requests.
func (h *RESTHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	page, err := parsePage(r.URL.Query(), h.limits)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID, page)
	if err != nil {
		h.handleServiceError(w, err, "list reviews")
		return
	}

	h.writeJSON(w, http.StatusOK, model.Wrap(reviews))
}

// CreateReview handles POST /api/v1/products/{id}/reviews requests.
func (h *RESTHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var input model.SaveReviewRequest
	if !h.decode(w, r, &input) {
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.reviews.Create(r.Context(), productID, input)
	if err != nil {
		h.handleServiceError(w, err, "create review")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.Wrap(review))
}

// GetReview handles GET /api/v1/reviews/{id} requests.
func (h *RESTHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	review, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get review")
		return
	}

	h.writeJSON(w, http.StatusOK, model.Wrap(review))
}

// DeleteReview handles DELETE /api/v1/reviews/{id} requests.
func (h *RESTHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into dst, answering 400 on failure.
func (h *RESTHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses.
func (h *RESTHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid ID")
	default:
		h.logger.Error("service operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, model.ErrorResponse{Code: status, Message: message})
}
