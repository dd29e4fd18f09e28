package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/product-catalog/internal/model"
	"github.com/vyrodovalexey/product-catalog/internal/service"
	"github.com/vyrodovalexey/product-catalog/internal/store"
)

var testLimits = PageLimits{DefaultSize: 20, MaxSize: 50}

// faultyProducts fails every call with err.
type faultyProducts struct{ err error }

func (f faultyProducts) Create(context.Context, model.SaveProductRequest) (*model.Product, error) {
	return nil, f.err
}

func (f faultyProducts) Get(context.Context, int64) (*model.Product, error) { return nil, f.err }

func (f faultyProducts) List(context.Context, *model.ProductFilter, model.PageRequest) (model.Page[model.Product], error) {
	return model.Page[model.Product]{}, f.err
}

func (f faultyProducts) Update(context.Context, int64, model.SaveProductRequest) (*model.Product, error) {
	return nil, f.err
}

func (f faultyProducts) Delete(context.Context, int64) error { return f.err }

// pingerFunc adapts a function to Pinger.
type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	store  *store.MemoryStore
	router *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := store.NewMemoryStore()
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := zap.NewNop()

	h := NewRESTHandler(
		service.NewProductService(s, logger, tracer),
		service.NewReviewService(s, s, logger, tracer),
		s,
		testLimits,
		logger,
	)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return &testEnv{store: s, router: router}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) seed(t *testing.T, products ...model.Product) []model.Product {
	t.Helper()

	out := make([]model.Product, 0, len(products))
	for i := range products {
		p, err := e.store.SaveProduct(context.Background(), &products[i])
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, *p)
	}
	return out
}

func decodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var response model.APIResponse[T]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Success {
		t.Fatalf("response.Success = false: %s", response.Error)
	}
	return response.Data
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()

	var response model.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return response
}

func TestRESTHandler_HealthCheck(t *testing.T) {
	// Arrange
	env := newTestEnv(t)

	// Act
	rr := env.do(t, http.MethodGet, "/health", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("HealthCheck() status = %d, want %d", rr.Code, http.StatusOK)
	}
	health := decodeData[HealthResponse](t, rr)
	if health.Status != "healthy" || health.Version != Version {
		t.Errorf("unexpected health response %+v", health)
	}
}

func TestRESTHandler_ReadyCheck(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
	}{
		{name: "storage reachable", pinger: pingerFunc(func(context.Context) error { return nil }), wantStatus: http.StatusOK},
		{name: "storage down", pinger: pingerFunc(func(context.Context) error { return errors.New("refused") }), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRESTHandler(nil, nil, tt.pinger, testLimits, zap.NewNop())
			rr := httptest.NewRecorder()

			h.ReadyCheck(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("ReadyCheck() status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestRESTHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid product", body: `{"name":"Shoe","price":59.9,"description":"Runner","imagePath":"/s.png","quantity":10}`, wantStatus: http.StatusCreated},
		{name: "string price", body: `{"name":"Shoe","price":"59.90","quantity":1}`, wantStatus: http.StatusCreated},
		{name: "malformed json", body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", body: `{"name":"Shoe","colour":"red"}`, wantStatus: http.StatusBadRequest},
		{name: "empty name", body: `{"name":"","price":1}`, wantStatus: http.StatusBadRequest},
		{name: "negative quantity", body: `{"name":"Shoe","quantity":-1}`, wantStatus: http.StatusBadRequest},
		{name: "negative price", body: `{"name":"Shoe","price":-2}`, wantStatus: http.StatusBadRequest},
		{name: "sub-cent price", body: `{"name":"Shoe","price":"19.999"}`, wantStatus: http.StatusBadRequest},
		{name: "price beyond column", body: `{"name":"Shoe","price":"12345678901234567.89"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)

			// Act
			rr := env.do(t, http.MethodPost, "/api/v1/products", tt.body)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Fatalf("CreateProduct() status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			product := decodeData[model.Product](t, rr)
			if product.ID == 0 {
				t.Error("CreateProduct() should return the generated ID")
			}
			if product.Name != "Shoe" {
				t.Errorf("Name = %s, want Shoe", product.Name)
			}
			if !product.Price.Equal(decimal.RequireFromString("59.9")) {
				t.Errorf("Price = %s, want 59.9", product.Price)
			}
		})
	}
}

func TestRESTHandler_GetProduct(t *testing.T) {
	env := newTestEnv(t)
	saved := env.seed(t, model.Product{Name: "Hat", Price: decimal.NewFromInt(12), Quantity: 3})[0]

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		wantMessage string
	}{
		{name: "existing product", path: "/api/v1/products/1", wantStatus: http.StatusOK},
		{name: "missing product", path: "/api/v1/products/77", wantStatus: http.StatusNotFound, wantMessage: "product 77 not found"},
		{name: "non-numeric id", path: "/api/v1/products/abc", wantStatus: http.StatusBadRequest, wantMessage: "invalid product ID"},
		{name: "zero id", path: "/api/v1/products/0", wantStatus: http.StatusBadRequest, wantMessage: "invalid product ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, tt.path, "")

			if rr.Code != tt.wantStatus {
				t.Fatalf("GetProduct() status = %d, want %d", rr.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				got := decodeData[model.Product](t, rr)
				if got.ID != saved.ID || got.Name != "Hat" || got.Quantity != 3 {
					t.Errorf("GetProduct() = %+v", got)
				}
				return
			}

			if msg := decodeError(t, rr).Message; msg != tt.wantMessage {
				t.Errorf("message = %q, want %q", msg, tt.wantMessage)
			}
		})
	}
}

func TestRESTHandler_ListProducts(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		model.Product{Name: "Shoe", Quantity: 10},
		model.Product{Name: "Shirt", Quantity: 2},
		model.Product{Name: "Hat", Quantity: 20},
	)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
		wantSize   int
		wantTotal  int64
	}{
		{name: "no filter", query: "", wantStatus: http.StatusOK, wantNames: []string{"Shoe", "Shirt", "Hat"}, wantSize: 20, wantTotal: 3},
		{name: "partial name", query: "?partialName=Sh", wantStatus: http.StatusOK, wantNames: []string{"Shoe", "Shirt"}, wantSize: 20, wantTotal: 2},
		{name: "name and quantity", query: "?partialName=Sh&minimumQuantity=5", wantStatus: http.StatusOK, wantNames: []string{"Shoe"}, wantSize: 20, wantTotal: 1},
		{name: "quantity only is ignored", query: "?minimumQuantity=5", wantStatus: http.StatusOK, wantNames: []string{"Shoe", "Shirt", "Hat"}, wantSize: 20, wantTotal: 3},
		{name: "paged", query: "?page=1&size=2", wantStatus: http.StatusOK, wantNames: []string{"Hat"}, wantSize: 2, wantTotal: 3},
		{name: "sorted", query: "?sort=name,desc", wantStatus: http.StatusOK, wantNames: []string{"Shoe", "Shirt", "Hat"}, wantSize: 20, wantTotal: 3},
		{name: "size clamped", query: "?size=500", wantStatus: http.StatusOK, wantNames: []string{"Shoe", "Shirt", "Hat"}, wantSize: 50, wantTotal: 3},
		{name: "no match", query: "?partialName=Umbrella", wantStatus: http.StatusOK, wantNames: []string{}, wantSize: 20, wantTotal: 0},
		{name: "bad quantity", query: "?partialName=Sh&minimumQuantity=lots", wantStatus: http.StatusBadRequest},
		{name: "negative quantity", query: "?partialName=Sh&minimumQuantity=-1", wantStatus: http.StatusBadRequest},
		{name: "negative page", query: "?page=-1", wantStatus: http.StatusBadRequest},
		{name: "zero size", query: "?size=0", wantStatus: http.StatusBadRequest},
		{name: "unknown sort", query: "?sort=colour", wantStatus: http.StatusBadRequest},
		{name: "page offset overflows", query: "?page=3074457345618258603&size=3", wantStatus: http.StatusBadRequest},
		{name: "huge page with default size", query: "?page=4611686018427387904", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/api/v1/products"+tt.query, "")

			if rr.Code != tt.wantStatus {
				t.Fatalf("ListProducts() status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			page := decodeData[model.Page[model.Product]](t, rr)
			got := make([]string, 0, len(page.Content))
			for _, p := range page.Content {
				got = append(got, p.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("names = %v, want %v", got, tt.wantNames)
			}
			if page.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", page.Size, tt.wantSize)
			}
			if page.TotalElements != tt.wantTotal {
				t.Errorf("TotalElements = %d, want %d", page.TotalElements, tt.wantTotal)
			}
		})
	}
}

func TestRESTHandler_UpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	saved := env.seed(t, model.Product{Name: "Mug", Description: "Ceramic", ImagePath: "/mug.png", Quantity: 8})[0]

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "full overwrite", path: "/api/v1/products/1", body: `{"name":"Cup","price":3}`, wantStatus: http.StatusOK},
		{name: "missing product", path: "/api/v1/products/99", body: `{"name":"Cup","price":3}`, wantStatus: http.StatusNotFound},
		{name: "invalid body", path: "/api/v1/products/1", body: `nope`, wantStatus: http.StatusBadRequest},
		{name: "invalid id", path: "/api/v1/products/x", body: `{"name":"Cup"}`, wantStatus: http.StatusBadRequest},
		{name: "validation failure", path: "/api/v1/products/1", body: `{"name":""}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPut, tt.path, tt.body)

			if rr.Code != tt.wantStatus {
				t.Fatalf("UpdateProduct() status = %d, want %d, body %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}

	found, err := env.store.FindProductByID(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("FindProductByID() error: %v", err)
	}
	if found.Name != "Cup" || found.Description != "" || found.ImagePath != "" || found.Quantity != 0 {
		t.Errorf("update should overwrite every field, got %+v", found)
	}
}

func TestRESTHandler_DeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, model.Product{Name: "Lamp"})

	for _, path := range []string{"/api/v1/products/1", "/api/v1/products/1", "/api/v1/products/42"} {
		rr := env.do(t, http.MethodDelete, path, "")
		if rr.Code != http.StatusNoContent {
			t.Errorf("DELETE %s status = %d, want %d", path, rr.Code, http.StatusNoContent)
		}
		if rr.Body.Len() != 0 {
			t.Errorf("DELETE %s should have no body", path)
		}
	}

	if rr := env.do(t, http.MethodGet, "/api/v1/products/1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRESTHandler_Reviews(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, model.Product{Name: "Shoe", Quantity: 10})

	// Act & Assert: create
	rr := env.do(t, http.MethodPost, "/api/v1/products/1/reviews", `{"content":"Great grip"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateReview() status = %d, body %s", rr.Code, rr.Body.String())
	}
	review := decodeData[model.Review](t, rr)
	if review.ProductID != 1 || review.Content != "Great grip" {
		t.Errorf("unexpected review %+v", review)
	}

	if rr := env.do(t, http.MethodPost, "/api/v1/products/9/reviews", `{"content":"?"}`); rr.Code != http.StatusNotFound {
		t.Errorf("review for missing product status = %d, want 404", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/api/v1/products/1/reviews", `{"content":""}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty review status = %d, want 400", rr.Code)
	}

	// list
	rr = env.do(t, http.MethodGet, "/api/v1/products/1/reviews?size=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("ListReviews() status = %d", rr.Code)
	}
	page := decodeData[model.Page[model.Review]](t, rr)
	if page.TotalElements != 1 || len(page.Content) != 1 {
		t.Errorf("unexpected review page %+v", page)
	}

	// get
	if rr := env.do(t, http.MethodGet, "/api/v1/reviews/1", ""); rr.Code != http.StatusOK {
		t.Errorf("GetReview() status = %d, want 200", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/v1/reviews/2", ""); rr.Code != http.StatusNotFound {
		t.Errorf("GetReview() missing status = %d, want 404", rr.Code)
	}

	// cascade on product delete
	if rr := env.do(t, http.MethodDelete, "/api/v1/products/1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("DeleteProduct() status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/v1/reviews/1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("review should be gone with its product, status = %d", rr.Code)
	}
}

func TestRESTHandler_DeleteReview(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, model.Product{Name: "Shoe"})
	env.do(t, http.MethodPost, "/api/v1/products/1/reviews", `{"content":"ok"}`)

	for _, path := range []string{"/api/v1/reviews/1", "/api/v1/reviews/1"} {
		if rr := env.do(t, http.MethodDelete, path, ""); rr.Code != http.StatusNoContent {
			t.Errorf("DeleteReview() status = %d, want 204", rr.Code)
		}
	}
	if rr := env.do(t, http.MethodDelete, "/api/v1/reviews/zz", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("DeleteReview() invalid id status = %d, want 400", rr.Code)
	}
}

func TestRESTHandler_ServiceFailure(t *testing.T) {
	h := NewRESTHandler(faultyProducts{err: errors.New("db down")}, nil, nil, testLimits, zap.NewNop())
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/products", ""},
		{http.MethodGet, "/api/v1/products/1", ""},
		{http.MethodPost, "/api/v1/products", `{"name":"x"}`},
		{http.MethodPut, "/api/v1/products/1", `{"name":"x"}`},
		{http.MethodDelete, "/api/v1/products/1", ""},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
			}
			if msg := decodeError(t, rr).Message; msg != "internal server error" {
				t.Errorf("message = %q, internal details must not leak", msg)
			}
		})
	}
}
