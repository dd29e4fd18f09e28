//go:build functional

// Package functional runs the catalog API end to end over a real listener
// and a sqlite database.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/product-catalog/internal/config"
	"github.com/vyrodovalexey/product-catalog/internal/server"
	"github.com/vyrodovalexey/product-catalog/internal/store"
)

// EnvTestDSN overrides the sqlite DSN used by the suite.
const EnvTestDSN = "TEST_DB_DSN"

const (
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	readyTimeout           = 10 * time.Second
)

// TestServer runs a catalog server on a free local port.
type TestServer struct {
	Server  *server.Server
	BaseURL string
	t       *testing.T
}

// NewTestServer starts a server over a fresh database and stops it on cleanup.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find available port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	dsn := ":memory:"
	if v := os.Getenv(EnvTestDSN); v != "" {
		dsn = v
	}

	cfg := &config.Config{
		ServerPort:      port,
		LogLevel:        "error",
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  true,
		CORSOrigins:     []string{"*"},
		DBDriver:        store.DriverSQLite,
		DBDSN:           dsn,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	catalog, err := store.Open(ctx, cfg.Database(), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	srv := server.New(cfg, zap.NewNop(), catalog, noop.NewTracerProvider(), propagation.TraceContext{})
	ts := &TestServer{Server: srv, BaseURL: fmt.Sprintf("http://127.0.0.1:%d", port), t: t}

	go func() {
		if err := srv.Start(); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()
	ts.waitForReady(ctx)

	t.Cleanup(ts.Stop)
	return ts
}

func (ts *TestServer) waitForReady(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/ready")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// Stop shuts the server down and closes its store.
func (ts *TestServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := ts.Server.Shutdown(ctx); err != nil {
		ts.t.Logf("Server shutdown error: %v", err)
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Do sends a request with an optional JSON body.
func (ts *TestServer) Do(t *testing.T, method, path string, body any) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal request body: %v", err)
			}
			raw = string(data)
		}
		reader = bytes.NewBufferString(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, ts.BaseURL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: data}
}

// Data decodes the envelope's data field into T.
func Data[T any](t *testing.T, resp *Response) T {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		t.Fatalf("Failed to parse response %s: %v", resp.Body, err)
	}
	if !envelope.Success {
		t.Fatalf("Expected success, got %s", resp.Body)
	}
	return envelope.Data
}

// AssertStatusCode fails the test when the status differs.
func AssertStatusCode(t *testing.T, resp *Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("Expected status %d, got %d: %s", want, resp.StatusCode, resp.Body)
	}
}

// LogTestStart logs the test case identifier.
func LogTestStart(t *testing.T, id, description string) {
	t.Helper()
	t.Logf("=== %s: %s", id, description)
}
