package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/products-catalog-api/internal/app/dto"
	"github.com/mrops-br/products-catalog-api/internal/app/service"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/http/response"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/products-catalog-api/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTelemetry(t *testing.T) *telemetry.Telemetry {
	t.Helper()
	telem, err := telemetry.NewNoOpTelemetry(&config.OTLPConfig{ServiceName: "products-api-test", LogLevel: slog.LevelError})
	require.NoError(t, err)
	return telem
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWith(t, newTestTelemetry(t))
}

func newTestServerWith(t *testing.T, telem *telemetry.Telemetry) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := telem.TracerProvider.Tracer("test")
	repo := memory.NewProductRepository(tracer, logger)
	svc := service.NewProductService(repo, tracer, telem.MeterProvider.Meter("test"), logger)
	h := handler.NewProductHandler(svc, logger)

	return NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, h, logger, telem).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestProductLifecycle(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/products", `{"id":77,"name":"Blue Shirt","description":"Cotton","price":19.99,"image":"https://img/x.png"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/products/1", rr.Header().Get("Location"))
	assert.Contains(t, rr.Body.String(), `"price":19.99`)

	var created dto.ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)

	rr = do(t, h, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var got dto.ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Blue Shirt", got.Name)
	assert.True(t, created.Price.Equal(got.Price.Decimal))

	rr = do(t, h, http.MethodPut, "/products/1", `{"id":1,"name":"Pants","description":"Denim","price":40}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"name":"Pants"`)

	rr = do(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []dto.ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Pants", list[0].Name)

	rr = do(t, h, http.MethodDelete, "/products/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, response.ErrorResponse{Error: "not_found", Message: "Product not found"}, decodeError(t, rr))
}

func TestEmptyListIsArray(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestClientErrors(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/products", `{"name":"a","description":"b","price":1}`).Code)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"blank name", http.MethodPost, "/products", `{"name":" ","description":"b","price":1}`, http.StatusBadRequest, "Invalid product data: name is required"},
		{"non-positive price", http.MethodPost, "/products", `{"name":"a","description":"b","price":0}`, http.StatusBadRequest, "Invalid product data: price must be positive"},
		{"malformed body", http.MethodPost, "/products", `{"name":`, http.StatusBadRequest, ""},
		{"id mismatch", http.MethodPut, "/products/1", `{"id":2,"name":"a","description":"b","price":1}`, http.StatusBadRequest, "Product ID mismatch"},
		{"update missing", http.MethodPut, "/products/9", `{"id":9,"name":"a","description":"b","price":1}`, http.StatusNotFound, "Product not found"},
		{"delete missing", http.MethodDelete, "/products/9", "", http.StatusNotFound, "Product not found"},
		{"non numeric id", http.MethodGet, "/products/abc", "", http.StatusBadRequest, "Invalid product id"},
		{"oversized body", http.MethodPost, "/products", `{"name":"` + strings.Repeat("a", 2<<20) + `","description":"b","price":1}`, http.StatusBadRequest, "Invalid product data: http: request body too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decodeError(t, rr)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	do(t, h, http.MethodGet, "/products", "")
	rr = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "products_operations")
}

func TestRouteTelemetryUsesPattern(t *testing.T) {
	telem := newTestTelemetry(t)
	recorder := tracetest.NewSpanRecorder()
	telem.TracerProvider.RegisterSpanProcessor(recorder)
	h := newTestServerWith(t, telem)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/products", `{"name":"a","description":"b","price":1}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/products", `{"name":"c","description":"d","price":2}`).Code)
	do(t, h, http.MethodGet, "/products/1", "")
	do(t, h, http.MethodGet, "/products/2", "")
	do(t, h, http.MethodGet, "/health", "")

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var durationSeries []string
	for _, line := range strings.Split(rr.Body.String(), "\n") {
		if strings.HasPrefix(line, "http_server_request_duration_seconds_count{") {
			durationSeries = append(durationSeries, line)
		}
	}
	require.NotEmpty(t, durationSeries)
	joined := strings.Join(durationSeries, "\n")
	assert.Contains(t, joined, `http_route="/products/{id}"`)
	assert.Contains(t, joined, `http_route="/health"`)
	assert.NotContains(t, rr.Body.String(), `http_route="/products/1"`)
	assert.NotContains(t, rr.Body.String(), `http_route="/products/2"`)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "GET /products/{id}")
	assert.NotContains(t, names, "GET /products/1")
}
