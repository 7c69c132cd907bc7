package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/compat/internal/compat"
	"olp/compat/internal/source"
	"olp/compat/pkg/logger"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fixtures, err := source.NewFixtureProvider()
	require.NoError(t, err)
	handler := NewOrderHandler(fixtures, compat.DefaultTransformer(), logger.NewNopLogger())
	return SetupRoutes(handler)
}

func doGet(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestGetOrderSuccess(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v2_good")

	require.Equal(t, http.StatusOK, w.Code)

	var order compat.LegacyOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "v2-100", order.OrderID)
	assert.Equal(t, compat.StatusPaid, order.Status)
	assert.InDelta(t, 30.00, order.TotalPrice, 0.001)
	assert.Equal(t, "2025-12-10", order.CreatedAt)
}

func TestGetOrderV3(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v3_explicit_items&version=v3")

	require.Equal(t, http.StatusOK, w.Code)

	var order compat.LegacyOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "v3-456", order.OrderID)
	assert.Equal(t, compat.StatusShipped, order.Status)
	assert.InDelta(t, 150.00, order.TotalPrice, 0.001)
}

func TestGetOrderMissingCase(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")
}

func TestGetOrderBadVersion(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v2_good&version=v4")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderDeprecatedUpstream(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v1_deprecated")

	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "API_VERSION_DEPRECATED")
}

func TestGetOrderUpstreamClientError(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v2_error")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad id")
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestGetOrderTransientUpstream(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v3_error_retryable")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetOrderEmptyPayload(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/api/v1/orders?case=v3_empty_data")

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)
	w := doGet(engine, "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestMockRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixtures, err := source.NewFixtureProvider()
	require.NoError(t, err)
	engine := SetupMockRoutes(fixtures)

	w := doGet(engine, "/api/v2/orders?case=v2_good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "v2-100")

	w = doGet(engine, "/api/v1/orders?case=v1_deprecated")
	assert.Equal(t, http.StatusGone, w.Code)

	w = doGet(engine, "/api/v3/orders?case=nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
