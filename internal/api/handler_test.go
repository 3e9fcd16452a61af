package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pharmacy-pos/config"
	"pharmacy-pos/internal/api"
	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.MemoryLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	ledger := service.NewMemoryLedger()
	posCfg := config.POSConfig{
		LowStockThreshold: 5,
		ReceiptPrefix:     "RCP",
		RecentSalesLimit:  10,
		UploadDir:         t.TempDir(),
		UploadBaseURL:     "/uploads",
	}

	receipts := service.NewReceiptIssuer(nil, posCfg.ReceiptPrefix)
	pos := service.NewPOSService(ledger, nil, receipts, posCfg.RecentSalesLimit)
	inventory := service.NewInventoryService(ledger, nil, nil)
	reporting := service.NewReportingService(ledger, time.UTC, posCfg.LowStockThreshold)

	handler := api.NewHandler(pos, inventory, reporting, posCfg)
	handler.SetupRoutes(router)
	return router, ledger
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTerminalFullFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	var product models.Product

	t.Run("POST_CreateProduct", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]interface{}{
			"name":     "Paracetamol 500mg",
			"price":    500,
			"quantity": 20,
			"category": "Painkillers",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
		assert.NotZero(t, product.ID)
		assert.True(t, product.InStock)
	})

	var sale models.Sale

	t.Run("POST_RecordSale", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/sales", map[string]interface{}{
			"product_id": product.ID,
			"quantity":   3,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
		assert.Equal(t, 1500.0, sale.TotalPrice)
		assert.Equal(t, models.SaleStatusCompleted, sale.Status)
		assert.NotEmpty(t, sale.ReceiptNo)
	})

	t.Run("GET_ProductAfterSale", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var after models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
		assert.Equal(t, 17, after.Quantity)
	})

	t.Run("POST_OversellRejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/sales", map[string]interface{}{
			"product_id": product.ID,
			"quantity":   100,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("POST_RefundSale", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/sales/%s/refund", sale.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var refunded models.Sale
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refunded))
		assert.True(t, refunded.IsRefunded)
	})

	t.Run("POST_SecondRefundRejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/sales/%s/refund", sale.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), nil)
		var after models.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
		assert.Equal(t, 20, after.Quantity, "stock restored exactly once")
	})

	t.Run("GET_StatsExcludeRefunded", func(t *testing.T) {
		// one fresh sale alongside the refunded one
		w := doJSON(t, router, http.MethodPost, "/api/v1/sales", map[string]interface{}{
			"product_id": product.ID,
			"quantity":   2,
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodGet, "/api/v1/sales/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stats service.SalesStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1000.0, stats.TotalRevenue)
		assert.Equal(t, 1, stats.Transactions)
		assert.Equal(t, 500.0*18, stats.InventoryValue)
	})

	t.Run("GET_SalesExport", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/sales/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.Contains(t, w.Body.String(), "Paracetamol 500mg")
	})
}

func TestSaleValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// quantity is required and must bind
	w := doJSON(t, router, http.MethodPost, "/api/v1/sales", map[string]interface{}{
		"product_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown product
	w = doJSON(t, router, http.MethodPost, "/api/v1/sales", map[string]interface{}{
		"product_id": 999,
		"quantity":   1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreStatusEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	// closing without a reason is a validation error
	w := doJSON(t, router, http.MethodPut, "/api/v1/store/status", map[string]interface{}{
		"is_open": false,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/store/status", map[string]interface{}{
		"is_open":      false,
		"close_reason": "Stock take",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/store/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status models.StoreStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.IsOpen)
	assert.Equal(t, "Stock take", status.CloseReason)
}

func TestLoginRedirectEndpoint(t *testing.T) {
	router, ledger := newTestRouter(t)
	ledger.AddProfile(models.Profile{ID: "u1", Email: "boss@firdausi.com", FullName: "The Boss", Role: models.RoleAdmin})

	w := doJSON(t, router, http.MethodPost, "/api/v1/login/redirect", map[string]interface{}{
		"email": "boss@firdausi.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Role     string `json:"role"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, "/admin/dashboard", resp.Redirect)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login/redirect", map[string]interface{}{
		"email": "nobody@firdausi.com",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLowStockEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Vitamin C", "price": 800, "quantity": 5, "category": "Supplements",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name": "Zinc", "price": 600, "quantity": 6, "category": "Supplements",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Vitamin C", resp.Products[0].Name)
}
