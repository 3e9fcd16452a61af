package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pharmacy-pos/config"
	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/service"
	"pharmacy-pos/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	pos       *service.POSService
	inventory *service.InventoryService
	reporting *service.ReportingService
	uploads   config.POSConfig
}

// NewHandler creates a new HTTP handler
func NewHandler(
	pos *service.POSService,
	inventory *service.InventoryService,
	reporting *service.ReportingService,
	posCfg config.POSConfig,
) *Handler {
	return &Handler{
		pos:       pos,
		inventory: inventory,
		reporting: reporting,
		uploads:   posCfg,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.Static(h.uploads.UploadBaseURL, h.uploads.UploadDir)

	v1 := router.Group("/api/v1")
	{
		// public storefront
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.GET("/store/status", h.getStoreStatus)

		// sales terminal
		v1.POST("/sales", h.recordSale)
		v1.GET("/sales", h.listSales)
		v1.GET("/sales/stats", h.salesStats)
		v1.GET("/sales/export", h.exportSales)
		v1.POST("/sales/:id/refund", h.refundSale)
		v1.DELETE("/sales/:id", h.deleteSale)

		// admin
		v1.POST("/products", h.saveProduct)
		v1.PUT("/products/:id", h.saveProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.POST("/products/:id/image", h.uploadProductImage)
		v1.POST("/products/:id/stock-flag", h.toggleInStock)
		v1.GET("/inventory/low-stock", h.lowStock)
		v1.PUT("/store/status", h.setStoreStatus)
		v1.DELETE("/sales", h.resetSales)
		v1.POST("/login/redirect", h.loginRedirect)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts handles the storefront catalog with search and category filters
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.inventory.Catalog(c.Request.Context(), c.Query("search"), c.Query("category"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles the product detail page
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	product, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// listCategories returns the distinct categories for filter buttons
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.inventory.Categories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// getStoreStatus returns the open/closed flag read by every storefront page
func (h *Handler) getStoreStatus(c *gin.Context) {
	status, err := h.inventory.StoreStatus(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// setStoreStatus flips the open/closed toggle
func (h *Handler) setStoreStatus(c *gin.Context) {
	var req struct {
		IsOpen      bool   `json:"is_open"`
		CloseReason string `json:"close_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	status, err := h.inventory.SetStoreStatus(c.Request.Context(), req.IsOpen, req.CloseReason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// recordSale handles the terminal sale action
func (h *Handler) recordSale(c *gin.Context) {
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sale, err := h.pos.RecordSale(c.Request.Context(), &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// refundSale handles the refund reversal path
func (h *Handler) refundSale(c *gin.Context) {
	sale, err := h.pos.RefundSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// deleteSale handles the hard-delete reversal path
func (h *Handler) deleteSale(c *gin.Context) {
	if err := h.pos.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// listSales returns the latest transactions, or all with ?all=true
func (h *Handler) listSales(c *gin.Context) {
	var (
		sales []models.Sale
		err   error
	)
	if c.Query("all") == "true" {
		sales, err = h.pos.SalesHistory(c.Request.Context())
	} else {
		sales, err = h.pos.RecentSales(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// salesStats returns the revenue and inventory rollups
func (h *Handler) salesStats(c *gin.Context) {
	stats, err := h.reporting.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// exportSales streams the sales history as CSV
func (h *Handler) exportSales(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="sales_report.csv"`)
	if err := h.pos.ExportSalesCSV(c.Request.Context(), c.Writer); err != nil {
		abortWithError(c, err)
	}
}

// resetSales permanently clears the sales history
func (h *Handler) resetSales(c *gin.Context) {
	deleted, err := h.pos.ResetSales(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// saveProduct creates (POST) or updates (PUT with :id) a product
func (h *Handler) saveProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if idStr := c.Param("id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}
		product.ID = id
	}

	if product.Price < 0 || product.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price and quantity must be non-negative"})
		return
	}

	if err := h.inventory.SaveProduct(c.Request.Context(), &product); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// deleteProduct removes a product from the ledger
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := h.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// toggleInStock flips the product visibility flag
func (h *Handler) toggleInStock(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	product, err := h.inventory.ToggleInStock(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// uploadProductImage stores the file under a timestamp-derived name and
// records its public URL on the product.
func (h *Handler) uploadProductImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}

	if err := os.MkdirAll(h.uploads.UploadDir, 0o755); err != nil {
		abortWithError(c, err)
		return
	}

	fileName := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploads.UploadDir, fileName)); err != nil {
		abortWithError(c, err)
		return
	}

	imageURL := h.uploads.UploadBaseURL + "/" + fileName
	if err := h.inventory.AttachImage(c.Request.Context(), id, imageURL); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// lowStock lists products at or below the threshold
func (h *Handler) lowStock(c *gin.Context) {
	products, err := h.reporting.LowStock(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// loginRedirect resolves a staff email to a workspace path
func (h *Handler) loginRedirect(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	profile, redirect, err := h.inventory.LoginRedirect(c.Request.Context(), req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"role":      profile.Role,
		"full_name": profile.FullName,
		"redirect":  redirect,
	})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return 0, false
	}
	return id, true
}

// abortWithError maps domain errors onto HTTP status codes
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrSaleNotFound),
		errors.Is(err, models.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrDuplicateRefund):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrCloseReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnknownRole):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
