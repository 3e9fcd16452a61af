package service

import (
	"context"
	"testing"
	"time"

	"pharmacy-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStarts(t *testing.T) {
	// Wednesday afternoon
	now := time.Date(2024, time.May, 15, 13, 45, 12, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC), StartOfDay(now))
	// week starts on the most recent Sunday
	assert.Equal(t, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC), StartOfWeek(now))
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(now))
}

func TestWindowStartsOnSunday(t *testing.T) {
	// a Sunday is its own week start
	sunday := time.Date(2024, time.May, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestStatsExcludesRefundedSales(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	now := time.Date(2024, time.May, 15, 13, 0, 0, 0, time.UTC)

	product := &models.Product{Name: "Ibuprofen 400mg", Price: 700, Quantity: 100, Category: "Painkillers"}
	require.NoError(t, ledger.CreateProduct(ctx, product))

	record := func(id string, qty int, at time.Time) *models.Sale {
		sale := &models.Sale{ID: id, ProductID: product.ID, Quantity: qty, CreatedAt: at}
		_, err := ledger.RecordSale(ctx, sale)
		require.NoError(t, err)
		return sale
	}

	record("today", 2, now.Add(-time.Hour))                  // 1400, in all windows
	record("this-week", 1, now.AddDate(0, 0, -2))            // 700, weekly+monthly
	record("this-month", 3, now.AddDate(0, 0, -10))          // 2100, monthly only
	record("last-month", 1, now.AddDate(0, -2, 0))           // 700, total only
	refundMe := record("refunded-today", 4, now.Add(-time.Minute)) // 2800, excluded

	_, _, err := ledger.RefundSale(ctx, refundMe.ID)
	require.NoError(t, err)

	rs := NewReportingService(ledger, time.UTC, 5)
	rs.now = func() time.Time { return now }

	stats, err := rs.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1400.0, stats.DailyRevenue)
	assert.Equal(t, 2100.0, stats.WeeklyRevenue)
	assert.Equal(t, 4200.0, stats.MonthlyRevenue)
	assert.Equal(t, 4900.0, stats.TotalRevenue)
	assert.Equal(t, 4, stats.Transactions)

	// 100 - 2 - 1 - 3 - 1 - 4 sold + 4 restored by the refund
	assert.Equal(t, 700.0*93, stats.InventoryValue)
}

func TestLowStockThreshold(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	atThreshold := &models.Product{Name: "Vitamin C", Price: 800, Quantity: 5, Category: "Supplements"}
	aboveThreshold := &models.Product{Name: "Zinc", Price: 600, Quantity: 6, Category: "Supplements"}
	require.NoError(t, ledger.CreateProduct(ctx, atThreshold))
	require.NoError(t, ledger.CreateProduct(ctx, aboveThreshold))

	rs := NewReportingService(ledger, time.UTC, 5)

	assert.True(t, rs.IsLowStock(atThreshold))
	assert.False(t, rs.IsLowStock(aboveThreshold))

	low, err := rs.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Vitamin C", low[0].Name)
}
