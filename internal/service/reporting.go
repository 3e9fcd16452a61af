package service

import (
	"context"
	"time"

	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"go.uber.org/zap"
)

// ReportingService derives scalar rollups from the ledger and sale records.
type ReportingService struct {
	ledger            Ledger
	loc               *time.Location
	lowStockThreshold int
	logger            *zap.Logger
	now               func() time.Time
}

// NewReportingService creates a reporting service. Windows are computed in
// loc; nil means local time.
func NewReportingService(ledger Ledger, loc *time.Location, lowStockThreshold int) *ReportingService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportingService{
		ledger:            ledger,
		loc:               loc,
		lowStockThreshold: lowStockThreshold,
		logger:            util.GetLogger(),
		now:               time.Now,
	}
}

// SalesStats is the dashboard rollup. Every revenue figure excludes
// refunded and voided sales.
type SalesStats struct {
	DailyRevenue   float64 `json:"daily_revenue"`
	WeeklyRevenue  float64 `json:"weekly_revenue"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	TotalRevenue   float64 `json:"total_revenue"`
	Transactions   int     `json:"transactions"`
	InventoryValue float64 `json:"inventory_value"`
}

// Stats computes daily/weekly/monthly revenue, all-time revenue, the
// completed transaction count, and the total inventory value.
func (rs *ReportingService) Stats(ctx context.Context) (*SalesStats, error) {
	ctx, span := util.StartSpan(ctx, "ReportingService.Stats")
	defer span.End()

	now := rs.now().In(rs.loc)

	daily, err := rs.ledger.RevenueSince(ctx, StartOfDay(now))
	if err != nil {
		return nil, err
	}
	weekly, err := rs.ledger.RevenueSince(ctx, StartOfWeek(now))
	if err != nil {
		return nil, err
	}
	monthly, err := rs.ledger.RevenueSince(ctx, StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	total, err := rs.ledger.RevenueSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}
	transactions, err := rs.ledger.CountCompletedSales(ctx)
	if err != nil {
		return nil, err
	}
	value, err := rs.ledger.InventoryValue(ctx)
	if err != nil {
		return nil, err
	}

	stats := &SalesStats{
		DailyRevenue:   daily,
		WeeklyRevenue:  weekly,
		MonthlyRevenue: monthly,
		TotalRevenue:   total,
		Transactions:   transactions,
		InventoryValue: value,
	}

	rs.logger.Debug("Stats computed",
		zap.Float64("daily", daily),
		zap.Float64("weekly", weekly),
		zap.Float64("monthly", monthly))
	return stats, nil
}

// LowStock lists products at or below the configured threshold.
func (rs *ReportingService) LowStock(ctx context.Context) ([]models.Product, error) {
	return rs.ledger.LowStockProducts(ctx, rs.lowStockThreshold)
}

// IsLowStock applies the threshold to a single product.
func (rs *ReportingService) IsLowStock(p *models.Product) bool {
	return p.LowStock(rs.lowStockThreshold)
}

// StartOfDay is local calendar midnight of t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek is midnight of the most recent Sunday.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t.AddDate(0, 0, -int(t.Weekday())))
}

// StartOfMonth is midnight of the first of the current month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
