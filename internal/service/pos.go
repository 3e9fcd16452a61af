package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POSService is the sales terminal: it records sales and processes the two
// reversal paths, refund and hard delete.
type POSService struct {
	ledger      Ledger
	events      EventSink
	receipts    *ReceiptIssuer
	recentLimit int
	logger      *zap.Logger
}

// NewPOSService creates a new POS service. A nil events sink disables
// publishing.
func NewPOSService(ledger Ledger, events EventSink, receipts *ReceiptIssuer, recentLimit int) *POSService {
	return &POSService{
		ledger:      ledger,
		events:      events,
		receipts:    receipts,
		recentLimit: recentLimit,
		logger:      util.GetLogger(),
	}
}

// RecordSaleRequest represents a terminal sale
type RecordSaleRequest struct {
	ProductID     int64  `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// RecordSale verifies the requested quantity against stock and, in one
// transaction, inserts the sale and decrements the product quantity. The
// total is frozen at sale time from the current unit price.
func (s *POSService) RecordSale(ctx context.Context, req *RecordSaleRequest) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "POSService.RecordSale")
	defer span.End()

	if req.Quantity <= 0 {
		util.SalesRejectedTotal.WithLabelValues("invalid_quantity").Inc()
		return nil, models.ErrInvalidQuantity
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}

	sale := &models.Sale{
		ID:            uuid.NewString(),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		ReceiptNo:     s.receipts.Next(ctx),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: paymentMethod,
	}

	start := time.Now()
	remaining, err := s.ledger.RecordSale(ctx, sale)
	util.SaleRecordLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		switch err {
		case models.ErrInsufficientStock:
			util.SalesRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		case models.ErrProductNotFound:
			util.SalesRejectedTotal.WithLabelValues("product_not_found").Inc()
		default:
			util.SalesRejectedTotal.WithLabelValues("store_error").Inc()
		}
		return nil, err
	}

	util.SalesRecordedTotal.Inc()
	util.RevenueRecordedTotal.Add(sale.TotalPrice)
	s.logger.Info("Sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("receipt_no", sale.ReceiptNo),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.Float64("total_price", sale.TotalPrice),
		zap.Int("stock_remaining", remaining))

	if s.events != nil {
		event := &models.SaleRecordedEvent{
			BaseEvent:      newBaseEvent(models.EventTypeSaleRecorded),
			SaleID:         sale.ID,
			ProductID:      sale.ProductID,
			ProductName:    sale.ProductName,
			Quantity:       sale.Quantity,
			TotalPrice:     sale.TotalPrice,
			ReceiptNo:      sale.ReceiptNo,
			StockRemaining: remaining,
		}
		if err := s.events.PublishSaleRecorded(ctx, event); err != nil {
			s.logger.Error("Failed to publish SaleRecorded event", zap.Error(err))
		}
	}

	return sale, nil
}

// RefundSale reverses a sale: the refunded flag flips and exactly the
// quantity originally sold comes back to stock, in one transaction. A second
// refund on the same sale is rejected with no writes.
func (s *POSService) RefundSale(ctx context.Context, saleID string) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "POSService.RefundSale")
	defer span.End()

	sale, restored, err := s.ledger.RefundSale(ctx, saleID)
	if err != nil {
		switch err {
		case models.ErrDuplicateRefund:
			util.RefundsRejectedTotal.WithLabelValues("duplicate_refund").Inc()
		case models.ErrSaleNotFound:
			util.RefundsRejectedTotal.WithLabelValues("sale_not_found").Inc()
		default:
			util.RefundsRejectedTotal.WithLabelValues("store_error").Inc()
		}
		return nil, err
	}

	util.RefundsTotal.Inc()
	s.logger.Info("Sale refunded",
		zap.String("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.Bool("stock_restored", restored))

	if !restored {
		s.reportDiscrepancy(ctx, sale, "refund restore found no product row")
	}

	if s.events != nil {
		event := &models.SaleRefundedEvent{
			BaseEvent:     newBaseEvent(models.EventTypeSaleRefunded),
			SaleID:        sale.ID,
			ProductID:     sale.ProductID,
			Quantity:      sale.Quantity,
			StockRestored: restored,
		}
		if err := s.events.PublishSaleRefunded(ctx, event); err != nil {
			s.logger.Error("Failed to publish SaleRefunded event", zap.Error(err))
		}
	}

	return sale, nil
}

// DeleteSale is the hard-delete reversal path. Stock restoration follows the
// same exact-quantity rule, and a sale already reversed by refund restores
// nothing.
func (s *POSService) DeleteSale(ctx context.Context, saleID string) error {
	ctx, span := util.StartSpan(ctx, "POSService.DeleteSale")
	defer span.End()

	sale, restored, err := s.ledger.DeleteSale(ctx, saleID)
	if err != nil {
		return err
	}

	util.SalesDeletedTotal.Inc()
	s.logger.Info("Sale deleted",
		zap.String("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Bool("stock_restored", restored))

	if !restored && !sale.IsRefunded {
		s.reportDiscrepancy(ctx, sale, "delete restore found no product row")
	}

	if s.events != nil {
		event := &models.SaleDeletedEvent{
			BaseEvent:     newBaseEvent(models.EventTypeSaleDeleted),
			SaleID:        sale.ID,
			ProductID:     sale.ProductID,
			Quantity:      sale.Quantity,
			StockRestored: restored,
		}
		if err := s.events.PublishSaleDeleted(ctx, event); err != nil {
			s.logger.Error("Failed to publish SaleDeleted event", zap.Error(err))
		}
	}

	return nil
}

// reportDiscrepancy surfaces a reversal whose stock restore went nowhere.
// This is never swallowed: it is logged, counted, and published for manual
// reconciliation.
func (s *POSService) reportDiscrepancy(ctx context.Context, sale *models.Sale, detail string) {
	util.StockDiscrepanciesTotal.Inc()
	s.logger.Error("Stock discrepancy",
		zap.String("sale_id", sale.ID),
		zap.Int64("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
		zap.String("detail", detail))

	if s.events == nil {
		return
	}
	event := &models.StockDiscrepancyEvent{
		BaseEvent: newBaseEvent(models.EventTypeStockDiscrepancy),
		SaleID:    sale.ID,
		ProductID: sale.ProductID,
		Quantity:  sale.Quantity,
		Detail:    detail,
	}
	if err := s.events.PublishStockDiscrepancy(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockDiscrepancy event", zap.Error(err))
	}
}

// RecentSales returns the latest transactions for the terminal view.
func (s *POSService) RecentSales(ctx context.Context) ([]models.Sale, error) {
	return s.ledger.ListSales(ctx, s.recentLimit)
}

// SalesHistory returns every transaction, newest first.
func (s *POSService) SalesHistory(ctx context.Context) ([]models.Sale, error) {
	return s.ledger.ListSales(ctx, 0)
}

// ResetSales permanently deletes all sales records. Stock is untouched.
func (s *POSService) ResetSales(ctx context.Context) (int64, error) {
	deleted, err := s.ledger.ResetSales(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn("All sales records cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

// ExportSalesCSV writes the full sales history as CSV.
func (s *POSService) ExportSalesCSV(ctx context.Context, w io.Writer) error {
	sales, err := s.ledger.ListSales(ctx, 0)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Receipt", "Product", "Qty", "Total", "Status"}); err != nil {
		return err
	}
	for _, sale := range sales {
		record := []string{
			sale.CreatedAt.Format("2006-01-02 15:04"),
			sale.ReceiptNo,
			sale.ProductName,
			strconv.Itoa(sale.Quantity),
			fmt.Sprintf("%.2f", sale.TotalPrice),
			sale.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
