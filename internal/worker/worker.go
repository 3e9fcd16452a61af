package worker

import (
	"context"

	"pharmacy-pos/internal/broker"
	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"go.uber.org/zap"
)

// AuditWorker consumes sale events off the audit topic: it raises low-stock
// alerts after each sale and keeps a reconciliation trail of stock
// discrepancies.
type AuditWorker struct {
	consumer          *broker.Consumer
	eventHandler      *broker.EventHandler
	lowStockThreshold int
	logger            *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer, lowStockThreshold int) *AuditWorker {
	w := &AuditWorker{
		consumer:          consumer,
		lowStockThreshold: lowStockThreshold,
		logger:            util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnSaleRecorded(w.handleSaleRecorded)
	eventHandler.OnStockDiscrepancy(w.handleStockDiscrepancy)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting audit worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	w.logger.Info("Stopping audit worker")
	return w.consumer.Close()
}

func (w *AuditWorker) handleSaleRecorded(_ context.Context, event *models.SaleRecordedEvent) error {
	if event.StockRemaining <= w.lowStockThreshold {
		w.logger.Warn("Low stock after sale",
			zap.Int64("product_id", event.ProductID),
			zap.String("product_name", event.ProductName),
			zap.Int("stock_remaining", event.StockRemaining),
			zap.Int("threshold", w.lowStockThreshold))
	}
	return nil
}

// Discrepancies land in the log for manual reconciliation; they are never
// repaired automatically.
func (w *AuditWorker) handleStockDiscrepancy(_ context.Context, event *models.StockDiscrepancyEvent) error {
	w.logger.Error("Stock discrepancy needs reconciliation",
		zap.String("sale_id", event.SaleID),
		zap.Int64("product_id", event.ProductID),
		zap.Int("quantity", event.Quantity),
		zap.String("detail", event.Detail))
	return nil
}
