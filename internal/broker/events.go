package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing POS domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSaleRecorded publishes SaleRecorded event
func (ep *EventPublisher) PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishSaleRefunded publishes SaleRefunded event
func (ep *EventPublisher) PublishSaleRefunded(ctx context.Context, event *models.SaleRefundedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishSaleDeleted publishes SaleDeleted event
func (ep *EventPublisher) PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishStockDiscrepancy publishes StockDiscrepancy event
func (ep *EventPublisher) PublishStockDiscrepancy(ctx context.Context, event *models.StockDiscrepancyEvent) error {
	return ep.producer.PublishEvent(ctx, saleKey(event.SaleID), event)
}

// PublishStoreStatusChanged publishes StoreStatusChanged event
func (ep *EventPublisher) PublishStoreStatusChanged(ctx context.Context, event *models.StoreStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, "store-status", event)
}

func saleKey(saleID string) string {
	return fmt.Sprintf("sale-%s", saleID)
}

// EventHandler routes incoming POS events to registered callbacks
type EventHandler struct {
	onSaleRecorded     func(context.Context, *models.SaleRecordedEvent) error
	onStockDiscrepancy func(context.Context, *models.StockDiscrepancyEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnSaleRecorded registers a handler for SaleRecorded events
func (eh *EventHandler) OnSaleRecorded(handler func(context.Context, *models.SaleRecordedEvent) error) {
	eh.onSaleRecorded = handler
}

// OnStockDiscrepancy registers a handler for StockDiscrepancy events
func (eh *EventHandler) OnStockDiscrepancy(handler func(context.Context, *models.StockDiscrepancyEvent) error) {
	eh.onStockDiscrepancy = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeSaleRecorded:
		if eh.onSaleRecorded != nil {
			var event models.SaleRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleRecorded event: %w", err)
			}
			return eh.onSaleRecorded(ctx, &event)
		}

	case models.EventTypeStockDiscrepancy:
		if eh.onStockDiscrepancy != nil {
			var event models.StockDiscrepancyEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal StockDiscrepancy event: %w", err)
			}
			return eh.onStockDiscrepancy(ctx, &event)
		}

	default:
		util.GetLogger().Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
