package models

import "time"

// Event types
const (
	EventTypeSaleRecorded       = "SALE_RECORDED"
	EventTypeSaleRefunded       = "SALE_REFUNDED"
	EventTypeSaleDeleted        = "SALE_DELETED"
	EventTypeStockDiscrepancy   = "STOCK_DISCREPANCY"
	EventTypeStoreStatusChanged = "STORE_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleRecordedEvent published after a sale commits
type SaleRecordedEvent struct {
	BaseEvent
	SaleID         string  `json:"sale_id"`
	ProductID      int64   `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	TotalPrice     float64 `json:"total_price"`
	ReceiptNo      string  `json:"receipt_no"`
	StockRemaining int     `json:"stock_remaining"`
}

// SaleRefundedEvent published after a refund commits
type SaleRefundedEvent struct {
	BaseEvent
	SaleID        string `json:"sale_id"`
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	StockRestored bool   `json:"stock_restored"`
}

// SaleDeletedEvent published after the hard-delete reversal path
type SaleDeletedEvent struct {
	BaseEvent
	SaleID        string `json:"sale_id"`
	ProductID     int64  `json:"product_id"`
	Quantity      int    `json:"quantity"`
	StockRestored bool   `json:"stock_restored"`
}

// StockDiscrepancyEvent flags a reversal whose stock restore touched no
// product row, for manual reconciliation.
type StockDiscrepancyEvent struct {
	BaseEvent
	SaleID    string `json:"sale_id"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Detail    string `json:"detail"`
}

// StoreStatusChangedEvent published when the open/closed toggle flips
type StoreStatusChangedEvent struct {
	BaseEvent
	IsOpen      bool   `json:"is_open"`
	CloseReason string `json:"close_reason,omitempty"`
}
