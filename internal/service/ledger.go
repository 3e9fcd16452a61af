package service

import (
	"context"
	"time"

	"pharmacy-pos/internal/broker"
	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/store"
)

// Ledger is the persistence surface the POS services run on. *store.Store is
// the Postgres implementation; MemoryLedger backs tests and demo mode.
type Ledger interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context, search, category string) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SetProductInStock(ctx context.Context, id int64, inStock bool) error
	SetProductImage(ctx context.Context, id int64, imageURL string) error
	LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
	InventoryValue(ctx context.Context) (float64, error)

	RecordSale(ctx context.Context, sale *models.Sale) (int, error)
	RefundSale(ctx context.Context, saleID string) (*models.Sale, bool, error)
	DeleteSale(ctx context.Context, saleID string) (*models.Sale, bool, error)
	GetSaleByID(ctx context.Context, saleID string) (*models.Sale, error)
	ListSales(ctx context.Context, limit int) ([]models.Sale, error)
	ResetSales(ctx context.Context) (int64, error)
	RevenueSince(ctx context.Context, since time.Time) (float64, error)
	CountCompletedSales(ctx context.Context) (int, error)

	GetStoreStatus(ctx context.Context) (*models.StoreStatus, error)
	SetStoreStatus(ctx context.Context, isOpen bool, closeReason string) (*models.StoreStatus, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
}

var _ Ledger = (*store.Store)(nil)

// EventSink receives domain events after a mutation commits. Publishing is
// best-effort; failures are logged and never roll back the write.
type EventSink interface {
	PublishSaleRecorded(ctx context.Context, event *models.SaleRecordedEvent) error
	PublishSaleRefunded(ctx context.Context, event *models.SaleRefundedEvent) error
	PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error
	PublishStockDiscrepancy(ctx context.Context, event *models.StockDiscrepancyEvent) error
	PublishStoreStatusChanged(ctx context.Context, event *models.StoreStatusChangedEvent) error
}

var _ EventSink = (*broker.EventPublisher)(nil)
