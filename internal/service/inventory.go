package service

import (
	"context"
	"time"

	"pharmacy-pos/internal/models"
	"pharmacy-pos/internal/util"

	"go.uber.org/zap"
)

const catalogCacheTTL = 30 * time.Second

// POSCache is the read cache in front of the catalog and store status. The
// Redis client implements it; nil disables caching.
type POSCache interface {
	GetCachedCatalog(ctx context.Context) ([]models.Product, error)
	CacheCatalog(ctx context.Context, products []models.Product, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
	GetCachedStoreStatus(ctx context.Context) (*models.StoreStatus, error)
	CacheStoreStatus(ctx context.Context, status *models.StoreStatus, ttl time.Duration) error
	InvalidateStoreStatus(ctx context.Context) error
}

// InventoryService owns the product ledger, the storefront catalog, the
// store open/closed toggle, and the login role redirect.
type InventoryService struct {
	ledger Ledger
	cache  POSCache
	events EventSink
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(ledger Ledger, cache POSCache, events EventSink) *InventoryService {
	return &InventoryService{
		ledger: ledger,
		cache:  cache,
		events: events,
		logger: util.GetLogger(),
	}
}

// Catalog lists products for the storefront. The unfiltered listing is
// served from cache when possible; cache failures fall through to the store.
func (is *InventoryService) Catalog(ctx context.Context, search, category string) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.Catalog")
	defer span.End()

	unfiltered := search == "" && category == ""
	if unfiltered && is.cache != nil {
		cached, err := is.cache.GetCachedCatalog(ctx)
		if err != nil {
			is.logger.Warn("Catalog cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := is.ledger.ListProducts(ctx, search, category)
	if err != nil {
		return nil, err
	}

	if unfiltered && is.cache != nil {
		if err := is.cache.CacheCatalog(ctx, products, catalogCacheTTL); err != nil {
			is.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct returns one product for the detail page.
func (is *InventoryService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return is.ledger.GetProductByID(ctx, id)
}

// Categories returns the distinct categories for the filter buttons.
func (is *InventoryService) Categories(ctx context.Context) ([]string, error) {
	return is.ledger.ListCategories(ctx)
}

// SaveProduct creates the product when ID is zero, otherwise updates it.
func (is *InventoryService) SaveProduct(ctx context.Context, p *models.Product) error {
	var err error
	if p.ID == 0 {
		err = is.ledger.CreateProduct(ctx, p)
	} else {
		err = is.ledger.UpdateProduct(ctx, p)
	}
	if err != nil {
		return err
	}

	is.invalidateCatalog(ctx)
	is.logger.Info("Product saved", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return nil
}

// DeleteProduct removes a product from the ledger.
func (is *InventoryService) DeleteProduct(ctx context.Context, id int64) error {
	if err := is.ledger.DeleteProduct(ctx, id); err != nil {
		return err
	}
	is.invalidateCatalog(ctx)
	is.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// ToggleInStock flips the visibility flag without touching quantity.
func (is *InventoryService) ToggleInStock(ctx context.Context, id int64) (*models.Product, error) {
	product, err := is.ledger.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := is.ledger.SetProductInStock(ctx, id, !product.InStock); err != nil {
		return nil, err
	}
	product.InStock = !product.InStock
	is.invalidateCatalog(ctx)
	return product, nil
}

// AttachImage records the uploaded image URL on the product.
func (is *InventoryService) AttachImage(ctx context.Context, id int64, imageURL string) error {
	if err := is.ledger.SetProductImage(ctx, id, imageURL); err != nil {
		return err
	}
	is.invalidateCatalog(ctx)
	return nil
}

// StoreStatus reads the open/closed flag, cache first.
func (is *InventoryService) StoreStatus(ctx context.Context) (*models.StoreStatus, error) {
	if is.cache != nil {
		cached, err := is.cache.GetCachedStoreStatus(ctx)
		if err != nil {
			is.logger.Warn("Store status cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	status, err := is.ledger.GetStoreStatus(ctx)
	if err != nil {
		return nil, err
	}
	if is.cache != nil {
		if err := is.cache.CacheStoreStatus(ctx, status, catalogCacheTTL); err != nil {
			is.logger.Warn("Store status cache write failed", zap.Error(err))
		}
	}
	return status, nil
}

// SetStoreStatus flips the open/closed toggle. Closing requires a non-empty
// reason; opening clears it. Last write wins.
func (is *InventoryService) SetStoreStatus(ctx context.Context, isOpen bool, closeReason string) (*models.StoreStatus, error) {
	status, err := is.ledger.SetStoreStatus(ctx, isOpen, closeReason)
	if err != nil {
		return nil, err
	}

	if is.cache != nil {
		if err := is.cache.InvalidateStoreStatus(ctx); err != nil {
			is.logger.Warn("Store status cache invalidation failed", zap.Error(err))
		}
	}

	is.logger.Info("Store status changed",
		zap.Bool("is_open", status.IsOpen),
		zap.String("close_reason", status.CloseReason))

	if is.events != nil {
		event := &models.StoreStatusChangedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeStoreStatusChanged),
			IsOpen:      status.IsOpen,
			CloseReason: status.CloseReason,
		}
		if err := is.events.PublishStoreStatusChanged(ctx, event); err != nil {
			is.logger.Error("Failed to publish StoreStatusChanged event", zap.Error(err))
		}
	}
	return status, nil
}

// LoginRedirect resolves a staff email to its role and workspace path. No
// authorization beyond this routing decision.
func (is *InventoryService) LoginRedirect(ctx context.Context, email string) (*models.Profile, string, error) {
	profile, err := is.ledger.GetProfileByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	switch profile.Role {
	case models.RoleAdmin:
		return profile, "/admin/dashboard", nil
	case models.RoleSalesManager:
		return profile, "/sales/terminal", nil
	default:
		return nil, "", models.ErrUnknownRole
	}
}

func (is *InventoryService) invalidateCatalog(ctx context.Context) {
	if is.cache == nil {
		return
	}
	if err := is.cache.InvalidateCatalog(ctx); err != nil {
		is.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
