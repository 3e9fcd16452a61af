package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pharmacy-pos/internal/models"
)

// MemoryLedger is an in-memory Ledger with the same transactional semantics
// as the Postgres store: conditional decrements, exact-quantity restores,
// at-most-one refund. It backs unit tests and demo mode.
type MemoryLedger struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*models.Product
	sales    map[string]*models.Sale
	status   models.StoreStatus
	profiles map[string]*models.Profile
}

var _ Ledger = (*MemoryLedger)(nil)

// NewMemoryLedger creates an empty in-memory ledger with the store open.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		nextID:   1,
		products: map[int64]*models.Product{},
		sales:    map[string]*models.Sale{},
		status:   models.StoreStatus{ID: 1, IsOpen: true},
		profiles: map[string]*models.Profile{},
	}
}

func (m *MemoryLedger) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryLedger) ListProducts(_ context.Context, search, category string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Product{}
	for _, p := range m.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryLedger) ListCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, p := range m.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryLedger) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.nextID
	m.nextID++
	p.InStock = p.Quantity > 0
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemoryLedger) UpdateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[p.ID]
	if !ok {
		return models.ErrProductNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.InStock = p.Quantity > 0
	p.UpdatedAt = time.Now()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemoryLedger) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return models.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryLedger) SetProductInStock(_ context.Context, id int64, inStock bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.InStock = inStock
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryLedger) SetProductImage(_ context.Context, id int64, imageURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.ImageURL = imageURL
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryLedger) LowStockProducts(_ context.Context, threshold int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Product{}
	for _, p := range m.products {
		if p.Quantity <= threshold {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryLedger) InventoryValue(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var value float64
	for _, p := range m.products {
		value += p.Price * float64(p.Quantity)
	}
	return value, nil
}

func (m *MemoryLedger) RecordSale(_ context.Context, sale *models.Sale) (int, error) {
	if sale.Quantity <= 0 {
		return 0, models.ErrInvalidQuantity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[sale.ProductID]
	if !ok {
		return 0, models.ErrProductNotFound
	}
	if p.Quantity < sale.Quantity {
		return 0, models.ErrInsufficientStock
	}

	sale.ProductName = p.Name
	sale.TotalPrice = p.Price * float64(sale.Quantity)
	sale.Status = models.SaleStatusCompleted
	sale.IsRefunded = false
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}

	p.Quantity -= sale.Quantity
	p.InStock = p.Quantity > 0
	p.UpdatedAt = time.Now()

	cp := *sale
	m.sales[sale.ID] = &cp
	return p.Quantity, nil
}

func (m *MemoryLedger) RefundSale(_ context.Context, saleID string) (*models.Sale, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, ok := m.sales[saleID]
	if !ok {
		return nil, false, models.ErrSaleNotFound
	}
	if sale.IsRefunded {
		return nil, false, models.ErrDuplicateRefund
	}

	sale.IsRefunded = true
	sale.Status = models.SaleStatusRefunded
	restored := m.restoreStock(sale.ProductID, sale.Quantity)

	cp := *sale
	return &cp, restored, nil
}

func (m *MemoryLedger) DeleteSale(_ context.Context, saleID string) (*models.Sale, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, ok := m.sales[saleID]
	if !ok {
		return nil, false, models.ErrSaleNotFound
	}
	delete(m.sales, saleID)

	restored := false
	if !sale.IsRefunded {
		restored = m.restoreStock(sale.ProductID, sale.Quantity)
	}
	return sale, restored, nil
}

func (m *MemoryLedger) restoreStock(productID int64, quantity int) bool {
	p, ok := m.products[productID]
	if !ok {
		return false
	}
	p.Quantity += quantity
	p.InStock = true
	p.UpdatedAt = time.Now()
	return true
}

func (m *MemoryLedger) GetSaleByID(_ context.Context, saleID string) (*models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sale, ok := m.sales[saleID]
	if !ok {
		return nil, models.ErrSaleNotFound
	}
	cp := *sale
	return &cp, nil
}

func (m *MemoryLedger) ListSales(_ context.Context, limit int) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Sale{}
	for _, s := range m.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryLedger) ResetSales(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(m.sales))
	m.sales = map[string]*models.Sale{}
	return n, nil
}

func (m *MemoryLedger) RevenueSince(_ context.Context, since time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var revenue float64
	for _, s := range m.sales {
		if s.Status != models.SaleStatusCompleted || s.IsRefunded {
			continue
		}
		if s.CreatedAt.Before(since) {
			continue
		}
		revenue += s.TotalPrice
	}
	return revenue, nil
}

func (m *MemoryLedger) CountCompletedSales(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, s := range m.sales {
		if s.Status == models.SaleStatusCompleted && !s.IsRefunded {
			count++
		}
	}
	return count, nil
}

func (m *MemoryLedger) GetStoreStatus(_ context.Context) (*models.StoreStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.status
	return &cp, nil
}

func (m *MemoryLedger) SetStoreStatus(_ context.Context, isOpen bool, closeReason string) (*models.StoreStatus, error) {
	if !isOpen && closeReason == "" {
		return nil, models.ErrCloseReasonRequired
	}
	if isOpen {
		closeReason = ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.status.IsOpen = isOpen
	m.status.CloseReason = closeReason
	m.status.UpdatedAt = time.Now()
	cp := m.status
	return &cp, nil
}

// AddProfile registers a staff profile, keyed by email.
func (m *MemoryLedger) AddProfile(profile models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.Email] = &profile
}

func (m *MemoryLedger) GetProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[email]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}
