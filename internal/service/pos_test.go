package service

import (
	"context"
	"strings"
	"testing"

	"pharmacy-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqCounter struct {
	seq int64
	err error
}

func (c *seqCounter) NextReceiptSeq(context.Context) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.seq++
	return c.seq, nil
}

// captureSink records published events instead of writing to Kafka.
type captureSink struct {
	recorded      []*models.SaleRecordedEvent
	refunded      []*models.SaleRefundedEvent
	deleted       []*models.SaleDeletedEvent
	discrepancies []*models.StockDiscrepancyEvent
	statusChanges []*models.StoreStatusChangedEvent
}

func (s *captureSink) PublishSaleRecorded(_ context.Context, e *models.SaleRecordedEvent) error {
	s.recorded = append(s.recorded, e)
	return nil
}

func (s *captureSink) PublishSaleRefunded(_ context.Context, e *models.SaleRefundedEvent) error {
	s.refunded = append(s.refunded, e)
	return nil
}

func (s *captureSink) PublishSaleDeleted(_ context.Context, e *models.SaleDeletedEvent) error {
	s.deleted = append(s.deleted, e)
	return nil
}

func (s *captureSink) PublishStockDiscrepancy(_ context.Context, e *models.StockDiscrepancyEvent) error {
	s.discrepancies = append(s.discrepancies, e)
	return nil
}

func (s *captureSink) PublishStoreStatusChanged(_ context.Context, e *models.StoreStatusChangedEvent) error {
	s.statusChanges = append(s.statusChanges, e)
	return nil
}

func newTestPOS(t *testing.T) (*POSService, *MemoryLedger, *captureSink) {
	t.Helper()
	ledger := NewMemoryLedger()
	sink := &captureSink{}
	receipts := NewReceiptIssuer(&seqCounter{}, "RCP")
	return NewPOSService(ledger, sink, receipts, 10), ledger, sink
}

func seedProduct(t *testing.T, ledger *MemoryLedger, price float64, quantity int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     "Paracetamol 500mg",
		Price:    price,
		Quantity: quantity,
		Category: "Painkillers",
	}
	require.NoError(t, ledger.CreateProduct(context.Background(), p))
	return p
}

func TestRecordSaleDecrementsStockAndFreezesTotal(t *testing.T) {
	pos, ledger, sink := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 1500.0, sale.TotalPrice)
	assert.Equal(t, "Paracetamol 500mg", sale.ProductName)
	assert.Equal(t, models.SaleStatusCompleted, sale.Status)
	assert.False(t, sale.IsRefunded)
	assert.Equal(t, "RCP-00001", sale.ReceiptNo)
	assert.Equal(t, models.PaymentCash, sale.PaymentMethod)

	after, err := ledger.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 17, after.Quantity)

	require.Len(t, sink.recorded, 1)
	assert.Equal(t, 17, sink.recorded[0].StockRemaining)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	pos, ledger, sink := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 2)

	_, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 5})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	after, err := ledger.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Quantity, "rejected sale must not touch stock")

	sales, err := ledger.ListSales(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, sales, "rejected sale must not create a sale row")
	assert.Empty(t, sink.recorded)
}

func TestRecordSaleInvalidQuantity(t *testing.T) {
	pos, ledger, _ := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 10)

	for _, qty := range []int{0, -3} {
		_, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: qty})
		assert.ErrorIs(t, err, models.ErrInvalidQuantity)
	}

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 10, after.Quantity)
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	pos, _, _ := newTestPOS(t)

	_, err := pos.RecordSale(context.Background(), &RecordSaleRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestRefundRestoresExactQuantityOnce(t *testing.T) {
	pos, ledger, sink := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	refunded, err := pos.RefundSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, refunded.IsRefunded)
	assert.Equal(t, models.SaleStatusRefunded, refunded.Status)

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 20, after.Quantity, "refund restores exactly the quantity sold")

	// second refund attempt is rejected and stock stays put
	_, err = pos.RefundSale(ctx, sale.ID)
	assert.ErrorIs(t, err, models.ErrDuplicateRefund)

	after, _ = ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 20, after.Quantity)
	assert.Len(t, sink.refunded, 1)
}

func TestRefundUsesSaleQuantityNotPrice(t *testing.T) {
	pos, ledger, _ := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, sale.TotalPrice)

	// price edit after the sale must not change the historical total or the
	// refund restore amount
	updated := *product
	updated.Price = 900
	updated.Quantity = 16
	require.NoError(t, ledger.UpdateProduct(ctx, &updated))

	refunded, err := pos.RefundSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, refunded.TotalPrice)

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 20, after.Quantity)
}

func TestRefundAfterProductDeletedReportsDiscrepancy(t *testing.T) {
	pos, ledger, sink := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteProduct(ctx, product.ID))

	refunded, err := pos.RefundSale(ctx, sale.ID)
	require.NoError(t, err, "refund still succeeds, the record survives product deletion")
	assert.True(t, refunded.IsRefunded)

	require.Len(t, sink.discrepancies, 1)
	assert.Equal(t, sale.ID, sink.discrepancies[0].SaleID)
	assert.Equal(t, 2, sink.discrepancies[0].Quantity)
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	pos, ledger, sink := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)

	require.NoError(t, pos.DeleteSale(ctx, sale.ID))

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 20, after.Quantity)

	sales, _ := ledger.ListSales(ctx, 0)
	assert.Empty(t, sales)
	require.Len(t, sink.deleted, 1)
	assert.True(t, sink.deleted[0].StockRestored)
}

func TestDeleteRefundedSaleDoesNotRestoreTwice(t *testing.T) {
	pos, ledger, _ := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	sale, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = pos.RefundSale(ctx, sale.ID)
	require.NoError(t, err)

	require.NoError(t, pos.DeleteSale(ctx, sale.ID))

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 20, after.Quantity, "delete after refund must not restore stock again")
}

func TestDeleteSaleNotFound(t *testing.T) {
	pos, _, _ := newTestPOS(t)
	err := pos.DeleteSale(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrSaleNotFound)
}

func TestResetSalesLeavesStockAlone(t *testing.T) {
	pos, ledger, _ := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	for i := 0; i < 3; i++ {
		_, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 1})
		require.NoError(t, err)
	}

	deleted, err := pos.ResetSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	after, _ := ledger.GetProductByID(ctx, product.ID)
	assert.Equal(t, 17, after.Quantity, "reset clears history, not stock")
}

func TestExportSalesCSV(t *testing.T) {
	pos, ledger, _ := newTestPOS(t)
	ctx := context.Background()
	product := seedProduct(t, ledger, 500, 20)

	_, err := pos.RecordSale(ctx, &RecordSaleRequest{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, pos.ExportSalesCSV(ctx, &sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Receipt,Product,Qty,Total,Status", lines[0])
	assert.Contains(t, lines[1], "Paracetamol 500mg")
	assert.Contains(t, lines[1], "1000.00")
}
