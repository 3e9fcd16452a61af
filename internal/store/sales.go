package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pharmacy-pos/internal/models"
)

// RecordSale inserts the sale and decrements the product quantity in one
// transaction. The product row is locked first, so two terminals selling the
// last unit cannot both succeed; the decrement also carries a quantity >= n
// guard rather than writing a client-computed value. TotalPrice and the
// denormalized product name are filled from the locked row. Returns the
// stock remaining after the sale.
func (s *Store) RecordSale(ctx context.Context, sale *models.Sale) (int, error) {
	if sale.Quantity <= 0 {
		return 0, models.ErrInvalidQuantity
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var product models.Product
	err = tx.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 FOR UPDATE", sale.ProductID)
	if err == sql.ErrNoRows {
		return 0, models.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock product: %w", err)
	}

	if product.Quantity < sale.Quantity {
		return 0, models.ErrInsufficientStock
	}

	sale.ProductName = product.Name
	sale.TotalPrice = product.Price * float64(sale.Quantity)
	sale.Status = models.SaleStatusCompleted
	sale.IsRefunded = false

	query := `
		INSERT INTO sales (id, product_id, product_name, quantity, total_price,
		                   receipt_no, customer_name, customer_phone, payment_method,
		                   status, is_refunded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err = tx.GetContext(ctx, &sale.CreatedAt, query,
		sale.ID, sale.ProductID, sale.ProductName, sale.Quantity, sale.TotalPrice,
		sale.ReceiptNo, sale.CustomerName, sale.CustomerPhone, sale.PaymentMethod,
		sale.Status, sale.IsRefunded)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity - $1, in_stock = quantity - $1 > 0, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1`,
		sale.Quantity, sale.ProductID)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}
	if err := requireRow(res, models.ErrInsufficientStock); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return product.Quantity - sale.Quantity, nil
}

// RefundSale marks the sale refunded and restores exactly the quantity
// originally sold, both in one transaction. The restore uses the sale's own
// quantity, never a recomputation from price. Returns the refunded sale and
// whether the product row was still there to restore into.
func (s *Store) RefundSale(ctx context.Context, saleID string) (*models.Sale, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var sale models.Sale
	err = tx.GetContext(ctx, &sale,
		"SELECT * FROM sales WHERE id = $1 FOR UPDATE", saleID)
	if err == sql.ErrNoRows {
		return nil, false, models.ErrSaleNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock sale: %w", err)
	}

	if sale.IsRefunded {
		return nil, false, models.ErrDuplicateRefund
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sales SET is_refunded = true, status = $1 WHERE id = $2",
		models.SaleStatusRefunded, saleID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to flag refund: %w", err)
	}

	restored, err := s.restoreStock(ctx, tx, sale.ProductID, sale.Quantity)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	sale.IsRefunded = true
	sale.Status = models.SaleStatusRefunded
	return &sale, restored, nil
}

// DeleteSale is the hard-delete reversal path: the sale row goes away and
// the stock comes back, one transaction. Deleting an already-refunded sale
// skips the restore so stock is never given back twice.
func (s *Store) DeleteSale(ctx context.Context, saleID string) (*models.Sale, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var sale models.Sale
	err = tx.GetContext(ctx, &sale,
		"SELECT * FROM sales WHERE id = $1 FOR UPDATE", saleID)
	if err == sql.ErrNoRows {
		return nil, false, models.ErrSaleNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock sale: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sales WHERE id = $1", saleID); err != nil {
		return nil, false, fmt.Errorf("failed to delete sale: %w", err)
	}

	restored := false
	if !sale.IsRefunded {
		restored, err = s.restoreStock(ctx, tx, sale.ProductID, sale.Quantity)
		if err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return &sale, restored, nil
}

// restoreStock increments the product quantity inside the caller's
// transaction. A deleted product makes this a no-op, reported to the caller.
func (s *Store) restoreStock(ctx context.Context, tx execer, productID int64, quantity int) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET quantity = quantity + $1, in_stock = true, updated_at = NOW()
		WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return false, fmt.Errorf("failed to restore stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// GetSaleByID retrieves a sale by ID
func (s *Store) GetSaleByID(ctx context.Context, saleID string) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.GetContext(ctx, &sale, "SELECT * FROM sales WHERE id = $1", saleID)
	if err == sql.ErrNoRows {
		return nil, models.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListSales retrieves sales newest first, up to limit (0 means all)
func (s *Store) ListSales(ctx context.Context, limit int) ([]models.Sale, error) {
	sales := []models.Sale{}
	if limit > 0 {
		err := s.db.SelectContext(ctx, &sales,
			"SELECT * FROM sales ORDER BY created_at DESC LIMIT $1", limit)
		return sales, err
	}
	err := s.db.SelectContext(ctx, &sales,
		"SELECT * FROM sales ORDER BY created_at DESC")
	return sales, err
}

// ResetSales deletes every sale record. Stock is untouched.
func (s *Store) ResetSales(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sales")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RevenueSince sums completed, non-refunded sale totals recorded at or
// after the window start. Refunded and voided sales never count.
func (s *Store) RevenueSince(ctx context.Context, since time.Time) (float64, error) {
	var revenue float64
	err := s.db.GetContext(ctx, &revenue, `
		SELECT COALESCE(SUM(total_price), 0) FROM sales
		WHERE status = $1 AND is_refunded = false AND created_at >= $2`,
		models.SaleStatusCompleted, since)
	return revenue, err
}

// CountCompletedSales counts completed, non-refunded transactions
func (s *Store) CountCompletedSales(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM sales
		WHERE status = $1 AND is_refunded = false`,
		models.SaleStatusCompleted)
	return count, err
}
