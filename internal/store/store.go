package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pharmacy-pos/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves products ordered by name, optionally filtered by a
// case-insensitive name search and a category.
func (s *Store) ListProducts(ctx context.Context, search, category string) ([]models.Product, error) {
	query := "SELECT * FROM products"
	var conds []string
	var args []interface{}

	if search != "" {
		args = append(args, "%"+search+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// ListCategories returns the distinct product categories
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT DISTINCT category FROM products ORDER BY category")
	return categories, err
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, generic_name, price, quantity, category, description, image_url, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, p, query,
		p.Name, p.GenericName, p.Price, p.Quantity, p.Category, p.Description,
		p.ImageURL, p.Quantity > 0)
}

// UpdateProduct overwrites an existing product's editable fields
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, generic_name = $2, price = $3, quantity = $4,
		    category = $5, description = $6, image_url = $7,
		    in_stock = $4 > 0, updated_at = NOW()
		WHERE id = $8`,
		p.Name, p.GenericName, p.Price, p.Quantity, p.Category, p.Description,
		p.ImageURL, p.ID)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrProductNotFound)
}

// DeleteProduct removes a product. Historical sales keep the denormalized
// product name.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrProductNotFound)
}

// SetProductInStock flips the visibility flag without touching quantity
func (s *Store) SetProductInStock(ctx context.Context, id int64, inStock bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET in_stock = $1, updated_at = NOW() WHERE id = $2",
		inStock, id)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrProductNotFound)
}

// SetProductImage records the uploaded image URL
func (s *Store) SetProductImage(ctx context.Context, id int64, imageURL string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET image_url = $1, updated_at = NOW() WHERE id = $2",
		imageURL, id)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrProductNotFound)
}

// LowStockProducts returns products at or below the threshold
func (s *Store) LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE quantity <= $1 ORDER BY quantity, name", threshold)
	return products, err
}

// InventoryValue computes the total ledger value, sum of price * quantity
func (s *Store) InventoryValue(ctx context.Context) (float64, error) {
	var value float64
	err := s.db.GetContext(ctx, &value,
		"SELECT COALESCE(SUM(price * quantity), 0) FROM products")
	return value, err
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
