package models

import "time"

// Product represents one item in the pharmacy inventory ledger.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	GenericName string    `db:"generic_name" json:"generic_name,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	InStock     bool      `db:"in_stock" json:"in_stock"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Sale is an immutable record of one completed transaction. The product
// name is denormalized so the record survives product deletion, and
// TotalPrice is frozen at sale time regardless of later price edits.
type Sale struct {
	ID            string    `db:"id" json:"id"`
	ProductID     int64     `db:"product_id" json:"product_id"`
	ProductName   string    `db:"product_name" json:"product_name"`
	Quantity      int       `db:"quantity" json:"quantity"`
	TotalPrice    float64   `db:"total_price" json:"total_price"`
	ReceiptNo     string    `db:"receipt_no" json:"receipt_no,omitempty"`
	CustomerName  string    `db:"customer_name" json:"customer_name,omitempty"`
	CustomerPhone string    `db:"customer_phone" json:"customer_phone,omitempty"`
	PaymentMethod string    `db:"payment_method" json:"payment_method,omitempty"`
	Status        string    `db:"status" json:"status"`
	IsRefunded    bool      `db:"is_refunded" json:"is_refunded"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// StoreStatus is the singleton open/closed record (row id=1).
type StoreStatus struct {
	ID          int64     `db:"id" json:"id"`
	IsOpen      bool      `db:"is_open" json:"is_open"`
	CloseReason string    `db:"close_reason" json:"close_reason,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Profile carries the staff role used for the post-login redirect.
type Profile struct {
	ID       string `db:"id" json:"id"`
	Email    string `db:"email" json:"email"`
	FullName string `db:"full_name" json:"full_name"`
	Role     string `db:"role" json:"role"`
}

// Sale statuses
const (
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
	SaleStatusVoided    = "voided"
)

// Staff roles
const (
	RoleAdmin        = "admin"
	RoleSalesManager = "sales_manager"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// LowStock reports whether the product is at or below the threshold.
func (p *Product) LowStock(threshold int) bool {
	return p.Quantity <= threshold
}
