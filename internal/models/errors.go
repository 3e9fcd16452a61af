package models

import "errors"

// Domain errors shared by the store and service layers. The API layer maps
// them onto HTTP status codes.
var (
	// ErrInsufficientStock means the requested sale quantity exceeds the
	// quantity on hand. No writes happen.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateRefund means the sale was already refunded.
	ErrDuplicateRefund = errors.New("sale already refunded")

	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrProfileNotFound = errors.New("profile not found")

	// ErrUnknownRole means the profile exists but its role maps to no
	// workspace.
	ErrUnknownRole = errors.New("role not recognized")

	// ErrInvalidQuantity covers zero or negative sale quantities, rejected
	// before any write.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrCloseReasonRequired is returned when closing the store without a
	// reason.
	ErrCloseReasonRequired = errors.New("close reason required")
)
