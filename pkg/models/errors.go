package models

import "errors"

// Product errors
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
	// ErrInsufficientStock is returned when an order asks for more units
	// than the product has in stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Customer errors
var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer already exists")
)

// Payment card errors
var (
	ErrCardNotFound  = errors.New("payment card not found")
	ErrDuplicateCard = errors.New("payment card already exists")
)

// Order errors
var (
	ErrOrderNotFound = errors.New("order not found")
)

// Seed / data migration errors
var (
	// ErrSeedAlreadyApplied is returned when an import is attempted for a
	// seed version whose marker row already exists.
	ErrSeedAlreadyApplied = errors.New("seed version already applied")
	// ErrSeedNotFound is returned when no marker row exists for a seed
	// version.
	ErrSeedNotFound = errors.New("seed version not found")
	// ErrSeedLockHeld is returned when the seed advisory lock could not be
	// acquired within the configured timeout.
	ErrSeedLockHeld = errors.New("seed import lock held by another instance")
)
