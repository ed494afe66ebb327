package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup or a targeted write matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrHasOrders is returned when a user who owns orders is deleted.
	ErrHasOrders = errors.New("user has orders")
	// ErrProductMissing is returned when an order references an unknown product.
	ErrProductMissing = errors.New("product does not exist")
)

// ErrReferenced is returned when a row cannot be removed because orders point at it.
var ErrReferenced = errors.New("record is referenced by orders")
