package reference

import (
	"context"
	"time"
)

// Repository defines read operations for locations, suppliers and contracts.
type Repository interface {
	GetLocation(ctx context.Context, id string) (*Location, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	// FindContract returns the contract covering the supplier at the given
	// date, or nil when none applies.
	FindContract(ctx context.Context, supplierID string, at time.Time) (*Contract, error)
}
