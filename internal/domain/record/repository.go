package record

import (
	"context"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Repository defines cost record persistence operations
type Repository interface {
	Create(ctx context.Context, r *CostRecord) error
	GetByID(ctx context.Context, id string) (*CostRecord, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*CostRecord, int64, error)
	// ListHistory returns records of the same supplier and cost type with a
	// period start within the given number of months before the reference
	// date, excluding the record with excludeID. Ordered newest first.
	ListHistory(ctx context.Context, supplierID string, costType detector.CostType, before time.Time, months int, excludeID string) ([]*CostRecord, error)
}
