package record

import "context"

// Service defines cost record business operations
type Service interface {
	Create(ctx context.Context, r *CostRecord) error
	GetByID(ctx context.Context, id string) (*CostRecord, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*CostRecord, int64, error)
}
