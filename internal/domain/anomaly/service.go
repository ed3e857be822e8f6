package anomaly

import "context"

// Service defines anomaly business operations
type Service interface {
	GetByID(ctx context.Context, id string) (*Anomaly, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Anomaly, int64, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
	GetSummary(ctx context.Context) (map[string]int, error)
}
