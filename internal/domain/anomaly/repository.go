package anomaly

import (
	"context"
	"errors"
)

// ErrDuplicate signals that an anomaly already exists for the same
// (cost record, type) pair.
var ErrDuplicate = errors.New("anomaly already exists for cost record and type")

// Repository defines anomaly persistence operations
type Repository interface {
	// Create inserts the anomaly. ErrDuplicate is returned when an anomaly
	// for the same (cost record, type) pair already exists.
	Create(ctx context.Context, a *Anomaly) error
	GetByID(ctx context.Context, id string) (*Anomaly, error)
	Update(ctx context.Context, a *Anomaly) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Anomaly, int64, error)
	CountBySeverity(ctx context.Context) (map[string]int, error)
}
