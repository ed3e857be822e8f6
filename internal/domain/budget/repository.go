package budget

import (
	"context"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Repository defines budget persistence operations
type Repository interface {
	Create(ctx context.Context, b *Budget) error
	Update(ctx context.Context, b *Budget) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Budget, error)
	// FindForPeriod returns the budget applicable to the cost type in the
	// given year and month: a monthly budget when one exists, otherwise the
	// yearly budget, otherwise nil.
	FindForPeriod(ctx context.Context, costType detector.CostType, year, month int) (*Budget, error)
}
