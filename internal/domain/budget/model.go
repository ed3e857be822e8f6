package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Budget is a spend limit for a cost type. Month 0 means the amount is a
// yearly budget.
type Budget struct {
	ID        string            `json:"id"`
	CostType  detector.CostType `json:"cost_type"`
	Year      int               `json:"year"`
	Month     int               `json:"month,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// ToContext projects the budget into the engine's context type.
func (b *Budget) ToContext() *detector.BudgetContext {
	return &detector.BudgetContext{
		CostType: b.CostType,
		Year:     b.Year,
		Month:    b.Month,
		Amount:   b.Amount,
	}
}
