package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/budget"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

type BudgetRepository struct {
	db *DB
}

func NewBudgetRepository(db *DB) budget.Repository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, cost_type, year, month, amount, created_at, updated_at`

func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := r.db.rebind(`INSERT INTO budgets (` + budgetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		b.ID, string(b.CostType), b.Year, b.Month, b.Amount.String(),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return errors.DatabaseError("Failed to create budget", err)
	}
	return nil
}

func (r *BudgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	b.UpdatedAt = time.Now().UTC()

	query := r.db.rebind(`UPDATE budgets SET cost_type = ?, year = ?, month = ?, amount = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query,
		string(b.CostType), b.Year, b.Month, b.Amount.String(), formatTime(b.UpdatedAt), b.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update budget", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Budget")
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, id string) error {
	query := r.db.rebind(`DELETE FROM budgets WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete budget", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Budget")
	}
	return nil
}

func (r *BudgetRepository) List(ctx context.Context) ([]*budget.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets ORDER BY year DESC, month DESC, cost_type`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list budgets", err)
	}
	defer rows.Close()

	var budgets []*budget.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan budget", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate budgets", err)
	}

	return budgets, nil
}

func (r *BudgetRepository) FindForPeriod(ctx context.Context, costType detector.CostType, year, month int) (*budget.Budget, error) {
	// Monthly budget wins over the yearly one. month = 0 marks a yearly row,
	// so ordering by month DESC puts the monthly match first.
	query := r.db.rebind(`SELECT ` + budgetColumns + ` FROM budgets
		WHERE cost_type = ? AND year = ? AND month IN (?, 0)
		ORDER BY month DESC LIMIT 1`)

	b, err := scanBudget(r.db.QueryRowContext(ctx, query, string(costType), year, month))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to find budget", err)
	}
	return b, nil
}

func scanBudget(row rowScanner) (*budget.Budget, error) {
	var (
		b                budget.Budget
		costType, amount string
		created, updated string
	)
	if err := row.Scan(&b.ID, &costType, &b.Year, &b.Month, &amount, &created, &updated); err != nil {
		return nil, err
	}

	b.CostType = detector.CostType(costType)
	var err error
	if b.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &b, nil
}
