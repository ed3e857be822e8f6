package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const approachingBudgetPercent = 90.0

// budgetExceededCheck compares the cumulative month-to-date total, including
// the current record, against the monthly budget for the cost type. The
// over-budget and approaching-budget outcomes are mutually exclusive.
func budgetExceededCheck() Check {
	return Check{
		ID:          CheckBudgetExceeded,
		Name:        "Budget exceeded",
		Description: "Compares the month-to-date total against the configured budget",
		Run:         runBudgetExceeded,
	}
}

func runBudgetExceeded(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	budget := ctx.Budget
	if budget == nil || budget.CostType != record.CostType {
		return CheckResult{}, nil
	}

	year, month := record.PeriodStart.Year(), int(record.PeriodStart.Month())
	if budget.Year != year {
		return CheckResult{}, nil
	}
	if budget.Month != 0 && budget.Month != month {
		return CheckResult{}, nil
	}

	monthlyBudget := budget.Amount
	if budget.Month == 0 {
		monthlyBudget = budget.Amount.Div(decimal.NewFromInt(12))
	}
	if monthlyBudget.IsZero() {
		return CheckResult{}, nil
	}

	monthTotal := record.Amount
	for _, r := range ctx.HistoricalRecords {
		if r.ID == record.ID || r.CostType != record.CostType {
			continue
		}
		if r.PeriodStart.Year() == year && int(r.PeriodStart.Month()) == month {
			monthTotal = monthTotal.Add(r.Amount)
		}
	}

	usagePercent := monthTotal.Div(monthlyBudget).Mul(hundred)
	overPercent := usagePercent.Sub(hundred)
	threshold := ctx.Settings.Thresholds.BudgetExceededPercent

	details := map[string]any{
		"monthly_budget":    monthlyBudget,
		"month_total":       monthTotal,
		"usage_percent":     usagePercent,
		"threshold_percent": threshold,
		"budget_period":     fmt.Sprintf("%04d-%02d", year, month),
	}

	if overPercent.GreaterThan(decimal.NewFromFloat(threshold)) {
		details["over_budget_percent"] = overPercent
		return CheckResult{
			Triggered: true,
			Severity:  severityForDeviation(overPercent, threshold),
			Message: fmt.Sprintf("%s spend of %s is %s%% over the monthly budget of %s",
				costTypeLabel(record.CostType), monthTotal.StringFixed(2),
				overPercent.StringFixed(1), monthlyBudget.StringFixed(2)),
			Details: details,
		}, nil
	}

	approaching := decimal.NewFromFloat(approachingBudgetPercent)
	if usagePercent.GreaterThanOrEqual(approaching) && usagePercent.LessThanOrEqual(hundred) {
		return CheckResult{
			Triggered: true,
			Severity:  SeverityInfo,
			Message: fmt.Sprintf("%s spend of %s has reached %s%% of the monthly budget of %s",
				costTypeLabel(record.CostType), monthTotal.StringFixed(2),
				usagePercent.StringFixed(1), monthlyBudget.StringFixed(2)),
			Details: details,
		}, nil
	}

	return CheckResult{}, nil
}
