package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// yoyDeviationCheck compares the record against the same calendar month of
// the prior year and flags deviations beyond the configured percentage.
func yoyDeviationCheck() Check {
	return Check{
		ID:                  CheckYoYDeviation,
		Name:                "Year-over-year deviation",
		Description:         "Compares the amount against the same calendar month of the previous year",
		MinHistoricalMonths: 12,
		Run:                 runYoYDeviation,
	}
}

func runYoYDeviation(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	month := record.PeriodStart.Month()
	year := record.PeriodStart.Year() - 1

	var baseline *HistoricalCostRecord
	for i := range ctx.HistoricalRecords {
		r := &ctx.HistoricalRecords[i]
		if r.CostType != record.CostType {
			continue
		}
		if r.PeriodStart.Month() == month && r.PeriodStart.Year() == year {
			baseline = r
			break
		}
	}
	if baseline == nil || baseline.Amount.IsZero() {
		return CheckResult{}, nil
	}

	threshold := ctx.Settings.Thresholds.YoYDeviationPercent
	dev := deviationPercent(record.Amount, baseline.Amount)
	if !dev.Abs().GreaterThan(decimal.NewFromFloat(threshold)) {
		return CheckResult{}, nil
	}

	direction := "higher"
	if dev.IsNegative() {
		direction = "lower"
	}

	return CheckResult{
		Triggered: true,
		Severity:  severityForDeviation(dev.Abs(), threshold),
		Message: fmt.Sprintf("%s cost is %s%% %s than %s %d (%s vs %s)",
			costTypeLabel(record.CostType), dev.Abs().StringFixed(1), direction,
			month.String(), year, record.Amount.StringFixed(2), baseline.Amount.StringFixed(2)),
		Details: map[string]any{
			"expected_value":    baseline.Amount,
			"actual_value":      record.Amount,
			"deviation_percent": dev,
			"threshold_percent": threshold,
			"comparison_period": fmt.Sprintf("%04d-%02d", year, int(month)),
			"method":            "year_over_year",
		},
	}, nil
}
