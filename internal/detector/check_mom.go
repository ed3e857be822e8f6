package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// momDeviationCheck compares the record against the most recent prior record
// of the same cost type.
func momDeviationCheck() Check {
	return Check{
		ID:                  CheckMoMDeviation,
		Name:                "Month-over-month deviation",
		Description:         "Compares the amount against the most recent previous billing period",
		MinHistoricalMonths: 1,
		Run:                 runMoMDeviation,
	}
}

func runMoMDeviation(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	var baseline *HistoricalCostRecord
	for _, r := range sortedByPeriodStartDesc(ctx.HistoricalRecords) {
		if r.CostType != record.CostType || r.ID == record.ID {
			continue
		}
		if r.PeriodStart.Before(record.PeriodStart) {
			b := r
			baseline = &b
			break
		}
	}
	if baseline == nil || baseline.Amount.IsZero() {
		return CheckResult{}, nil
	}

	threshold := ctx.Settings.Thresholds.MoMDeviationPercent
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
		Message: fmt.Sprintf("%s cost is %s%% %s than the previous period (%s vs %s)",
			costTypeLabel(record.CostType), dev.Abs().StringFixed(1), direction,
			record.Amount.StringFixed(2), baseline.Amount.StringFixed(2)),
		Details: map[string]any{
			"expected_value":    baseline.Amount,
			"actual_value":      record.Amount,
			"deviation_percent": dev,
			"threshold_percent": threshold,
			"previous_period":   baseline.PeriodStart.Format("2006-01-02"),
			"method":            "month_over_month",
		},
	}, nil
}
