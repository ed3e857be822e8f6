package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	seasonalMinSamples       = 12
	seasonalDeviationPercent = 50.0
)

// seasonalFactors scale the overall historical average to the expected
// amount for a given calendar month (index 0 = January). Only categories
// with a pronounced seasonal consumption curve are listed; other cost types
// skip this check entirely.
var seasonalFactors = map[CostType][12]float64{
	CostTypeElectricity:     {1.15, 1.10, 1.00, 0.95, 0.90, 0.95, 1.00, 1.00, 0.95, 1.00, 1.05, 1.15},
	CostTypeGas:             {1.60, 1.50, 1.30, 1.00, 0.70, 0.50, 0.40, 0.40, 0.60, 1.00, 1.30, 1.60},
	CostTypeDistrictHeating: {1.70, 1.55, 1.30, 1.00, 0.65, 0.45, 0.35, 0.35, 0.55, 1.00, 1.35, 1.65},
	CostTypeWater:           {0.95, 0.95, 0.95, 1.00, 1.05, 1.10, 1.10, 1.10, 1.05, 1.00, 0.95, 0.95},
}

func seasonalCostTypes() []CostType {
	return []CostType{CostTypeElectricity, CostTypeGas, CostTypeDistrictHeating, CostTypeWater}
}

// seasonalAnomalyCheck compares the amount against the historical average
// scaled by the month's seasonal factor. Always informational.
func seasonalAnomalyCheck() Check {
	return Check{
		ID:                  CheckSeasonalAnomaly,
		Name:                "Seasonal anomaly",
		Description:         "Compares the amount against a seasonally adjusted historical average",
		ApplicableCostTypes: seasonalCostTypes(),
		Run:                 runSeasonalAnomaly,
	}
}

func runSeasonalAnomaly(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	factors, ok := seasonalFactors[record.CostType]
	if !ok {
		return CheckResult{}, nil
	}

	var amounts []decimal.Decimal
	for _, r := range ctx.HistoricalRecords {
		if r.CostType != record.CostType || r.ID == record.ID {
			continue
		}
		amounts = append(amounts, r.Amount)
	}
	if len(amounts) < seasonalMinSamples {
		return CheckResult{}, nil
	}

	avg := decimalMean(amounts)
	if avg.IsZero() {
		return CheckResult{}, nil
	}

	factor := factors[int(record.PeriodStart.Month())-1]
	expected := avg.Mul(decimal.NewFromFloat(factor))
	if expected.IsZero() {
		return CheckResult{}, nil
	}

	dev := deviationPercent(record.Amount, expected)
	if !dev.Abs().GreaterThan(decimal.NewFromFloat(seasonalDeviationPercent)) {
		return CheckResult{}, nil
	}

	return CheckResult{
		Triggered: true,
		Severity:  SeverityInfo,
		Message: fmt.Sprintf("%s cost of %s deviates %s%% from the seasonally expected %s for %s",
			costTypeLabel(record.CostType), record.Amount.StringFixed(2), dev.Abs().StringFixed(1),
			expected.StringFixed(2), record.PeriodStart.Month().String()),
		Details: map[string]any{
			"expected_value":    expected,
			"actual_value":      record.Amount,
			"deviation_percent": dev,
			"seasonal_factor":   factor,
			"historical_mean":   avg,
			"sample_count":      len(amounts),
			"method":            "seasonal_average",
		},
	}, nil
}
