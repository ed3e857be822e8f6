package detector

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	pricePerUnitMaxSamples = 6
	pricePerUnitMinSamples = 3
)

// meteredCostTypes are the categories with a meaningful unit price.
var meteredCostTypes = []CostType{
	CostTypeElectricity,
	CostTypeGas,
	CostTypeWater,
	CostTypeFuels,
	CostTypeDistrictHeating,
}

// pricePerUnitSpikeCheck flags one-sided increases of the unit price against
// the average of the most recent prior records. Price drops never trigger.
func pricePerUnitSpikeCheck() Check {
	return Check{
		ID:                  CheckPricePerUnitSpike,
		Name:                "Price-per-unit spike",
		Description:         "Compares the unit price against the average of recent periods",
		ApplicableCostTypes: meteredCostTypes,
		Run:                 runPricePerUnitSpike,
	}
}

func runPricePerUnitSpike(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	if record.PricePerUnit == nil || record.Quantity == nil {
		return CheckResult{}, nil
	}

	var prices []decimal.Decimal
	for _, r := range sortedByPeriodStartDesc(ctx.HistoricalRecords) {
		if r.ID == record.ID || r.PricePerUnit == nil {
			continue
		}
		if !r.PeriodStart.Before(record.PeriodStart) {
			continue
		}
		prices = append(prices, *r.PricePerUnit)
		if len(prices) == pricePerUnitMaxSamples {
			break
		}
	}
	if len(prices) < pricePerUnitMinSamples {
		return CheckResult{}, nil
	}

	avg := decimalMean(prices)
	if avg.IsZero() {
		return CheckResult{}, nil
	}

	threshold := ctx.Settings.Thresholds.PricePerUnitDeviationPercent
	dev := deviationPercent(*record.PricePerUnit, avg)
	if !dev.GreaterThan(decimal.NewFromFloat(threshold)) {
		return CheckResult{}, nil
	}

	return CheckResult{
		Triggered: true,
		Severity:  severityForDeviation(dev, threshold),
		Message: fmt.Sprintf("%s unit price rose %s%% above the recent average (%s vs %s per %s)",
			costTypeLabel(record.CostType), dev.StringFixed(1),
			record.PricePerUnit.StringFixed(4), avg.StringFixed(4), unitLabel(record.Unit)),
		Details: map[string]any{
			"expected_value":    avg,
			"actual_value":      *record.PricePerUnit,
			"deviation_percent": dev,
			"threshold_percent": threshold,
			"sample_count":      len(prices),
			"method":            "recent_average_unit_price",
		},
	}, nil
}

func unitLabel(unit string) string {
	if unit == "" {
		return "unit"
	}
	return unit
}
