package detector

import (
	"fmt"
	"math"
)

const (
	outlierMinSamples = 6
	// outlierCriticalZ is the fixed escalation bound for this check; it is
	// independent of the configured trigger threshold.
	outlierCriticalZ = 3.0
)

// statisticalOutlierCheck flags amounts whose z-score against the historical
// mean exceeds the configured threshold.
func statisticalOutlierCheck() Check {
	return Check{
		ID:          CheckStatisticalOutlier,
		Name:        "Statistical outlier",
		Description: "Flags amounts that deviate from the historical mean by more than the configured z-score",
		Run:         runStatisticalOutlier,
	}
}

func runStatisticalOutlier(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	var amounts []float64
	for _, r := range ctx.HistoricalRecords {
		if r.CostType != record.CostType || r.ID == record.ID {
			continue
		}
		amounts = append(amounts, r.Amount.InexactFloat64())
	}
	if len(amounts) < outlierMinSamples {
		return CheckResult{}, nil
	}

	mean, stdDev := meanStdDev(amounts)
	if stdDev == 0 {
		return CheckResult{}, nil
	}

	zScore := (record.Amount.InexactFloat64() - mean) / stdDev
	threshold := ctx.Settings.Thresholds.ZScoreThreshold
	if math.Abs(zScore) <= threshold {
		return CheckResult{}, nil
	}

	severity := SeverityWarning
	if math.Abs(zScore) > outlierCriticalZ {
		severity = SeverityCritical
	}

	direction := "above"
	if zScore < 0 {
		direction = "below"
	}

	return CheckResult{
		Triggered: true,
		Severity:  severity,
		Message: fmt.Sprintf("%s cost of %s is %.2f standard deviations %s the historical mean of %.2f",
			costTypeLabel(record.CostType), record.Amount.StringFixed(2), math.Abs(zScore), direction, mean),
		Details: map[string]any{
			"actual_value": record.Amount,
			"mean":         mean,
			"std_dev":      stdDev,
			"z_score":      zScore,
			"z_threshold":  threshold,
			"sample_count": len(amounts),
			"method":       "population_z_score",
		},
	}, nil
}
