package detector

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// deviationPercent returns (actual-expected)/expected*100. Callers must
// guard against a zero expected value.
func deviationPercent(actual, expected decimal.Decimal) decimal.Decimal {
	return actual.Sub(expected).Div(expected).Mul(hundred)
}

// meanStdDev computes the mean and population standard deviation.
func meanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))

	var sumSqDiff float64
	for _, v := range values {
		sumSqDiff += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sumSqDiff / float64(len(values)))
}

// decimalMean averages a non-empty slice of decimals.
func decimalMean(values []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values))))
}

// sortedByPeriodStartDesc returns a copy of the records ordered newest first.
func sortedByPeriodStartDesc(records []HistoricalCostRecord) []HistoricalCostRecord {
	out := append([]HistoricalCostRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodStart.After(out[j].PeriodStart)
	})
	return out
}

// severityForDeviation escalates to critical when the magnitude exceeds
// twice the configured threshold; the comparison is strict, equality to the
// doubled threshold stays a warning.
func severityForDeviation(absPercent decimal.Decimal, threshold float64) Severity {
	if absPercent.GreaterThan(decimal.NewFromFloat(2 * threshold)) {
		return SeverityCritical
	}
	return SeverityWarning
}

// costTypeLabel renders a cost type for human-readable messages.
func costTypeLabel(t CostType) string {
	label := strings.ReplaceAll(string(t), "_", " ")
	if label == "" {
		return "unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
