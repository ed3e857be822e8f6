package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
)

// QuietLogger returns a logger suitable for tests.
func QuietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

// Dec parses a decimal literal, failing the test on malformed input.
func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// DecPtr parses a decimal literal and returns a pointer to it.
func DecPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := Dec(t, s)
	return &d
}

// Month returns the first day of the given month in UTC.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last day of the given month in UTC.
func MonthEnd(year int, month time.Month) time.Time {
	return Month(year, month).AddDate(0, 1, -1)
}

// HistoricalRecord builds a one-month historical record for tests.
func HistoricalRecord(t *testing.T, costType detector.CostType, year int, month time.Month, amount string) detector.HistoricalCostRecord {
	t.Helper()
	return detector.HistoricalCostRecord{
		ID:          "hist-" + Month(year, month).Format("2006-01"),
		CostType:    costType,
		Amount:      Dec(t, amount),
		PeriodStart: Month(year, month),
		PeriodEnd:   MonthEnd(year, month),
		SupplierID:  "sup-1",
	}
}
