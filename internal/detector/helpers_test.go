package detector

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func decPtr(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d := mustDec(t, s)
	return &d
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func monthEnd(year int, m time.Month) time.Time {
	return month(year, m).AddDate(0, 1, -1)
}

func histRecord(t *testing.T, costType CostType, year int, m time.Month, amount string) HistoricalCostRecord {
	t.Helper()
	return HistoricalCostRecord{
		ID:          "hist-" + month(year, m).Format("2006-01"),
		CostType:    costType,
		Amount:      mustDec(t, amount),
		PeriodStart: month(year, m),
		PeriodEnd:   monthEnd(year, m),
		SupplierID:  "sup-1",
	}
}

// monthlyHistory builds contiguous monthly records ending with the month
// before the given one.
func monthlyHistory(t *testing.T, costType CostType, endYear int, endMonth time.Month, count int, amount string) []HistoricalCostRecord {
	t.Helper()
	records := make([]HistoricalCostRecord, 0, count)
	cursor := month(endYear, endMonth).AddDate(0, -count, 0)
	for i := 0; i < count; i++ {
		records = append(records, histRecord(t, costType, cursor.Year(), cursor.Month(), amount))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return records
}

func checkCtx(records ...HistoricalCostRecord) *CheckContext {
	return &CheckContext{
		Supplier:          SupplierContext{ID: "sup-1", Name: "Acme Energy"},
		HistoricalRecords: records,
		Settings:          DefaultSettings(),
	}
}

func recordUnderCheck(t *testing.T, costType CostType, year int, m time.Month, amount string) CostRecordToCheck {
	t.Helper()
	return CostRecordToCheck{
		ID:          "rec-current",
		LocationID:  "loc-1",
		SupplierID:  "sup-1",
		CostType:    costType,
		Amount:      mustDec(t, amount),
		PeriodStart: month(year, m),
		PeriodEnd:   monthEnd(year, m),
	}
}
