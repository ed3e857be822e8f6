package services

import (
	"context"
	"testing"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/budget"
	"github.com/utilaudit/utilaudit/internal/domain/record"
	"github.com/utilaudit/utilaudit/internal/testutil"
)

type detectionFixture struct {
	service   *DetectionService
	engine    *detector.Engine
	records   *testutil.MockCostRecordRepository
	anomalies *testutil.MockAnomalyRepository
	budgets   *testutil.MockBudgetRepository
	entries   *testutil.MockNotificationRepository
	notifier  *testutil.MockNotifier
}

func newDetectionFixture(t *testing.T) *detectionFixture {
	t.Helper()
	log := testutil.QuietLogger()
	engine := detector.NewEngine(detector.DefaultSettings(), log)

	f := &detectionFixture{
		engine:    engine,
		records:   testutil.NewMockCostRecordRepository(),
		anomalies: testutil.NewMockAnomalyRepository(),
		budgets:   testutil.NewMockBudgetRepository(),
		entries:   testutil.NewMockNotificationRepository(),
		notifier:  testutil.NewMockNotifier(),
	}
	alerts := NewAlertService(f.entries, f.anomalies, f.notifier, engine, log)
	f.service = NewDetectionService(
		engine, f.records, f.anomalies, f.budgets,
		testutil.NewMockReferenceRepository(), alerts, 24, log,
	)
	return f
}

// seedHistory stores contiguous monthly electricity records ending the month
// before the given one.
func (f *detectionFixture) seedHistory(t *testing.T, endYear int, endMonth time.Month, count int, amount string) {
	t.Helper()
	cursor := testutil.Month(endYear, endMonth).AddDate(0, -count, 0)
	for i := 0; i < count; i++ {
		rec := &record.CostRecord{
			ID:          "hist-" + cursor.Format("2006-01"),
			LocationID:  "loc-1",
			SupplierID:  "sup-1",
			CostType:    detector.CostTypeElectricity,
			Amount:      testutil.Dec(t, amount),
			PeriodStart: cursor,
			PeriodEnd:   cursor.AddDate(0, 1, -1),
		}
		if err := f.records.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
}

func electricityRecord(t *testing.T, amount string) *record.CostRecord {
	t.Helper()
	return &record.CostRecord{
		LocationID:  "loc-1",
		SupplierID:  "sup-1",
		CostType:    detector.CostTypeElectricity,
		Amount:      testutil.Dec(t, amount),
		PeriodStart: testutil.Month(2025, time.June),
		PeriodEnd:   testutil.MonthEnd(2025, time.June),
	}
}

func TestDetectionService_IngestAndDetect(t *testing.T) {
	f := newDetectionFixture(t)
	f.seedHistory(t, 2025, time.June, 13, "1000")
	ctx := context.Background()

	rec := electricityRecord(t, "1300")
	result, err := f.service.IngestAndDetect(ctx, rec, false)
	if err != nil {
		t.Fatalf("IngestAndDetect() error = %v", err)
	}

	if rec.ID == "" {
		t.Error("record was not assigned an id")
	}
	if _, ok := f.records.Records[rec.ID]; !ok {
		t.Error("record was not persisted")
	}

	if len(result.Anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(result.Anomalies))
	}
	if result.Anomalies[0].Type != detector.CheckYoYDeviation {
		t.Errorf("anomaly type = %q, want %q", result.Anomalies[0].Type, detector.CheckYoYDeviation)
	}
	if len(f.anomalies.Anomalies) != 1 {
		t.Errorf("got %d stored anomalies, want 1", len(f.anomalies.Anomalies))
	}
	if len(f.notifier.Sent) != 1 {
		t.Errorf("got %d alerts, want 1", len(f.notifier.Sent))
	}
}

func TestDetectionService_BackfillSuppressesAlerts(t *testing.T) {
	f := newDetectionFixture(t)
	f.seedHistory(t, 2025, time.June, 13, "1000")
	ctx := context.Background()

	result, err := f.service.IngestAndDetect(ctx, electricityRecord(t, "2100"), true)
	if err != nil {
		t.Fatalf("IngestAndDetect() error = %v", err)
	}

	if len(result.Anomalies) == 0 {
		t.Fatal("expected anomalies")
	}
	for _, a := range f.anomalies.Anomalies {
		if !a.IsBackfill {
			t.Errorf("stored anomaly %q not marked as backfill", a.Type)
		}
	}
	if len(f.notifier.Sent) != 0 {
		t.Errorf("got %d alerts for a backfill, want 0", len(f.notifier.Sent))
	}
	if len(f.entries.Entries) != 0 {
		t.Errorf("got %d alert log entries for a backfill, want 0", len(f.entries.Entries))
	}
}

func TestDetectionService_RedetectionIsIdempotent(t *testing.T) {
	f := newDetectionFixture(t)
	f.seedHistory(t, 2025, time.June, 13, "1000")
	ctx := context.Background()

	rec := electricityRecord(t, "1300")
	if _, err := f.service.IngestAndDetect(ctx, rec, false); err != nil {
		t.Fatalf("IngestAndDetect() error = %v", err)
	}
	if _, err := f.service.DetectForRecord(ctx, rec, false); err != nil {
		t.Fatalf("DetectForRecord() error = %v", err)
	}

	if len(f.anomalies.Anomalies) != 1 {
		t.Errorf("got %d stored anomalies after re-detection, want 1", len(f.anomalies.Anomalies))
	}
	if len(f.notifier.Sent) != 1 {
		t.Errorf("got %d alerts after re-detection, want 1", len(f.notifier.Sent))
	}
}

func TestDetectionService_NoHistoryNoAnomalies(t *testing.T) {
	f := newDetectionFixture(t)
	ctx := context.Background()

	result, err := f.service.IngestAndDetect(ctx, electricityRecord(t, "1300"), false)
	if err != nil {
		t.Fatalf("IngestAndDetect() error = %v", err)
	}

	if len(result.Anomalies) != 0 {
		t.Errorf("got %d anomalies, want 0", len(result.Anomalies))
	}
	skipped := 0
	for _, trace := range result.CheckResults {
		if trace.Skipped {
			skipped++
		}
	}
	if skipped == 0 {
		t.Error("expected history-gated checks to be skipped")
	}
}

func TestDetectionService_BudgetContext(t *testing.T) {
	f := newDetectionFixture(t)
	ctx := context.Background()

	f.budgets.Budgets["b-1"] = &budget.Budget{
		ID:       "b-1",
		CostType: detector.CostTypeElectricity,
		Year:     2025,
		Month:    6,
		Amount:   testutil.Dec(t, "1000"),
	}

	result, err := f.service.IngestAndDetect(ctx, electricityRecord(t, "1300"), false)
	if err != nil {
		t.Fatalf("IngestAndDetect() error = %v", err)
	}

	var found *detector.DetectedAnomaly
	for i := range result.Anomalies {
		if result.Anomalies[i].Type == detector.CheckBudgetExceeded {
			found = &result.Anomalies[i]
		}
	}
	if found == nil {
		t.Fatal("expected a budget anomaly")
	}
	if found.Severity != detector.SeverityCritical {
		t.Errorf("Severity = %v, want %v", found.Severity, detector.SeverityCritical)
	}
}

func TestDetectionService_CreateFailureAborts(t *testing.T) {
	f := newDetectionFixture(t)
	f.records.CreateError = context.DeadlineExceeded

	_, err := f.service.IngestAndDetect(context.Background(), electricityRecord(t, "1300"), false)
	if err == nil {
		t.Fatal("expected an error when the record cannot be stored")
	}
	if len(f.anomalies.Anomalies) != 0 {
		t.Error("anomalies stored despite the failed insert")
	}
}
