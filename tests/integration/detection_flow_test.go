package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/utilaudit/utilaudit/internal/api/handlers"
	"github.com/utilaudit/utilaudit/internal/api/router"
	"github.com/utilaudit/utilaudit/internal/config"
	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/validator"
	"github.com/utilaudit/utilaudit/internal/repository/postgres"
	"github.com/utilaudit/utilaudit/internal/services"
	"github.com/utilaudit/utilaudit/internal/testutil"
	"github.com/utilaudit/utilaudit/pkg/client"
)

// newTestServer wires the full stack against a throwaway sqlite database and
// returns a typed API client talking to it.
func newTestServer(t *testing.T) *client.Client {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	val := validator.New()

	engine := detector.NewEngine(detector.DefaultSettings(), log)

	recordRepo := postgres.NewCostRecordRepository(db)
	anomalyRepo := postgres.NewAnomalyRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	budgetRepo := postgres.NewBudgetRepository(db)
	refRepo := postgres.NewReferenceRepository(db)
	entryRepo := postgres.NewNotificationRepository(db)

	settingsService := services.NewSettingsService(settingsRepo, engine, detector.DefaultSettings(), log)
	if err := settingsService.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap settings: %v", err)
	}

	alertService := services.NewAlertService(entryRepo, anomalyRepo, services.NewLogNotifier(log), engine, log)
	detectionService := services.NewDetectionService(engine, recordRepo, anomalyRepo, budgetRepo, refRepo, alertService, 24, log)
	anomalyService := services.NewAnomalyService(anomalyRepo, log)

	cfg := &config.Config{}
	cfg.Server.FrontendURL = "http://localhost:5173"

	h := router.New(cfg, log, &router.Handlers{
		Health:   handlers.NewHealthHandler(db, log),
		Record:   handlers.NewRecordHandler(detectionService, recordRepo, log, val),
		Anomaly:  handlers.NewAnomalyHandler(anomalyService, log, val),
		Settings: handlers.NewSettingsHandler(settingsService, engine.Registry(), log, val),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return client.NewClient(client.Config{BaseURL: srv.URL})
}

func ingestRequest(supplierID string, periodStart time.Time, amount string) client.IngestRecordRequest {
	return client.IngestRecordRequest{
		LocationID:  "loc-hq",
		SupplierID:  supplierID,
		CostType:    "electricity",
		Amount:      amount,
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodStart.AddDate(0, 1, -1).Format("2006-01-02"),
	}
}

func TestDetectionFlow(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	if err := api.Health().Ready(ctx); err != nil {
		t.Fatalf("readiness probe failed: %v", err)
	}

	// The flat baseline amounts below would look like duplicates of each
	// other, so the duplicate check sits this test out.
	if _, err := api.Settings().DisableCheck(ctx, "duplicate_detection"); err != nil {
		t.Fatalf("disable duplicate check: %v", err)
	}

	// Thirteen unremarkable monthly invoices establish the baseline.
	cursor := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		result, err := api.Records().Ingest(ctx, ingestRequest("sup-main", cursor, "1000"))
		if err != nil {
			t.Fatalf("ingest baseline month %s: %v", cursor.Format("2006-01"), err)
		}
		if len(result.Anomalies) != 0 {
			t.Fatalf("baseline month %s produced %d anomalies", cursor.Format("2006-01"), len(result.Anomalies))
		}
		cursor = cursor.AddDate(0, 1, 0)
	}

	// A 30% jump against June of last year.
	result, err := api.Records().Ingest(ctx, ingestRequest("sup-main", time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), "1300"))
	if err != nil {
		t.Fatalf("ingest anomalous record: %v", err)
	}
	if result.RecordID == "" {
		t.Error("detection result has no record id")
	}
	if len(result.Anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(result.Anomalies))
	}
	found := result.Anomalies[0]
	if found.Type != "yoy_deviation" || found.Severity != "warning" {
		t.Errorf("anomaly = %s/%s, want yoy_deviation/warning", found.Type, found.Severity)
	}
	if len(result.Checks) == 0 {
		t.Error("detection result carries no check trace")
	}

	records, err := api.Records().List(ctx, &client.RecordListOptions{
		ListOptions: client.ListOptions{Page: 1, PageSize: 5},
	})
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if records.TotalItems != 14 {
		t.Errorf("total records = %d, want 14", records.TotalItems)
	}
	if len(records.Data) != 5 {
		t.Errorf("page size = %d, want 5", len(records.Data))
	}

	anomalies, err := api.Anomalies().List(ctx, nil)
	if err != nil {
		t.Fatalf("list anomalies: %v", err)
	}
	if len(anomalies.Data) != 1 {
		t.Fatalf("got %d stored anomalies, want 1", len(anomalies.Data))
	}
	anomalyID := anomalies.Data[0].ID

	if err := api.Anomalies().UpdateStatus(ctx, anomalyID, "acknowledged"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	updated, err := api.Anomalies().Get(ctx, anomalyID)
	if err != nil {
		t.Fatalf("get anomaly: %v", err)
	}
	if updated.Status != "acknowledged" {
		t.Errorf("status = %q, want acknowledged", updated.Status)
	}

	summary, err := api.Anomalies().Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary["warning"] != 1 {
		t.Errorf("summary = %v, want warning=1", summary)
	}
}

func TestBackfillFlow(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	var batch []client.IngestRecordRequest
	cursor := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		batch = append(batch, ingestRequest("sup-import", cursor, "800"))
		cursor = cursor.AddDate(0, 1, 0)
	}

	result, err := api.Records().Backfill(ctx, client.BackfillRequest{Records: batch})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.Imported != 3 || result.Failed != 0 {
		t.Errorf("backfill = %+v, want 3 imported, 0 failed", result)
	}
	// February and March match their predecessor's identical amount.
	if result.Anomalies != 2 {
		t.Errorf("backfill anomalies = %d, want 2", result.Anomalies)
	}

	records, err := api.Records().List(ctx, nil)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if records.TotalItems != 3 {
		t.Errorf("total records = %d, want 3", records.TotalItems)
	}

	// Backfill findings are flagged and excluded from the live view.
	live := false
	anomalies, err := api.Anomalies().List(ctx, &client.AnomalyListOptions{IsBackfill: &live})
	if err != nil {
		t.Fatalf("list anomalies: %v", err)
	}
	if len(anomalies.Data) != 0 {
		t.Errorf("got %d non-backfill anomalies, want 0", len(anomalies.Data))
	}
	backfilled := true
	anomalies, err = api.Anomalies().List(ctx, &client.AnomalyListOptions{IsBackfill: &backfilled})
	if err != nil {
		t.Fatalf("list anomalies: %v", err)
	}
	if len(anomalies.Data) != 2 {
		t.Errorf("got %d backfill anomalies, want 2", len(anomalies.Data))
	}
}

func TestSettingsFlow(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	active, err := api.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if active.Thresholds.YoYDeviationPercent != 20 {
		t.Errorf("default yoy threshold = %v, want 20", active.Thresholds.YoYDeviationPercent)
	}

	yoy := 35.0
	updated, err := api.Settings().Update(ctx, client.SettingsPatch{
		Thresholds: &client.ThresholdsPatch{YoYDeviationPercent: &yoy},
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.Thresholds.YoYDeviationPercent != yoy {
		t.Errorf("yoy threshold = %v, want %v", updated.Thresholds.YoYDeviationPercent, yoy)
	}
	if updated.Thresholds.MoMDeviationPercent != 30 {
		t.Errorf("mom threshold = %v, want 30", updated.Thresholds.MoMDeviationPercent)
	}

	disabled, err := api.Settings().DisableCheck(ctx, "seasonal_anomaly")
	if err != nil {
		t.Fatalf("disable check: %v", err)
	}
	for _, id := range disabled.EnabledChecks {
		if id == "seasonal_anomaly" {
			t.Error("seasonal_anomaly still enabled after disable")
		}
	}

	checks, err := api.Settings().ListChecks(ctx)
	if err != nil {
		t.Fatalf("list checks: %v", err)
	}
	if len(checks) != 8 {
		t.Fatalf("got %d checks, want 8", len(checks))
	}
	for _, c := range checks {
		if c.ID == "seasonal_anomaly" && c.Enabled {
			t.Error("check listing reports seasonal_anomaly as enabled")
		}
	}

	if _, err := api.Settings().EnableCheck(ctx, "no_such_check"); err == nil {
		t.Error("expected an error enabling an unknown check")
	}

	if _, err := api.Settings().Update(ctx, client.SettingsPatch{
		EnabledChecks: &[]string{"yoy_deviation", "no_such_check"},
	}); err == nil {
		t.Error("expected an error patching in an unknown check id")
	}
}

func TestIngestValidation(t *testing.T) {
	api := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*client.IngestRecordRequest)
	}{
		{
			name:   "unknown cost type",
			mutate: func(r *client.IngestRecordRequest) { r.CostType = "plutonium" },
		},
		{
			name:   "missing amount",
			mutate: func(r *client.IngestRecordRequest) { r.Amount = "" },
		},
		{
			name:   "malformed period",
			mutate: func(r *client.IngestRecordRequest) { r.PeriodStart = "June 2025" },
		},
		{
			name: "period end before start",
			mutate: func(r *client.IngestRecordRequest) {
				r.PeriodStart = "2025-06-01"
				r.PeriodEnd = "2025-05-01"
			},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ingestRequest(fmt.Sprintf("sup-%d", i), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), "100")
			tt.mutate(&req)

			_, err := api.Records().Ingest(ctx, req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			apiErr, ok := err.(*client.APIError)
			if !ok {
				t.Fatalf("error type = %T, want *client.APIError", err)
			}
			if apiErr.StatusCode < 400 || apiErr.StatusCode >= 500 {
				t.Errorf("status = %d, want a 4xx", apiErr.StatusCode)
			}
		})
	}
}
