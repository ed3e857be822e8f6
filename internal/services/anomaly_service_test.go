package services

import (
	"context"
	"testing"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/testutil"
)

func newAnomalyFixture(t *testing.T) (anomaly.Service, *testutil.MockAnomalyRepository) {
	t.Helper()
	repo := testutil.NewMockAnomalyRepository()
	return NewAnomalyService(repo, testutil.QuietLogger()), repo
}

func TestAnomalyService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "acknowledge", status: anomaly.StatusAcknowledged},
		{name: "resolve", status: anomaly.StatusResolved},
		{name: "mark false positive", status: anomaly.StatusFalsePositive},
		{name: "reopen", status: anomaly.StatusOpen},
		{name: "unknown status", status: "snoozed", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newAnomalyFixture(t)
			ctx := context.Background()
			repo.Anomalies["a1"] = testAnomaly("a1", detector.SeverityWarning)

			err := service.UpdateStatus(ctx, "a1", tt.status)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := repo.Anomalies["a1"].Status; got != tt.status {
				t.Errorf("status = %q, want %q", got, tt.status)
			}
		})
	}
}

func TestAnomalyService_UpdateStatus_NotFound(t *testing.T) {
	service, _ := newAnomalyFixture(t)

	if err := service.UpdateStatus(context.Background(), "missing", anomaly.StatusResolved); err == nil {
		t.Error("expected an error for an unknown anomaly")
	}
}

func TestAnomalyService_List(t *testing.T) {
	service, repo := newAnomalyFixture(t)
	ctx := context.Background()

	warning := testAnomaly("a1", detector.SeverityWarning)
	critical := testAnomaly("a2", detector.SeverityCritical)
	critical.IsBackfill = true
	repo.Anomalies["a1"] = warning
	repo.Anomalies["a2"] = critical

	backfill := true
	tests := []struct {
		name   string
		filter anomaly.Filter
		want   int
	}{
		{name: "no filter", filter: anomaly.Filter{}, want: 2},
		{name: "by severity", filter: anomaly.Filter{Severity: "critical"}, want: 1},
		{name: "by backfill flag", filter: anomaly.Filter{IsBackfill: &backfill}, want: 1},
		{name: "by record", filter: anomaly.Filter{CostRecordID: "rec-a1"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := service.List(ctx, tt.filter, 20, 0)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want || total != int64(tt.want) {
				t.Errorf("List() = %d results (total %d), want %d", len(got), total, tt.want)
			}
		})
	}
}

func TestAnomalyService_Delete(t *testing.T) {
	service, repo := newAnomalyFixture(t)
	ctx := context.Background()
	repo.Anomalies["a1"] = testAnomaly("a1", detector.SeverityWarning)

	if err := service.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := repo.Anomalies["a1"]; ok {
		t.Error("anomaly still present after delete")
	}
	if err := service.Delete(ctx, "a1"); err == nil {
		t.Error("expected an error deleting a missing anomaly")
	}
}

func TestAnomalyService_GetSummary(t *testing.T) {
	service, repo := newAnomalyFixture(t)
	ctx := context.Background()

	repo.Anomalies["a1"] = testAnomaly("a1", detector.SeverityWarning)
	repo.Anomalies["a2"] = testAnomaly("a2", detector.SeverityWarning)
	repo.Anomalies["a3"] = testAnomaly("a3", detector.SeverityCritical)

	summary, err := service.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if summary["warning"] != 2 || summary["critical"] != 1 {
		t.Errorf("summary = %v, want warning=2 critical=1", summary)
	}
}
