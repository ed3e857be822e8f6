package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/domain/notification"
	"github.com/utilaudit/utilaudit/internal/testutil"
)

type alertFixture struct {
	service   *AlertService
	engine    *detector.Engine
	entries   *testutil.MockNotificationRepository
	anomalies *testutil.MockAnomalyRepository
	notifier  *testutil.MockNotifier
}

func newAlertFixture(t *testing.T) *alertFixture {
	t.Helper()
	log := testutil.QuietLogger()
	f := &alertFixture{
		engine:    detector.NewEngine(detector.DefaultSettings(), log),
		entries:   testutil.NewMockNotificationRepository(),
		anomalies: testutil.NewMockAnomalyRepository(),
		notifier:  testutil.NewMockNotifier(),
	}
	f.service = NewAlertService(f.entries, f.anomalies, f.notifier, f.engine, log)
	return f
}

func testAnomaly(id string, severity detector.Severity) *anomaly.Anomaly {
	return &anomaly.Anomaly{
		ID:           id,
		CostRecordID: "rec-" + id,
		Type:         detector.CheckYoYDeviation,
		Severity:     severity,
		Status:       anomaly.StatusOpen,
		Message:      "test anomaly " + id,
		DetectedAt:   time.Now().UTC(),
	}
}

func TestAlertService_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		severity   detector.Severity
		wantStatus notification.Status
		wantSent   int
	}{
		{
			name:       "warning is sent live",
			severity:   detector.SeverityWarning,
			wantStatus: notification.StatusSent,
			wantSent:   1,
		},
		{
			name:       "critical is sent live",
			severity:   detector.SeverityCritical,
			wantStatus: notification.StatusSent,
			wantSent:   1,
		},
		{
			name:       "info is suppressed",
			severity:   detector.SeverityInfo,
			wantStatus: notification.StatusSuppressed,
			wantSent:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAlertFixture(t)
			f.service.Dispatch(context.Background(), []*anomaly.Anomaly{testAnomaly("a1", tt.severity)})

			if len(f.notifier.Sent) != tt.wantSent {
				t.Errorf("got %d sends, want %d", len(f.notifier.Sent), tt.wantSent)
			}
			if len(f.entries.Entries) != 1 {
				t.Fatalf("got %d log entries, want 1", len(f.entries.Entries))
			}
			entry := f.entries.Entries[0]
			if entry.Status != tt.wantStatus {
				t.Errorf("entry status = %q, want %q", entry.Status, tt.wantStatus)
			}
			if entry.AnomalyID != "a1" {
				t.Errorf("entry anomaly id = %q, want a1", entry.AnomalyID)
			}
			if tt.wantStatus == notification.StatusSent && entry.SentAt == nil {
				t.Error("sent entry has no SentAt")
			}
		})
	}
}

func TestAlertService_Dispatch_DailyCap(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	capped := f.engine.Settings()
	capped.MaxAlertsPerDay = 2
	f.engine.ReplaceSettings(capped)

	for i := 0; i < 3; i++ {
		f.service.Dispatch(ctx, []*anomaly.Anomaly{
			testAnomaly(fmt.Sprintf("a%d", i), detector.SeverityWarning),
		})
	}

	if len(f.notifier.Sent) != 2 {
		t.Errorf("got %d sends, want 2", len(f.notifier.Sent))
	}
	last := f.entries.Entries[len(f.entries.Entries)-1]
	if last.Status != notification.StatusSuppressed {
		t.Errorf("last entry status = %q, want %q", last.Status, notification.StatusSuppressed)
	}
	if last.Reason != "daily alert cap reached" {
		t.Errorf("last entry reason = %q", last.Reason)
	}
}

func TestAlertService_Dispatch_DigestQueueing(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	digest := f.engine.Settings()
	digest.DigestEnabled = true
	f.engine.ReplaceSettings(digest)

	f.service.Dispatch(ctx, []*anomaly.Anomaly{
		testAnomaly("a1", detector.SeverityWarning),
		testAnomaly("a2", detector.SeverityCritical),
	})

	if len(f.notifier.Sent) != 0 {
		t.Errorf("got %d live sends in digest mode, want 0", len(f.notifier.Sent))
	}
	queued, err := f.entries.ListQueued(ctx)
	if err != nil {
		t.Fatalf("ListQueued() error = %v", err)
	}
	if len(queued) != 2 {
		t.Errorf("got %d queued entries, want 2", len(queued))
	}
}

func TestAlertService_Dispatch_DeliveryFailure(t *testing.T) {
	f := newAlertFixture(t)
	f.notifier.SendError = fmt.Errorf("smtp unreachable")

	f.service.Dispatch(context.Background(), []*anomaly.Anomaly{
		testAnomaly("a1", detector.SeverityWarning),
	})

	if len(f.entries.Entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(f.entries.Entries))
	}
	entry := f.entries.Entries[0]
	if entry.Status != notification.StatusSuppressed {
		t.Errorf("entry status = %q, want %q", entry.Status, notification.StatusSuppressed)
	}
}

func TestAlertService_FlushDigest(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()

	digest := f.engine.Settings()
	digest.DigestEnabled = true
	f.engine.ReplaceSettings(digest)

	a1 := testAnomaly("a1", detector.SeverityWarning)
	a2 := testAnomaly("a2", detector.SeverityCritical)
	f.anomalies.Anomalies["a1"] = a1
	f.anomalies.Anomalies["a2"] = a2
	f.service.Dispatch(ctx, []*anomaly.Anomaly{a1, a2})

	if err := f.service.FlushDigest(ctx); err != nil {
		t.Fatalf("FlushDigest() error = %v", err)
	}

	if len(f.notifier.Digests) != 1 {
		t.Fatalf("got %d digests, want 1", len(f.notifier.Digests))
	}
	if len(f.notifier.Digests[0]) != 2 {
		t.Errorf("digest contains %d anomalies, want 2", len(f.notifier.Digests[0]))
	}

	queued, err := f.entries.ListQueued(ctx)
	if err != nil {
		t.Fatalf("ListQueued() error = %v", err)
	}
	if len(queued) != 0 {
		t.Errorf("got %d queued entries after flush, want 0", len(queued))
	}

	// A second flush with an empty queue is a no-op.
	if err := f.service.FlushDigest(ctx); err != nil {
		t.Fatalf("FlushDigest() error = %v", err)
	}
	if len(f.notifier.Digests) != 1 {
		t.Errorf("got %d digests after empty flush, want 1", len(f.notifier.Digests))
	}
}
