package detector

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestEngine_Detect_YoYScenario(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")

	tests := []struct {
		name         string
		amount       string
		wantSeverity Severity
	}{
		{
			name:         "30 percent above last year is a warning",
			amount:       "1300",
			wantSeverity: SeverityWarning,
		},
		{
			name:         "110 percent above last year is critical",
			amount:       "2100",
			wantSeverity: SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, tt.amount)
			result := engine.Detect(record, checkCtx(history...), DetectOptions{
				CheckIDs: []string{CheckYoYDeviation},
			})

			if len(result.Anomalies) != 1 {
				t.Fatalf("got %d anomalies, want 1", len(result.Anomalies))
			}
			a := result.Anomalies[0]
			if a.Type != CheckYoYDeviation {
				t.Errorf("Type = %q, want %q", a.Type, CheckYoYDeviation)
			}
			if a.Severity != tt.wantSeverity {
				t.Errorf("Severity = %v, want %v", a.Severity, tt.wantSeverity)
			}
			if a.CostRecordID != record.ID {
				t.Errorf("CostRecordID = %q, want %q", a.CostRecordID, record.ID)
			}
		})
	}
}

func TestEngine_Detect_FullRun(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")

	result := engine.Detect(record, checkCtx(history...), DetectOptions{})

	if len(result.CheckResults) != len(AllCheckIDs()) {
		t.Fatalf("got %d traces, want %d", len(result.CheckResults), len(AllCheckIDs()))
	}
	for _, trace := range result.CheckResults {
		if trace.Skipped {
			t.Errorf("check %q skipped: %s", trace.CheckID, trace.SkipReason)
		}
	}
	if len(result.Anomalies) != 1 || result.Anomalies[0].Type != CheckYoYDeviation {
		t.Fatalf("anomalies = %+v, want a single year-over-year deviation", result.Anomalies)
	}
}

func TestEngine_Detect_EmptyHistory(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")

	result := engine.Detect(record, checkCtx(), DetectOptions{})

	if len(result.Anomalies) != 0 {
		t.Fatalf("got %d anomalies, want 0", len(result.Anomalies))
	}

	wantSkipped := map[string]bool{
		CheckYoYDeviation:  true,
		CheckMoMDeviation:  true,
		CheckMissingPeriod: true,
	}
	for _, trace := range result.CheckResults {
		if wantSkipped[trace.CheckID] {
			if !trace.Skipped {
				t.Errorf("check %q not skipped", trace.CheckID)
			} else if trace.SkipReason != "insufficient historical data" {
				t.Errorf("check %q skip reason = %q", trace.CheckID, trace.SkipReason)
			}
			continue
		}
		if trace.Skipped {
			t.Errorf("check %q unexpectedly skipped: %s", trace.CheckID, trace.SkipReason)
		}
	}
}

func TestEngine_Detect_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "2100")

	first := engine.Detect(record, checkCtx(history...), DetectOptions{})
	second := engine.Detect(record, checkCtx(history...), DetectOptions{})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated detection differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestEngine_Detect_SettingsOverride(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")

	relaxed := DefaultSettings()
	relaxed.Thresholds.YoYDeviationPercent = 50

	result := engine.Detect(record, checkCtx(history...), DetectOptions{
		CheckIDs: []string{CheckYoYDeviation},
		Settings: &relaxed,
	})
	if len(result.Anomalies) != 0 {
		t.Errorf("got %d anomalies with a relaxed override, want 0", len(result.Anomalies))
	}

	// The override is scoped to the call; the engine still uses its own
	// settings afterwards.
	if got := engine.Settings().Thresholds.YoYDeviationPercent; got != 20 {
		t.Errorf("engine threshold = %v, want 20", got)
	}
}

func TestEngine_Detect_DoesNotMutateCallerContext(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")
	ctx := &CheckContext{Supplier: SupplierContext{ID: "sup-1"}}

	engine.Detect(record, ctx, DetectOptions{})

	if !reflect.DeepEqual(ctx.Settings, Settings{}) {
		t.Errorf("caller context settings mutated: %+v", ctx.Settings)
	}
}

func TestEngine_Detect_Backfill(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "2100")

	result := engine.Detect(record, checkCtx(history...), DetectOptions{IsBackfill: true})

	if !result.IsBackfill {
		t.Error("result not marked as backfill")
	}
	if len(result.Anomalies) == 0 {
		t.Fatal("expected anomalies")
	}
	for _, a := range result.Anomalies {
		if !a.IsBackfill {
			t.Errorf("anomaly %q not marked as backfill", a.Type)
		}
	}
}

func TestEngine_CheckToggles(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())
	history := monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000")
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")

	engine.DisableCheck(CheckYoYDeviation)
	result := engine.Detect(record, checkCtx(history...), DetectOptions{})
	for _, trace := range result.CheckResults {
		if trace.CheckID == CheckYoYDeviation {
			t.Error("disabled check still ran")
		}
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("got %d anomalies with the deviation check disabled, want 0", len(result.Anomalies))
	}

	engine.EnableCheck(CheckYoYDeviation)
	result = engine.Detect(record, checkCtx(history...), DetectOptions{})
	if len(result.Anomalies) != 1 {
		t.Errorf("got %d anomalies after re-enabling, want 1", len(result.Anomalies))
	}
}

func TestEngine_UpdateSettings(t *testing.T) {
	engine := NewEngine(DefaultSettings(), testLogger())

	yoy := 42.0
	updated := engine.UpdateSettings(SettingsPatch{
		Thresholds: &ThresholdsPatch{YoYDeviationPercent: &yoy},
	})

	if updated.Thresholds.YoYDeviationPercent != yoy {
		t.Errorf("returned threshold = %v, want %v", updated.Thresholds.YoYDeviationPercent, yoy)
	}
	if got := engine.Settings().Thresholds.YoYDeviationPercent; got != yoy {
		t.Errorf("stored threshold = %v, want %v", got, yoy)
	}
	if got := engine.Settings().Thresholds.MoMDeviationPercent; got != 30 {
		t.Errorf("untouched threshold = %v, want 30", got)
	}
}

func TestRunCheck_PanicIsolation(t *testing.T) {
	check := Check{
		ID: "exploding",
		Run: func(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
			panic("boom")
		},
	}
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1000")

	res, err := runCheck(check, record, checkCtx())
	if err == nil {
		t.Fatal("expected an error from a panicking check")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error = %v, want the panic value", err)
	}
	if res.Triggered {
		t.Error("panicking check produced a triggered result")
	}
}

func TestHistoricalMonths(t *testing.T) {
	tests := []struct {
		name    string
		records []HistoricalCostRecord
		want    int
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name:    "single record spans nothing",
			records: monthlyHistory(t, CostTypeElectricity, 2025, time.June, 1, "1000"),
			want:    0,
		},
		{
			name:    "thirteen contiguous months span twelve",
			records: monthlyHistory(t, CostTypeElectricity, 2025, time.June, 13, "1000"),
			want:    12,
		},
		{
			name:    "six contiguous months span five",
			records: monthlyHistory(t, CostTypeElectricity, 2025, time.June, 6, "1000"),
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HistoricalMonths(tt.records); got != tt.want {
				t.Errorf("HistoricalMonths() = %d, want %d", got, tt.want)
			}
		})
	}
}
