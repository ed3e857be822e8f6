package detector

import (
	"testing"
	"time"
)

func TestYoYDeviation(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		baseline      string
		wantTriggered bool
		wantSeverity  Severity
	}{
		{
			name:          "30 percent increase is a warning",
			amount:        "1300",
			baseline:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityWarning,
		},
		{
			name:          "110 percent increase is critical",
			amount:        "2100",
			baseline:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityCritical,
		},
		{
			name:          "drop beyond the threshold triggers too",
			amount:        "700",
			baseline:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityWarning,
		},
		{
			name:          "exactly the threshold does not trigger",
			amount:        "1200",
			baseline:      "1000",
			wantTriggered: false,
		},
		{
			name:          "exactly twice the threshold stays a warning",
			amount:        "1400",
			baseline:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityWarning,
		},
		{
			name:          "small change does not trigger",
			amount:        "1050",
			baseline:      "1000",
			wantTriggered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, tt.amount)
			ctx := checkCtx(histRecord(t, CostTypeElectricity, 2024, time.June, tt.baseline))

			res, err := runYoYDeviation(record, ctx)
			if err != nil {
				t.Fatalf("runYoYDeviation() error = %v", err)
			}
			if res.Triggered != tt.wantTriggered {
				t.Fatalf("Triggered = %v, want %v", res.Triggered, tt.wantTriggered)
			}
			if tt.wantTriggered && res.Severity != tt.wantSeverity {
				t.Errorf("Severity = %v, want %v", res.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestYoYDeviation_NoBaseline(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")

	tests := []struct {
		name    string
		history []HistoricalCostRecord
	}{
		{
			name:    "empty history",
			history: nil,
		},
		{
			name: "wrong month a year ago",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeElectricity, 2024, time.May, "1000"),
			},
		},
		{
			name: "same month but different cost type",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeGas, 2024, time.June, "1000"),
			},
		},
		{
			name: "zero baseline amount",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeElectricity, 2024, time.June, "0"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runYoYDeviation(record, checkCtx(tt.history...))
			if err != nil {
				t.Fatalf("runYoYDeviation() error = %v", err)
			}
			if res.Triggered {
				t.Errorf("Triggered = true, want false")
			}
		})
	}
}

func TestYoYDeviation_Details(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1300")
	ctx := checkCtx(histRecord(t, CostTypeElectricity, 2024, time.June, "1000"))

	res, err := runYoYDeviation(record, ctx)
	if err != nil {
		t.Fatalf("runYoYDeviation() error = %v", err)
	}
	if !res.Triggered {
		t.Fatal("expected a triggered result")
	}
	if got := res.Details["comparison_period"]; got != "2024-06" {
		t.Errorf("comparison_period = %v, want 2024-06", got)
	}
	if got := res.Details["method"]; got != "year_over_year" {
		t.Errorf("method = %v, want year_over_year", got)
	}
}
