package detector

import (
	"testing"
	"time"
)

func TestMoMDeviation(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		previous      string
		wantTriggered bool
		wantSeverity  Severity
	}{
		{
			name:          "increase above the threshold is a warning",
			amount:        "1400",
			previous:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityWarning,
		},
		{
			name:          "increase beyond twice the threshold is critical",
			amount:        "1700",
			previous:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityCritical,
		},
		{
			name:          "exactly the threshold does not trigger",
			amount:        "1300",
			previous:      "1000",
			wantTriggered: false,
		},
		{
			name:          "drop beyond the threshold triggers",
			amount:        "600",
			previous:      "1000",
			wantTriggered: true,
			wantSeverity:  SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, tt.amount)
			ctx := checkCtx(histRecord(t, CostTypeElectricity, 2025, time.May, tt.previous))

			res, err := runMoMDeviation(record, ctx)
			if err != nil {
				t.Fatalf("runMoMDeviation() error = %v", err)
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

func TestMoMDeviation_PicksMostRecentPrior(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1400")
	ctx := checkCtx(
		histRecord(t, CostTypeElectricity, 2025, time.March, "5000"),
		histRecord(t, CostTypeElectricity, 2025, time.May, "1000"),
		histRecord(t, CostTypeGas, 2025, time.May, "9000"),
	)

	res, err := runMoMDeviation(record, ctx)
	if err != nil {
		t.Fatalf("runMoMDeviation() error = %v", err)
	}
	if !res.Triggered {
		t.Fatal("expected a triggered result")
	}
	if got := res.Details["previous_period"]; got != "2025-05-01" {
		t.Errorf("previous_period = %v, want 2025-05-01", got)
	}
}

func TestMoMDeviation_NoBaseline(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1400")

	tests := []struct {
		name    string
		history []HistoricalCostRecord
	}{
		{
			name:    "empty history",
			history: nil,
		},
		{
			name: "only later periods",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeElectricity, 2025, time.July, "1000"),
			},
		},
		{
			name: "zero previous amount",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeElectricity, 2025, time.May, "0"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runMoMDeviation(record, checkCtx(tt.history...))
			if err != nil {
				t.Fatalf("runMoMDeviation() error = %v", err)
			}
			if res.Triggered {
				t.Errorf("Triggered = true, want false")
			}
		})
	}
}
