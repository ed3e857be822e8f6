package detector

import (
	"testing"
	"time"
)

func TestMissingPeriod(t *testing.T) {
	// Last known invoice covers January 2025, so the next period is expected
	// to start on February 1st.
	prior := histRecord(t, CostTypeElectricity, 2025, time.January, "1000")

	tests := []struct {
		name          string
		periodStart   time.Time
		wantTriggered bool
		wantMissing   int
	}{
		{
			name:          "gap of 73 days",
			periodStart:   time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
			wantTriggered: true,
			wantMissing:   2,
		},
		{
			name:          "gap of exactly 45 days",
			periodStart:   time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC),
			wantTriggered: false,
		},
		{
			name:          "gap of 46 days",
			periodStart:   time.Date(2025, time.March, 19, 0, 0, 0, 0, time.UTC),
			wantTriggered: true,
			wantMissing:   1,
		},
		{
			name:          "contiguous period",
			periodStart:   time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantTriggered: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1000")
			record.PeriodStart = tt.periodStart
			record.PeriodEnd = tt.periodStart.AddDate(0, 1, -1)

			res, err := runMissingPeriod(record, checkCtx(prior))
			if err != nil {
				t.Fatalf("runMissingPeriod() error = %v", err)
			}
			if res.Triggered != tt.wantTriggered {
				t.Fatalf("Triggered = %v, want %v", res.Triggered, tt.wantTriggered)
			}
			if !tt.wantTriggered {
				return
			}
			if res.Severity != SeverityInfo {
				t.Errorf("Severity = %v, want %v", res.Severity, SeverityInfo)
			}
			if got := res.Details["estimated_missing_invoices"]; got != tt.wantMissing {
				t.Errorf("estimated_missing_invoices = %v, want %v", got, tt.wantMissing)
			}
		})
	}
}

func TestMissingPeriod_ScopedToSupplierAndCostType(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1000")

	otherSupplier := histRecord(t, CostTypeElectricity, 2025, time.January, "1000")
	otherSupplier.SupplierID = "sup-other"

	tests := []struct {
		name    string
		history []HistoricalCostRecord
	}{
		{
			name:    "no prior records",
			history: nil,
		},
		{
			name:    "prior record from another supplier",
			history: []HistoricalCostRecord{otherSupplier},
		},
		{
			name: "prior record of another cost type",
			history: []HistoricalCostRecord{
				histRecord(t, CostTypeGas, 2025, time.January, "1000"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := runMissingPeriod(record, checkCtx(tt.history...))
			if err != nil {
				t.Fatalf("runMissingPeriod() error = %v", err)
			}
			if res.Triggered {
				t.Errorf("Triggered = true, want false")
			}
		})
	}
}

func TestMissingPeriod_UsesLatestPriorPeriod(t *testing.T) {
	record := recordUnderCheck(t, CostTypeElectricity, 2025, time.June, "1000")
	ctx := checkCtx(
		histRecord(t, CostTypeElectricity, 2024, time.October, "1000"),
		histRecord(t, CostTypeElectricity, 2025, time.May, "1000"),
	)

	res, err := runMissingPeriod(record, ctx)
	if err != nil {
		t.Fatalf("runMissingPeriod() error = %v", err)
	}
	if res.Triggered {
		t.Error("expected no trigger when the latest prior period is contiguous")
	}
}
