package detector

import (
	"fmt"
	"time"
)

const missingPeriodGapDays = 45

// recurringCostTypes are billed continuously; a gap between invoices of one
// of these categories usually means an invoice was never ingested.
var recurringCostTypes = []CostType{
	CostTypeElectricity,
	CostTypeGas,
	CostTypeHeating,
	CostTypeWater,
	CostTypeTelecom,
	CostTypeInsurance,
	CostTypeRent,
}

// missingPeriodCheck reports a gap between the end of the last known billing
// period and the start of the current one.
func missingPeriodCheck() Check {
	return Check{
		ID:                  CheckMissingPeriod,
		Name:                "Missing billing period",
		Description:         "Detects gaps between consecutive billing periods of recurring cost categories",
		ApplicableCostTypes: recurringCostTypes,
		MinHistoricalMonths: 2,
		Run:                 runMissingPeriod,
	}
}

func runMissingPeriod(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	var last *HistoricalCostRecord
	for i := range ctx.HistoricalRecords {
		r := &ctx.HistoricalRecords[i]
		if r.ID == record.ID || r.SupplierID != record.SupplierID || r.CostType != record.CostType {
			continue
		}
		if !r.PeriodEnd.Before(record.PeriodStart) {
			continue
		}
		if last == nil || r.PeriodEnd.After(last.PeriodEnd) {
			last = r
		}
	}
	if last == nil {
		return CheckResult{}, nil
	}

	expectedNextStart := last.PeriodEnd.AddDate(0, 0, 1)
	gapDays := int(record.PeriodStart.Sub(expectedNextStart) / (24 * time.Hour))
	if gapDays <= missingPeriodGapDays {
		return CheckResult{}, nil
	}

	estimatedMissing := gapDays / 30

	return CheckResult{
		Triggered: true,
		Severity:  SeverityInfo,
		Message: fmt.Sprintf("Gap of %d days since the last %s invoice from %s; roughly %d invoice(s) may be missing",
			gapDays, costTypeLabel(record.CostType), supplierLabel(ctx.Supplier), estimatedMissing),
		Details: map[string]any{
			"gap_days":                   gapDays,
			"estimated_missing_invoices": estimatedMissing,
			"last_period_end":            last.PeriodEnd.Format("2006-01-02"),
			"expected_next_start":        expectedNextStart.Format("2006-01-02"),
			"current_period_start":       record.PeriodStart.Format("2006-01-02"),
		},
	}, nil
}
