package detector

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	duplicateWindowDays = 45
	// duplicateAmountTolerancePercent is the strict upper bound: amounts
	// differing by exactly this much do not match.
	duplicateAmountTolerancePercent = 1.0
)

// duplicateDetectionCheck finds prior records of the same supplier in a
// ±45-day window with a near-identical amount.
func duplicateDetectionCheck() Check {
	return Check{
		ID:          CheckDuplicateDetection,
		Name:        "Duplicate invoice",
		Description: "Finds records of the same supplier with near-identical amounts in a 45-day window",
		Run:         runDuplicateDetection,
	}
}

func runDuplicateDetection(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error) {
	var (
		matches        []HistoricalCostRecord
		invoiceMatched bool
	)
	for _, r := range ctx.HistoricalRecords {
		if r.ID == record.ID || r.SupplierID != record.SupplierID {
			continue
		}
		if !withinDays(r.PeriodStart, record.PeriodStart, duplicateWindowDays) {
			continue
		}
		if !amountsNearlyEqual(r.Amount, record.Amount) {
			continue
		}
		matches = append(matches, r)
		if record.InvoiceNumber != "" && r.InvoiceNumber == record.InvoiceNumber {
			invoiceMatched = true
		}
	}
	if len(matches) == 0 {
		return CheckResult{}, nil
	}

	severity := SeverityWarning
	message := fmt.Sprintf("Possible duplicate: %d earlier record(s) from %s with a near-identical amount of %s",
		len(matches), supplierLabel(ctx.Supplier), record.Amount.StringFixed(2))
	if invoiceMatched {
		severity = SeverityCritical
		message = fmt.Sprintf("Duplicate invoice %s: an earlier record from %s carries the same invoice number and amount %s",
			record.InvoiceNumber, supplierLabel(ctx.Supplier), record.Amount.StringFixed(2))
	}

	matchedIDs := make([]string, len(matches))
	for i, m := range matches {
		matchedIDs[i] = m.ID
	}

	return CheckResult{
		Triggered: true,
		Severity:  severity,
		Message:   message,
		Details: map[string]any{
			"actual_value":      record.Amount,
			"match_count":       len(matches),
			"matched_ids":       matchedIDs,
			"invoice_matched":   invoiceMatched,
			"window_days":       duplicateWindowDays,
			"tolerance_percent": duplicateAmountTolerancePercent,
		},
	}, nil
}

// amountsNearlyEqual reports whether two amounts are exactly equal or differ
// by strictly less than the tolerance, measured against the larger amount.
func amountsNearlyEqual(a, b decimal.Decimal) bool {
	if a.Equal(b) {
		return true
	}
	larger := a
	if b.Abs().GreaterThan(a.Abs()) {
		larger = b
	}
	if larger.IsZero() {
		return false
	}
	diffPct := a.Sub(b).Abs().Div(larger.Abs()).Mul(hundred)
	return diffPct.LessThan(decimal.NewFromFloat(duplicateAmountTolerancePercent))
}

func withinDays(a, b time.Time, days int) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= time.Duration(days)*24*time.Hour
}

func supplierLabel(s SupplierContext) string {
	if s.Name != "" {
		return s.Name
	}
	if s.ID != "" {
		return "supplier " + s.ID
	}
	return "the supplier"
}
