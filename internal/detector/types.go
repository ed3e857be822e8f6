// Package detector implements the anomaly detection engine for utility cost
// records. The engine is a pure function of (record, context, settings): it
// performs no I/O, keeps no per-call state and produces identical output for
// identical input, which keeps detection results auditable and replayable.
package detector

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostType categorizes a cost record for comparison scoping.
type CostType string

const (
	CostTypeElectricity     CostType = "electricity"
	CostTypeGas             CostType = "gas"
	CostTypeWater           CostType = "water"
	CostTypeHeating         CostType = "heating"
	CostTypeDistrictHeating CostType = "district_heating"
	CostTypeFuels           CostType = "fuels"
	CostTypeTelecom         CostType = "telecom"
	CostTypeInsurance       CostType = "insurance"
	CostTypeRent            CostType = "rent"
	CostTypeWaste           CostType = "waste"
	CostTypeMaintenance     CostType = "maintenance"
	CostTypeOther           CostType = "other"
)

// Severity levels, ordered by urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CostRecordToCheck is the record under evaluation. It is built by the caller
// from a persisted cost record and must not be mutated during detection.
type CostRecordToCheck struct {
	ID            string           `json:"id"`
	LocationID    string           `json:"location_id"`
	SupplierID    string           `json:"supplier_id"`
	CostType      CostType         `json:"cost_type"`
	Amount        decimal.Decimal  `json:"amount"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	PeriodStart   time.Time        `json:"period_start"`
	PeriodEnd     time.Time        `json:"period_end"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
}

// HistoricalCostRecord is a read-only projection of a past record used for
// comparison. Supplied fresh per detection call, never mutated by checks.
type HistoricalCostRecord struct {
	ID            string           `json:"id"`
	CostType      CostType         `json:"cost_type"`
	Amount        decimal.Decimal  `json:"amount"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	PeriodStart   time.Time        `json:"period_start"`
	PeriodEnd     time.Time        `json:"period_end"`
	SupplierID    string           `json:"supplier_id"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
}

// LocationContext describes the location a record belongs to.
type LocationContext struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	AreaSqm *int   `json:"area_sqm,omitempty"`
}

// SupplierContext describes the supplier that issued the record.
type SupplierContext struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	CostType CostType `json:"cost_type,omitempty"`
}

// ContractContext carries contractual price/quantity bounds, when known.
type ContractContext struct {
	ID          string           `json:"id"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	MinQuantity *decimal.Decimal `json:"min_quantity,omitempty"`
	MaxQuantity *decimal.Decimal `json:"max_quantity,omitempty"`
	ValidFrom   time.Time        `json:"valid_from"`
	ValidTo     time.Time        `json:"valid_to"`
}

// BudgetContext carries the budget applicable to the record's cost type. A
// zero Month means the Amount is a yearly budget.
type BudgetContext struct {
	CostType CostType        `json:"cost_type"`
	Year     int             `json:"year"`
	Month    int             `json:"month,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// CheckContext aggregates everything a check may compare the record against.
// It is owned by a single detection call; checks must treat it as an
// immutable snapshot.
type CheckContext struct {
	Location          LocationContext
	Supplier          SupplierContext
	HistoricalRecords []HistoricalCostRecord
	Contract          *ContractContext
	Budget            *BudgetContext
	// Settings is the snapshot the engine evaluated with; it is filled in by
	// Detect so checks and callers see the same thresholds.
	Settings Settings
}

// CheckResult is the outcome of one check evaluation. A result with
// Triggered=false is a silent pass, not an error.
type CheckResult struct {
	Triggered bool           `json:"triggered"`
	Severity  Severity       `json:"severity,omitempty"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// DetectedAnomaly is the engine's externally visible output. Persistence and
// lifecycle (acknowledge/resolve/false-positive) belong to the caller.
type DetectedAnomaly struct {
	CostRecordID string         `json:"cost_record_id"`
	Type         string         `json:"type"`
	Severity     Severity       `json:"severity"`
	Message      string         `json:"message"`
	Details      map[string]any `json:"details"`
	IsBackfill   bool           `json:"is_backfill"`
}

// CheckTrace is a diagnostic entry for one check in a detection run.
type CheckTrace struct {
	CheckID    string       `json:"check_id"`
	CheckName  string       `json:"check_name"`
	Result     *CheckResult `json:"result,omitempty"`
	Skipped    bool         `json:"skipped"`
	SkipReason string       `json:"skip_reason,omitempty"`
}

// DetectionResult bundles the anomalies and the per-check trace of one run.
type DetectionResult struct {
	CostRecordID string            `json:"cost_record_id"`
	Anomalies    []DetectedAnomaly `json:"anomalies"`
	CheckResults []CheckTrace      `json:"check_results"`
	IsBackfill   bool              `json:"is_backfill"`
}

// DetectOptions tunes a single detection invocation.
type DetectOptions struct {
	// IsBackfill marks anomalies from historical imports so the caller can
	// suppress live alerting for them.
	IsBackfill bool
	// CheckIDs, when non-empty, intersects with the enabled check set.
	CheckIDs []string
	// Settings overrides the engine's settings for this call only.
	Settings *Settings
}
