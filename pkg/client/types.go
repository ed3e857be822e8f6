package client

import (
	"encoding/json"
	"time"
)

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}

// Paginated wraps a page of results
type Paginated[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// CostRecord is a utility invoice line item
type CostRecord struct {
	ID            string    `json:"id"`
	LocationID    string    `json:"location_id"`
	SupplierID    string    `json:"supplier_id"`
	CostType      string    `json:"cost_type"`
	Amount        string    `json:"amount"`
	Quantity      string    `json:"quantity,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	PricePerUnit  string    `json:"price_per_unit,omitempty"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IngestRecordRequest is the payload for submitting a cost record
type IngestRecordRequest struct {
	LocationID    string `json:"location_id"`
	SupplierID    string `json:"supplier_id"`
	CostType      string `json:"cost_type"`
	Amount        string `json:"amount"`
	Quantity      string `json:"quantity,omitempty"`
	Unit          string `json:"unit,omitempty"`
	PricePerUnit  string `json:"price_per_unit,omitempty"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// BackfillRequest is the payload for importing historical records
type BackfillRequest struct {
	Records []IngestRecordRequest `json:"records"`
}

// BackfillResult summarizes a backfill run
type BackfillResult struct {
	Imported  int `json:"imported"`
	Failed    int `json:"failed"`
	Anomalies int `json:"anomalies"`
}

// Anomaly is a detected cost anomaly
type Anomaly struct {
	ID           string          `json:"id"`
	CostRecordID string          `json:"cost_record_id"`
	Type         string          `json:"type"`
	Severity     string          `json:"severity"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	Details      json.RawMessage `json:"details,omitempty"`
	IsBackfill   bool            `json:"is_backfill"`
	DetectedAt   time.Time       `json:"detected_at"`
}

// CheckTrace reports what happened to one check during a detection run
type CheckTrace struct {
	CheckID    string `json:"check_id"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Triggered  bool   `json:"triggered"`
}

// DetectionResult is the outcome of running detection for one record
type DetectionResult struct {
	RecordID  string       `json:"record_id"`
	Anomalies []Anomaly    `json:"anomalies"`
	Checks    []CheckTrace `json:"checks"`
}

// Check describes one registered detection check
type Check struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	ApplicableCostTypes []string `json:"applicable_cost_types,omitempty"`
	MinHistoricalMonths int      `json:"min_historical_months,omitempty"`
	Enabled             bool     `json:"enabled"`
}

// Thresholds holds the numeric detection thresholds
type Thresholds struct {
	YoYDeviationPercent          float64 `json:"yoy_deviation_percent"`
	MoMDeviationPercent          float64 `json:"mom_deviation_percent"`
	PricePerUnitDeviationPercent float64 `json:"price_per_unit_deviation_percent"`
	ZScoreThreshold              float64 `json:"z_score_threshold"`
	BudgetExceededPercent        float64 `json:"budget_exceeded_percent"`
}

// Settings is the active detection configuration
type Settings struct {
	Thresholds      Thresholds `json:"alert_thresholds"`
	EnabledChecks   []string   `json:"enabled_checks"`
	MaxAlertsPerDay int        `json:"max_alerts_per_day"`
	DigestEnabled   bool       `json:"digest_enabled"`
	DigestHour      int        `json:"digest_hour"`
}

// ThresholdsPatch is a partial thresholds update
type ThresholdsPatch struct {
	YoYDeviationPercent          *float64 `json:"yoy_deviation_percent,omitempty"`
	MoMDeviationPercent          *float64 `json:"mom_deviation_percent,omitempty"`
	PricePerUnitDeviationPercent *float64 `json:"price_per_unit_deviation_percent,omitempty"`
	ZScoreThreshold              *float64 `json:"z_score_threshold,omitempty"`
	BudgetExceededPercent        *float64 `json:"budget_exceeded_percent,omitempty"`
}

// SettingsPatch is a partial settings update
type SettingsPatch struct {
	Thresholds      *ThresholdsPatch `json:"alert_thresholds,omitempty"`
	EnabledChecks   *[]string        `json:"enabled_checks,omitempty"`
	MaxAlertsPerDay *int             `json:"max_alerts_per_day,omitempty"`
	DigestEnabled   *bool            `json:"digest_enabled,omitempty"`
	DigestHour      *int             `json:"digest_hour,omitempty"`
}
