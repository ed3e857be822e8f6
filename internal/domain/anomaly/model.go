package anomaly

import (
	"encoding/json"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Anomaly is a persisted detection finding for one cost record. At most one
// anomaly exists per (cost record, type) pair; the repository enforces the
// unique constraint.
type Anomaly struct {
	ID           string            `json:"id"`
	CostRecordID string            `json:"cost_record_id"`
	Type         string            `json:"type"`
	Severity     detector.Severity `json:"severity"`
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Details      json.RawMessage   `json:"details,omitempty"`
	IsBackfill   bool              `json:"is_backfill"`
	DetectedAt   time.Time         `json:"detected_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// Status values
const (
	StatusOpen          = "open"
	StatusAcknowledged  = "acknowledged"
	StatusResolved      = "resolved"
	StatusFalsePositive = "false_positive"
)

// ValidStatus reports whether s is a known anomaly status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusAcknowledged, StatusResolved, StatusFalsePositive:
		return true
	}
	return false
}

// Filter contains anomaly filtering options
type Filter struct {
	CostRecordID string
	Type         string
	Severity     string
	Status       string
	IsBackfill   *bool
	Since        *time.Time
}

// FromDetected builds a persistable anomaly from an engine result. The
// caller assigns the ID.
func FromDetected(d detector.DetectedAnomaly, detectedAt time.Time) (*Anomaly, error) {
	details, err := json.Marshal(d.Details)
	if err != nil {
		return nil, err
	}
	return &Anomaly{
		CostRecordID: d.CostRecordID,
		Type:         d.Type,
		Severity:     d.Severity,
		Status:       StatusOpen,
		Message:      d.Message,
		Details:      details,
		IsBackfill:   d.IsBackfill,
		DetectedAt:   detectedAt,
	}, nil
}
