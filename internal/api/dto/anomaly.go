package dto

import (
	"encoding/json"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
)

// AnomalyDTO is the API representation of a detected anomaly.
type AnomalyDTO struct {
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

// AnomalyFromModel converts a domain anomaly to its DTO.
func AnomalyFromModel(a *anomaly.Anomaly) AnomalyDTO {
	return AnomalyDTO{
		ID:           a.ID,
		CostRecordID: a.CostRecordID,
		Type:         a.Type,
		Severity:     string(a.Severity),
		Status:       a.Status,
		Message:      a.Message,
		Details:      a.Details,
		IsBackfill:   a.IsBackfill,
		DetectedAt:   a.DetectedAt,
	}
}

// AnomalyFromDetected converts an engine finding to its DTO. Engine findings
// have no ID or status yet.
func AnomalyFromDetected(d detector.DetectedAnomaly) AnomalyDTO {
	details, _ := json.Marshal(d.Details)
	return AnomalyDTO{
		CostRecordID: d.CostRecordID,
		Type:         d.Type,
		Severity:     string(d.Severity),
		Message:      d.Message,
		Details:      details,
		IsBackfill:   d.IsBackfill,
	}
}

// UpdateAnomalyStatusRequest is the payload for an anomaly status transition.
type UpdateAnomalyStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open acknowledged resolved false_positive"`
}
