package notification

import (
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Entry is one alert-log record: the outcome of routing a single detected
// anomaly through the alerting rules.
type Entry struct {
	ID        string            `json:"id"`
	AnomalyID string            `json:"anomaly_id"`
	Severity  detector.Severity `json:"severity"`
	Status    Status            `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Status describes what happened to an alert.
type Status string

const (
	// StatusSent means the alert was handed to the notifier.
	StatusSent Status = "sent"
	// StatusQueued means the alert awaits the next digest flush.
	StatusQueued Status = "queued"
	// StatusSuppressed means the alert was dropped, e.g. by the daily cap
	// or the severity filter.
	StatusSuppressed Status = "suppressed"
)
