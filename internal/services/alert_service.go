package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/domain/notification"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/metrics"
)

// Notifier delivers alerts to an outbound channel. Delivery transports
// (email, chat, webhooks) live outside this service.
type Notifier interface {
	Send(ctx context.Context, a *anomaly.Anomaly) error
	SendDigest(ctx context.Context, anomalies []*anomaly.Anomaly) error
}

// AlertService routes freshly detected anomalies to the notifier, applying
// the severity filter, the daily alert cap and digest batching.
type AlertService struct {
	entries   notification.Repository
	anomalies anomaly.Repository
	notifier  Notifier
	engine    *detector.Engine
	logger    *logger.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(entries notification.Repository, anomalies anomaly.Repository, notifier Notifier, engine *detector.Engine, log *logger.Logger) *AlertService {
	return &AlertService{
		entries:   entries,
		anomalies: anomalies,
		notifier:  notifier,
		engine:    engine,
		logger:    log,
	}
}

// Dispatch routes each anomaly through the alerting rules. Failures are
// logged per anomaly and never surface to the detection flow.
func (s *AlertService) Dispatch(ctx context.Context, anomalies []*anomaly.Anomaly) {
	settings := s.engine.Settings()
	now := time.Now().UTC()

	for _, a := range anomalies {
		entry := &notification.Entry{
			ID:        uuid.New().String(),
			AnomalyID: a.ID,
			Severity:  a.Severity,
			CreatedAt: now,
		}

		switch {
		case a.Severity == detector.SeverityInfo:
			entry.Status = notification.StatusSuppressed
			entry.Reason = "informational severity is not alerted live"

		case settings.DigestEnabled:
			entry.Status = notification.StatusQueued

		default:
			sent, err := s.entries.CountSentSince(ctx, startOfDay(now))
			if err != nil {
				s.logger.ErrorWithErr(err, "Failed to count sent alerts")
				continue
			}
			if settings.MaxAlertsPerDay > 0 && sent >= settings.MaxAlertsPerDay {
				entry.Status = notification.StatusSuppressed
				entry.Reason = "daily alert cap reached"
				metrics.RecordAlertSuppressed()
				break
			}
			if err := s.notifier.Send(ctx, a); err != nil {
				s.logger.ErrorWithErr(err, "Failed to send alert")
				entry.Status = notification.StatusSuppressed
				entry.Reason = "delivery failed: " + err.Error()
				break
			}
			entry.Status = notification.StatusSent
			sentAt := now
			entry.SentAt = &sentAt
		}

		if err := s.entries.Create(ctx, entry); err != nil {
			s.logger.ErrorWithErr(err, "Failed to record alert log entry")
		}
	}
}

// FlushDigest sends one digest notification covering all queued alerts and
// marks them sent. A no-op when nothing is queued.
func (s *AlertService) FlushDigest(ctx context.Context) error {
	queued, err := s.entries.ListQueued(ctx)
	if err != nil {
		return err
	}
	if len(queued) == 0 {
		return nil
	}

	var (
		ids       []string
		anomalies []*anomaly.Anomaly
	)
	for _, e := range queued {
		ids = append(ids, e.ID)
		a, err := s.anomalies.GetByID(ctx, e.AnomalyID)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"anomaly_id": e.AnomalyID,
			}).Warn("Queued anomaly missing, including in digest count only")
			continue
		}
		anomalies = append(anomalies, a)
	}

	if err := s.notifier.SendDigest(ctx, anomalies); err != nil {
		return err
	}
	if err := s.entries.MarkSent(ctx, ids, time.Now().UTC()); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"alerts": len(ids),
	}).Info("Alert digest sent")
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LogNotifier writes alerts to the structured log. It stands in for real
// delivery channels, which are configured outside this service.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a notifier that logs alerts
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Send logs a single alert
func (n *LogNotifier) Send(ctx context.Context, a *anomaly.Anomaly) error {
	n.logger.WithFields(map[string]interface{}{
		"anomaly_id":     a.ID,
		"cost_record_id": a.CostRecordID,
		"type":           a.Type,
		"severity":       a.Severity,
	}).Info("ALERT: " + a.Message)
	return nil
}

// SendDigest logs a digest of alerts
func (n *LogNotifier) SendDigest(ctx context.Context, anomalies []*anomaly.Anomaly) error {
	bySeverity := make(map[string]int)
	for _, a := range anomalies {
		bySeverity[string(a.Severity)]++
	}
	n.logger.WithFields(map[string]interface{}{
		"alerts":      len(anomalies),
		"by_severity": bySeverity,
	}).Info("ALERT DIGEST")
	return nil
}
