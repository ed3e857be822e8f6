package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/notification"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, e *notification.Entry) error {
	e.CreatedAt = time.Now().UTC()

	var sentAt interface{}
	if e.SentAt != nil {
		sentAt = formatTime(*e.SentAt)
	}

	query := r.db.rebind(`INSERT INTO alert_log (id, anomaly_id, severity, status, reason, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.AnomalyID, string(e.Severity), string(e.Status), nullString(e.Reason),
		sentAt, formatTime(e.CreatedAt))
	if err != nil {
		return errors.DatabaseError("Failed to create alert log entry", err)
	}
	return nil
}

func (r *NotificationRepository) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	query := r.db.rebind(`SELECT COUNT(*) FROM alert_log WHERE status = ? AND created_at >= ?`)

	var count int
	err := r.db.QueryRowContext(ctx, query, string(notification.StatusSent), formatTime(since)).Scan(&count)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count sent alerts", err)
	}
	return count, nil
}

func (r *NotificationRepository) ListQueued(ctx context.Context) ([]*notification.Entry, error) {
	query := r.db.rebind(`SELECT id, anomaly_id, severity, status, reason, sent_at, created_at
		FROM alert_log WHERE status = ? ORDER BY created_at ASC`)

	rows, err := r.db.QueryContext(ctx, query, string(notification.StatusQueued))
	if err != nil {
		return nil, errors.DatabaseError("Failed to list queued alerts", err)
	}
	defer rows.Close()

	var entries []*notification.Entry
	for rows.Next() {
		e, err := scanNotificationEntry(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan alert log entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate queued alerts", err)
	}

	return entries, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := r.db.rebind(`UPDATE alert_log SET status = ?, sent_at = ? WHERE id IN (` + placeholders + `)`)

	args := []interface{}{string(notification.StatusSent), formatTime(sentAt)}
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.DatabaseError("Failed to mark alerts sent", err)
	}
	return nil
}

func scanNotificationEntry(row rowScanner) (*notification.Entry, error) {
	var (
		e                notification.Entry
		severity, status string
		reason, sentAt   sql.NullString
		created          string
	)
	if err := row.Scan(&e.ID, &e.AnomalyID, &severity, &status, &reason, &sentAt, &created); err != nil {
		return nil, err
	}

	e.Severity = detector.Severity(severity)
	e.Status = notification.Status(status)
	e.Reason = reason.String

	var err error
	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, err
		}
		e.SentAt = &t
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}

	return &e, nil
}
