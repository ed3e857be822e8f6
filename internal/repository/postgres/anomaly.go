package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

type AnomalyRepository struct {
	db *DB
}

func NewAnomalyRepository(db *DB) anomaly.Repository {
	return &AnomalyRepository{db: db}
}

const anomalyColumns = `id, cost_record_id, type, severity, message, details, status, is_backfill, detected_at, created_at, updated_at`

func (r *AnomalyRepository) Create(ctx context.Context, a *anomaly.Anomaly) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = anomaly.StatusOpen
	}
	if len(a.Details) == 0 {
		a.Details = json.RawMessage("{}")
	}

	query := r.db.rebind(`INSERT INTO anomalies (` + anomalyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.CostRecordID, a.Type, string(a.Severity), a.Message, string(a.Details),
		a.Status, boolInt(a.IsBackfill), formatTime(a.DetectedAt), formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return anomaly.ErrDuplicate
		}
		return errors.DatabaseError("Failed to create anomaly", err)
	}
	return nil
}

func (r *AnomalyRepository) GetByID(ctx context.Context, id string) (*anomaly.Anomaly, error) {
	query := r.db.rebind(`SELECT ` + anomalyColumns + ` FROM anomalies WHERE id = ?`)

	a, err := scanAnomaly(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Anomaly")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get anomaly", err)
	}
	return a, nil
}

func (r *AnomalyRepository) Update(ctx context.Context, a *anomaly.Anomaly) error {
	a.UpdatedAt = time.Now().UTC()

	query := r.db.rebind(`UPDATE anomalies SET status = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, a.Status, formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update anomaly", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Anomaly")
	}
	return nil
}

func (r *AnomalyRepository) Delete(ctx context.Context, id string) error {
	query := r.db.rebind(`DELETE FROM anomalies WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete anomaly", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("Anomaly")
	}
	return nil
}

func (r *AnomalyRepository) List(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]*anomaly.Anomaly, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.CostRecordID != "" {
		where = append(where, "cost_record_id = ?")
		args = append(args, filter.CostRecordID)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.IsBackfill != nil {
		where = append(where, "is_backfill = ?")
		args = append(args, boolInt(*filter.IsBackfill))
	}
	if filter.Since != nil {
		where = append(where, "detected_at >= ?")
		args = append(args, formatTime(*filter.Since))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := r.db.rebind(`SELECT COUNT(*) FROM anomalies WHERE ` + whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count anomalies", err)
	}

	query := r.db.rebind(`SELECT ` + anomalyColumns + ` FROM anomalies WHERE ` + whereClause + ` ORDER BY detected_at DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list anomalies", err)
	}
	defer rows.Close()

	var anomalies []*anomaly.Anomaly
	for rows.Next() {
		a, err := scanAnomaly(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan anomaly", err)
		}
		anomalies = append(anomalies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate anomalies", err)
	}

	return anomalies, total, nil
}

func (r *AnomalyRepository) CountBySeverity(ctx context.Context) (map[string]int, error) {
	query := `SELECT severity, COUNT(*) FROM anomalies GROUP BY severity`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count anomalies by severity", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan severity count", err)
		}
		counts[severity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate severity counts", err)
	}

	return counts, nil
}

func scanAnomaly(row rowScanner) (*anomaly.Anomaly, error) {
	var (
		a                            anomaly.Anomaly
		severity, details            string
		isBackfill                   int
		detectedAt, created, updated string
	)
	if err := row.Scan(&a.ID, &a.CostRecordID, &a.Type, &severity, &a.Message, &details,
		&a.Status, &isBackfill, &detectedAt, &created, &updated); err != nil {
		return nil, err
	}

	a.Severity = detector.Severity(severity)
	a.Details = json.RawMessage(details)
	a.IsBackfill = isBackfill != 0

	var err error
	if a.DetectedAt, err = parseTime(detectedAt); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	return &a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation matches both the sqlite and postgres unique constraint
// error texts, so the repository does not need driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
