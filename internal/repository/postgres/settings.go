package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/settings"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

// SettingsRepository persists the single active detection settings row as a
// JSON document keyed by a fixed id.
type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) settings.Repository {
	return &SettingsRepository{db: db}
}

const settingsRowID = "default"

func (r *SettingsRepository) Get(ctx context.Context) (*settings.Stored, error) {
	query := r.db.rebind(`SELECT id, payload, updated_at FROM anomaly_settings WHERE id = ?`)

	var (
		stored  settings.Stored
		payload string
		updated string
	)
	err := r.db.QueryRowContext(ctx, query, settingsRowID).Scan(&stored.ID, &payload, &updated)
	if err == sql.ErrNoRows {
		return nil, settings.ErrNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get detection settings", err)
	}

	var s detector.Settings
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, errors.DatabaseError("Failed to decode detection settings", err)
	}
	stored.Settings = s
	if stored.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, errors.DatabaseError("Failed to decode detection settings", err)
	}

	return &stored, nil
}

func (r *SettingsRepository) Save(ctx context.Context, stored *settings.Stored) error {
	payload, err := json.Marshal(stored.Settings)
	if err != nil {
		return errors.DatabaseError("Failed to encode detection settings", err)
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	stored.ID = settingsRowID
	now := formatTime(stored.UpdatedAt)

	query := r.db.rebind(`INSERT INTO anomaly_settings (id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, settingsRowID, string(payload), now); err != nil {
		return errors.DatabaseError("Failed to save detection settings", err)
	}
	return nil
}
