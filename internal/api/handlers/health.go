package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/utilaudit/utilaudit/internal/pkg/errors"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/utils"
	"github.com/utilaudit/utilaudit/internal/repository/postgres"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *postgres.DB, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: log}
}

// Healthz handles the liveness probe
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readyz handles the readiness probe
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.New("SERVICE_UNAVAILABLE", "Database connection failed", http.StatusServiceUnavailable))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "connected",
	})
}
