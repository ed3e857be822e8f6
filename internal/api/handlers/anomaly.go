package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utilaudit/utilaudit/internal/api/dto"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/utils"
	"github.com/utilaudit/utilaudit/internal/pkg/validator"
)

type AnomalyHandler struct {
	service   anomaly.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewAnomalyHandler(service anomaly.Service, log *logger.Logger, val *validator.Validator) *AnomalyHandler {
	return &AnomalyHandler{service: service, logger: log, validator: val}
}

// List returns anomalies with pagination and filtering
func (h *AnomalyHandler) List(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)

	filter := anomaly.Filter{
		CostRecordID: r.URL.Query().Get("cost_record_id"),
		Type:         r.URL.Query().Get("type"),
		Severity:     r.URL.Query().Get("severity"),
		Status:       r.URL.Query().Get("status"),
	}
	switch r.URL.Query().Get("is_backfill") {
	case "true":
		t := true
		filter.IsBackfill = &t
	case "false":
		f := false
		filter.IsBackfill = &f
	}

	anomalies, total, err := h.service.List(r.Context(), filter, p.PageSize, p.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list anomalies")
		return
	}

	dtos := make([]dto.AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		dtos[i] = dto.AnomalyFromModel(a)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Get returns a single anomaly by ID
func (h *AnomalyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get anomaly")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AnomalyFromModel(a))
}

// UpdateStatus transitions an anomaly to a new lifecycle status
func (h *AnomalyHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateAnomalyStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, err, "Failed to update anomaly status")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Anomaly status updated", nil)
}

// Delete deletes an anomaly
func (h *AnomalyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete anomaly")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Anomaly deleted", nil)
}

// GetSummary returns anomaly counts by severity
func (h *AnomalyHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to get anomaly summary")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, summary)
}
