package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utilaudit/utilaudit/internal/api/dto"
	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/record"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/utils"
	"github.com/utilaudit/utilaudit/internal/pkg/validator"
	"github.com/utilaudit/utilaudit/internal/services"
)

type RecordHandler struct {
	detection *services.DetectionService
	records   record.Repository
	logger    *logger.Logger
	validator *validator.Validator
}

func NewRecordHandler(detection *services.DetectionService, records record.Repository, log *logger.Logger, val *validator.Validator) *RecordHandler {
	return &RecordHandler{detection: detection, records: records, logger: log, validator: val}
}

// Ingest accepts a single cost record, stores it and runs detection on it.
func (h *RecordHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req dto.IngestRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	rec, err := req.ToRecord()
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid numeric or date field: "+err.Error()))
		return
	}
	if rec.PeriodEnd.Before(rec.PeriodStart) {
		utils.WriteError(w, errors.BadRequest("period_end must not be before period_start"))
		return
	}

	result, err := h.detection.IngestAndDetect(r.Context(), rec, false)
	if err != nil {
		writeServiceError(w, err, "Failed to ingest cost record")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, detectionResponse(rec.ID, result))
}

// Backfill imports a batch of historical records. Anomalies found during a
// backfill are stored but never alerted.
func (h *RecordHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req dto.BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	resp := dto.BackfillResponse{}
	for i := range req.Records {
		rec, err := req.Records[i].ToRecord()
		if err != nil {
			resp.Failed++
			continue
		}

		result, err := h.detection.IngestAndDetect(r.Context(), rec, true)
		if err != nil {
			h.logger.ErrorWithErr(err, "Backfill record ingest failed")
			resp.Failed++
			continue
		}

		resp.Imported++
		resp.Anomalies += len(result.Anomalies)
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}

// Get returns a single cost record by ID
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.records.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to get cost record")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, rec)
}

// List returns cost records with pagination and filtering
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)

	filter := record.Filter{
		LocationID: r.URL.Query().Get("location_id"),
		SupplierID: r.URL.Query().Get("supplier_id"),
		CostType:   r.URL.Query().Get("cost_type"),
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}

	records, total, err := h.records.List(r.Context(), filter, p.PageSize, p.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list cost records")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(records, p.Page, p.PageSize, total))
}

func detectionResponse(recordID string, result *detector.DetectionResult) dto.DetectionResponse {
	resp := dto.DetectionResponse{
		RecordID:  recordID,
		Anomalies: []dto.AnomalyDTO{},
		Checks:    []dto.CheckTraceDTO{},
	}
	for _, a := range result.Anomalies {
		resp.Anomalies = append(resp.Anomalies, dto.AnomalyFromDetected(a))
	}
	for _, t := range result.CheckResults {
		trace := dto.CheckTraceDTO{
			CheckID:    t.CheckID,
			Skipped:    t.Skipped,
			SkipReason: t.SkipReason,
		}
		if t.Result != nil {
			trace.Triggered = t.Result.Triggered
		}
		resp.Checks = append(resp.Checks, trace)
	}
	return resp
}
