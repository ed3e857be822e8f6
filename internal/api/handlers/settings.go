package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utilaudit/utilaudit/internal/api/dto"
	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/settings"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/utils"
	"github.com/utilaudit/utilaudit/internal/pkg/validator"
)

type SettingsHandler struct {
	service   settings.Service
	registry  *detector.Registry
	logger    *logger.Logger
	validator *validator.Validator
}

func NewSettingsHandler(service settings.Service, registry *detector.Registry, log *logger.Logger, val *validator.Validator) *SettingsHandler {
	return &SettingsHandler{service: service, registry: registry, logger: log, validator: val}
}

// Get returns the active detection settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to get detection settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, s)
}

// Update merges a partial settings update into the active settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	if errs := h.validator.Validate(req); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return
	}

	if req.EnabledChecks != nil {
		for _, id := range *req.EnabledChecks {
			if _, ok := h.registry.Get(id); !ok {
				utils.WriteError(w, errors.BadRequest("Unknown check id: "+id))
				return
			}
		}
	}

	updated, err := h.service.Update(r.Context(), req.ToPatch())
	if err != nil {
		writeServiceError(w, err, "Failed to update detection settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated)
}

// EnableCheck adds a check to the enabled set
func (h *SettingsHandler) EnableCheck(w http.ResponseWriter, r *http.Request) {
	h.toggleCheck(w, r, h.service.EnableCheck)
}

// DisableCheck removes a check from the enabled set
func (h *SettingsHandler) DisableCheck(w http.ResponseWriter, r *http.Request) {
	h.toggleCheck(w, r, h.service.DisableCheck)
}

func (h *SettingsHandler) toggleCheck(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (detector.Settings, error)) {
	id := chi.URLParam(r, "id")
	if _, ok := h.registry.Get(id); !ok {
		utils.WriteError(w, errors.NotFound("Check"))
		return
	}

	updated, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to toggle check")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated)
}

// ListChecks returns the registered detection checks with their enabled flag
func (h *SettingsHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to get detection settings")
		return
	}

	checks := h.registry.All()
	dtos := make([]dto.CheckDTO, len(checks))
	for i, c := range checks {
		dtos[i] = dto.CheckFromModel(c, s.IsCheckEnabled(c.ID))
	}

	utils.WriteSuccess(w, http.StatusOK, dtos)
}
