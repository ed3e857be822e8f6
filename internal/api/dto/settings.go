package dto

import "github.com/utilaudit/utilaudit/internal/detector"

// UpdateSettingsRequest is a partial detection settings update. Absent fields
// keep their current values; threshold fields merge individually.
type UpdateSettingsRequest struct {
	Thresholds      *ThresholdsPatchDTO `json:"alert_thresholds,omitempty"`
	EnabledChecks   *[]string           `json:"enabled_checks,omitempty"`
	MaxAlertsPerDay *int                `json:"max_alerts_per_day,omitempty" validate:"omitempty,gte=0"`
	DigestEnabled   *bool               `json:"digest_enabled,omitempty"`
	DigestHour      *int                `json:"digest_hour,omitempty" validate:"omitempty,gte=0,lte=23"`
}

// ThresholdsPatchDTO is a partial thresholds update.
type ThresholdsPatchDTO struct {
	YoYDeviationPercent          *float64 `json:"yoy_deviation_percent,omitempty" validate:"omitempty,gt=0"`
	MoMDeviationPercent          *float64 `json:"mom_deviation_percent,omitempty" validate:"omitempty,gt=0"`
	PricePerUnitDeviationPercent *float64 `json:"price_per_unit_deviation_percent,omitempty" validate:"omitempty,gt=0"`
	ZScoreThreshold              *float64 `json:"z_score_threshold,omitempty" validate:"omitempty,gt=0"`
	BudgetExceededPercent        *float64 `json:"budget_exceeded_percent,omitempty" validate:"omitempty,gt=0"`
}

// ToPatch converts the request into the engine's patch type.
func (req *UpdateSettingsRequest) ToPatch() detector.SettingsPatch {
	patch := detector.SettingsPatch{
		EnabledChecks:   req.EnabledChecks,
		MaxAlertsPerDay: req.MaxAlertsPerDay,
		DigestEnabled:   req.DigestEnabled,
		DigestHour:      req.DigestHour,
	}
	if req.Thresholds != nil {
		patch.Thresholds = &detector.ThresholdsPatch{
			YoYDeviationPercent:          req.Thresholds.YoYDeviationPercent,
			MoMDeviationPercent:          req.Thresholds.MoMDeviationPercent,
			PricePerUnitDeviationPercent: req.Thresholds.PricePerUnitDeviationPercent,
			ZScoreThreshold:              req.Thresholds.ZScoreThreshold,
			BudgetExceededPercent:        req.Thresholds.BudgetExceededPercent,
		}
	}
	return patch
}

// CheckDTO describes one registered detection check.
type CheckDTO struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	ApplicableCostTypes []string `json:"applicable_cost_types,omitempty"`
	MinHistoricalMonths int      `json:"min_historical_months,omitempty"`
	Enabled             bool     `json:"enabled"`
}

// CheckFromModel converts a registered check to its DTO.
func CheckFromModel(c detector.Check, enabled bool) CheckDTO {
	types := make([]string, len(c.ApplicableCostTypes))
	for i, t := range c.ApplicableCostTypes {
		types[i] = string(t)
	}
	return CheckDTO{
		ID:                  c.ID,
		Name:                c.Name,
		Description:         c.Description,
		ApplicableCostTypes: types,
		MinHistoricalMonths: c.MinHistoricalMonths,
		Enabled:             enabled,
	}
}
