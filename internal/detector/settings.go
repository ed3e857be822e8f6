package detector

// Thresholds holds the numeric trigger thresholds, configured externally.
// All percent values are whole percentages (20 means 20%).
type Thresholds struct {
	YoYDeviationPercent          float64 `json:"yoy_deviation_percent" yaml:"yoy_deviation_percent" validate:"gt=0"`
	MoMDeviationPercent          float64 `json:"mom_deviation_percent" yaml:"mom_deviation_percent" validate:"gt=0"`
	PricePerUnitDeviationPercent float64 `json:"price_per_unit_deviation_percent" yaml:"price_per_unit_deviation_percent" validate:"gt=0"`
	ZScoreThreshold              float64 `json:"z_score_threshold" yaml:"z_score_threshold" validate:"gt=0"`
	BudgetExceededPercent        float64 `json:"budget_exceeded_percent" yaml:"budget_exceeded_percent" validate:"gt=0"`
}

// Settings is the immutable-per-run detection configuration.
type Settings struct {
	Thresholds      Thresholds `json:"alert_thresholds" yaml:"alert_thresholds"`
	EnabledChecks   []string   `json:"enabled_checks" yaml:"enabled_checks"`
	MaxAlertsPerDay int        `json:"max_alerts_per_day" yaml:"max_alerts_per_day" validate:"gte=0"`
	DigestEnabled   bool       `json:"digest_enabled" yaml:"digest_enabled"`
	DigestHour      int        `json:"digest_hour" yaml:"digest_hour" validate:"gte=0,lte=23"`
}

// ThresholdsPatch is a partial thresholds update; nil fields are preserved.
type ThresholdsPatch struct {
	YoYDeviationPercent          *float64 `json:"yoy_deviation_percent,omitempty"`
	MoMDeviationPercent          *float64 `json:"mom_deviation_percent,omitempty"`
	PricePerUnitDeviationPercent *float64 `json:"price_per_unit_deviation_percent,omitempty"`
	ZScoreThreshold              *float64 `json:"z_score_threshold,omitempty"`
	BudgetExceededPercent        *float64 `json:"budget_exceeded_percent,omitempty"`
}

// SettingsPatch is a partial settings update. Top-level fields are merged
// shallowly, Thresholds is merged field by field.
type SettingsPatch struct {
	Thresholds      *ThresholdsPatch `json:"alert_thresholds,omitempty"`
	EnabledChecks   *[]string        `json:"enabled_checks,omitempty"`
	MaxAlertsPerDay *int             `json:"max_alerts_per_day,omitempty"`
	DigestEnabled   *bool            `json:"digest_enabled,omitempty"`
	DigestHour      *int             `json:"digest_hour,omitempty"`
}

// DefaultSettings returns the process-wide defaults: all eight checks
// enabled, yoy 20%, mom 30%, price-per-unit 10%, z-score 2.0, budget 10%.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: Thresholds{
			YoYDeviationPercent:          20,
			MoMDeviationPercent:          30,
			PricePerUnitDeviationPercent: 10,
			ZScoreThreshold:              2.0,
			BudgetExceededPercent:        10,
		},
		EnabledChecks:   AllCheckIDs(),
		MaxAlertsPerDay: 50,
		DigestEnabled:   false,
		DigestHour:      8,
	}
}

// Merge applies a patch and returns the merged settings. Fields absent from
// the patch keep their current value.
func (s Settings) Merge(patch SettingsPatch) Settings {
	out := s
	out.EnabledChecks = append([]string(nil), s.EnabledChecks...)

	if patch.EnabledChecks != nil {
		out.EnabledChecks = append([]string(nil), (*patch.EnabledChecks)...)
	}
	if patch.MaxAlertsPerDay != nil {
		out.MaxAlertsPerDay = *patch.MaxAlertsPerDay
	}
	if patch.DigestEnabled != nil {
		out.DigestEnabled = *patch.DigestEnabled
	}
	if patch.DigestHour != nil {
		out.DigestHour = *patch.DigestHour
	}
	if t := patch.Thresholds; t != nil {
		if t.YoYDeviationPercent != nil {
			out.Thresholds.YoYDeviationPercent = *t.YoYDeviationPercent
		}
		if t.MoMDeviationPercent != nil {
			out.Thresholds.MoMDeviationPercent = *t.MoMDeviationPercent
		}
		if t.PricePerUnitDeviationPercent != nil {
			out.Thresholds.PricePerUnitDeviationPercent = *t.PricePerUnitDeviationPercent
		}
		if t.ZScoreThreshold != nil {
			out.Thresholds.ZScoreThreshold = *t.ZScoreThreshold
		}
		if t.BudgetExceededPercent != nil {
			out.Thresholds.BudgetExceededPercent = *t.BudgetExceededPercent
		}
	}
	return out
}

// WithCheckEnabled returns settings with the check id present in the enabled
// list. Adding an already enabled id is a no-op.
func (s Settings) WithCheckEnabled(id string) Settings {
	out := s
	out.EnabledChecks = append([]string(nil), s.EnabledChecks...)
	for _, c := range out.EnabledChecks {
		if c == id {
			return out
		}
	}
	out.EnabledChecks = append(out.EnabledChecks, id)
	return out
}

// WithCheckDisabled returns settings with the check id removed from the
// enabled list. Removing an absent id is a no-op.
func (s Settings) WithCheckDisabled(id string) Settings {
	out := s
	out.EnabledChecks = make([]string, 0, len(s.EnabledChecks))
	for _, c := range s.EnabledChecks {
		if c != id {
			out.EnabledChecks = append(out.EnabledChecks, c)
		}
	}
	return out
}

// IsCheckEnabled reports whether the check id is in the enabled list.
func (s Settings) IsCheckEnabled(id string) bool {
	for _, c := range s.EnabledChecks {
		if c == id {
			return true
		}
	}
	return false
}
