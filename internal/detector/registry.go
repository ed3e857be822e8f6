package detector

// Check ids, stable across releases since they are persisted as anomaly types.
const (
	CheckYoYDeviation       = "yoy_deviation"
	CheckMoMDeviation       = "mom_deviation"
	CheckPricePerUnitSpike  = "price_per_unit_spike"
	CheckStatisticalOutlier = "statistical_outlier"
	CheckDuplicateDetection = "duplicate_detection"
	CheckMissingPeriod      = "missing_period"
	CheckSeasonalAnomaly    = "seasonal_anomaly"
	CheckBudgetExceeded     = "budget_exceeded"
)

// CheckFunc evaluates one record against its context. Implementations must be
// pure: no mutation of record or ctx, no clock or randomness. A returned
// error marks the check as failed for this record only.
type CheckFunc func(record CostRecordToCheck, ctx *CheckContext) (CheckResult, error)

// Check is a self-contained detection rule, registered once at process start
// and reused across all calls.
type Check struct {
	ID          string
	Name        string
	Description string
	// ApplicableCostTypes restricts the check to a set of cost types; empty
	// means the check applies to all cost types.
	ApplicableCostTypes []CostType
	// MinHistoricalMonths gates the check on the coarse month span of the
	// historical set; zero means no gate.
	MinHistoricalMonths int
	Run                 CheckFunc
}

// AppliesTo reports whether the check runs for the given cost type.
func (c Check) AppliesTo(t CostType) bool {
	if len(c.ApplicableCostTypes) == 0 {
		return true
	}
	for _, ct := range c.ApplicableCostTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// Registry is the fixed, ordered table of all registered checks. The check
// set is closed and versioned with the engine; no runtime plugins.
type Registry struct {
	checks []Check
	byID   map[string]int
}

// NewRegistry builds the default registry with all eight checks in their
// canonical order.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]int)}
	for _, c := range []Check{
		yoyDeviationCheck(),
		momDeviationCheck(),
		pricePerUnitSpikeCheck(),
		statisticalOutlierCheck(),
		duplicateDetectionCheck(),
		missingPeriodCheck(),
		seasonalAnomalyCheck(),
		budgetExceededCheck(),
	} {
		r.register(c)
	}
	return r
}

func (r *Registry) register(c Check) {
	r.byID[c.ID] = len(r.checks)
	r.checks = append(r.checks, c)
}

// All returns every registered check in registration order.
func (r *Registry) All() []Check {
	return append([]Check(nil), r.checks...)
}

// Get looks up a check by id.
func (r *Registry) Get(id string) (Check, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Check{}, false
	}
	return r.checks[i], true
}

// ChecksToRun selects the checks for one detection call: enabled set first,
// intersected with the explicit id filter when given, then narrowed to checks
// applicable to the record's cost type. Registration order is preserved.
func (r *Registry) ChecksToRun(settings Settings, checkIDs []string, costType CostType) []Check {
	filter := make(map[string]bool, len(checkIDs))
	for _, id := range checkIDs {
		filter[id] = true
	}

	var selected []Check
	for _, c := range r.checks {
		if !settings.IsCheckEnabled(c.ID) {
			continue
		}
		if len(checkIDs) > 0 && !filter[c.ID] {
			continue
		}
		if !c.AppliesTo(costType) {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

// AllCheckIDs lists every check id in registration order.
func AllCheckIDs() []string {
	return []string{
		CheckYoYDeviation,
		CheckMoMDeviation,
		CheckPricePerUnitSpike,
		CheckStatisticalOutlier,
		CheckDuplicateDetection,
		CheckMissingPeriod,
		CheckSeasonalAnomaly,
		CheckBudgetExceeded,
	}
}
