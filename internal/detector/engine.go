package detector

import (
	"fmt"
	"sync"
	"time"

	"github.com/utilaudit/utilaudit/internal/pkg/logger"
)

// Engine orchestrates check selection, historical-sufficiency gating,
// isolated check execution and anomaly assembly. A single engine instance may
// serve concurrent Detect calls; settings mutations are applied atomically
// between snapshots.
type Engine struct {
	registry *Registry
	logger   *logger.Logger

	mu       sync.RWMutex
	settings Settings
}

// NewEngine creates an engine with the default registry and the given
// settings.
func NewEngine(settings Settings, log *logger.Logger) *Engine {
	return &Engine{
		registry: NewRegistry(),
		logger:   log,
		settings: settings,
	}
}

// Registry exposes the engine's check table, e.g. for listing endpoints.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Settings returns a snapshot of the current settings.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings merges the patch into the engine's settings. The context
// passed to in-flight checks is never touched; only future Detect calls see
// the new snapshot.
func (e *Engine) UpdateSettings(patch SettingsPatch) Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = e.settings.Merge(patch)
	return e.settings
}

// ReplaceSettings swaps in a full settings value, e.g. on configuration
// reload.
func (e *Engine) ReplaceSettings(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
}

// EnableCheck adds a check id to the enabled set. Idempotent.
func (e *Engine) EnableCheck(id string) Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = e.settings.WithCheckEnabled(id)
	return e.settings
}

// DisableCheck removes a check id from the enabled set. Idempotent.
func (e *Engine) DisableCheck(id string) Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = e.settings.WithCheckDisabled(id)
	return e.settings
}

// Detect evaluates the record against every applicable check and returns the
// triggered anomalies plus a per-check diagnostic trace. A failing check is
// recorded as skipped and never aborts its siblings; Detect itself never
// returns an error.
func (e *Engine) Detect(record CostRecordToCheck, ctx *CheckContext, opts DetectOptions) DetectionResult {
	settings := e.Settings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}

	// Checks read thresholds from the context; give them the same snapshot
	// used for selection without touching the caller's struct.
	snapshot := *ctx
	snapshot.Settings = settings
	ctx = &snapshot

	result := DetectionResult{
		CostRecordID: record.ID,
		Anomalies:    []DetectedAnomaly{},
		CheckResults: []CheckTrace{},
		IsBackfill:   opts.IsBackfill,
	}

	months := HistoricalMonths(ctx.HistoricalRecords)

	for _, check := range e.registry.ChecksToRun(settings, opts.CheckIDs, record.CostType) {
		trace := CheckTrace{CheckID: check.ID, CheckName: check.Name}

		if check.MinHistoricalMonths > 0 && months < check.MinHistoricalMonths {
			trace.Skipped = true
			trace.SkipReason = "insufficient historical data"
			result.CheckResults = append(result.CheckResults, trace)
			continue
		}

		res, err := runCheck(check, record, ctx)
		if err != nil {
			e.logger.WithFields(map[string]interface{}{
				"check_id":       check.ID,
				"cost_record_id": record.ID,
				"error":          err.Error(),
			}).Error("Anomaly check failed")
			trace.Skipped = true
			trace.SkipReason = fmt.Sprintf("check failed: %s", err.Error())
			result.CheckResults = append(result.CheckResults, trace)
			continue
		}

		trace.Result = &res
		result.CheckResults = append(result.CheckResults, trace)

		if res.Triggered && res.Severity != "" && res.Message != "" {
			details := res.Details
			if details == nil {
				details = map[string]any{}
			}
			result.Anomalies = append(result.Anomalies, DetectedAnomaly{
				CostRecordID: record.ID,
				Type:         check.ID,
				Severity:     res.Severity,
				Message:      res.Message,
				Details:      details,
				IsBackfill:   opts.IsBackfill,
			})
		}
	}

	return result
}

// runCheck executes one check with panic isolation. Panics are converted to
// errors so a misbehaving rule degrades to a skipped trace entry.
func runCheck(check Check, record CostRecordToCheck, ctx *CheckContext) (res CheckResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = CheckResult{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return check.Run(record, ctx)
}

// HistoricalMonths derives a coarse month count from the min/max periodStart
// span divided by 30 days. The span-based formula undercounts sparse or
// irregular billing; check gating thresholds are calibrated to it.
func HistoricalMonths(records []HistoricalCostRecord) int {
	if len(records) == 0 {
		return 0
	}
	min, max := records[0].PeriodStart, records[0].PeriodStart
	for _, r := range records[1:] {
		if r.PeriodStart.Before(min) {
			min = r.PeriodStart
		}
		if r.PeriodStart.After(max) {
			max = r.PeriodStart
		}
	}
	return int(max.Sub(min) / (30 * 24 * time.Hour))
}
