package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/domain/budget"
	"github.com/utilaudit/utilaudit/internal/domain/record"
	"github.com/utilaudit/utilaudit/internal/domain/reference"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
	"github.com/utilaudit/utilaudit/internal/pkg/metrics"
)

// DetectionService builds the check context for a cost record, runs the
// engine and persists the outcome. It is the only component that performs
// I/O around a detection run; the engine itself stays pure.
type DetectionService struct {
	engine        *detector.Engine
	records       record.Repository
	anomalies     anomaly.Repository
	budgets       budget.Repository
	refs          reference.Repository
	alerts        *AlertService
	historyMonths int
	logger        *logger.Logger
}

// NewDetectionService creates a new detection service. historyMonths bounds
// how far back the historical context reaches.
func NewDetectionService(
	engine *detector.Engine,
	records record.Repository,
	anomalies anomaly.Repository,
	budgets budget.Repository,
	refs reference.Repository,
	alerts *AlertService,
	historyMonths int,
	log *logger.Logger,
) *DetectionService {
	return &DetectionService{
		engine:        engine,
		records:       records,
		anomalies:     anomalies,
		budgets:       budgets,
		refs:          refs,
		alerts:        alerts,
		historyMonths: historyMonths,
		logger:        log,
	}
}

// IngestAndDetect persists a new cost record and runs detection on it.
func (s *DetectionService) IngestAndDetect(ctx context.Context, rec *record.CostRecord, isBackfill bool) (*detector.DetectionResult, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return s.DetectForRecord(ctx, rec, isBackfill)
}

// DetectForRecord runs detection for an already persisted record: builds the
// context from storage, invokes the engine, stores the anomalies and routes
// non-backfill findings to the alert service.
func (s *DetectionService) DetectForRecord(ctx context.Context, rec *record.CostRecord, isBackfill bool) (*detector.DetectionResult, error) {
	checkCtx, err := s.buildContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.engine.Detect(rec.ToCheckRecord(), checkCtx, detector.DetectOptions{IsBackfill: isBackfill})
	metrics.RecordDetectionRun(time.Since(start))

	for _, trace := range result.CheckResults {
		if trace.Skipped {
			metrics.RecordCheckSkipped(trace.CheckID)
		}
	}

	stored := s.persistAnomalies(ctx, result.Anomalies)

	s.logger.WithFields(map[string]interface{}{
		"cost_record_id": rec.ID,
		"cost_type":      rec.CostType,
		"anomalies":      len(result.Anomalies),
		"checks_run":     len(result.CheckResults),
		"is_backfill":    isBackfill,
	}).Info("Detection completed")

	if !isBackfill && len(stored) > 0 {
		s.alerts.Dispatch(ctx, stored)
	}

	return &result, nil
}

// buildContext assembles the immutable snapshot a detection call evaluates
// against. Missing reference data degrades to bare descriptors; a failing
// history query aborts, since every check depends on it.
func (s *DetectionService) buildContext(ctx context.Context, rec *record.CostRecord) (*detector.CheckContext, error) {
	history, err := s.records.ListHistory(ctx, rec.SupplierID, rec.CostType, rec.PeriodStart, s.historyMonths, rec.ID)
	if err != nil {
		return nil, err
	}

	historical := make([]detector.HistoricalCostRecord, len(history))
	for i, h := range history {
		historical[i] = h.ToHistorical()
	}

	checkCtx := &detector.CheckContext{
		Location:          detector.LocationContext{ID: rec.LocationID},
		Supplier:          detector.SupplierContext{ID: rec.SupplierID},
		HistoricalRecords: historical,
	}

	if loc, err := s.refs.GetLocation(ctx, rec.LocationID); err == nil && loc != nil {
		checkCtx.Location = loc.ToLocationContext()
	}
	if sup, err := s.refs.GetSupplier(ctx, rec.SupplierID); err == nil && sup != nil {
		checkCtx.Supplier = sup.ToSupplierContext()
	}
	if contract, err := s.refs.FindContract(ctx, rec.SupplierID, rec.PeriodStart); err == nil && contract != nil {
		checkCtx.Contract = contract.ToContractContext()
	}

	b, err := s.budgets.FindForPeriod(ctx, rec.CostType, rec.PeriodStart.Year(), int(rec.PeriodStart.Month()))
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to load budget for detection context")
	} else if b != nil {
		checkCtx.Budget = b.ToContext()
	}

	return checkCtx, nil
}

// persistAnomalies stores the detected anomalies and returns the rows that
// were actually inserted. Duplicates per (record, type) are skipped silently;
// the unique constraint makes re-detection idempotent.
func (s *DetectionService) persistAnomalies(ctx context.Context, detected []detector.DetectedAnomaly) []*anomaly.Anomaly {
	var stored []*anomaly.Anomaly
	now := time.Now().UTC()

	for _, d := range detected {
		a, err := anomaly.FromDetected(d, now)
		if err != nil {
			s.logger.ErrorWithErr(err, "Failed to encode anomaly details")
			continue
		}
		a.ID = uuid.New().String()

		if err := s.anomalies.Create(ctx, a); err != nil {
			if errors.Is(err, anomaly.ErrDuplicate) {
				s.logger.WithFields(map[string]interface{}{
					"cost_record_id": a.CostRecordID,
					"type":           a.Type,
				}).Debug("Anomaly already recorded, skipping")
				continue
			}
			s.logger.ErrorWithErr(err, "Failed to store anomaly")
			continue
		}

		metrics.RecordAnomaly(a.Type, string(a.Severity))
		stored = append(stored, a)
	}
	return stored
}
