package services

import (
	"context"
	"fmt"

	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/pkg/logger"
)

// AnomalyService implements anomaly.Service
type AnomalyService struct {
	repo   anomaly.Repository
	logger *logger.Logger
}

// NewAnomalyService creates a new anomaly service
func NewAnomalyService(repo anomaly.Repository, log *logger.Logger) anomaly.Service {
	return &AnomalyService{
		repo:   repo,
		logger: log,
	}
}

// GetByID retrieves an anomaly by ID
func (s *AnomalyService) GetByID(ctx context.Context, id string) (*anomaly.Anomaly, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves anomalies with filters and pagination
func (s *AnomalyService) List(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]*anomaly.Anomaly, int64, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateStatus transitions an anomaly to a new lifecycle status
func (s *AnomalyService) UpdateStatus(ctx context.Context, id string, status string) error {
	if !anomaly.ValidStatus(status) {
		return fmt.Errorf("invalid anomaly status: %s", status)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update anomaly status")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"anomaly_id": id,
		"status":     status,
	}).Info("Anomaly status updated")

	return nil
}

// Delete deletes an anomaly record
func (s *AnomalyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorWithErr(err, "Failed to delete anomaly")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"anomaly_id": id,
	}).Info("Anomaly deleted")

	return nil
}

// GetSummary gets anomaly counts by severity
func (s *AnomalyService) GetSummary(ctx context.Context) (map[string]int, error) {
	return s.repo.CountBySeverity(ctx)
}
