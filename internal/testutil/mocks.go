package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/anomaly"
	"github.com/utilaudit/utilaudit/internal/domain/budget"
	"github.com/utilaudit/utilaudit/internal/domain/notification"
	"github.com/utilaudit/utilaudit/internal/domain/record"
	"github.com/utilaudit/utilaudit/internal/domain/reference"
	"github.com/utilaudit/utilaudit/internal/domain/settings"
)

// MockCostRecordRepository is an in-memory implementation of record.Repository
type MockCostRecordRepository struct {
	Records     map[string]*record.CostRecord
	CreateError error
	GetError    error
}

func NewMockCostRecordRepository() *MockCostRecordRepository {
	return &MockCostRecordRepository{
		Records: make(map[string]*record.CostRecord),
	}
}

func (m *MockCostRecordRepository) Create(ctx context.Context, r *record.CostRecord) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	r.CreatedAt = time.Now().UTC()
	m.Records[r.ID] = r
	return nil
}

func (m *MockCostRecordRepository) GetByID(ctx context.Context, id string) (*record.CostRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	r, ok := m.Records[id]
	if !ok {
		return nil, fmt.Errorf("cost record not found")
	}
	return r, nil
}

func (m *MockCostRecordRepository) List(ctx context.Context, filter record.Filter, limit, offset int) ([]*record.CostRecord, int64, error) {
	var result []*record.CostRecord
	for _, r := range m.Records {
		if filter.SupplierID != "" && r.SupplierID != filter.SupplierID {
			continue
		}
		if filter.LocationID != "" && r.LocationID != filter.LocationID {
			continue
		}
		if filter.CostType != "" && string(r.CostType) != filter.CostType {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodStart.After(result[j].PeriodStart)
	})
	return result, int64(len(result)), nil
}

func (m *MockCostRecordRepository) ListHistory(ctx context.Context, supplierID string, costType detector.CostType, before time.Time, months int, excludeID string) ([]*record.CostRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	cutoff := before.AddDate(0, -months, 0)
	var result []*record.CostRecord
	for _, r := range m.Records {
		if r.ID == excludeID || r.SupplierID != supplierID || r.CostType != costType {
			continue
		}
		if r.PeriodStart.Before(cutoff) || !r.PeriodStart.Before(before) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodStart.After(result[j].PeriodStart)
	})
	return result, nil
}

// MockAnomalyRepository is an in-memory implementation of anomaly.Repository
type MockAnomalyRepository struct {
	Anomalies   map[string]*anomaly.Anomaly
	CreateError error
}

func NewMockAnomalyRepository() *MockAnomalyRepository {
	return &MockAnomalyRepository{
		Anomalies: make(map[string]*anomaly.Anomaly),
	}
}

func (m *MockAnomalyRepository) Create(ctx context.Context, a *anomaly.Anomaly) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, existing := range m.Anomalies {
		if existing.CostRecordID == a.CostRecordID && existing.Type == a.Type {
			return anomaly.ErrDuplicate
		}
	}
	a.CreatedAt = time.Now().UTC()
	m.Anomalies[a.ID] = a
	return nil
}

func (m *MockAnomalyRepository) GetByID(ctx context.Context, id string) (*anomaly.Anomaly, error) {
	a, ok := m.Anomalies[id]
	if !ok {
		return nil, fmt.Errorf("anomaly not found")
	}
	return a, nil
}

func (m *MockAnomalyRepository) Update(ctx context.Context, a *anomaly.Anomaly) error {
	if _, ok := m.Anomalies[a.ID]; !ok {
		return fmt.Errorf("anomaly not found")
	}
	m.Anomalies[a.ID] = a
	return nil
}

func (m *MockAnomalyRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.Anomalies[id]; !ok {
		return fmt.Errorf("anomaly not found")
	}
	delete(m.Anomalies, id)
	return nil
}

func (m *MockAnomalyRepository) List(ctx context.Context, filter anomaly.Filter, limit, offset int) ([]*anomaly.Anomaly, int64, error) {
	var result []*anomaly.Anomaly
	for _, a := range m.Anomalies {
		if filter.CostRecordID != "" && a.CostRecordID != filter.CostRecordID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Severity != "" && string(a.Severity) != filter.Severity {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.IsBackfill != nil && a.IsBackfill != *filter.IsBackfill {
			continue
		}
		result = append(result, a)
	}
	return result, int64(len(result)), nil
}

func (m *MockAnomalyRepository) CountBySeverity(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, a := range m.Anomalies {
		counts[string(a.Severity)]++
	}
	return counts, nil
}

// MockBudgetRepository is an in-memory implementation of budget.Repository
type MockBudgetRepository struct {
	Budgets map[string]*budget.Budget
}

func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[string]*budget.Budget),
	}
}

func (m *MockBudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	m.Budgets[b.ID] = b
	return nil
}

func (m *MockBudgetRepository) Update(ctx context.Context, b *budget.Budget) error {
	if _, ok := m.Budgets[b.ID]; !ok {
		return fmt.Errorf("budget not found")
	}
	m.Budgets[b.ID] = b
	return nil
}

func (m *MockBudgetRepository) Delete(ctx context.Context, id string) error {
	delete(m.Budgets, id)
	return nil
}

func (m *MockBudgetRepository) List(ctx context.Context) ([]*budget.Budget, error) {
	var result []*budget.Budget
	for _, b := range m.Budgets {
		result = append(result, b)
	}
	return result, nil
}

func (m *MockBudgetRepository) FindForPeriod(ctx context.Context, costType detector.CostType, year, month int) (*budget.Budget, error) {
	var yearly *budget.Budget
	for _, b := range m.Budgets {
		if b.CostType != costType || b.Year != year {
			continue
		}
		if b.Month == month {
			return b, nil
		}
		if b.Month == 0 {
			yearly = b
		}
	}
	return yearly, nil
}

// MockReferenceRepository is an in-memory implementation of reference.Repository
type MockReferenceRepository struct {
	Locations map[string]*reference.Location
	Suppliers map[string]*reference.Supplier
	Contracts []*reference.Contract
}

func NewMockReferenceRepository() *MockReferenceRepository {
	return &MockReferenceRepository{
		Locations: make(map[string]*reference.Location),
		Suppliers: make(map[string]*reference.Supplier),
	}
}

func (m *MockReferenceRepository) GetLocation(ctx context.Context, id string) (*reference.Location, error) {
	l, ok := m.Locations[id]
	if !ok {
		return nil, fmt.Errorf("location not found")
	}
	return l, nil
}

func (m *MockReferenceRepository) GetSupplier(ctx context.Context, id string) (*reference.Supplier, error) {
	s, ok := m.Suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier not found")
	}
	return s, nil
}

func (m *MockReferenceRepository) FindContract(ctx context.Context, supplierID string, at time.Time) (*reference.Contract, error) {
	for _, c := range m.Contracts {
		if c.SupplierID == supplierID && !at.Before(c.ValidFrom) && !at.After(c.ValidTo) {
			return c, nil
		}
	}
	return nil, nil
}

// MockSettingsRepository is an in-memory implementation of settings.Repository
type MockSettingsRepository struct {
	Stored    *settings.Stored
	SaveError error
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*settings.Stored, error) {
	if m.Stored == nil {
		return nil, settings.ErrNotFound
	}
	return m.Stored, nil
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *settings.Stored) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Stored = s
	return nil
}

// MockNotificationRepository is an in-memory implementation of notification.Repository
type MockNotificationRepository struct {
	Entries []*notification.Entry
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, e *notification.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MockNotificationRepository) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	for _, e := range m.Entries {
		if e.Status == notification.StatusSent && !e.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) ListQueued(ctx context.Context) ([]*notification.Entry, error) {
	var result []*notification.Entry
	for _, e := range m.Entries {
		if e.Status == notification.StatusQueued {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) MarkSent(ctx context.Context, ids []string, sentAt time.Time) error {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	for _, e := range m.Entries {
		if idSet[e.ID] {
			e.Status = notification.StatusSent
			at := sentAt
			e.SentAt = &at
		}
	}
	return nil
}

// MockNotifier records the alerts handed to it.
type MockNotifier struct {
	Sent      []*anomaly.Anomaly
	Digests   [][]*anomaly.Anomaly
	SendError error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Send(ctx context.Context, a *anomaly.Anomaly) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.Sent = append(m.Sent, a)
	return nil
}

func (m *MockNotifier) SendDigest(ctx context.Context, anomalies []*anomaly.Anomaly) error {
	if m.SendError != nil {
		return m.SendError
	}
	m.Digests = append(m.Digests, anomalies)
	return nil
}
