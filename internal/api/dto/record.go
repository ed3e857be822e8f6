package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/record"
)

// IngestRecordRequest is the payload for submitting a cost record.
type IngestRecordRequest struct {
	LocationID    string `json:"location_id" validate:"required"`
	SupplierID    string `json:"supplier_id" validate:"required"`
	CostType      string `json:"cost_type" validate:"required,oneof=electricity gas water heating district_heating fuels telecom insurance rent waste maintenance other"`
	Amount        string `json:"amount" validate:"required"`
	Quantity      string `json:"quantity,omitempty"`
	Unit          string `json:"unit,omitempty"`
	PricePerUnit  string `json:"price_per_unit,omitempty"`
	PeriodStart   string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd     string `json:"period_end" validate:"required,datetime=2006-01-02"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}

// ToRecord converts the request into a domain cost record. Decimal and date
// fields have already passed validation.
func (req *IngestRecordRequest) ToRecord() (*record.CostRecord, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, err
	}

	rec := &record.CostRecord{
		LocationID:    req.LocationID,
		SupplierID:    req.SupplierID,
		CostType:      detector.CostType(req.CostType),
		Amount:        amount,
		Unit:          req.Unit,
		InvoiceNumber: req.InvoiceNumber,
	}

	if req.Quantity != "" {
		q, err := decimal.NewFromString(req.Quantity)
		if err != nil {
			return nil, err
		}
		rec.Quantity = &q
	}
	if req.PricePerUnit != "" {
		p, err := decimal.NewFromString(req.PricePerUnit)
		if err != nil {
			return nil, err
		}
		rec.PricePerUnit = &p
	}

	if rec.PeriodStart, err = time.Parse("2006-01-02", req.PeriodStart); err != nil {
		return nil, err
	}
	if rec.PeriodEnd, err = time.Parse("2006-01-02", req.PeriodEnd); err != nil {
		return nil, err
	}

	return rec, nil
}

// BackfillRequest is the payload for importing a batch of historical records.
type BackfillRequest struct {
	Records []IngestRecordRequest `json:"records" validate:"required,min=1,dive"`
}

// BackfillResponse summarizes a backfill run.
type BackfillResponse struct {
	Imported  int `json:"imported"`
	Failed    int `json:"failed"`
	Anomalies int `json:"anomalies"`
}

// DetectionResponse is the outcome of running detection for one record.
type DetectionResponse struct {
	RecordID  string          `json:"record_id"`
	Anomalies []AnomalyDTO    `json:"anomalies"`
	Checks    []CheckTraceDTO `json:"checks"`
}

// CheckTraceDTO reports what happened to one check during a run.
type CheckTraceDTO struct {
	CheckID    string `json:"check_id"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skip_reason,omitempty"`
	Triggered  bool   `json:"triggered"`
}
