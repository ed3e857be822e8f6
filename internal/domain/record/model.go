package record

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// CostRecord is a persisted utility invoice line item.
type CostRecord struct {
	ID            string            `json:"id"`
	LocationID    string            `json:"location_id"`
	SupplierID    string            `json:"supplier_id"`
	CostType      detector.CostType `json:"cost_type"`
	Amount        decimal.Decimal   `json:"amount"`
	Quantity      *decimal.Decimal  `json:"quantity,omitempty"`
	Unit          string            `json:"unit,omitempty"`
	PricePerUnit  *decimal.Decimal  `json:"price_per_unit,omitempty"`
	PeriodStart   time.Time         `json:"period_start"`
	PeriodEnd     time.Time         `json:"period_end"`
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
}

// ToCheckRecord projects the record into the engine's input type.
func (r *CostRecord) ToCheckRecord() detector.CostRecordToCheck {
	return detector.CostRecordToCheck{
		ID:            r.ID,
		LocationID:    r.LocationID,
		SupplierID:    r.SupplierID,
		CostType:      r.CostType,
		Amount:        r.Amount,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		PricePerUnit:  r.PricePerUnit,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		InvoiceNumber: r.InvoiceNumber,
	}
}

// ToHistorical projects the record into the engine's comparison type.
func (r *CostRecord) ToHistorical() detector.HistoricalCostRecord {
	return detector.HistoricalCostRecord{
		ID:            r.ID,
		CostType:      r.CostType,
		Amount:        r.Amount,
		Quantity:      r.Quantity,
		Unit:          r.Unit,
		PricePerUnit:  r.PricePerUnit,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		SupplierID:    r.SupplierID,
		InvoiceNumber: r.InvoiceNumber,
	}
}

// Filter contains cost record query filters
type Filter struct {
	LocationID string
	SupplierID string
	CostType   string
	StartDate  *time.Time
	EndDate    *time.Time
}
