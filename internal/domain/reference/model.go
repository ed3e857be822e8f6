package reference

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utilaudit/utilaudit/internal/detector"
)

// Location is a site (building, branch) that receives utility invoices.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	AreaSqm   *int      `json:"area_sqm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Supplier is a utility vendor.
type Supplier struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CostType  detector.CostType `json:"cost_type,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Contract is a supply agreement with price/quantity bounds.
type Contract struct {
	ID          string            `json:"id"`
	SupplierID  string            `json:"supplier_id"`
	LocationID  string            `json:"location_id,omitempty"`
	CostType    detector.CostType `json:"cost_type"`
	MinPrice    *decimal.Decimal  `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal  `json:"max_price,omitempty"`
	MinQuantity *decimal.Decimal  `json:"min_quantity,omitempty"`
	MaxQuantity *decimal.Decimal  `json:"max_quantity,omitempty"`
	ValidFrom   time.Time         `json:"valid_from"`
	ValidTo     time.Time         `json:"valid_to"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToLocationContext projects the location into the engine's context type.
func (l *Location) ToLocationContext() detector.LocationContext {
	return detector.LocationContext{
		ID:      l.ID,
		Name:    l.Name,
		Address: l.Address,
		AreaSqm: l.AreaSqm,
	}
}

// ToSupplierContext projects the supplier into the engine's context type.
func (s *Supplier) ToSupplierContext() detector.SupplierContext {
	return detector.SupplierContext{
		ID:       s.ID,
		Name:     s.Name,
		CostType: s.CostType,
	}
}

// ToContractContext projects the contract into the engine's context type.
func (c *Contract) ToContractContext() *detector.ContractContext {
	return &detector.ContractContext{
		ID:          c.ID,
		MinPrice:    c.MinPrice,
		MaxPrice:    c.MaxPrice,
		MinQuantity: c.MinQuantity,
		MaxQuantity: c.MaxQuantity,
		ValidFrom:   c.ValidFrom,
		ValidTo:     c.ValidTo,
	}
}
