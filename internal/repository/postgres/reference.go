package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/reference"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

type ReferenceRepository struct {
	db *DB
}

func NewReferenceRepository(db *DB) reference.Repository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) GetLocation(ctx context.Context, id string) (*reference.Location, error) {
	query := r.db.rebind(`SELECT id, name, address, area_sqm, created_at FROM locations WHERE id = ?`)

	var (
		loc     reference.Location
		address sql.NullString
		areaSqm sql.NullInt64
		created string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&loc.ID, &loc.Name, &address, &areaSqm, &created)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Location")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get location", err)
	}

	loc.Address = address.String
	if areaSqm.Valid {
		v := int(areaSqm.Int64)
		loc.AreaSqm = &v
	}
	if loc.CreatedAt, err = parseTime(created); err != nil {
		return nil, errors.DatabaseError("Failed to scan location", err)
	}

	return &loc, nil
}

func (r *ReferenceRepository) GetSupplier(ctx context.Context, id string) (*reference.Supplier, error) {
	query := r.db.rebind(`SELECT id, name, cost_type, created_at FROM suppliers WHERE id = ?`)

	var (
		sup      reference.Supplier
		costType sql.NullString
		created  string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&sup.ID, &sup.Name, &costType, &created)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Supplier")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get supplier", err)
	}

	sup.CostType = detector.CostType(costType.String)
	if sup.CreatedAt, err = parseTime(created); err != nil {
		return nil, errors.DatabaseError("Failed to scan supplier", err)
	}

	return &sup, nil
}

func (r *ReferenceRepository) FindContract(ctx context.Context, supplierID string, at time.Time) (*reference.Contract, error) {
	query := r.db.rebind(`SELECT id, supplier_id, location_id, cost_type, min_price, max_price,
			min_quantity, max_quantity, valid_from, valid_to, created_at
		FROM contracts
		WHERE supplier_id = ? AND valid_from <= ? AND valid_to >= ?
		ORDER BY valid_from DESC LIMIT 1`)

	atStr := formatTime(at)

	var (
		c                                            reference.Contract
		locationID, costType                         sql.NullString
		minPrice, maxPrice, minQuantity, maxQuantity sql.NullString
		validFrom, validTo, created                  string
	)
	err := r.db.QueryRowContext(ctx, query, supplierID, atStr, atStr).Scan(
		&c.ID, &c.SupplierID, &locationID, &costType, &minPrice, &maxPrice,
		&minQuantity, &maxQuantity, &validFrom, &validTo, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to find contract", err)
	}

	c.LocationID = locationID.String
	c.CostType = detector.CostType(costType.String)
	if c.MinPrice, err = parseNullDecimal(minPrice); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.MaxPrice, err = parseNullDecimal(maxPrice); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.MinQuantity, err = parseNullDecimal(minQuantity); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.MaxQuantity, err = parseNullDecimal(maxQuantity); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.ValidFrom, err = parseTime(validFrom); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.ValidTo, err = parseTime(validTo); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, errors.DatabaseError("Failed to scan contract", err)
	}

	return &c, nil
}
