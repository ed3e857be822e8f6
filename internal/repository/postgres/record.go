package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/utilaudit/utilaudit/internal/detector"
	"github.com/utilaudit/utilaudit/internal/domain/record"
	"github.com/utilaudit/utilaudit/internal/pkg/errors"
)

type CostRecordRepository struct {
	db *DB
}

func NewCostRecordRepository(db *DB) record.Repository {
	return &CostRecordRepository{db: db}
}

const costRecordColumns = `id, location_id, supplier_id, cost_type, amount, quantity, unit, price_per_unit, period_start, period_end, invoice_number, created_at`

func (r *CostRecordRepository) Create(ctx context.Context, rec *record.CostRecord) error {
	rec.CreatedAt = time.Now().UTC()

	query := r.db.rebind(`INSERT INTO cost_records (` + costRecordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.LocationID, rec.SupplierID, string(rec.CostType), rec.Amount.String(),
		nullDecimalString(rec.Quantity), nullString(rec.Unit), nullDecimalString(rec.PricePerUnit),
		formatTime(rec.PeriodStart), formatTime(rec.PeriodEnd), nullString(rec.InvoiceNumber),
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create cost record", err)
	}
	return nil
}

func (r *CostRecordRepository) GetByID(ctx context.Context, id string) (*record.CostRecord, error) {
	query := r.db.rebind(`SELECT ` + costRecordColumns + ` FROM cost_records WHERE id = ?`)

	rec, err := scanCostRecord(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Cost record")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get cost record", err)
	}
	return rec, nil
}

func (r *CostRecordRepository) List(ctx context.Context, filter record.Filter, limit, offset int) ([]*record.CostRecord, int64, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.LocationID != "" {
		where = append(where, "location_id = ?")
		args = append(args, filter.LocationID)
	}
	if filter.SupplierID != "" {
		where = append(where, "supplier_id = ?")
		args = append(args, filter.SupplierID)
	}
	if filter.CostType != "" {
		where = append(where, "cost_type = ?")
		args = append(args, filter.CostType)
	}
	if filter.StartDate != nil {
		where = append(where, "period_start >= ?")
		args = append(args, formatTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "period_start <= ?")
		args = append(args, formatTime(*filter.EndDate))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := r.db.rebind(`SELECT COUNT(*) FROM cost_records WHERE ` + whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count cost records", err)
	}

	query := r.db.rebind(`SELECT ` + costRecordColumns + ` FROM cost_records WHERE ` + whereClause + ` ORDER BY period_start DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list cost records", err)
	}
	defer rows.Close()

	var records []*record.CostRecord
	for rows.Next() {
		rec, err := scanCostRecord(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan cost record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate cost records", err)
	}

	return records, total, nil
}

func (r *CostRecordRepository) ListHistory(ctx context.Context, supplierID string, costType detector.CostType, before time.Time, months int, excludeID string) ([]*record.CostRecord, error) {
	cutoff := before.AddDate(0, -months, 0)

	query := r.db.rebind(`SELECT ` + costRecordColumns + ` FROM cost_records
		WHERE supplier_id = ? AND cost_type = ? AND id != ? AND period_start >= ? AND period_start < ?
		ORDER BY period_start DESC`)

	rows, err := r.db.QueryContext(ctx, query,
		supplierID, string(costType), excludeID, formatTime(cutoff), formatTime(before))
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cost record history", err)
	}
	defer rows.Close()

	var records []*record.CostRecord
	for rows.Next() {
		rec, err := scanCostRecord(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan cost record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate cost record history", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCostRecord(row rowScanner) (*record.CostRecord, error) {
	var (
		rec                              record.CostRecord
		costType                         string
		amount                           string
		quantity, unit, price, invoiceNo sql.NullString
		periodStart, periodEnd, created  string
	)
	if err := row.Scan(&rec.ID, &rec.LocationID, &rec.SupplierID, &costType, &amount,
		&quantity, &unit, &price, &periodStart, &periodEnd, &invoiceNo, &created); err != nil {
		return nil, err
	}

	rec.CostType = detector.CostType(costType)
	var err error
	if rec.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if rec.Quantity, err = parseNullDecimal(quantity); err != nil {
		return nil, err
	}
	if rec.PricePerUnit, err = parseNullDecimal(price); err != nil {
		return nil, err
	}
	rec.Unit = unit.String
	rec.InvoiceNumber = invoiceNo.String
	if rec.PeriodStart, err = parseTime(periodStart); err != nil {
		return nil, err
	}
	if rec.PeriodEnd, err = parseTime(periodEnd); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}

	return &rec, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
