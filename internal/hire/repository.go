package hire

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Filter narrows hire listings. Nil fields match everything.
type Filter struct {
	PaymentStatus *ledger.PaymentStatus
	Period        *ledger.Period // matches hire_date
}

// Repository handles hire data persistence. GetByID returns (nil, nil) when
// no active record matches.
type Repository interface {
	Create(ctx context.Context, h *Hire) (*Hire, error)
	GetByID(ctx context.Context, id int64) (*Hire, error)
	Update(ctx context.Context, h *Hire) (*Hire, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Hire, error)
}

const hireColumns = `id, reg_number, owner_name, owner_contact, hire_rate, vehicle_usage,
	advance_paid, total_paid, balance, payment_status, hire_date, is_deleted, created_at, updated_at`

type postgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres-backed hire repository
func NewPostgresRepository(db *database.DB) Repository {
	return &postgresRepository{db: db}
}

func scanHire(row interface{ Scan(dest ...any) error }) (*Hire, error) {
	h := &Hire{}
	err := row.Scan(
		&h.ID,
		&h.RegNumber,
		&h.OwnerName,
		&h.OwnerContact,
		&h.HireRate,
		&h.VehicleUsage,
		&h.AdvancePaid,
		&h.TotalPaid,
		&h.Balance,
		&h.PaymentStatus,
		&h.HireDate,
		&h.IsDeleted,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts a new hire engagement
func (r *postgresRepository) Create(ctx context.Context, h *Hire) (*Hire, error) {
	query := `
		INSERT INTO tbl_ex_vehicles (reg_number, owner_name, owner_contact, hire_rate, vehicle_usage,
			advance_paid, total_paid, balance, payment_status, hire_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + hireColumns

	created, err := scanHire(r.db.Executor(ctx).QueryRowContext(ctx, query,
		h.RegNumber, h.OwnerName, h.OwnerContact, h.HireRate, h.VehicleUsage,
		h.AdvancePaid, h.TotalPaid, h.Balance, h.PaymentStatus, h.HireDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create hire: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active hire by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Hire, error) {
	query := `SELECT ` + hireColumns + ` FROM tbl_ex_vehicles WHERE id = $1 AND NOT is_deleted`

	h, err := scanHire(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hire: %w", err)
	}
	return h, nil
}

// Update persists the mutable fields of a hire
func (r *postgresRepository) Update(ctx context.Context, h *Hire) (*Hire, error) {
	query := `
		UPDATE tbl_ex_vehicles
		SET reg_number = $2, owner_name = $3, owner_contact = $4, hire_rate = $5, vehicle_usage = $6,
		    advance_paid = $7, total_paid = $8, balance = $9, payment_status = $10, hire_date = $11,
		    updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + hireColumns

	updated, err := scanHire(r.db.Executor(ctx).QueryRowContext(ctx, query,
		h.ID, h.RegNumber, h.OwnerName, h.OwnerContact, h.HireRate, h.VehicleUsage,
		h.AdvancePaid, h.TotalPaid, h.Balance, h.PaymentStatus, h.HireDate))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update hire: %w", err)
	}
	return updated, nil
}

// SoftDelete flags a hire as deleted
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE tbl_ex_vehicles SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete hire: %w", err)
	}
	return nil
}

// List retrieves active hires matching the filter
func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Hire, error) {
	query := `SELECT ` + hireColumns + ` FROM tbl_ex_vehicles WHERE NOT is_deleted`
	args := []any{}

	if f.PaymentStatus != nil {
		args = append(args, *f.PaymentStatus)
		query += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if f.Period != nil {
		start, end := f.Period.Bounds()
		args = append(args, start)
		query += fmt.Sprintf(" AND hire_date >= $%d", len(args))
		args = append(args, end)
		query += fmt.Sprintf(" AND hire_date < $%d", len(args))
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hires: %w", err)
	}
	defer rows.Close()

	var hires []*Hire
	for rows.Next() {
		h, err := scanHire(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hire: %w", err)
		}
		hires = append(hires, h)
	}
	return hires, rows.Err()
}
