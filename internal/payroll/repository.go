package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Filter narrows settlement listings. Nil fields match everything.
type Filter struct {
	RecipientType *ledger.RecipientType
	RecipientID   *int64
	Period        *ledger.Period
}

// Repository handles settlement data persistence. GetByID returns (nil, nil)
// when no active record matches.
type Repository interface {
	Create(ctx context.Context, s *Settlement) (*Settlement, error)
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	ExistsForPeriod(ctx context.Context, r ledger.Recipient, p ledger.Period) (bool, error)
	Update(ctx context.Context, s *Settlement) (*Settlement, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Settlement, error)
}

const settlementColumns = `id, recipient_type, recipient_id, period_year, period_month,
	base_amount, trip_bonus, deductions, advances_deducted, net_pay,
	payment_date, status, COALESCE(notes, ''), created_by, is_deleted, created_at, updated_at`

type postgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres-backed settlement repository
func NewPostgresRepository(db *database.DB) Repository {
	return &postgresRepository{db: db}
}

func scanSettlement(row interface{ Scan(dest ...any) error }) (*Settlement, error) {
	s := &Settlement{}
	var month int
	err := row.Scan(
		&s.ID,
		&s.Recipient.Type,
		&s.Recipient.ID,
		&s.Period.Year,
		&month,
		&s.BaseAmount,
		&s.TripBonus,
		&s.Deductions,
		&s.AdvancesDeducted,
		&s.NetPay,
		&s.PaymentDate,
		&s.Status,
		&s.Notes,
		&s.CreatedBy,
		&s.IsDeleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Period.Month = time.Month(month)
	return s, nil
}

// Create inserts a new settlement
func (r *postgresRepository) Create(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		INSERT INTO tbl_settlements (recipient_type, recipient_id, period_year, period_month,
			base_amount, trip_bonus, deductions, advances_deducted, net_pay,
			payment_date, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13)
		RETURNING ` + settlementColumns

	created, err := scanSettlement(r.db.Executor(ctx).QueryRowContext(ctx, query,
		s.Recipient.Type, s.Recipient.ID, s.Period.Year, int(s.Period.Month),
		s.BaseAmount, s.TripBonus, s.Deductions, s.AdvancesDeducted, s.NetPay,
		s.PaymentDate, s.Status, s.Notes, s.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active settlement by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM tbl_settlements WHERE id = $1 AND NOT is_deleted`

	s, err := scanSettlement(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

// ExistsForPeriod reports whether an active settlement already covers the
// recipient and period
func (r *postgresRepository) ExistsForPeriod(ctx context.Context, rec ledger.Recipient, p ledger.Period) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tbl_settlements
			WHERE recipient_type = $1 AND recipient_id = $2
			  AND period_year = $3 AND period_month = $4
			  AND NOT is_deleted
		)`

	var exists bool
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		rec.Type, rec.ID, p.Year, int(p.Month)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check settlement existence: %w", err)
	}
	return exists, nil
}

// Update persists the mutable fields of a settlement
func (r *postgresRepository) Update(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		UPDATE tbl_settlements
		SET base_amount = $2, trip_bonus = $3, deductions = $4, net_pay = $5,
		    payment_date = $6, status = $7, notes = NULLIF($8, ''), updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + settlementColumns

	updated, err := scanSettlement(r.db.Executor(ctx).QueryRowContext(ctx, query,
		s.ID, s.BaseAmount, s.TripBonus, s.Deductions, s.NetPay,
		s.PaymentDate, s.Status, s.Notes))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update settlement: %w", err)
	}
	return updated, nil
}

// SoftDelete flags a settlement as deleted
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE tbl_settlements SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return nil
}

// List retrieves active settlements matching the filter
func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM tbl_settlements WHERE NOT is_deleted`
	args := []any{}

	if f.RecipientType != nil {
		args = append(args, *f.RecipientType)
		query += fmt.Sprintf(" AND recipient_type = $%d", len(args))
	}
	if f.RecipientID != nil {
		args = append(args, *f.RecipientID)
		query += fmt.Sprintf(" AND recipient_id = $%d", len(args))
	}
	if f.Period != nil {
		args = append(args, f.Period.Year)
		query += fmt.Sprintf(" AND period_year = $%d", len(args))
		args = append(args, int(f.Period.Month))
		query += fmt.Sprintf(" AND period_month = $%d", len(args))
	}
	query += " ORDER BY period_year DESC, period_month DESC, id DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	return settlements, rows.Err()
}
