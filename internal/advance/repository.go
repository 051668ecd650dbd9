package advance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Filter narrows advance listings. Nil fields match everything.
type Filter struct {
	RecipientType *ledger.RecipientType
	RecipientID   *int64
	Period        *ledger.Period
}

// Repository handles advance data persistence. GetByID returns (nil, nil)
// when no active record matches.
type Repository interface {
	Create(ctx context.Context, a *Advance) (*Advance, error)
	GetByID(ctx context.Context, id int64) (*Advance, error)
	Update(ctx context.Context, a *Advance) (*Advance, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Advance, error)
	ListDeductible(ctx context.Context, r ledger.Recipient, p ledger.Period) ([]*Advance, error)
	MarkDeducted(ctx context.Context, settlementID int64, r ledger.Recipient, p ledger.Period) error
	UnmarkForSettlement(ctx context.Context, settlementID int64) error
}

const advanceColumns = `id, recipient_type, recipient_id, amount, advance_date, COALESCE(notes, ''),
	created_by, status, deducted_in_settlement_id, is_deleted, created_at, updated_at`

type postgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres-backed advance repository
func NewPostgresRepository(db *database.DB) Repository {
	return &postgresRepository{db: db}
}

func scanAdvance(row interface{ Scan(dest ...any) error }) (*Advance, error) {
	a := &Advance{}
	err := row.Scan(
		&a.ID,
		&a.Recipient.Type,
		&a.Recipient.ID,
		&a.Amount,
		&a.AdvanceDate,
		&a.Notes,
		&a.CreatedBy,
		&a.Status,
		&a.DeductedInSettlementID,
		&a.IsDeleted,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new advance
func (r *postgresRepository) Create(ctx context.Context, a *Advance) (*Advance, error) {
	query := `
		INSERT INTO tbl_advances (recipient_type, recipient_id, amount, advance_date, notes, created_by, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		RETURNING ` + advanceColumns

	created, err := scanAdvance(r.db.Executor(ctx).QueryRowContext(ctx, query,
		a.Recipient.Type, a.Recipient.ID, a.Amount, a.AdvanceDate, a.Notes, a.CreatedBy, a.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to create advance: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active advance by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM tbl_advances WHERE id = $1 AND NOT is_deleted`

	a, err := scanAdvance(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get advance: %w", err)
	}
	return a, nil
}

// Update persists the mutable fields of an advance
func (r *postgresRepository) Update(ctx context.Context, a *Advance) (*Advance, error) {
	query := `
		UPDATE tbl_advances
		SET recipient_type = $2, recipient_id = $3, amount = $4, advance_date = $5,
		    notes = NULLIF($6, ''), status = $7, deducted_in_settlement_id = $8, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + advanceColumns

	updated, err := scanAdvance(r.db.Executor(ctx).QueryRowContext(ctx, query,
		a.ID, a.Recipient.Type, a.Recipient.ID, a.Amount, a.AdvanceDate, a.Notes, a.Status, a.DeductedInSettlementID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update advance: %w", err)
	}
	return updated, nil
}

// SoftDelete flags an advance as deleted
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE tbl_advances SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete advance: %w", err)
	}
	return nil
}

// List retrieves active advances matching the filter
func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM tbl_advances WHERE NOT is_deleted`
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
		start, end := f.Period.Bounds()
		args = append(args, start)
		query += fmt.Sprintf(" AND advance_date >= $%d", len(args))
		args = append(args, end)
		query += fmt.Sprintf(" AND advance_date < $%d", len(args))
	}
	query += " ORDER BY advance_date DESC, id DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var advances []*Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

// ListDeductible retrieves the Pending/Partial advances of a recipient dated
// inside the period
func (r *postgresRepository) ListDeductible(ctx context.Context, rec ledger.Recipient, p ledger.Period) ([]*Advance, error) {
	start, end := p.Bounds()
	query := `
		SELECT ` + advanceColumns + `
		FROM tbl_advances
		WHERE NOT is_deleted
		  AND recipient_type = $1 AND recipient_id = $2
		  AND status IN ($3, $4)
		  AND advance_date >= $5 AND advance_date < $6
		ORDER BY advance_date, id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query,
		rec.Type, rec.ID, StatusPending, StatusPartial, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list deductible advances: %w", err)
	}
	defer rows.Close()

	var advances []*Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

// MarkDeducted stamps every deductible advance of the recipient/period with
// the consuming settlement
func (r *postgresRepository) MarkDeducted(ctx context.Context, settlementID int64, rec ledger.Recipient, p ledger.Period) error {
	start, end := p.Bounds()
	query := `
		UPDATE tbl_advances
		SET status = $1, deducted_in_settlement_id = $2, updated_at = NOW()
		WHERE NOT is_deleted
		  AND recipient_type = $3 AND recipient_id = $4
		  AND status IN ($5, $6)
		  AND advance_date >= $7 AND advance_date < $8`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		StatusDeducted, settlementID, rec.Type, rec.ID, StatusPending, StatusPartial, start, end)
	if err != nil {
		return fmt.Errorf("failed to mark advances deducted: %w", err)
	}
	return nil
}

// UnmarkForSettlement releases every advance held by the settlement back to
// Pending
func (r *postgresRepository) UnmarkForSettlement(ctx context.Context, settlementID int64) error {
	query := `
		UPDATE tbl_advances
		SET status = $1, deducted_in_settlement_id = NULL, updated_at = NOW()
		WHERE deducted_in_settlement_id = $2`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, StatusPending, settlementID); err != nil {
		return fmt.Errorf("failed to unmark advances: %w", err)
	}
	return nil
}
