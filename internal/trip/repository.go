package trip

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Filter narrows trip listings. Nil fields match everything.
type Filter struct {
	ClientName    *string
	ExternalHire  *int64
	Period        *ledger.Period // matches loading_date
	InvoiceStatus *InvoiceStatus
	TripStatus    *TripStatus
}

// Repository handles trip data persistence. GetByID returns (nil, nil) when
// no active record matches.
type Repository interface {
	Create(ctx context.Context, t *Trip) (*Trip, error)
	GetByID(ctx context.Context, id int64) (*Trip, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Trip, error)
	Update(ctx context.Context, t *Trip) (*Trip, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter) ([]*Trip, error)
	MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error
	ResetInvoiced(ctx context.Context, ids []int64) error
}

const tripColumns = `id, client_name, COALESCE(description, ''), COALESCE(starting_point, ''),
	COALESCE(destination, ''), loading_date, unloading_date, vehicle_reg_no,
	ext_hire_id, internal_driver_id, distance_km, agreed_amount, advance_received,
	balance_received, held_up, payment_status, trip_status, invoice_id, invoice_status,
	is_deleted, created_at, updated_at`

type postgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres-backed trip repository
func NewPostgresRepository(db *database.DB) Repository {
	return &postgresRepository{db: db}
}

func scanTrip(row interface{ Scan(dest ...any) error }) (*Trip, error) {
	t := &Trip{}
	err := row.Scan(
		&t.ID,
		&t.ClientName,
		&t.Description,
		&t.StartingPoint,
		&t.Destination,
		&t.LoadingDate,
		&t.UnloadingDate,
		&t.VehicleRegNo,
		&t.ExternalHireID,
		&t.InternalDriverID,
		&t.DistanceKm,
		&t.AgreedAmount,
		&t.AdvanceReceived,
		&t.BalanceReceived,
		&t.HeldUp,
		&t.PaymentStatus,
		&t.TripStatus,
		&t.InvoiceID,
		&t.InvoiceStatus,
		&t.IsDeleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new trip
func (r *postgresRepository) Create(ctx context.Context, t *Trip) (*Trip, error) {
	query := `
		INSERT INTO tbl_transports (client_name, description, starting_point, destination,
			loading_date, unloading_date, vehicle_reg_no, ext_hire_id, internal_driver_id,
			distance_km, agreed_amount, advance_received, balance_received, held_up,
			payment_status, trip_status, invoice_status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + tripColumns

	created, err := scanTrip(r.db.Executor(ctx).QueryRowContext(ctx, query,
		t.ClientName, t.Description, t.StartingPoint, t.Destination,
		t.LoadingDate, t.UnloadingDate, t.VehicleRegNo, t.ExternalHireID, t.InternalDriverID,
		t.DistanceKm, t.AgreedAmount, t.AdvanceReceived, t.BalanceReceived, t.HeldUp,
		t.PaymentStatus, t.TripStatus, t.InvoiceStatus))
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return created, nil
}

// GetByID retrieves an active trip by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM tbl_transports WHERE id = $1 AND NOT is_deleted`

	t, err := scanTrip(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return t, nil
}

// GetByIDs retrieves the active trips for the given ids, locking each row
// for the duration of the ambient transaction so concurrent invoicing of
// overlapping trip sets serializes.
func (r *postgresRepository) GetByIDs(ctx context.Context, ids []int64) ([]*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM tbl_transports
		WHERE id = ANY($1) AND NOT is_deleted
		ORDER BY id
		FOR UPDATE`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// Update persists the mutable fields of a trip
func (r *postgresRepository) Update(ctx context.Context, t *Trip) (*Trip, error) {
	query := `
		UPDATE tbl_transports
		SET client_name = $2, description = NULLIF($3, ''), starting_point = NULLIF($4, ''),
		    destination = NULLIF($5, ''), loading_date = $6, unloading_date = $7,
		    vehicle_reg_no = $8, ext_hire_id = $9, internal_driver_id = $10, distance_km = $11,
		    agreed_amount = $12, advance_received = $13, balance_received = $14, held_up = $15,
		    payment_status = $16, trip_status = $17, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + tripColumns

	updated, err := scanTrip(r.db.Executor(ctx).QueryRowContext(ctx, query,
		t.ID, t.ClientName, t.Description, t.StartingPoint, t.Destination,
		t.LoadingDate, t.UnloadingDate, t.VehicleRegNo, t.ExternalHireID, t.InternalDriverID,
		t.DistanceKm, t.AgreedAmount, t.AdvanceReceived, t.BalanceReceived, t.HeldUp,
		t.PaymentStatus, t.TripStatus))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	return updated, nil
}

// SoftDelete flags a trip as deleted
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE tbl_transports SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return nil
}

// List retrieves active trips matching the filter
func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM tbl_transports WHERE NOT is_deleted`
	args := []any{}

	if f.ClientName != nil {
		args = append(args, *f.ClientName)
		query += fmt.Sprintf(" AND client_name = $%d", len(args))
	}
	if f.ExternalHire != nil {
		args = append(args, *f.ExternalHire)
		query += fmt.Sprintf(" AND ext_hire_id = $%d", len(args))
	}
	if f.Period != nil {
		start, end := f.Period.Bounds()
		args = append(args, start)
		query += fmt.Sprintf(" AND loading_date >= $%d", len(args))
		args = append(args, end)
		query += fmt.Sprintf(" AND loading_date < $%d", len(args))
	}
	if f.InvoiceStatus != nil {
		args = append(args, *f.InvoiceStatus)
		query += fmt.Sprintf(" AND invoice_status = $%d", len(args))
	}
	if f.TripStatus != nil {
		args = append(args, *f.TripStatus)
		query += fmt.Sprintf(" AND trip_status = $%d", len(args))
	}
	query += " ORDER BY loading_date DESC, id DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// MarkInvoiced stamps the trips with the owning invoice
func (r *postgresRepository) MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error {
	query := `
		UPDATE tbl_transports
		SET invoice_id = $1, invoice_status = $2, updated_at = NOW()
		WHERE id = ANY($3) AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, invoiceID, InvoiceStatusInvoiced, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to mark trips invoiced: %w", err)
	}
	return nil
}

// ResetInvoiced detaches the trips from their invoice
func (r *postgresRepository) ResetInvoiced(ctx context.Context, ids []int64) error {
	query := `
		UPDATE tbl_transports
		SET invoice_id = NULL, invoice_status = $1, updated_at = NOW()
		WHERE id = ANY($2)`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, InvoiceStatusNotInvoiced, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to reset trip invoice state: %w", err)
	}
	return nil
}
