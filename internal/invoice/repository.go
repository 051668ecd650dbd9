package invoice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
)

// Filter narrows invoice listings. Nil fields match everything.
type Filter struct {
	ClientName *string
	Status     *Status
}

// Repository handles invoice data persistence. GetByID returns (nil, nil)
// when no active record matches. Items survive the soft deletion of their
// invoice; ItemsByInvoiceID returns them regardless.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	CreateItems(ctx context.Context, items []*Item) ([]*Item, error)
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, f Filter) ([]*Invoice, error)
	ItemsByInvoiceID(ctx context.Context, invoiceID int64) ([]*Item, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error)
	SoftDelete(ctx context.Context, id int64) error
	NextSequence(ctx context.Context, year int) (int, error)
}

const invoiceColumns = `id, invoice_no, generation_date, client_name, subtotal, total_advance,
	total_held_up, total_balance, total_amount, status, created_by, is_deleted, created_at, updated_at`

const itemColumns = `id, invoice_id, transport_id, item_date, vehicle_reg_no,
	COALESCE(particulars, ''), rate, advance, held_up, balance, created_at`

type postgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a postgres-backed invoice repository
func NewPostgresRepository(db *database.DB) Repository {
	return &postgresRepository{db: db}
}

func scanInvoice(row interface{ Scan(dest ...any) error }) (*Invoice, error) {
	inv := &Invoice{}
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNo,
		&inv.GenerationDate,
		&inv.ClientName,
		&inv.Subtotal,
		&inv.TotalAdvance,
		&inv.TotalHeldUp,
		&inv.TotalBalance,
		&inv.TotalAmount,
		&inv.Status,
		&inv.CreatedBy,
		&inv.IsDeleted,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (*Item, error) {
	it := &Item{}
	err := row.Scan(
		&it.ID,
		&it.InvoiceID,
		&it.TripID,
		&it.ItemDate,
		&it.VehicleRegNo,
		&it.Particulars,
		&it.Rate,
		&it.Advance,
		&it.HeldUp,
		&it.Balance,
		&it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// Create inserts a new invoice header
func (r *postgresRepository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	query := `
		INSERT INTO tbl_invoices (invoice_no, generation_date, client_name, subtotal, total_advance,
			total_held_up, total_balance, total_amount, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + invoiceColumns

	created, err := scanInvoice(r.db.Executor(ctx).QueryRowContext(ctx, query,
		inv.InvoiceNo, inv.GenerationDate, inv.ClientName, inv.Subtotal, inv.TotalAdvance,
		inv.TotalHeldUp, inv.TotalBalance, inv.TotalAmount, inv.Status, inv.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return created, nil
}

// CreateItems inserts the line items of an invoice
func (r *postgresRepository) CreateItems(ctx context.Context, items []*Item) ([]*Item, error) {
	query := `
		INSERT INTO tbl_invoice_items (invoice_id, transport_id, item_date, vehicle_reg_no,
			particulars, rate, advance, held_up, balance)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING ` + itemColumns

	created := make([]*Item, 0, len(items))
	for _, it := range items {
		saved, err := scanItem(r.db.Executor(ctx).QueryRowContext(ctx, query,
			it.InvoiceID, it.TripID, it.ItemDate, it.VehicleRegNo,
			it.Particulars, it.Rate, it.Advance, it.HeldUp, it.Balance))
		if err != nil {
			return nil, fmt.Errorf("failed to create invoice item: %w", err)
		}
		created = append(created, saved)
	}
	return created, nil
}

// GetByID retrieves an active invoice by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM tbl_invoices WHERE id = $1 AND NOT is_deleted`

	inv, err := scanInvoice(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// List retrieves active invoices matching the filter
func (r *postgresRepository) List(ctx context.Context, f Filter) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM tbl_invoices WHERE NOT is_deleted`
	args := []any{}

	if f.ClientName != nil {
		args = append(args, *f.ClientName)
		query += fmt.Sprintf(" AND client_name = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY id DESC"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ItemsByInvoiceID retrieves the line items of an invoice, active or not
func (r *postgresRepository) ItemsByInvoiceID(ctx context.Context, invoiceID int64) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM tbl_invoice_items WHERE invoice_id = $1 ORDER BY id`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoice items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatus changes the status of an active invoice
func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	query := `
		UPDATE tbl_invoices SET status = $2, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING ` + invoiceColumns

	updated, err := scanInvoice(r.db.Executor(ctx).QueryRowContext(ctx, query, id, status))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return updated, nil
}

// SoftDelete flags an invoice as deleted. Its items stay in place.
func (r *postgresRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE tbl_invoices SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return nil
}

// NextSequence atomically advances and returns the invoice counter for the
// given year. The upsert holds a row lock until the enclosing transaction
// ends, so concurrent creators are serialized per year.
func (r *postgresRepository) NextSequence(ctx context.Context, year int) (int, error) {
	query := `
		INSERT INTO tbl_invoice_sequences (year, last_seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_seq = tbl_invoice_sequences.last_seq + 1
		RETURNING last_seq`

	var seq int
	if err := r.db.Executor(ctx).QueryRowContext(ctx, query, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	return seq, nil
}
