package database

import (
	"context"
	"fmt"
)

// migrations are applied in order; every statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS tbl_users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tbl_drivers (
		id BIGSERIAL PRIMARY KEY,
		full_name TEXT NOT NULL,
		contact TEXT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tbl_advances (
		id BIGSERIAL PRIMARY KEY,
		recipient_type TEXT NOT NULL,
		recipient_id BIGINT NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		advance_date DATE NOT NULL,
		notes TEXT,
		created_by BIGINT,
		status TEXT NOT NULL DEFAULT 'Pending',
		deducted_in_settlement_id BIGINT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_advances_recipient
		ON tbl_advances (recipient_type, recipient_id, advance_date)`,

	`CREATE TABLE IF NOT EXISTS tbl_settlements (
		id BIGSERIAL PRIMARY KEY,
		recipient_type TEXT NOT NULL,
		recipient_id BIGINT NOT NULL,
		period_year INT NOT NULL,
		period_month INT NOT NULL,
		base_amount NUMERIC(12,2) NOT NULL,
		trip_bonus NUMERIC(12,2) NOT NULL DEFAULT 0,
		deductions NUMERIC(12,2) NOT NULL DEFAULT 0,
		advances_deducted NUMERIC(12,2) NOT NULL DEFAULT 0,
		net_pay NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_date DATE,
		status TEXT NOT NULL DEFAULT 'Pending',
		notes TEXT,
		created_by BIGINT,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One active settlement per recipient per month.
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_settlements_recipient_period
		ON tbl_settlements (recipient_type, recipient_id, period_year, period_month)
		WHERE NOT is_deleted`,

	`CREATE TABLE IF NOT EXISTS tbl_ex_vehicles (
		id BIGSERIAL PRIMARY KEY,
		reg_number TEXT NOT NULL,
		owner_name TEXT NOT NULL,
		owner_contact TEXT NOT NULL,
		hire_rate NUMERIC(12,2) NOT NULL,
		vehicle_usage NUMERIC(12,2) NOT NULL,
		advance_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_paid NUMERIC(12,2) NOT NULL DEFAULT 0,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'Pending',
		hire_date DATE,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tbl_transports (
		id BIGSERIAL PRIMARY KEY,
		client_name TEXT NOT NULL,
		description TEXT,
		starting_point TEXT,
		destination TEXT,
		loading_date DATE NOT NULL,
		unloading_date DATE,
		vehicle_reg_no TEXT NOT NULL,
		ext_hire_id BIGINT REFERENCES tbl_ex_vehicles(id),
		internal_driver_id BIGINT REFERENCES tbl_drivers(id),
		distance_km NUMERIC(10,2) NOT NULL DEFAULT 0,
		agreed_amount NUMERIC(12,2) NOT NULL,
		advance_received NUMERIC(12,2) NOT NULL DEFAULT 0,
		balance_received NUMERIC(12,2) NOT NULL DEFAULT 0,
		held_up NUMERIC(12,2) NOT NULL DEFAULT 0,
		payment_status TEXT NOT NULL DEFAULT 'Pending',
		trip_status TEXT NOT NULL DEFAULT 'Pending',
		invoice_id BIGINT,
		invoice_status TEXT NOT NULL DEFAULT 'NotInvoiced',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transports_client
		ON tbl_transports (client_name, loading_date)`,

	`CREATE TABLE IF NOT EXISTS tbl_invoices (
		id BIGSERIAL PRIMARY KEY,
		invoice_no TEXT NOT NULL UNIQUE,
		generation_date DATE NOT NULL,
		client_name TEXT NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_advance NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_held_up NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'Draft',
		created_by BIGINT NOT NULL REFERENCES tbl_users(id),
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tbl_invoice_items (
		id BIGSERIAL PRIMARY KEY,
		invoice_id BIGINT NOT NULL REFERENCES tbl_invoices(id),
		transport_id BIGINT NOT NULL REFERENCES tbl_transports(id),
		item_date DATE NOT NULL,
		vehicle_reg_no TEXT NOT NULL,
		particulars TEXT,
		rate NUMERIC(12,2) NOT NULL,
		advance NUMERIC(12,2) NOT NULL DEFAULT 0,
		held_up NUMERIC(12,2) NOT NULL DEFAULT 0,
		balance NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// Monotonic per-year invoice numbering; bumped atomically with
	// INSERT .. ON CONFLICT .. RETURNING.
	`CREATE TABLE IF NOT EXISTS tbl_invoice_sequences (
		year INT PRIMARY KEY,
		last_seq INT NOT NULL
	)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := d.pool.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
