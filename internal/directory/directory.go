// Package directory answers existence lookups against the user and driver
// tables. The financial packages consume it through their own narrow
// interfaces; this is the one concrete implementation behind all of them.
package directory

import (
	"context"
	"fmt"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

type Directory struct {
	db *database.DB
}

// NewDirectory creates a postgres-backed directory
func NewDirectory(db *database.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) exists(ctx context.Context, table string, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND NOT is_deleted)`, table)

	var found bool
	if err := d.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return found, nil
}

// DriverExists reports whether an active driver has the given ID.
func (d *Directory) DriverExists(ctx context.Context, driverID int64) (bool, error) {
	return d.exists(ctx, "tbl_drivers", driverID)
}

// UserExists reports whether an active internal user has the given ID.
func (d *Directory) UserExists(ctx context.Context, userID int64) (bool, error) {
	return d.exists(ctx, "tbl_users", userID)
}

// RecipientExists resolves an advance/payroll recipient against the table
// its type names.
func (d *Directory) RecipientExists(ctx context.Context, r ledger.Recipient) (bool, error) {
	switch r.Type {
	case ledger.RecipientDriver:
		return d.DriverExists(ctx, r.ID)
	case ledger.RecipientUser:
		return d.UserExists(ctx, r.ID)
	default:
		return false, apperr.Validationf("invalid recipient type %q", r.Type)
	}
}
