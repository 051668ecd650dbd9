package advance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Status represents the deduction state of an advance
type Status string

const (
	StatusPending  Status = "Pending"  // not yet deducted from any settlement
	StatusPartial  Status = "Partial"  // partially deducted
	StatusDeducted Status = "Deducted" // fully consumed by a settlement
)

// Advance is a cash advance handed to a driver or internal user, deducted
// later from that recipient's payroll settlement for the covering month.
type Advance struct {
	ID                     int64            `json:"id"`
	Recipient              ledger.Recipient `json:"recipient"`
	Amount                 decimal.Decimal  `json:"amount"`
	AdvanceDate            time.Time        `json:"advance_date"`
	Notes                  string           `json:"notes,omitempty"`
	CreatedBy              *int64           `json:"created_by,omitempty"`
	Status                 Status           `json:"status"`
	DeductedInSettlementID *int64           `json:"deducted_in_settlement_id,omitempty"`
	IsDeleted              bool             `json:"is_deleted"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// Deductible reports whether the advance still counts toward the next
// settlement of its recipient.
func (a *Advance) Deductible() bool {
	return a.Status == StatusPending || a.Status == StatusPartial
}
