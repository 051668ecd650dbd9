package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Status represents the payout state of a settlement
type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

// Settlement is one recipient's computed payroll payment for one month. At
// most one active settlement exists per (recipient, period).
type Settlement struct {
	ID               int64            `json:"id"`
	Recipient        ledger.Recipient `json:"recipient"`
	Period           ledger.Period    `json:"period"`
	BaseAmount       decimal.Decimal  `json:"base_amount"`
	TripBonus        decimal.Decimal  `json:"trip_bonus"`
	Deductions       decimal.Decimal  `json:"deductions"`
	AdvancesDeducted decimal.Decimal  `json:"advances_deducted"`
	NetPay           decimal.Decimal  `json:"net_pay"`
	PaymentDate      *time.Time       `json:"payment_date,omitempty"`
	Status           Status           `json:"status"`
	Notes            string           `json:"notes,omitempty"`
	CreatedBy        *int64           `json:"created_by,omitempty"`
	IsDeleted        bool             `json:"is_deleted"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// recomputeNetPay derives net pay from the stored amounts. A negative result
// is kept: it means the recipient owes money back.
func (s *Settlement) recomputeNetPay() {
	s.NetPay = s.BaseAmount.Sub(s.Deductions).Sub(s.AdvancesDeducted)
}
