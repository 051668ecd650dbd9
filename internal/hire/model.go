package hire

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// Hire is an engagement of an externally-owned vehicle, billed by
// usage x rate. Payments against it are monotonically additive; there is no
// negative adjustment.
type Hire struct {
	ID            int64                `json:"id"`
	RegNumber     string               `json:"reg_number"`
	OwnerName     string               `json:"owner_name"`
	OwnerContact  string               `json:"owner_contact"`
	HireRate      decimal.Decimal      `json:"hire_rate"`
	VehicleUsage  decimal.Decimal      `json:"vehicle_usage"` // km or days
	AdvancePaid   decimal.Decimal      `json:"advance_paid"`
	TotalPaid     decimal.Decimal      `json:"total_paid"` // payments after the advance
	Balance       decimal.Decimal      `json:"balance"`
	PaymentStatus ledger.PaymentStatus `json:"payment_status"`
	HireDate      *time.Time           `json:"hire_date,omitempty"`
	IsDeleted     bool                 `json:"is_deleted"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Due implements ledger.Account: the full hire cost.
func (h *Hire) Due() decimal.Decimal {
	return h.HireRate.Mul(h.VehicleUsage)
}

// Received implements ledger.Account: everything paid so far.
func (h *Hire) Received() decimal.Decimal {
	return h.AdvancePaid.Add(h.TotalPaid)
}

// refresh re-derives balance and payment status from the monetary fields.
// Overpayment comes back as a ConflictError.
func (h *Hire) refresh() error {
	status, err := ledger.Status(h)
	if err != nil {
		return err
	}
	h.Balance = ledger.Outstanding(h)
	h.PaymentStatus = status
	return nil
}
