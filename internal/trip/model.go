package trip

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
)

// TripStatus represents the operational state of a trip
type TripStatus string

const (
	TripStatusPending   TripStatus = "Pending"
	TripStatusCompleted TripStatus = "Completed"
	TripStatusCancelled TripStatus = "Cancelled"
)

// InvoiceStatus tracks whether a trip has been batched into a client invoice
type InvoiceStatus string

const (
	InvoiceStatusNotInvoiced InvoiceStatus = "NotInvoiced"
	InvoiceStatusInvoiced    InvoiceStatus = "Invoiced"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
)

// Trip is one transport job for a client. The held-up amount and payment
// status are derived, never set directly.
type Trip struct {
	ID               int64                `json:"id"`
	ClientName       string               `json:"client_name"`
	Description      string               `json:"description,omitempty"`
	StartingPoint    string               `json:"starting_point,omitempty"`
	Destination      string               `json:"destination,omitempty"`
	LoadingDate      time.Time            `json:"loading_date"`
	UnloadingDate    *time.Time           `json:"unloading_date,omitempty"`
	VehicleRegNo     string               `json:"vehicle_reg_no"`
	ExternalHireID   *int64               `json:"external_hire_id,omitempty"`
	InternalDriverID *int64               `json:"internal_driver_id,omitempty"`
	DistanceKm       decimal.Decimal      `json:"distance_km"`
	AgreedAmount     decimal.Decimal      `json:"agreed_amount"`
	AdvanceReceived  decimal.Decimal      `json:"advance_received"`
	BalanceReceived  decimal.Decimal      `json:"balance_received"`
	HeldUp           decimal.Decimal      `json:"held_up"`
	PaymentStatus    ledger.PaymentStatus `json:"payment_status"`
	TripStatus       TripStatus           `json:"trip_status"`
	InvoiceID        *int64               `json:"invoice_id,omitempty"`
	InvoiceStatus    InvoiceStatus        `json:"invoice_status"`
	IsDeleted        bool                 `json:"is_deleted"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Due implements ledger.Account: the agreed trip amount.
func (t *Trip) Due() decimal.Decimal {
	return t.AgreedAmount
}

// Received implements ledger.Account: advance plus balance received.
func (t *Trip) Received() decimal.Decimal {
	return t.AdvanceReceived.Add(t.BalanceReceived)
}

// refresh re-derives held-up and payment status from the monetary fields.
// Received amounts above the agreed amount come back as a ConflictError.
func (t *Trip) refresh() error {
	status, err := ledger.Status(t)
	if err != nil {
		return err
	}
	t.HeldUp = ledger.Outstanding(t)
	t.PaymentStatus = status
	return nil
}

// ItemDate is the calendar date an invoice line item carries for the trip:
// the unloading date when present, the loading date otherwise.
func (t *Trip) ItemDate() time.Time {
	if t.UnloadingDate != nil {
		return *t.UnloadingDate
	}
	return t.LoadingDate
}
