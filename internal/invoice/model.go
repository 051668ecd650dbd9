package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the billing lifecycle of an invoice. Every invoice starts as
// Draft; a soft-deleted invoice keeps its last status for the audit trail.
type Status string

const (
	StatusDraft   Status = "Draft"
	StatusSent    Status = "Sent"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

// Valid reports whether s is a known invoice status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoice bills the outstanding portion of a batch of completed trips for
// one client. Number and client are fixed at creation; only the status and
// the deletion flag change afterwards. TotalAmount equals TotalBalance: the
// invoice bills what is still owed after advances and held-up amounts.
type Invoice struct {
	ID             int64           `json:"id"`
	InvoiceNo      string          `json:"invoice_no"`
	GenerationDate time.Time       `json:"generation_date"`
	ClientName     string          `json:"client_name"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalAdvance   decimal.Decimal `json:"total_advance"`
	TotalHeldUp    decimal.Decimal `json:"total_held_up"`
	TotalBalance   decimal.Decimal `json:"total_balance"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         Status          `json:"status"`
	CreatedBy      int64           `json:"created_by"`
	IsDeleted      bool            `json:"is_deleted"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Items          []*Item         `json:"items,omitempty"`
}

// Item is one invoiced trip, snapshotted at invoice-creation time. Values
// are never recomputed from the trip afterwards.
type Item struct {
	ID           int64           `json:"id"`
	InvoiceID    int64           `json:"invoice_id"`
	TripID       int64           `json:"trip_id"`
	ItemDate     time.Time       `json:"item_date"`
	VehicleRegNo string          `json:"vehicle_reg_no"`
	Particulars  string          `json:"particulars,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
	Advance      decimal.Decimal `json:"advance"`
	HeldUp       decimal.Decimal `json:"held_up"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}
