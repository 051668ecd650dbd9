package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/trip"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// TripLedger is the slice of the trip package the batching engine needs.
// GetByIDs must lock the returned rows for the duration of the enclosing
// transaction so that two invoices can never claim the same trip.
type TripLedger interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*trip.Trip, error)
	MarkInvoiced(ctx context.Context, ids []int64, invoiceID int64) error
	ResetInvoiced(ctx context.Context, ids []int64) error
}

// UserDirectory resolves the creating user for invoice attribution.
type UserDirectory interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// Service implements the invoice batching engine
type Service struct {
	repo  Repository
	trips TripLedger
	users UserDirectory
	tx    database.TxRunner
}

// NewService creates a new invoice service
func NewService(repo Repository, trips TripLedger, users UserDirectory, tx database.TxRunner) *Service {
	return &Service{repo: repo, trips: trips, users: users, tx: tx}
}

// Create batches the given trips into one invoice. All trips must exist,
// belong to the same client, be completed, and not be invoiced already. The
// whole batch succeeds or nothing changes.
func (s *Service) Create(ctx context.Context, tripIDs []int64, createdBy int64) (*Invoice, error) {
	if len(tripIDs) == 0 {
		return nil, apperr.Validationf("at least one trip is required")
	}
	ids := dedupe(tripIDs)

	var created *Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		trips, err := s.trips.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load trips: %w", err)
		}
		if len(trips) != len(ids) {
			return apperr.NotFoundf("%d of %d trips", len(ids)-len(trips), len(ids))
		}

		clientName := trips[0].ClientName
		for _, t := range trips {
			if t.ClientName != clientName {
				return apperr.Conflictf("trips span more than one client")
			}
			if t.InvoiceID != nil || t.InvoiceStatus != trip.InvoiceStatusNotInvoiced {
				return apperr.Conflictf("trip %d is already invoiced", t.ID)
			}
			if t.TripStatus != trip.TripStatusCompleted {
				return apperr.Conflictf("trip %d is not completed", t.ID)
			}
		}

		exists, err := s.users.UserExists(ctx, createdBy)
		if err != nil {
			return fmt.Errorf("failed to resolve user: %w", err)
		}
		if !exists {
			return apperr.NotFoundf("user %d", createdBy)
		}

		now := time.Now().UTC()
		seq, err := s.repo.NextSequence(ctx, now.Year())
		if err != nil {
			return err
		}
		invoiceNo := fmt.Sprintf("INV-%d-%03d", now.Year(), seq)

		// Held-up is recomputed from the raw trip fields here, not read from
		// the stored derived column, so the snapshot is internally consistent
		// even if the trip row is stale.
		subtotal, totalAdvance, totalHeldUp, totalBalance := ledger.Zero, ledger.Zero, ledger.Zero, ledger.Zero
		items := make([]*Item, 0, len(trips))
		for _, t := range trips {
			heldUp := t.AgreedAmount.Sub(t.AdvanceReceived).Sub(t.BalanceReceived)
			balance := t.AgreedAmount.Sub(t.AdvanceReceived).Sub(heldUp)
			subtotal = subtotal.Add(t.AgreedAmount)
			totalAdvance = totalAdvance.Add(t.AdvanceReceived)
			totalHeldUp = totalHeldUp.Add(heldUp)
			totalBalance = totalBalance.Add(balance)
			items = append(items, &Item{
				TripID:       t.ID,
				ItemDate:     t.ItemDate(),
				VehicleRegNo: t.VehicleRegNo,
				Particulars:  t.Description,
				Rate:         t.AgreedAmount,
				Advance:      t.AdvanceReceived,
				HeldUp:       heldUp,
				Balance:      balance,
			})
		}

		inv := &Invoice{
			InvoiceNo:      invoiceNo,
			GenerationDate: now,
			ClientName:     clientName,
			Subtotal:       subtotal,
			TotalAdvance:   totalAdvance,
			TotalHeldUp:    totalHeldUp,
			TotalBalance:   totalBalance,
			TotalAmount:    totalBalance,
			Status:         StatusDraft,
			CreatedBy:      createdBy,
		}

		// Invoice first, then items, then the trip references. A failure at
		// any step rolls the whole transaction back.
		created, err = s.repo.Create(ctx, inv)
		if err != nil {
			return err
		}
		for _, it := range items {
			it.InvoiceID = created.ID
		}
		created.Items, err = s.repo.CreateItems(ctx, items)
		if err != nil {
			return err
		}
		return s.trips.MarkInvoiced(ctx, ids, created.ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an active invoice with its items.
func (s *Service) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFoundf("invoice %d", id)
	}
	inv.Items, err = s.repo.ItemsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// List retrieves active invoices with their items.
func (s *Service) List(ctx context.Context, f Filter) ([]*Invoice, error) {
	invoices, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		inv.Items, err = s.repo.ItemsByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

// UpdateStatus moves an invoice through Draft/Sent/Paid/Overdue.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Invoice, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("invalid invoice status %q", status)
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("invoice %d", id)
	}
	return updated, nil
}

// Delete soft-deletes an invoice and releases its trips back to the
// uninvoiced pool. The invoice row is flagged before the trips are reset so
// a reader never sees a freed trip still claimed by a live invoice. Items
// are kept for the audit trail.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFoundf("invoice %d", id)
		}
		if err := s.repo.SoftDelete(ctx, id); err != nil {
			return err
		}
		items, err := s.repo.ItemsByInvoiceID(ctx, id)
		if err != nil {
			return err
		}
		tripIDs := make([]int64, 0, len(items))
		for _, it := range items {
			tripIDs = append(tripIDs, it.TripID)
		}
		return s.trips.ResetInvoiced(ctx, tripIDs)
	})
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
