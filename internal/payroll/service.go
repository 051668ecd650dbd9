package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// AdvanceLedger is the slice of the advance tracker the payroll settlement
// consumes.
type AdvanceLedger interface {
	TotalPending(ctx context.Context, r ledger.Recipient, p ledger.Period) (decimal.Decimal, error)
	MarkDeducted(ctx context.Context, settlementID int64, r ledger.Recipient, p ledger.Period) error
	Unmark(ctx context.Context, settlementID int64) error
}

// Service computes payroll settlements
type Service struct {
	repo     Repository
	advances AdvanceLedger
	tx       database.TxRunner
}

// NewService creates a new payroll service
func NewService(repo Repository, advances AdvanceLedger, tx database.TxRunner) *Service {
	return &Service{repo: repo, advances: advances, tx: tx}
}

// CreateSettlementRequest carries the fields needed to create a settlement.
type CreateSettlementRequest struct {
	Recipient  ledger.Recipient
	Period     ledger.Period
	BaseAmount decimal.Decimal
	TripBonus  decimal.Decimal
	Deductions decimal.Decimal
	Notes      string
	CreatedBy  *int64
}

// Create computes and stores the settlement for one recipient and month.
// The recipient's deductible advances for the period are captured, subtracted
// from net pay, and stamped as consumed — all in one transaction.
func (s *Service) Create(ctx context.Context, req CreateSettlementRequest) (*Settlement, error) {
	if err := req.Recipient.Validate(); err != nil {
		return nil, err
	}
	if _, err := ledger.NewPeriod(req.Period.Year, int(req.Period.Month)); err != nil {
		return nil, err
	}
	if ledger.IsNegative(req.BaseAmount) {
		return nil, apperr.Validationf("base amount cannot be negative, got %s", req.BaseAmount.String())
	}
	if ledger.IsNegative(req.Deductions) {
		return nil, apperr.Validationf("deductions cannot be negative, got %s", req.Deductions.String())
	}

	exists, err := s.repo.ExistsForPeriod(ctx, req.Recipient, req.Period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflictf("settlement already exists for %s %d in %s",
			req.Recipient.Type, req.Recipient.ID, req.Period)
	}

	var created *Settlement
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := s.advances.TotalPending(ctx, req.Recipient, req.Period)
		if err != nil {
			return err
		}

		settlement := &Settlement{
			Recipient:        req.Recipient,
			Period:           req.Period,
			BaseAmount:       req.BaseAmount,
			TripBonus:        req.TripBonus,
			Deductions:       req.Deductions,
			AdvancesDeducted: pending,
			Status:           StatusPending,
			Notes:            req.Notes,
			CreatedBy:        req.CreatedBy,
		}
		// Net pay may go negative here. That is reported, not rejected: it
		// signals the recipient owes money back.
		settlement.recomputeNetPay()

		created, err = s.repo.Create(ctx, settlement)
		if err != nil {
			return err
		}
		return s.advances.MarkDeducted(ctx, created.ID, req.Recipient, req.Period)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an active settlement.
func (s *Service) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	settlement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, apperr.NotFoundf("settlement %d", id)
	}
	return settlement, nil
}

// UpdateSettlementRequest carries a partial update; nil fields are untouched.
type UpdateSettlementRequest struct {
	BaseAmount  *decimal.Decimal
	TripBonus   *decimal.Decimal
	Deductions  *decimal.Decimal
	PaymentDate *time.Time
	Status      *Status
	Notes       *string
}

// Update applies a partial update. Touched amounts trigger a net pay
// recomputation against the advances-deducted value captured at creation
// time, so advances recorded since are not silently absorbed.
func (s *Service) Update(ctx context.Context, id int64, req UpdateSettlementRequest) (*Settlement, error) {
	settlement, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.BaseAmount != nil {
		if ledger.IsNegative(*req.BaseAmount) {
			return nil, apperr.Validationf("base amount cannot be negative, got %s", req.BaseAmount.String())
		}
		settlement.BaseAmount = *req.BaseAmount
	}
	if req.TripBonus != nil {
		settlement.TripBonus = *req.TripBonus
	}
	if req.Deductions != nil {
		if ledger.IsNegative(*req.Deductions) {
			return nil, apperr.Validationf("deductions cannot be negative, got %s", req.Deductions.String())
		}
		settlement.Deductions = *req.Deductions
	}
	if req.PaymentDate != nil {
		settlement.PaymentDate = req.PaymentDate
	}
	if req.Status != nil {
		if *req.Status != StatusPending && *req.Status != StatusPaid {
			return nil, apperr.Validationf("invalid settlement status %q", *req.Status)
		}
		settlement.Status = *req.Status
	}
	if req.Notes != nil {
		settlement.Notes = *req.Notes
	}
	settlement.recomputeNetPay()

	updated, err := s.repo.Update(ctx, settlement)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("settlement %d", id)
	}
	return updated, nil
}

// Delete soft-deletes the settlement, then releases the advances it held
// back to Pending. The settlement row is flagged gone before the advances
// reappear, so a reader never sees both at once.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SoftDelete(ctx, id); err != nil {
			return err
		}
		return s.advances.Unmark(ctx, id)
	})
}

// List retrieves settlements matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*Settlement, error) {
	return s.repo.List(ctx, f)
}
