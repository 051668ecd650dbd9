package advance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// RecipientDirectory resolves whether a driver or internal user exists and
// is active.
type RecipientDirectory interface {
	RecipientExists(ctx context.Context, r ledger.Recipient) (bool, error)
}

// Service tracks cash advances and their deduction lifecycle
type Service struct {
	repo       Repository
	recipients RecipientDirectory
}

// NewService creates a new advance service
func NewService(repo Repository, recipients RecipientDirectory) *Service {
	return &Service{repo: repo, recipients: recipients}
}

// RecordAdvanceRequest carries the fields needed to record an advance.
type RecordAdvanceRequest struct {
	Recipient   ledger.Recipient
	Amount      decimal.Decimal
	AdvanceDate time.Time
	Notes       string
	CreatedBy   *int64
}

// RecordAdvance registers a new advance in Pending state.
func (s *Service) RecordAdvance(ctx context.Context, req RecordAdvanceRequest) (*Advance, error) {
	if err := req.Recipient.Validate(); err != nil {
		return nil, err
	}
	if !ledger.IsPositive(req.Amount) {
		return nil, apperr.Validationf("advance amount must be positive, got %s", req.Amount.String())
	}
	if req.AdvanceDate.IsZero() {
		return nil, apperr.Validationf("advance date is required")
	}

	exists, err := s.recipients.RecipientExists(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("%s %d does not exist", req.Recipient.Type, req.Recipient.ID)
	}

	return s.repo.Create(ctx, &Advance{
		Recipient:   req.Recipient,
		Amount:      req.Amount,
		AdvanceDate: req.AdvanceDate,
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
		Status:      StatusPending,
	})
}

// GetByID retrieves an active advance.
func (s *Service) GetByID(ctx context.Context, id int64) (*Advance, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFoundf("advance %d", id)
	}
	return a, nil
}

// UpdateAdvanceRequest carries a partial update; nil fields are untouched.
type UpdateAdvanceRequest struct {
	Amount      *decimal.Decimal
	AdvanceDate *time.Time
	Notes       *string
}

// Update applies a partial update to an advance. Advances already consumed
// by a settlement are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateAdvanceRequest) (*Advance, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusDeducted {
		return nil, apperr.Conflictf("advance %d is deducted in settlement %d and cannot be edited",
			id, *a.DeductedInSettlementID)
	}

	if req.Amount != nil {
		if !ledger.IsPositive(*req.Amount) {
			return nil, apperr.Validationf("advance amount must be positive, got %s", req.Amount.String())
		}
		a.Amount = *req.Amount
	}
	if req.AdvanceDate != nil {
		a.AdvanceDate = *req.AdvanceDate
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("advance %d", id)
	}
	return updated, nil
}

// Delete soft-deletes an advance. Deducted advances stay: they document a
// settlement that already consumed them.
func (s *Service) Delete(ctx context.Context, id int64) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == StatusDeducted {
		return apperr.Conflictf("advance %d is deducted in settlement %d and cannot be deleted",
			id, *a.DeductedInSettlementID)
	}
	return s.repo.SoftDelete(ctx, id)
}

// List retrieves advances matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*Advance, error) {
	return s.repo.List(ctx, f)
}

// TotalPending sums the deductible (Pending/Partial) advances of a recipient
// dated inside the period. Pure query.
func (s *Service) TotalPending(ctx context.Context, r ledger.Recipient, p ledger.Period) (decimal.Decimal, error) {
	advances, err := s.repo.ListDeductible(ctx, r, p)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range advances {
		total = total.Add(a.Amount)
	}
	return total, nil
}

// MarkDeducted stamps every deductible advance of the recipient/period as
// consumed by the settlement. Already-deducted advances no longer match the
// filter, so repeating the call is a no-op.
func (s *Service) MarkDeducted(ctx context.Context, settlementID int64, r ledger.Recipient, p ledger.Period) error {
	return s.repo.MarkDeducted(ctx, settlementID, r, p)
}

// Unmark reverts every advance held by the settlement to Pending and clears
// the settlement reference. Fully undoes MarkDeducted; idempotent.
func (s *Service) Unmark(ctx context.Context, settlementID int64) error {
	return s.repo.UnmarkForSettlement(ctx, settlementID)
}
