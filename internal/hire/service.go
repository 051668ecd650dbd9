package hire

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// Service handles hire business logic
type Service struct {
	repo Repository
}

// NewService creates a new hire service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateHireRequest carries the fields needed to register a hire.
type CreateHireRequest struct {
	RegNumber    string
	OwnerName    string
	OwnerContact string
	HireRate     decimal.Decimal
	VehicleUsage decimal.Decimal
	AdvancePaid  decimal.Decimal
	HireDate     *time.Time
}

// Create registers a hire engagement with derived balance and status.
func (s *Service) Create(ctx context.Context, req CreateHireRequest) (*Hire, error) {
	if strings.TrimSpace(req.RegNumber) == "" {
		return nil, apperr.Validationf("registration number is required")
	}
	if strings.TrimSpace(req.OwnerName) == "" {
		return nil, apperr.Validationf("owner name is required")
	}
	if strings.TrimSpace(req.OwnerContact) == "" {
		return nil, apperr.Validationf("owner contact is required")
	}
	if !ledger.IsPositive(req.HireRate) {
		return nil, apperr.Validationf("hire rate must be positive, got %s", req.HireRate.String())
	}
	if !ledger.IsPositive(req.VehicleUsage) {
		return nil, apperr.Validationf("vehicle usage must be positive, got %s", req.VehicleUsage.String())
	}
	if ledger.IsNegative(req.AdvancePaid) {
		return nil, apperr.Validationf("advance paid cannot be negative, got %s", req.AdvancePaid.String())
	}

	h := &Hire{
		RegNumber:    strings.TrimSpace(req.RegNumber),
		OwnerName:    strings.TrimSpace(req.OwnerName),
		OwnerContact: strings.TrimSpace(req.OwnerContact),
		HireRate:     req.HireRate,
		VehicleUsage: req.VehicleUsage,
		AdvancePaid:  req.AdvancePaid,
		TotalPaid:    decimal.Zero,
		HireDate:     req.HireDate,
	}
	if err := h.refresh(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, h)
}

// GetByID retrieves an active hire.
func (s *Service) GetByID(ctx context.Context, id int64) (*Hire, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFoundf("hire %d", id)
	}
	return h, nil
}

// RegNumber resolves the registration number for a hire. Satisfies the
// vehicle-directory needs of the trip service.
func (s *Service) RegNumber(ctx context.Context, id int64) (string, error) {
	h, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return h.RegNumber, nil
}

// UpdateHireRequest carries a partial update; nil fields are untouched.
type UpdateHireRequest struct {
	RegNumber    *string
	OwnerName    *string
	OwnerContact *string
	HireRate     *decimal.Decimal
	VehicleUsage *decimal.Decimal
	HireDate     *time.Time
}

// Update applies a partial update and re-derives balance and status. An
// update that would push payments above the contract amount is rejected.
func (s *Service) Update(ctx context.Context, id int64, req UpdateHireRequest) (*Hire, error) {
	h, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RegNumber != nil {
		if strings.TrimSpace(*req.RegNumber) == "" {
			return nil, apperr.Validationf("registration number is required")
		}
		h.RegNumber = strings.TrimSpace(*req.RegNumber)
	}
	if req.OwnerName != nil {
		h.OwnerName = *req.OwnerName
	}
	if req.OwnerContact != nil {
		h.OwnerContact = *req.OwnerContact
	}
	if req.HireRate != nil {
		if !ledger.IsPositive(*req.HireRate) {
			return nil, apperr.Validationf("hire rate must be positive, got %s", req.HireRate.String())
		}
		h.HireRate = *req.HireRate
	}
	if req.VehicleUsage != nil {
		if !ledger.IsPositive(*req.VehicleUsage) {
			return nil, apperr.Validationf("vehicle usage must be positive, got %s", req.VehicleUsage.String())
		}
		h.VehicleUsage = *req.VehicleUsage
	}
	if req.HireDate != nil {
		h.HireDate = req.HireDate
	}

	if err := h.refresh(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("hire %d", id)
	}
	return updated, nil
}

// AddPayment records an additional payment against the hire. The amount may
// not exceed the current outstanding balance. This is a hard ceiling.
func (s *Service) AddPayment(ctx context.Context, id int64, amount decimal.Decimal) (*Hire, error) {
	if !ledger.IsPositive(amount) {
		return nil, apperr.Validationf("payment amount must be positive, got %s", amount.String())
	}

	h, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	outstanding := ledger.Outstanding(h)
	if amount.GreaterThan(outstanding) {
		return nil, apperr.Conflictf("payment %s exceeds outstanding balance %s",
			amount.String(), outstanding.String())
	}

	h.TotalPaid = h.TotalPaid.Add(amount)
	if err := h.refresh(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, h)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("hire %d", id)
	}
	return updated, nil
}

// Delete soft-deletes a hire.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// List retrieves hires matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*Hire, error) {
	return s.repo.List(ctx, f)
}
