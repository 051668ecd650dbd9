package trip

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// VehicleDirectory resolves an external hire engagement to its vehicle
// registration number.
type VehicleDirectory interface {
	RegNumber(ctx context.Context, hireID int64) (string, error)
}

// DriverDirectory resolves whether an internal driver exists and is active.
type DriverDirectory interface {
	DriverExists(ctx context.Context, driverID int64) (bool, error)
}

// Service handles trip business logic
type Service struct {
	repo    Repository
	hires   VehicleDirectory
	drivers DriverDirectory
}

// NewService creates a new trip service
func NewService(repo Repository, hires VehicleDirectory, drivers DriverDirectory) *Service {
	return &Service{repo: repo, hires: hires, drivers: drivers}
}

// CreateTripRequest carries the fields needed to register a trip. When
// ExternalHireID is set the vehicle registration is resolved through the
// directory and VehicleRegNo may be left empty.
type CreateTripRequest struct {
	ClientName       string
	Description      string
	StartingPoint    string
	Destination      string
	LoadingDate      time.Time
	UnloadingDate    *time.Time
	VehicleRegNo     string
	ExternalHireID   *int64
	InternalDriverID *int64
	DistanceKm       decimal.Decimal
	AgreedAmount     decimal.Decimal
	AdvanceReceived  decimal.Decimal
	BalanceReceived  decimal.Decimal
}

// Create registers a trip with derived held-up amount and payment status.
func (s *Service) Create(ctx context.Context, req CreateTripRequest) (*Trip, error) {
	if strings.TrimSpace(req.ClientName) == "" {
		return nil, apperr.Validationf("client name is required")
	}
	if req.LoadingDate.IsZero() {
		return nil, apperr.Validationf("loading date is required")
	}
	if !ledger.IsPositive(req.AgreedAmount) {
		return nil, apperr.Validationf("agreed amount must be positive, got %s", req.AgreedAmount.String())
	}
	if ledger.IsNegative(req.AdvanceReceived) || ledger.IsNegative(req.BalanceReceived) {
		return nil, apperr.Validationf("received amounts cannot be negative")
	}

	regNo := strings.TrimSpace(req.VehicleRegNo)
	if req.ExternalHireID != nil {
		resolved, err := s.hires.RegNumber(ctx, *req.ExternalHireID)
		if err != nil {
			return nil, err
		}
		regNo = resolved
	}
	if regNo == "" {
		return nil, apperr.Validationf("vehicle registration number is required")
	}

	if req.InternalDriverID != nil {
		exists, err := s.drivers.DriverExists(ctx, *req.InternalDriverID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFoundf("driver %d", *req.InternalDriverID)
		}
	}

	t := &Trip{
		ClientName:       strings.TrimSpace(req.ClientName),
		Description:      req.Description,
		StartingPoint:    req.StartingPoint,
		Destination:      req.Destination,
		LoadingDate:      req.LoadingDate,
		UnloadingDate:    req.UnloadingDate,
		VehicleRegNo:     regNo,
		ExternalHireID:   req.ExternalHireID,
		InternalDriverID: req.InternalDriverID,
		DistanceKm:       req.DistanceKm,
		AgreedAmount:     req.AgreedAmount,
		AdvanceReceived:  req.AdvanceReceived,
		BalanceReceived:  req.BalanceReceived,
		TripStatus:       TripStatusPending,
		InvoiceStatus:    InvoiceStatusNotInvoiced,
	}
	if err := t.refresh(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, t)
}

// GetByID retrieves an active trip.
func (s *Service) GetByID(ctx context.Context, id int64) (*Trip, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFoundf("trip %d", id)
	}
	return t, nil
}

// UpdateTripRequest carries a partial update; nil fields are untouched.
type UpdateTripRequest struct {
	ClientName      *string
	Description     *string
	StartingPoint   *string
	Destination     *string
	LoadingDate     *time.Time
	UnloadingDate   *time.Time
	DistanceKm      *decimal.Decimal
	AgreedAmount    *decimal.Decimal
	AdvanceReceived *decimal.Decimal
	BalanceReceived *decimal.Decimal
	TripStatus      *TripStatus
}

// financialEdit reports whether the update touches a monetary field.
func (r UpdateTripRequest) financialEdit() bool {
	return r.AgreedAmount != nil || r.AdvanceReceived != nil || r.BalanceReceived != nil
}

// Update applies a partial update and re-derives held-up and payment status.
// Monetary fields freeze once the trip is invoiced: invoice line items are
// snapshots and must not drift from the trips behind them.
func (s *Service) Update(ctx context.Context, id int64, req UpdateTripRequest) (*Trip, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.financialEdit() && t.InvoiceStatus != InvoiceStatusNotInvoiced {
		return nil, apperr.Conflictf("trip %d is invoiced; its financial fields cannot change", id)
	}

	if req.ClientName != nil {
		if strings.TrimSpace(*req.ClientName) == "" {
			return nil, apperr.Validationf("client name is required")
		}
		t.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.StartingPoint != nil {
		t.StartingPoint = *req.StartingPoint
	}
	if req.Destination != nil {
		t.Destination = *req.Destination
	}
	if req.LoadingDate != nil {
		t.LoadingDate = *req.LoadingDate
	}
	if req.UnloadingDate != nil {
		t.UnloadingDate = req.UnloadingDate
	}
	if req.DistanceKm != nil {
		t.DistanceKm = *req.DistanceKm
	}
	if req.AgreedAmount != nil {
		if !ledger.IsPositive(*req.AgreedAmount) {
			return nil, apperr.Validationf("agreed amount must be positive, got %s", req.AgreedAmount.String())
		}
		t.AgreedAmount = *req.AgreedAmount
	}
	if req.AdvanceReceived != nil {
		if ledger.IsNegative(*req.AdvanceReceived) {
			return nil, apperr.Validationf("advance received cannot be negative")
		}
		t.AdvanceReceived = *req.AdvanceReceived
	}
	if req.BalanceReceived != nil {
		if ledger.IsNegative(*req.BalanceReceived) {
			return nil, apperr.Validationf("balance received cannot be negative")
		}
		t.BalanceReceived = *req.BalanceReceived
	}
	if req.TripStatus != nil {
		switch *req.TripStatus {
		case TripStatusPending, TripStatusCompleted, TripStatusCancelled:
			t.TripStatus = *req.TripStatus
		default:
			return nil, apperr.Validationf("invalid trip status %q", *req.TripStatus)
		}
	}

	if err := t.refresh(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFoundf("trip %d", id)
	}
	return updated, nil
}

// Delete soft-deletes a trip. Invoiced trips are frozen until their invoice
// is deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.InvoiceStatus != InvoiceStatusNotInvoiced {
		return apperr.Conflictf("trip %d is invoiced and cannot be deleted", id)
	}
	return s.repo.SoftDelete(ctx, id)
}

// List retrieves trips matching the filter.
func (s *Service) List(ctx context.Context, f Filter) ([]*Trip, error) {
	return s.repo.List(ctx, f)
}
