package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

type memRepository struct {
	nextID      int64
	settlements map[int64]*Settlement
}

func newMemRepository() *memRepository {
	return &memRepository{nextID: 1, settlements: make(map[int64]*Settlement)}
}

func (m *memRepository) Create(_ context.Context, s *Settlement) (*Settlement, error) {
	stored := *s
	stored.ID = m.nextID
	m.nextID++
	m.settlements[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRepository) GetByID(_ context.Context, id int64) (*Settlement, error) {
	s, ok := m.settlements[id]
	if !ok || s.IsDeleted {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *memRepository) ExistsForPeriod(_ context.Context, r ledger.Recipient, p ledger.Period) (bool, error) {
	for _, s := range m.settlements {
		if !s.IsDeleted && s.Recipient == r && s.Period == p {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepository) Update(_ context.Context, s *Settlement) (*Settlement, error) {
	existing, ok := m.settlements[s.ID]
	if !ok || existing.IsDeleted {
		return nil, nil
	}
	stored := *s
	m.settlements[s.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRepository) SoftDelete(_ context.Context, id int64) error {
	if s, ok := m.settlements[id]; ok {
		s.IsDeleted = true
	}
	return nil
}

func (m *memRepository) List(_ context.Context, f Filter) ([]*Settlement, error) {
	var out []*Settlement
	for _, s := range m.settlements {
		if s.IsDeleted {
			continue
		}
		if f.RecipientID != nil && s.Recipient.ID != *f.RecipientID {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

// fakeAdvances is a scripted AdvanceLedger recording mark/unmark calls.
type fakeAdvances struct {
	pending  decimal.Decimal
	marked   map[int64]ledger.Recipient
	unmarked []int64
}

func newFakeAdvances(pending string) *fakeAdvances {
	return &fakeAdvances{
		pending: decimal.RequireFromString(pending),
		marked:  make(map[int64]ledger.Recipient),
	}
}

func (f *fakeAdvances) TotalPending(context.Context, ledger.Recipient, ledger.Period) (decimal.Decimal, error) {
	return f.pending, nil
}

func (f *fakeAdvances) MarkDeducted(_ context.Context, settlementID int64, r ledger.Recipient, _ ledger.Period) error {
	f.marked[settlementID] = r
	return nil
}

func (f *fakeAdvances) Unmark(_ context.Context, settlementID int64) error {
	f.unmarked = append(f.unmarked, settlementID)
	return nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func driver(id int64) ledger.Recipient {
	return ledger.Recipient{Type: ledger.RecipientDriver, ID: id}
}

func march() ledger.Period {
	return ledger.Period{Year: 2025, Month: time.March}
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreate_ComputesNetPayAndMarksAdvances(t *testing.T) {
	advances := newFakeAdvances("1250.50")
	svc := NewService(newMemRepository(), advances, passthroughTx{})

	s, err := svc.Create(context.Background(), CreateSettlementRequest{
		Recipient:  driver(1),
		Period:     march(),
		BaseAmount: amt("50000"),
		Deductions: amt("2000"),
	})
	require.NoError(t, err)

	assert.True(t, s.AdvancesDeducted.Equal(amt("1250.50")))
	assert.True(t, s.NetPay.Equal(amt("46749.50")), "got %s", s.NetPay)
	assert.Equal(t, StatusPending, s.Status)
	assert.Equal(t, driver(1), advances.marked[s.ID])
}

func TestCreate_NegativeNetPayAllowed(t *testing.T) {
	advances := newFakeAdvances("6000")
	svc := NewService(newMemRepository(), advances, passthroughTx{})

	s, err := svc.Create(context.Background(), CreateSettlementRequest{
		Recipient:  driver(1),
		Period:     march(),
		BaseAmount: amt("5000"),
	})
	require.NoError(t, err)
	assert.True(t, s.NetPay.Equal(amt("-1000")), "got %s", s.NetPay)
}

func TestCreate_DuplicatePeriodRejected(t *testing.T) {
	svc := NewService(newMemRepository(), newFakeAdvances("0"), passthroughTx{})
	ctx := context.Background()

	req := CreateSettlementRequest{
		Recipient:  driver(1),
		Period:     march(),
		BaseAmount: amt("50000"),
	}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.True(t, apperr.IsConflict(err), "duplicate period: %v", err)

	// Same recipient, different period is fine.
	req.Period = march().Next()
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMemRepository(), newFakeAdvances("0"), passthroughTx{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSettlementRequest{
		Recipient: ledger.Recipient{Type: ledger.RecipientDriver, ID: 0},
		Period:    march(), BaseAmount: amt("100"),
	})
	assert.True(t, apperr.IsValidation(err), "missing recipient id: %v", err)

	_, err = svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1),
		Period:    ledger.Period{Year: 2025, Month: 13}, BaseAmount: amt("100"),
	})
	assert.True(t, apperr.IsValidation(err), "bad month: %v", err)

	_, err = svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1), Period: march(), BaseAmount: amt("-1"),
	})
	assert.True(t, apperr.IsValidation(err), "negative base: %v", err)
}

func TestUpdate_RecomputesWithStoredAdvances(t *testing.T) {
	advances := newFakeAdvances("1000")
	svc := NewService(newMemRepository(), advances, passthroughTx{})
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1), Period: march(), BaseAmount: amt("50000"),
	})
	require.NoError(t, err)
	require.True(t, s.NetPay.Equal(amt("49000")))

	// New advances recorded after creation must not leak into the edit.
	advances.pending = amt("99999")

	base := amt("60000")
	updated, err := svc.Update(ctx, s.ID, UpdateSettlementRequest{BaseAmount: &base})
	require.NoError(t, err)

	assert.True(t, updated.AdvancesDeducted.Equal(amt("1000")))
	assert.True(t, updated.NetPay.Equal(amt("59000")), "got %s", updated.NetPay)
}

func TestUpdate_InvalidStatusRejected(t *testing.T) {
	svc := NewService(newMemRepository(), newFakeAdvances("0"), passthroughTx{})
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1), Period: march(), BaseAmount: amt("100"),
	})
	require.NoError(t, err)

	bogus := Status("Settled")
	_, err = svc.Update(ctx, s.ID, UpdateSettlementRequest{Status: &bogus})
	assert.True(t, apperr.IsValidation(err))
}

func TestDelete_ReleasesAdvancesAfterSettlementGone(t *testing.T) {
	repo := newMemRepository()
	advances := newFakeAdvances("500")
	svc := NewService(repo, advances, passthroughTx{})
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1), Period: march(), BaseAmount: amt("100"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, s.ID))

	_, err = svc.GetByID(ctx, s.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.Equal(t, []int64{s.ID}, advances.unmarked)

	// A fresh settlement for the same period is possible again.
	_, err = svc.Create(ctx, CreateSettlementRequest{
		Recipient: driver(1), Period: march(), BaseAmount: amt("100"),
	})
	assert.NoError(t, err)
}

func TestDelete_MissingSettlement(t *testing.T) {
	svc := NewService(newMemRepository(), newFakeAdvances("0"), passthroughTx{})
	err := svc.Delete(context.Background(), 99)
	assert.True(t, apperr.IsNotFound(err))
}
