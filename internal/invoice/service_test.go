package invoice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/trip"
	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

type memRepository struct {
	nextID     int64
	nextItemID int64
	invoices   map[int64]*Invoice
	items      map[int64][]*Item
	seqs       map[int]int
}

func newMemRepository() *memRepository {
	return &memRepository{
		nextID:     1,
		nextItemID: 1,
		invoices:   make(map[int64]*Invoice),
		items:      make(map[int64][]*Item),
		seqs:       make(map[int]int),
	}
}

func (m *memRepository) Create(_ context.Context, inv *Invoice) (*Invoice, error) {
	stored := *inv
	stored.ID = m.nextID
	m.nextID++
	m.invoices[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRepository) CreateItems(_ context.Context, items []*Item) ([]*Item, error) {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		stored := *it
		stored.ID = m.nextItemID
		m.nextItemID++
		m.items[stored.InvoiceID] = append(m.items[stored.InvoiceID], &stored)
		copied := stored
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memRepository) GetByID(_ context.Context, id int64) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.IsDeleted {
		return nil, nil
	}
	out := *inv
	out.Items = nil
	return &out, nil
}

func (m *memRepository) List(_ context.Context, f Filter) ([]*Invoice, error) {
	var out []*Invoice
	for _, inv := range m.invoices {
		if inv.IsDeleted {
			continue
		}
		if f.ClientName != nil && inv.ClientName != *f.ClientName {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		copied := *inv
		copied.Items = nil
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memRepository) ItemsByInvoiceID(_ context.Context, invoiceID int64) ([]*Item, error) {
	var out []*Item
	for _, it := range m.items[invoiceID] {
		copied := *it
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memRepository) UpdateStatus(_ context.Context, id int64, status Status) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.IsDeleted {
		return nil, nil
	}
	inv.Status = status
	out := *inv
	out.Items = nil
	return &out, nil
}

func (m *memRepository) SoftDelete(_ context.Context, id int64) error {
	if inv, ok := m.invoices[id]; ok {
		inv.IsDeleted = true
	}
	return nil
}

func (m *memRepository) NextSequence(_ context.Context, year int) (int, error) {
	m.seqs[year]++
	return m.seqs[year], nil
}

type fakeTrips struct {
	trips map[int64]*trip.Trip
}

func (f *fakeTrips) GetByIDs(_ context.Context, ids []int64) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, id := range ids {
		if t, ok := f.trips[id]; ok && !t.IsDeleted {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTrips) MarkInvoiced(_ context.Context, ids []int64, invoiceID int64) error {
	for _, id := range ids {
		if t, ok := f.trips[id]; ok {
			iid := invoiceID
			t.InvoiceID = &iid
			t.InvoiceStatus = trip.InvoiceStatusInvoiced
		}
	}
	return nil
}

func (f *fakeTrips) ResetInvoiced(_ context.Context, ids []int64) error {
	for _, id := range ids {
		if t, ok := f.trips[id]; ok {
			t.InvoiceID = nil
			t.InvoiceStatus = trip.InvoiceStatusNotInvoiced
		}
	}
	return nil
}

type fakeUsers struct {
	known map[int64]bool
}

func (f fakeUsers) UserExists(_ context.Context, userID int64) (bool, error) {
	return f.known[userID], nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func completedTrip(id int64, client, agreed, advance, balance string) *trip.Trip {
	return &trip.Trip{
		ID:              id,
		ClientName:      client,
		VehicleRegNo:    "WP-LA-4521",
		LoadingDate:     time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
		AgreedAmount:    amt(agreed),
		AdvanceReceived: amt(advance),
		BalanceReceived: amt(balance),
		TripStatus:      trip.TripStatusCompleted,
		InvoiceStatus:   trip.InvoiceStatusNotInvoiced,
	}
}

func newTestService(tripRecords ...*trip.Trip) (*Service, *memRepository, *fakeTrips) {
	repo := newMemRepository()
	trips := &fakeTrips{trips: make(map[int64]*trip.Trip)}
	for _, t := range tripRecords {
		trips.trips[t.ID] = t
	}
	users := fakeUsers{known: map[int64]bool{1: true}}
	svc := NewService(repo, trips, users, passthroughTx{})
	return svc, repo, trips
}

func TestCreate_SingleTripTotals(t *testing.T) {
	svc, _, trips := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))

	inv, err := svc.Create(context.Background(), []int64{1}, 1)
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("INV-%d-001", year), inv.InvoiceNo)
	assert.Equal(t, "Ceylon Agro", inv.ClientName)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.True(t, inv.Subtotal.Equal(amt("10000")))
	assert.True(t, inv.TotalAdvance.Equal(amt("3000")))
	assert.True(t, inv.TotalHeldUp.Equal(amt("5000")))
	assert.True(t, inv.TotalBalance.Equal(amt("2000")))
	assert.True(t, inv.TotalAmount.Equal(inv.TotalBalance))

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assert.Equal(t, int64(1), item.TripID)
	assert.True(t, item.Rate.Equal(amt("10000")))
	assert.True(t, item.Advance.Equal(amt("3000")))
	assert.True(t, item.HeldUp.Equal(amt("5000")))
	assert.True(t, item.Balance.Equal(item.Rate.Sub(item.Advance).Sub(item.HeldUp)))

	marked := trips.trips[1]
	require.NotNil(t, marked.InvoiceID)
	assert.Equal(t, inv.ID, *marked.InvoiceID)
	assert.Equal(t, trip.InvoiceStatusInvoiced, marked.InvoiceStatus)
}

func TestCreate_TotalsSumAcrossItems(t *testing.T) {
	svc, _, _ := newTestService(
		completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"),
		completedTrip(2, "Ceylon Agro", "8000", "1000", "7000"),
	)

	inv, err := svc.Create(context.Background(), []int64{1, 2}, 1)
	require.NoError(t, err)

	assert.True(t, inv.Subtotal.Equal(amt("18000")))
	assert.True(t, inv.TotalAdvance.Equal(amt("4000")))
	assert.True(t, inv.TotalHeldUp.Equal(amt("5000")))
	assert.True(t, inv.TotalBalance.Equal(amt("9000")))

	itemBalances := ledger.Zero
	for _, it := range inv.Items {
		itemBalances = itemBalances.Add(it.Balance)
	}
	assert.True(t, inv.TotalAmount.Equal(itemBalances))
}

func TestCreate_SequentialNumbering(t *testing.T) {
	svc, _, _ := newTestService(
		completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"),
		completedTrip(2, "Lanka Mills", "5000", "0", "0"),
	)
	ctx := context.Background()
	year := time.Now().UTC().Year()

	first, err := svc.Create(ctx, []int64{1}, 1)
	require.NoError(t, err)
	second, err := svc.Create(ctx, []int64{2}, 1)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("INV-%d-001", year), first.InvoiceNo)
	assert.Equal(t, fmt.Sprintf("INV-%d-002", year), second.InvoiceNo)
}

func TestCreate_EmptySetRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), nil, 1)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreate_MissingTripRejected(t *testing.T) {
	svc, repo, _ := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))

	_, err := svc.Create(context.Background(), []int64{1, 99}, 1)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, repo.invoices)
}

func TestCreate_MixedClientsRejected(t *testing.T) {
	svc, repo, trips := newTestService(
		completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"),
		completedTrip(2, "Lanka Mills", "5000", "0", "0"),
	)

	_, err := svc.Create(context.Background(), []int64{1, 2}, 1)
	assert.True(t, apperr.IsConflict(err))

	// Nothing was created and neither trip moved.
	assert.Empty(t, repo.invoices)
	for _, tr := range trips.trips {
		assert.Nil(t, tr.InvoiceID)
		assert.Equal(t, trip.InvoiceStatusNotInvoiced, tr.InvoiceStatus)
	}
}

func TestCreate_AlreadyInvoicedRejected(t *testing.T) {
	invoiced := completedTrip(1, "Ceylon Agro", "10000", "3000", "2000")
	existing := int64(7)
	invoiced.InvoiceID = &existing
	invoiced.InvoiceStatus = trip.InvoiceStatusInvoiced
	svc, repo, _ := newTestService(invoiced)

	_, err := svc.Create(context.Background(), []int64{1}, 1)
	assert.True(t, apperr.IsConflict(err))
	assert.Empty(t, repo.invoices)
}

func TestCreate_IncompleteTripRejected(t *testing.T) {
	pending := completedTrip(1, "Ceylon Agro", "10000", "3000", "2000")
	pending.TripStatus = trip.TripStatusPending
	svc, repo, _ := newTestService(pending)

	_, err := svc.Create(context.Background(), []int64{1}, 1)
	assert.True(t, apperr.IsConflict(err))
	assert.Empty(t, repo.invoices)
}

func TestCreate_UnknownUserRejected(t *testing.T) {
	svc, repo, trips := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))

	_, err := svc.Create(context.Background(), []int64{1}, 42)
	assert.True(t, apperr.IsNotFound(err))
	assert.Empty(t, repo.invoices)
	assert.Nil(t, trips.trips[1].InvoiceID)
}

func TestDelete_ReleasesTripsAndKeepsItems(t *testing.T) {
	svc, repo, trips := newTestService(
		completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"),
		completedTrip(2, "Ceylon Agro", "8000", "1000", "7000"),
	)
	ctx := context.Background()

	inv, err := svc.Create(ctx, []int64{1, 2}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, inv.ID))

	_, err = svc.GetByID(ctx, inv.ID)
	assert.True(t, apperr.IsNotFound(err))

	for _, tr := range trips.trips {
		assert.Nil(t, tr.InvoiceID)
		assert.Equal(t, trip.InvoiceStatusNotInvoiced, tr.InvoiceStatus)
	}

	// Items stay behind as the audit trail.
	items, err := repo.ItemsByInvoiceID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// The freed trips can be invoiced again.
	again, err := svc.Create(ctx, []int64{1, 2}, 1)
	require.NoError(t, err)
	assert.NotEqual(t, inv.InvoiceNo, again.InvoiceNo)
}

func TestDelete_MissingInvoice(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.Delete(context.Background(), 99)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateStatus(t *testing.T) {
	svc, _, _ := newTestService(completedTrip(1, "Ceylon Agro", "10000", "3000", "2000"))
	ctx := context.Background()

	inv, err := svc.Create(ctx, []int64{1}, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, inv.ID, StatusSent)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)

	_, err = svc.UpdateStatus(ctx, inv.ID, Status("Cancelled"))
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.UpdateStatus(ctx, 99, StatusPaid)
	assert.True(t, apperr.IsNotFound(err))
}
