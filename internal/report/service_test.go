package report

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDNayanajith/kasthuri-backend/internal/advance"
	"github.com/MIDNayanajith/kasthuri-backend/internal/hire"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/payroll"
	"github.com/MIDNayanajith/kasthuri-backend/internal/trip"
)

type fixedTrips []*trip.Trip

func (f fixedTrips) List(_ context.Context, filter trip.Filter) ([]*trip.Trip, error) {
	var out []*trip.Trip
	for _, t := range f {
		if filter.Period != nil && !filter.Period.Contains(t.LoadingDate) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fixedSettlements []*payroll.Settlement

func (f fixedSettlements) List(_ context.Context, filter payroll.Filter) ([]*payroll.Settlement, error) {
	var out []*payroll.Settlement
	for _, s := range f {
		if filter.Period != nil && s.Period != *filter.Period {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type fixedHires []*hire.Hire

func (f fixedHires) List(_ context.Context, filter hire.Filter) ([]*hire.Hire, error) {
	var out []*hire.Hire
	for _, h := range f {
		if filter.Period != nil && (h.HireDate == nil || !filter.Period.Contains(*h.HireDate)) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

type fixedAdvances []*advance.Advance

func (f fixedAdvances) List(_ context.Context, filter advance.Filter) ([]*advance.Advance, error) {
	var out []*advance.Advance
	for _, a := range f {
		if filter.Period != nil && !filter.Period.Contains(a.AdvanceDate) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(year int, month time.Month, d int) *time.Time {
	t := day(year, month, d)
	return &t
}

func marchPeriod(t *testing.T) ledger.Period {
	t.Helper()
	p, err := ledger.NewPeriod(2025, 3)
	require.NoError(t, err)
	return p
}

func newTestService() *Service {
	trips := fixedTrips{
		{LoadingDate: day(2025, time.March, 4), AdvanceReceived: amt("3000"), BalanceReceived: amt("2000"), TripStatus: trip.TripStatusCompleted},
		{LoadingDate: day(2025, time.March, 12), AdvanceReceived: amt("1000"), BalanceReceived: amt("0"), TripStatus: trip.TripStatusPending},
		{LoadingDate: day(2025, time.March, 20), AdvanceReceived: amt("9999"), BalanceReceived: amt("0"), TripStatus: trip.TripStatusCancelled},
		{LoadingDate: day(2025, time.April, 2), AdvanceReceived: amt("500"), BalanceReceived: amt("0"), TripStatus: trip.TripStatusCompleted},
	}
	settlements := fixedSettlements{
		{Period: ledger.Period{Year: 2025, Month: time.March}, NetPay: amt("1500")},
		{Period: ledger.Period{Year: 2025, Month: time.April}, NetPay: amt("800")},
	}
	hires := fixedHires{
		{HireDate: dayPtr(2025, time.March, 6), AdvancePaid: amt("400"), TotalPaid: amt("600")},
	}
	advances := fixedAdvances{
		{AdvanceDate: day(2025, time.March, 10), Amount: amt("250")},
		{AdvanceDate: day(2025, time.May, 1), Amount: amt("999")},
	}
	return NewService(trips, settlements, hires, advances)
}

func TestMonthly(t *testing.T) {
	svc := newTestService()

	sum, err := svc.Monthly(context.Background(), marchPeriod(t))
	require.NoError(t, err)

	// Cancelled trips earn nothing; the April trip is out of range.
	assert.True(t, sum.TripIncome.Equal(amt("6000")), "got %s", sum.TripIncome)
	assert.True(t, sum.PayrollExpense.Equal(amt("1500")))
	assert.True(t, sum.HireExpense.Equal(amt("1000")))
	assert.True(t, sum.AdvancesIssued.Equal(amt("250")))
	assert.True(t, sum.TotalExpense.Equal(amt("2750")))
	assert.True(t, sum.NetProfit.Equal(amt("3250")))
}

func TestMonthly_EmptyMonthIsZero(t *testing.T) {
	svc := newTestService()
	p, err := ledger.NewPeriod(2025, 12)
	require.NoError(t, err)

	sum, err := svc.Monthly(context.Background(), p)
	require.NoError(t, err)

	assert.True(t, sum.TripIncome.IsZero())
	assert.True(t, sum.TotalExpense.IsZero())
	assert.True(t, sum.NetProfit.IsZero())
}

func TestYearly(t *testing.T) {
	svc := newTestService()

	report, err := svc.Yearly(context.Background(), 2025)
	require.NoError(t, err)

	require.Len(t, report.Months, 12)
	assert.Equal(t, time.January, report.Months[0].Period.Month)
	assert.Equal(t, time.December, report.Months[11].Period.Month)

	// March + April income and every expense bucket across the year.
	assert.True(t, report.TotalIncome.Equal(amt("6500")), "got %s", report.TotalIncome)
	assert.True(t, report.TotalExpense.Equal(amt("4549")), "got %s", report.TotalExpense)
	assert.True(t, report.NetProfit.Equal(amt("1951")))

	march := report.Months[2]
	assert.True(t, march.NetProfit.Equal(amt("3250")))
}
