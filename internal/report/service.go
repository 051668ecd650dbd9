// Package report rolls the financial core up into per-month summaries. It
// only reads the other packages' outputs; nothing here mutates state.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/internal/advance"
	"github.com/MIDNayanajith/kasthuri-backend/internal/hire"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/payroll"
	"github.com/MIDNayanajith/kasthuri-backend/internal/trip"
)

// MonthlySummary is the income/expense rollup for one calendar month.
// Income counts trip receipts; expenses count payroll net pay, hire
// payments, and cash advances issued in the month. Advances later deducted
// from payroll reduce its net pay, so the two buckets never double-count.
type MonthlySummary struct {
	Period         ledger.Period   `json:"period"`
	TripIncome     decimal.Decimal `json:"trip_income"`
	PayrollExpense decimal.Decimal `json:"payroll_expense"`
	HireExpense    decimal.Decimal `json:"hire_expense"`
	AdvancesIssued decimal.Decimal `json:"advances_issued"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

// YearlyReport carries one summary per month of a year plus the totals.
type YearlyReport struct {
	Year         int              `json:"year"`
	Months       []MonthlySummary `json:"months"`
	TotalIncome  decimal.Decimal  `json:"total_income"`
	TotalExpense decimal.Decimal  `json:"total_expense"`
	NetProfit    decimal.Decimal  `json:"net_profit"`
}

// The aggregator consumes each package through its list surface only.
type TripLister interface {
	List(ctx context.Context, f trip.Filter) ([]*trip.Trip, error)
}

type SettlementLister interface {
	List(ctx context.Context, f payroll.Filter) ([]*payroll.Settlement, error)
}

type HireLister interface {
	List(ctx context.Context, f hire.Filter) ([]*hire.Hire, error)
}

type AdvanceLister interface {
	List(ctx context.Context, f advance.Filter) ([]*advance.Advance, error)
}

// Service implements the period aggregator
type Service struct {
	trips       TripLister
	settlements SettlementLister
	hires       HireLister
	advances    AdvanceLister
}

// NewService creates a new report service
func NewService(trips TripLister, settlements SettlementLister, hires HireLister, advances AdvanceLister) *Service {
	return &Service{trips: trips, settlements: settlements, hires: hires, advances: advances}
}

// Monthly computes the rollup for one period.
func (s *Service) Monthly(ctx context.Context, p ledger.Period) (*MonthlySummary, error) {
	sum := &MonthlySummary{
		Period:         p,
		TripIncome:     ledger.Zero,
		PayrollExpense: ledger.Zero,
		HireExpense:    ledger.Zero,
		AdvancesIssued: ledger.Zero,
	}

	trips, err := s.trips.List(ctx, trip.Filter{Period: &p})
	if err != nil {
		return nil, err
	}
	for _, t := range trips {
		if t.TripStatus == trip.TripStatusCancelled {
			continue
		}
		sum.TripIncome = sum.TripIncome.Add(t.Received())
	}

	settlements, err := s.settlements.List(ctx, payroll.Filter{Period: &p})
	if err != nil {
		return nil, err
	}
	for _, st := range settlements {
		sum.PayrollExpense = sum.PayrollExpense.Add(st.NetPay)
	}

	hires, err := s.hires.List(ctx, hire.Filter{Period: &p})
	if err != nil {
		return nil, err
	}
	for _, h := range hires {
		sum.HireExpense = sum.HireExpense.Add(h.Received())
	}

	advances, err := s.advances.List(ctx, advance.Filter{Period: &p})
	if err != nil {
		return nil, err
	}
	for _, a := range advances {
		sum.AdvancesIssued = sum.AdvancesIssued.Add(a.Amount)
	}

	sum.TotalExpense = ledger.Sum(sum.PayrollExpense, sum.HireExpense, sum.AdvancesIssued)
	sum.NetProfit = sum.TripIncome.Sub(sum.TotalExpense)
	return sum, nil
}

// Yearly computes twelve monthly rollups for the given year plus totals.
func (s *Service) Yearly(ctx context.Context, year int) (*YearlyReport, error) {
	report := &YearlyReport{
		Year:         year,
		Months:       make([]MonthlySummary, 0, 12),
		TotalIncome:  ledger.Zero,
		TotalExpense: ledger.Zero,
	}
	for m := 1; m <= 12; m++ {
		p, err := ledger.NewPeriod(year, m)
		if err != nil {
			return nil, err
		}
		sum, err := s.Monthly(ctx, p)
		if err != nil {
			return nil, err
		}
		report.Months = append(report.Months, *sum)
		report.TotalIncome = report.TotalIncome.Add(sum.TripIncome)
		report.TotalExpense = report.TotalExpense.Add(sum.TotalExpense)
	}
	report.NetProfit = report.TotalIncome.Sub(report.TotalExpense)
	return report, nil
}
