package ledger

import (
	"fmt"
	"time"

	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// Period is one calendar month. It keys payroll settlements and scopes the
// date filters used across the financial record listings.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod builds a period after validating the month number.
func NewPeriod(year int, month int) (Period, error) {
	if year < 1 {
		return Period{}, apperr.Validationf("invalid period year %d", year)
	}
	if month < 1 || month > 12 {
		return Period{}, apperr.Validationf("invalid period month %d", month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// ParsePeriod parses the YYYY-MM filter format used by the listing endpoints.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, apperr.Validationf("invalid month format %q, use YYYY-MM", s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Bounds returns the half-open [start, end) UTC range covering the month.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the month.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Next returns the following month.
func (p Period) Next() Period {
	start, _ := p.Bounds()
	return PeriodOf(start.AddDate(0, 1, 0))
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
