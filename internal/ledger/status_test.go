package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

type account struct {
	due      decimal.Decimal
	received decimal.Decimal
}

func (a account) Due() decimal.Decimal      { return a.due }
func (a account) Received() decimal.Decimal { return a.received }

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		due      string
		received string
		want     PaymentStatus
	}{
		{"nothing received", "10000", "0", PaymentStatusPending},
		{"partially paid", "10000", "5000", PaymentStatusPartiallyPaid},
		{"fully paid", "10000", "10000", PaymentStatusFullyPaid},
		{"single unit outstanding", "10000", "9999.99", PaymentStatusPartiallyPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Status(account{due: amt(tt.due), received: amt(tt.received)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_OverpaymentRejected(t *testing.T) {
	_, err := Status(account{due: amt("10000"), received: amt("10000.01")})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestOutstanding(t *testing.T) {
	a := account{due: amt("10000"), received: amt("3000")}
	assert.True(t, Outstanding(a).Equal(amt("7000")))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, time.March, p.Month)

	_, err = ParsePeriod("03-2025")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = ParsePeriod("2025-13")
	require.Error(t, err)
}

func TestPeriodBounds(t *testing.T) {
	p, err := NewPeriod(2025, 2)
	require.NoError(t, err)

	start, end := p.Bounds()
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), end)

	assert.True(t, p.Contains(time.Date(2025, time.February, 28, 23, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(end))
}

func TestNewPeriod_InvalidMonth(t *testing.T) {
	_, err := NewPeriod(2025, 0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
