package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"
)

// PaymentStatus is the settlement state of a balance account.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "Pending"
	PaymentStatusPartiallyPaid PaymentStatus = "PartiallyPaid"
	PaymentStatusFullyPaid     PaymentStatus = "FullyPaid"
)

// Account is anything that owes money against a contract amount. Hires and
// trips both implement it, so status derivation is enforced identically for
// both.
type Account interface {
	// Due is the full contract amount.
	Due() decimal.Decimal
	// Received is the cumulative amount paid so far.
	Received() decimal.Decimal
}

// Outstanding returns due minus received. It can be negative; callers that
// persist must first reject that case via Status.
func Outstanding(a Account) decimal.Decimal {
	return a.Due().Sub(a.Received())
}

// Status derives the payment status from (due, received). Received amounts
// exceeding the contract amount are a ConflictError, never clamped.
func Status(a Account) (PaymentStatus, error) {
	due := a.Due()
	outstanding := Outstanding(a)

	switch {
	case IsNegative(outstanding):
		return "", apperr.Conflictf("payments exceed contract amount: received %s of %s",
			a.Received().String(), due.String())
	case outstanding.Equal(due):
		return PaymentStatusPending, nil
	case outstanding.IsZero():
		return PaymentStatusFullyPaid, nil
	default:
		return PaymentStatusPartiallyPaid, nil
	}
}
