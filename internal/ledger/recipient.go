package ledger

import "github.com/MIDNayanajith/kasthuri-backend/pkg/apperr"

// RecipientType distinguishes the two kinds of people who can receive
// advances and payroll.
type RecipientType string

const (
	RecipientDriver RecipientType = "Driver"
	RecipientUser   RecipientType = "User"
)

// Recipient identifies a driver or internal user.
type Recipient struct {
	Type RecipientType
	ID   int64
}

// Validate checks the recipient reference is well formed.
func (r Recipient) Validate() error {
	if r.Type != RecipientDriver && r.Type != RecipientUser {
		return apperr.Validationf("invalid recipient type %q, must be %q or %q",
			r.Type, RecipientDriver, RecipientUser)
	}
	if r.ID <= 0 {
		return apperr.Validationf("recipient id is required")
	}
	return nil
}
