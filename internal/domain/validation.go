package domain

import (
	"github.com/shopspring/decimal"
)

// ValidateAmount checks a deposit or withdrawal amount. Zero is allowed.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// Normalize validates a parsed record and clears the amount on types that
// do not carry one. A missing amount on a deposit or withdrawal is left for
// Account.Apply to reject.
func (r TransactionRecord) Normalize() (TransactionRecord, error) {
	if !r.Type.Monetary() {
		r.Amount = decimal.NullDecimal{}
		return r, nil
	}

	if r.Amount.Valid {
		if err := ValidateAmount(r.Amount.Decimal); err != nil {
			return r, err
		}
	}

	return r, nil
}
