package usecase

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when account balances do not match
	// the money that entered and left during the run.
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

// CheckConsistency verifies two invariants after a run:
//  1. the sum of all account totals equals deposits minus withdrawals
//     minus chargebacks;
//  2. each account's held balance equals the sum of its disputed deposits
//     minus the chargebacks applied to it.
func CheckConsistency(registry *domain.Registry, flows Flows) error {
	total := decimal.Zero
	var mismatched []uint16

	registry.Each(func(acc *domain.Account) {
		total = total.Add(acc.Total())
		if !acc.Held.Equal(acc.Deposits().DisputedAmount().Sub(acc.ChargedBack())) {
			mismatched = append(mismatched, acc.ClientID)
		}
	})

	if !total.Equal(flows.Net()) {
		return fmt.Errorf("%w: accounts hold %s, flows net %s", ErrInconsistentLedger, total, flows.Net())
	}

	if len(mismatched) > 0 {
		return fmt.Errorf("%w: held balance differs from disputed deposits less chargebacks for clients %v", ErrInconsistentLedger, mismatched)
	}

	return nil
}
