package domain

import (
	"github.com/shopspring/decimal"
)

// Outcome tells whether Apply changed the account.
type Outcome int

const (
	// OutcomeApplied means the record mutated the account.
	OutcomeApplied Outcome = iota
	// OutcomeIgnored means the record was a silent no-op, e.g. a dispute
	// naming an unknown transaction.
	OutcomeIgnored
	// OutcomeRejected means the record was invalid and Apply returned an
	// error. The account is unchanged.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Account holds the balances of a single client.
type Account struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool

	deposits    *DepositStore
	chargedBack decimal.Decimal
}

// NewAccount creates an empty, unlocked account.
func NewAccount(clientID uint16) *Account {
	return &Account{
		ClientID:    clientID,
		Available:   decimal.Zero,
		Held:        decimal.Zero,
		deposits:    NewDepositStore(),
		chargedBack: decimal.Zero,
	}
}

// Total returns available plus held funds.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Deposits exposes the account's deposit entries for lookup.
func (a *Account) Deposits() *DepositStore {
	return a.deposits
}

// ChargedBack returns the sum of every chargeback applied to the account.
// Held always equals the disputed deposit amounts minus this sum.
func (a *Account) ChargedBack() decimal.Decimal {
	return a.chargedBack
}

// Apply runs one record against the account. A non-nil error means the
// record was rejected and nothing changed. Unknown references and repeated
// disputes are ignored without an error.
//
// Locked accounts still accept records.
func (a *Account) Apply(rec TransactionRecord) (Outcome, error) {
	switch rec.Type {
	case TransactionTypeDeposit:
		return a.deposit(rec)
	case TransactionTypeWithdrawal:
		return a.withdraw(rec)
	case TransactionTypeDispute:
		return a.dispute(rec.TxID), nil
	case TransactionTypeResolve:
		return a.resolve(rec.TxID), nil
	case TransactionTypeChargeback:
		return a.chargeback(rec.TxID)
	default:
		return OutcomeRejected, ErrUnknownTransactionType
	}
}

func (a *Account) deposit(rec TransactionRecord) (Outcome, error) {
	if !rec.Amount.Valid {
		return OutcomeRejected, ErrMissingAmount
	}

	a.deposits.Record(rec.TxID, rec.Amount.Decimal)
	a.Available = a.Available.Add(rec.Amount.Decimal)
	return OutcomeApplied, nil
}

func (a *Account) withdraw(rec TransactionRecord) (Outcome, error) {
	if !rec.Amount.Valid {
		return OutcomeRejected, ErrMissingAmount
	}
	if a.Available.LessThan(rec.Amount.Decimal) {
		return OutcomeRejected, ErrInsufficientFunds
	}

	a.Available = a.Available.Sub(rec.Amount.Decimal)
	return OutcomeApplied, nil
}

// dispute may drive Available negative when the deposit was already
// partially withdrawn.
func (a *Account) dispute(txID uint32) Outcome {
	entry := a.deposits.lookup(txID)
	if entry == nil || entry.Disputed {
		return OutcomeIgnored
	}

	entry.Disputed = true
	a.Available = a.Available.Sub(entry.Amount)
	a.Held = a.Held.Add(entry.Amount)
	return OutcomeApplied
}

func (a *Account) resolve(txID uint32) Outcome {
	entry := a.deposits.lookup(txID)
	if entry == nil || !entry.Disputed {
		return OutcomeIgnored
	}

	entry.Disputed = false
	a.Available = a.Available.Add(entry.Amount)
	a.Held = a.Held.Sub(entry.Amount)
	return OutcomeApplied
}

// chargeback leaves the entry disputed. A later resolve on the same id
// still applies and a repeated chargeback takes the amount out of Held again.
func (a *Account) chargeback(txID uint32) (Outcome, error) {
	entry := a.deposits.lookup(txID)
	if entry == nil {
		return OutcomeIgnored, nil
	}
	if !entry.Disputed {
		return OutcomeRejected, ErrInvalidChargeback
	}

	a.Held = a.Held.Sub(entry.Amount)
	a.chargedBack = a.chargedBack.Add(entry.Amount)
	a.Locked = true
	return OutcomeApplied, nil
}

// Snapshot returns the reporting view of the account.
func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ClientID:  a.ClientID,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// AccountSnapshot is an immutable copy of an account's balances.
type AccountSnapshot struct {
	ClientID  uint16
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
