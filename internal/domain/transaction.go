package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType identifies what a record does to an account.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeDispute    TransactionType = "dispute"
	TransactionTypeResolve    TransactionType = "resolve"
	TransactionTypeChargeback TransactionType = "chargeback"
)

// ParseTransactionType maps a raw type field to a TransactionType.
func ParseTransactionType(raw string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(raw))); t {
	case TransactionTypeDeposit,
		TransactionTypeWithdrawal,
		TransactionTypeDispute,
		TransactionTypeResolve,
		TransactionTypeChargeback:
		return t, nil
	default:
		return "", ErrUnknownTransactionType
	}
}

// Monetary reports whether records of this type carry an amount.
func (t TransactionType) Monetary() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// TransactionRecord is one parsed input row.
//
// Deposit and withdrawal records define TxID; dispute, resolve and
// chargeback records reference the TxID of an earlier deposit and carry no
// amount.
type TransactionRecord struct {
	ClientID uint16
	Type     TransactionType
	TxID     uint32
	Amount   decimal.NullDecimal
}
