package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrInsufficientFunds = errors.New("insufficient available funds")
	ErrInvalidChargeback = errors.New("chargeback on a transaction that is not disputed")
	ErrMissingAmount     = errors.New("amount is required")

	// Record errors
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrNegativeAmount         = errors.New("amount must not be negative")
	ErrColumnCount            = errors.New("wrong number of columns")
	ErrMissingColumn          = errors.New("required column missing from header")
)

// ParseError describes an input line that could not be turned into a
// TransactionRecord. The line is skipped; ingestion continues.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
