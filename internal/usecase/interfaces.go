package usecase

import (
	"context"

	"github.com/iho/txledger/internal/domain"
)

// RecordSource yields transaction records in input order.
//
// Next returns io.EOF once the input is exhausted. A *domain.ParseError
// means one line was dropped and the source can still be read; any other
// error is fatal to the run.
type RecordSource interface {
	Next() (domain.TransactionRecord, error)
}

// SnapshotSink receives the final account snapshots of a run.
type SnapshotSink interface {
	Name() string
	Write(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
