package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase/mocks"
)

func testSnapshots(n int) []domain.AccountSnapshot {
	snaps := make([]domain.AccountSnapshot, n)
	for i := range snaps {
		snaps[i] = domain.AccountSnapshot{
			ClientID:  uint16(i + 1),
			Available: decimal.RequireFromString("7.09"),
			Held:      decimal.RequireFromString("100.01"),
			Total:     decimal.RequireFromString("107.10"),
		}
	}
	return snaps
}

func fastRetrier() *Retrier {
	r := NewRetrier()
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 50 * time.Millisecond
	return r
}

func TestSnapshotRepositoryWrite(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mockPool.ExpectCommit()

	repo := newSnapshotRepository(newTxManagerWithPool(mockPool), fastRetrier())
	require.NoError(t, repo.Write(context.Background(), "run-1", testSnapshots(2)))

	assert.Equal(t, "postgres", repo.Name())
	assertExpectations(t, mockPool)
}

func TestSnapshotRepositoryWriteChunks(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnResult(pgxmock.NewResult("INSERT", snapshotChunkSize))
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnResult(pgxmock.NewResult("INSERT", 5))
	mockPool.ExpectCommit()

	repo := newSnapshotRepository(newTxManagerWithPool(mockPool), fastRetrier())
	require.NoError(t, repo.Write(context.Background(), "run-1", testSnapshots(snapshotChunkSize+5)))

	assertExpectations(t, mockPool)
}

func TestSnapshotRepositoryRetriesDeadlock(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnError(&pgconn.PgError{Code: pgErrDeadlock})
	mockPool.ExpectRollback()
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()

	repo := newSnapshotRepository(newTxManagerWithPool(mockPool), fastRetrier())
	require.NoError(t, repo.Write(context.Background(), "run-1", testSnapshots(1)))

	assertExpectations(t, mockPool)
}

func TestSnapshotRepositoryPermanentError(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("INSERT INTO account_snapshots").
		WillReturnError(&pgconn.PgError{Code: "42P01"})
	mockPool.ExpectRollback()

	repo := newSnapshotRepository(newTxManagerWithPool(mockPool), fastRetrier())
	err := repo.Write(context.Background(), "run-1", testSnapshots(1))

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "42P01", pgErr.Code)
}

func TestSnapshotRepositoryRejectsForeignTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tx := mocks.NewMockTransaction(ctrl)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	txManager := mocks.NewMockTransactionManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)

	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().Retry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, op func() error) error { return op() },
	)

	repo := newSnapshotRepository(txManager, retrier)
	err := repo.Write(context.Background(), "run-1", testSnapshots(1))
	require.True(t, errors.Is(err, errUnsupportedTx))
}

func TestBuildSnapshotInsert(t *testing.T) {
	sql, args := buildSnapshotInsert("run-9", testSnapshots(2), "ts")

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO account_snapshots"))
	assert.Contains(t, sql, "($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)")
	assert.Contains(t, sql, "ON CONFLICT (run_id, client_id)")
	require.Len(t, args, 14)
	assert.Equal(t, "run-9", args[0])
	assert.Equal(t, int32(2), args[8])

	available := numericToDecimal(decimalToNumeric(testSnapshots(1)[0].Available))
	assert.True(t, available.Equal(decimal.RequireFromString("7.09")))
}
