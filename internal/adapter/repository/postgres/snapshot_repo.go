package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// snapshotChunkSize keeps each INSERT well under PostgreSQL's 65535
// bind-parameter limit.
const snapshotChunkSize = 1000

const snapshotColumns = 7

var errUnsupportedTx = errors.New("transaction does not support Exec")

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SnapshotRepository writes the final account snapshots of a run to the
// account_snapshots table. It implements usecase.SnapshotSink.
type SnapshotRepository struct {
	txManager usecase.TransactionManager
	retrier   usecase.Retrier
	now       func() time.Time
}

// NewSnapshotRepository creates a SnapshotRepository on pool.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return newSnapshotRepository(NewTxManager(pool), NewRetrier())
}

func newSnapshotRepository(txManager usecase.TransactionManager, retrier usecase.Retrier) *SnapshotRepository {
	return &SnapshotRepository{
		txManager: txManager,
		retrier:   retrier,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Name implements usecase.SnapshotSink.
func (r *SnapshotRepository) Name() string {
	return "postgres"
}

// Write stores all snapshots for runID in one transaction. Rewriting the
// same run replaces its rows, so a retried attempt is harmless.
func (r *SnapshotRepository) Write(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	return r.retrier.Retry(ctx, func() error {
		return r.save(ctx, runID, snapshots)
	})
}

func (r *SnapshotRepository) save(ctx context.Context, runID string, snapshots []domain.AccountSnapshot) error {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	exec, ok := tx.(execer)
	if !ok {
		return errUnsupportedTx
	}

	createdAt := timeToPgTimestamptz(r.now())
	for start := 0; start < len(snapshots); start += snapshotChunkSize {
		end := min(start+snapshotChunkSize, len(snapshots))
		sql, args := buildSnapshotInsert(runID, snapshots[start:end], createdAt)

		if _, err := exec.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("failed to insert snapshots: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func buildSnapshotInsert(runID string, snapshots []domain.AccountSnapshot, createdAt any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO account_snapshots (run_id, client_id, available, held, total, locked, created_at) VALUES ")

	args := make([]any, 0, len(snapshots)*snapshotColumns)
	for i, s := range snapshots {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * snapshotColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		args = append(args,
			runID,
			int32(s.ClientID),
			decimalToNumeric(s.Available),
			decimalToNumeric(s.Held),
			decimalToNumeric(s.Total),
			s.Locked,
			createdAt,
		)
	}

	sb.WriteString(" ON CONFLICT (run_id, client_id) DO UPDATE SET" +
		" available = EXCLUDED.available, held = EXCLUDED.held, total = EXCLUDED.total," +
		" locked = EXCLUDED.locked, created_at = EXCLUDED.created_at")

	return sb.String(), args
}
