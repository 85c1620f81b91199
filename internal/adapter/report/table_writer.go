// Package report renders account snapshots as a delimited table.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// DefaultPrecision is the minimum number of fractional digits rendered.
const DefaultPrecision int32 = 4

var header = []string{"client", "available", "total", "held", "locked"}

// TableWriter writes one row per account to an io.Writer.
type TableWriter struct {
	out       io.Writer
	precision int32
}

// NewTableWriter creates a TableWriter. Amounts are rendered with at least
// precision fractional digits; a negative precision selects DefaultPrecision.
func NewTableWriter(out io.Writer, precision int32) *TableWriter {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &TableWriter{out: out, precision: precision}
}

// Name implements usecase.SnapshotSink.
func (w *TableWriter) Name() string {
	return "table"
}

// Write implements usecase.SnapshotSink.
func (w *TableWriter) Write(ctx context.Context, _ string, snapshots []domain.AccountSnapshot) error {
	cw := csv.NewWriter(w.out)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(header))
	for _, s := range snapshots {
		if err := ctx.Err(); err != nil {
			return err
		}

		row[0] = strconv.FormatUint(uint64(s.ClientID), 10)
		row[1] = FormatAmount(s.Available, w.precision)
		row[2] = FormatAmount(s.Total, w.precision)
		row[3] = FormatAmount(s.Held, w.precision)
		row[4] = strconv.FormatBool(s.Locked)

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write client %d: %w", s.ClientID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatAmount renders d in plain notation with at least precision
// fractional digits. Digits beyond precision are kept, never rounded.
func FormatAmount(d decimal.Decimal, precision int32) string {
	places := precision
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}
