// Package csvsource reads transaction records from delimited text.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// Header names accepted for each column. Matching is case-insensitive.
var columnAliases = map[string]column{
	"type":      colType,
	"client":    colClient,
	"client_id": colClient,
	"tx":        colTx,
	"tx_id":     colTx,
	"amount":    colAmount,
}

type column int

const (
	colType column = iota
	colClient
	colTx
	colAmount
	numColumns
)

// Source is a lazy usecase.RecordSource over CSV input with a header row.
type Source struct {
	reader *csv.Reader

	// index[c] is the field position of column c, or -1 when absent.
	index   [numColumns]int
	width   int
	started bool
}

// New creates a Source. The header is read on the first call to Next.
func New(r io.Reader) *Source {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	return &Source{reader: reader}
}

// Next returns the next record, io.EOF at the end of input, or a
// *domain.ParseError for a line that was skipped. Input without a header
// row is an empty stream.
func (s *Source) Next() (domain.TransactionRecord, error) {
	if !s.started {
		if err := s.readHeader(); err != nil {
			return domain.TransactionRecord{}, err
		}
		s.started = true
	}

	fields, err := s.reader.Read()
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return domain.TransactionRecord{}, &domain.ParseError{Line: csvErr.Line, Err: csvErr.Err}
		}
		return domain.TransactionRecord{}, err
	}

	line, _ := s.reader.FieldPos(0)

	rec, err := s.parse(fields)
	if err != nil {
		return domain.TransactionRecord{}, &domain.ParseError{Line: line, Err: err}
	}

	return rec, nil
}

func (s *Source) readHeader() error {
	fields, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("failed to read header: %w", err)
	}

	for i := range s.index {
		s.index[i] = -1
	}

	for i, name := range fields {
		col, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("unknown header column %q", name)
		}
		s.index[col] = i
	}

	for _, col := range []column{colType, colClient, colTx} {
		if s.index[col] < 0 {
			return fmt.Errorf("%w: %s", domain.ErrMissingColumn, col)
		}
	}

	s.width = len(fields)
	return nil
}

func (s *Source) parse(fields []string) (domain.TransactionRecord, error) {
	if !s.validWidth(len(fields)) {
		return domain.TransactionRecord{}, fmt.Errorf("%w: expected %d, got %d", domain.ErrColumnCount, s.width, len(fields))
	}

	typ, err := domain.ParseTransactionType(s.field(fields, colType))
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: %q", err, s.field(fields, colType))
	}

	client, err := strconv.ParseUint(s.field(fields, colClient), 10, 16)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("invalid client id: %w", err)
	}

	tx, err := strconv.ParseUint(s.field(fields, colTx), 10, 32)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("invalid transaction id: %w", err)
	}

	rec := domain.TransactionRecord{
		ClientID: uint16(client),
		Type:     typ,
		TxID:     uint32(tx),
	}

	if raw := s.field(fields, colAmount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		rec.Amount = decimal.NewNullDecimal(amount)
	}

	return rec.Normalize()
}

// validWidth accepts rows with exactly the header's width, and rows that
// omit a trailing amount column entirely.
func (s *Source) validWidth(n int) bool {
	if n == s.width {
		return true
	}
	return n == s.width-1 && s.index[colAmount] == s.width-1
}

func (s *Source) field(fields []string, col column) string {
	i := s.index[col]
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func (c column) String() string {
	switch c {
	case colType:
		return "type"
	case colClient:
		return "client"
	case colTx:
		return "tx"
	case colAmount:
		return "amount"
	default:
		return "unknown"
	}
}
