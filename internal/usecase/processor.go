package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/metrics"
)

// Summary counts what happened during a run.
type Summary struct {
	RunID       string
	Records     int
	Applied     int
	Ignored     int
	Rejected    int
	ParseErrors int
	Accounts    int
	Locked      int
}

// Flows accumulates the money that entered or left the ledger.
type Flows struct {
	Deposited   decimal.Decimal
	Withdrawn   decimal.Decimal
	ChargedBack decimal.Decimal
}

// Net returns the amount that should remain across all accounts.
func (f Flows) Net() decimal.Decimal {
	return f.Deposited.Sub(f.Withdrawn).Sub(f.ChargedBack)
}

// Processor applies transaction records to a registry of accounts, one at
// a time in arrival order. It is not safe for concurrent use.
type Processor struct {
	registry *domain.Registry
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	runID    string

	summary Summary
	flows   Flows
}

// NewProcessor creates a Processor over registry. metrics may be nil.
func NewProcessor(registry *domain.Registry, idGen IDGenerator, logger zerolog.Logger, m *metrics.Metrics) *Processor {
	runID := idGen.Generate()

	return &Processor{
		registry: registry,
		logger:   logger.With().Str("run_id", runID).Logger(),
		metrics:  m,
		runID:    runID,
		summary:  Summary{RunID: runID},
		flows: Flows{
			Deposited:   decimal.Zero,
			Withdrawn:   decimal.Zero,
			ChargedBack: decimal.Zero,
		},
	}
}

// RunID identifies this run in logs and exported snapshots.
func (p *Processor) RunID() string {
	return p.runID
}

// Registry returns the accounts built so far.
func (p *Processor) Registry() *domain.Registry {
	return p.registry
}

// Summary returns the counters accumulated so far.
func (p *Processor) Summary() Summary {
	s := p.summary
	s.Accounts = p.registry.Len()
	return s
}

// Flows returns the money movements applied so far.
func (p *Processor) Flows() Flows {
	return p.flows
}

// Process applies one record. Rejections are logged and absorbed; unknown
// references are ignored without a diagnostic.
func (p *Processor) Process(rec domain.TransactionRecord) {
	acc, created := p.registry.GetOrCreate(rec.ClientID)
	if created && p.metrics != nil {
		p.metrics.AccountsCreated.Inc()
	}

	wasLocked := acc.Locked
	heldBefore := acc.Held

	outcome, err := acc.Apply(rec)

	p.summary.Records++
	switch outcome {
	case domain.OutcomeApplied:
		p.summary.Applied++
		p.trackFlows(rec, heldBefore.Sub(acc.Held))
	case domain.OutcomeIgnored:
		p.summary.Ignored++
	case domain.OutcomeRejected:
		p.summary.Rejected++
		p.logger.Warn().
			Err(err).
			Uint16("client", rec.ClientID).
			Uint32("tx", rec.TxID).
			Str("type", string(rec.Type)).
			Msg("transaction rejected")
		if p.metrics != nil {
			p.metrics.RecordsRejected.WithLabelValues(rejectReason(err)).Inc()
		}
	}

	if !wasLocked && acc.Locked {
		p.summary.Locked++
		if p.metrics != nil {
			p.metrics.AccountsLocked.Inc()
		}
	}

	if p.metrics != nil {
		p.metrics.RecordsProcessed.WithLabelValues(string(rec.Type), outcome.String()).Inc()
	}
}

func (p *Processor) trackFlows(rec domain.TransactionRecord, heldReleased decimal.Decimal) {
	switch rec.Type {
	case domain.TransactionTypeDeposit:
		p.flows.Deposited = p.flows.Deposited.Add(rec.Amount.Decimal)
	case domain.TransactionTypeWithdrawal:
		p.flows.Withdrawn = p.flows.Withdrawn.Add(rec.Amount.Decimal)
	case domain.TransactionTypeChargeback:
		p.flows.ChargedBack = p.flows.ChargedBack.Add(heldReleased)
	}
}

// Run drains src through Process. Parse errors are logged and skipped; any
// other source error ends the run and is returned.
func (p *Processor) Run(ctx context.Context, src RecordSource) (Summary, error) {
	start := time.Now()
	defer func() {
		if p.metrics != nil {
			p.metrics.RunDuration.Observe(time.Since(start).Seconds())
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return p.Summary(), err
		}

		rec, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			var parseErr *domain.ParseError
			if errors.As(err, &parseErr) {
				p.summary.ParseErrors++
				p.logger.Warn().
					Int("line", parseErr.Line).
					Err(parseErr.Err).
					Msg("skipping unparseable record")
				if p.metrics != nil {
					p.metrics.ParseErrors.Inc()
				}
				continue
			}

			return p.Summary(), fmt.Errorf("failed to read records: %w", err)
		}

		p.Process(rec)

		if p.summary.Records%ProgressInterval == 0 {
			p.logger.Debug().Int("records", p.summary.Records).Msg("progress")
		}
	}

	summary := p.Summary()
	p.logger.Info().
		Int("records", summary.Records).
		Int("applied", summary.Applied).
		Int("ignored", summary.Ignored).
		Int("rejected", summary.Rejected).
		Int("parse_errors", summary.ParseErrors).
		Int("accounts", summary.Accounts).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")

	return summary, nil
}

// Report writes the ordered account snapshots to every sink. All sinks are
// attempted; failures are joined into the returned error.
func (p *Processor) Report(ctx context.Context, sinks ...SnapshotSink) error {
	snapshots := p.registry.Snapshots()

	var errs []error
	for _, sink := range sinks {
		if err := p.writeSink(ctx, sink, snapshots); err != nil {
			p.logger.Error().Err(err).Str("sink", sink.Name()).Msg("snapshot export failed")
			if p.metrics != nil {
				p.metrics.ExportErrors.WithLabelValues(sink.Name()).Inc()
			}
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}

		if p.metrics != nil {
			p.metrics.ExportedTotal.WithLabelValues(sink.Name()).Add(float64(len(snapshots)))
		}
	}

	return errors.Join(errs...)
}

func (p *Processor) writeSink(ctx context.Context, sink SnapshotSink, snapshots []domain.AccountSnapshot) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultExportTimeout)
		defer cancel()
	}

	return sink.Write(ctx, p.runID, snapshots)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrInvalidChargeback):
		return "invalid_chargeback"
	case errors.Is(err, domain.ErrMissingAmount):
		return "missing_amount"
	default:
		return "other"
	}
}
