package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iho/txledger/internal/adapter/csvsource"
	"github.com/iho/txledger/internal/adapter/report"
	postgresRepo "github.com/iho/txledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/txledger/internal/adapter/repository/redis"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/config"
	"github.com/iho/txledger/internal/infrastructure/idgen"
	"github.com/iho/txledger/internal/infrastructure/logger"
	"github.com/iho/txledger/internal/infrastructure/metrics"
	"github.com/iho/txledger/internal/infrastructure/postgres"
	"github.com/iho/txledger/internal/infrastructure/redis"
	"github.com/iho/txledger/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}

	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "txledger: %v\n", err)
		return 1
	}
	return 0
}

type options struct {
	logLevel    string
	logFormat   string
	metricsFile string
	precision   int32
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "txledger [FILE]",
		Short: "Replay a CSV transaction log and print client balances",
		Long: `Reads deposit, withdrawal, dispute, resolve and chargeback records from FILE
(or standard input when FILE is omitted or "-") and writes the resulting
client balances to standard output as CSV.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			return process(cmd.Context(), cfg, path, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or console (overrides LOG_FORMAT)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run (overrides METRICS_FILE)")
	cmd.Flags().Int32Var(&opts.precision, "precision", report.DefaultPrecision, "minimum decimal places in the report (overrides OUTPUT_PRECISION)")

	cmd.AddCommand(newMigrateCmd(&opts, stderr))

	return cmd
}

// loadConfig reads the environment and applies flags the user set.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("precision") {
		cfg.OutputPrecision = opts.precision
	}

	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) zerolog.Logger {
	l := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: stderr,
	})
	log.Logger = l
	return l
}

func process(ctx context.Context, cfg *config.Config, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	l := newLogger(cfg, stderr)

	input, closeInput, err := openInput(path, stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	processor := usecase.NewProcessor(domain.NewRegistry(), idgen.NewULIDGenerator(), l, m)

	if _, err := processor.Run(ctx, csvsource.New(input)); err != nil {
		return err
	}

	if err := usecase.CheckConsistency(processor.Registry(), processor.Flows()); err != nil {
		l.Error().Err(err).Msg("consistency check failed")
	}

	sinks, closeSinks, err := openSinks(ctx, cfg, l, stdout)
	if err != nil {
		return err
	}
	defer closeSinks()

	exportCtx, cancel := context.WithTimeout(ctx, cfg.ExportTimeout)
	defer cancel()

	reportErr := processor.Report(exportCtx, sinks...)

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, reg); err != nil {
			l.Error().Err(err).Str("path", cfg.MetricsFile).Msg("failed to write metrics file")
		}
	}

	if reportErr != nil {
		return fmt.Errorf("export failed: %w", reportErr)
	}
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// openSinks returns the stdout report followed by any enabled export sinks.
func openSinks(ctx context.Context, cfg *config.Config, l zerolog.Logger, stdout io.Writer) ([]usecase.SnapshotSink, func(), error) {
	sinks := []usecase.SnapshotSink{report.NewTableWriter(stdout, cfg.OutputPrecision)}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return nil, nil, err
		}

		pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		sinks = append(sinks, postgresRepo.NewSnapshotRepository(pool))
		l.Debug().Msg("connected to postgres")
	}

	if cfg.RedisEnabled() {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		sinks = append(sinks, redisRepo.NewSnapshotStore(client, cfg.RedisSnapshotTTL))
		l.Debug().Msg("connected to redis")
	}

	return sinks, closeAll, nil
}

func newMigrateCmd(opts *options, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the account_snapshots schema in DATABASE_URL",
	}

	migration := func(name string, fn func(databaseURL, migrationsPath string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "Run migrations " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cmd, *opts)
				if err != nil {
					return err
				}
				newLogger(cfg, stderr)

				if !cfg.PostgresEnabled() {
					return errDatabaseURLRequired
				}
				return fn(cfg.DatabaseURL, cfg.MigrationsPath)
			},
		}
	}

	cmd.AddCommand(
		migration("up", postgres.RunMigrations),
		migration("down", postgres.RunMigrationsDown),
	)

	return cmd
}

var errDatabaseURLRequired = errors.New("DATABASE_URL is not set")
