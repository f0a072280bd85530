package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/application/services"
	"github.com/vsinha/acompreq/pkg/application/services/delivery"
	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/infrastructure/config"
	"github.com/vsinha/acompreq/pkg/infrastructure/events"
	"github.com/vsinha/acompreq/pkg/infrastructure/notify"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/xlsx"
	"github.com/vsinha/acompreq/pkg/interfaces/api"
	"github.com/vsinha/acompreq/pkg/interfaces/cli/output"
)

// Config holds configuration for the track command. Empty values fall back to the
// environment loaded by config.Load.
type Config struct {
	EnvFile          string
	Input            string
	Sheet            string
	Encoding         string
	Assignments      string
	AssignmentsSheet string
	Addresses        string
	DatabaseURL      string
	AsOf             string
	OutputDir        string
	Format           string
	Send             bool
	DryRun           bool
	Serve            bool
	Addr             string
	Verbose          bool
	Help             bool
	Out              io.Writer
}

// TrackCommand loads the requisition log, computes the follow-up and reports or delivers it
type TrackCommand struct {
	config Config
	out    io.Writer
}

func NewTrackCommand(config Config) *TrackCommand {
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	return &TrackCommand{config: config, out: out}
}

// Execute runs the track command
func (c *TrackCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	asOf, err := c.referenceTime()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Send && !c.config.DryRun && cfg.SMTP.Host == "" {
		return fmt.Errorf("validation error: -send requires SMTP_HOST (or use -dry-run)")
	}

	logger := config.NewLogger(cfg.Log, os.Stderr)
	eventStore := events.NewInMemoryEventStore(logger)
	if err := eventStore.Subscribe(events.AllEventTypes, events.NewLogHandler(logger)); err != nil {
		return fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	if c.config.Verbose {
		c.printHeader(cfg)
		fmt.Fprintln(c.out, "📂 Loading requisition log...")
	}

	lines, err := c.loadRequisitionLines(cfg.Input)
	if err != nil {
		return err
	}

	requisitionRepo := memory.NewRequisitionRepository(len(lines))
	if err := requisitionRepo.LoadRawLines(lines); err != nil {
		return fmt.Errorf("failed to load requisition lines into repository: %w", err)
	}

	assignmentRepo, err := c.loadAssignmentRepository(ctx, cfg)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Fprintf(c.out, "✅ Data loaded successfully:\n")
		fmt.Fprintf(c.out, "  Requisition lines: %d\n", len(lines))
		fmt.Fprintf(c.out, "  Assigned sites: %d\n", assignmentRepo.Sites())
		fmt.Fprintln(c.out)
	}

	tracker := services.NewTrackingService(requisitionRepo, assignmentRepo, eventStore, logger)

	if c.config.Serve {
		return api.NewServer(tracker, logger).ListenAndServe(ctx, cfg.HTTP.Addr)
	}

	startTime := time.Now()
	result, err := tracker.Run(ctx, services.RunRequest{Now: asOf})
	runTime := time.Since(startTime)
	if err != nil {
		return fmt.Errorf("error computing requisition follow-up: %w", err)
	}

	err = output.Generate(result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		RunTime:   runTime,
		Out:       c.out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Send || c.config.DryRun {
		if err := c.deliver(ctx, cfg, result, eventStore, logger); err != nil {
			return err
		}
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Follow-up complete!")
	}
	return nil
}

func (c *TrackCommand) loadConfig() (*config.Config, error) {
	var envFiles []string
	if c.config.EnvFile != "" {
		envFiles = append(envFiles, c.config.EnvFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}

	override(&cfg.Input.Path, c.config.Input)
	override(&cfg.Input.Sheet, c.config.Sheet)
	override(&cfg.Input.Encoding, c.config.Encoding)
	override(&cfg.Assignments, c.config.Assignments)
	override(&cfg.Addresses, c.config.Addresses)
	override(&cfg.DatabaseURL, c.config.DatabaseURL)
	override(&cfg.HTTP.Addr, c.config.Addr)
	// An assignment file given as a flag wins over DATABASE_URL from the environment
	if c.config.Assignments != "" && c.config.DatabaseURL == "" {
		cfg.DatabaseURL = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *TrackCommand) referenceTime() (time.Time, error) {
	if c.config.AsOf == "" {
		return time.Now(), nil
	}
	asOf, err := time.Parse(entities.DateLayout, c.config.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -as-of %q, expected YYYY-MM-DD", c.config.AsOf)
	}
	return asOf, nil
}

func (c *TrackCommand) loadRequisitionLines(input config.InputConfig) ([]entities.RawRequisitionLine, error) {
	path := input.Path
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("requisition log not found: %s", path)
	}

	var (
		lines []entities.RawRequisitionLine
		err   error
	)
	if isWorkbook(path) {
		lines, err = xlsx.NewLoader().LoadRequisitionLines(path, input.Sheet)
	} else {
		var loader *csv.Loader
		loader, err = csv.NewLoaderWithEncoding(input.Encoding)
		if err == nil {
			lines, err = loader.LoadRequisitionLines(path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error loading requisition log: %w", err)
	}
	return lines, nil
}

func (c *TrackCommand) loadAssignmentRepository(ctx context.Context, cfg *config.Config) (*memory.AssignmentRepository, error) {
	repo := memory.NewAssignmentRepository()

	var (
		assignments []entities.AdministratorAssignment
		addresses   entities.AddressBook
		err         error
	)

	switch {
	case cfg.DatabaseURL != "":
		pool, connErr := postgres.Connect(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return nil, connErr
		}
		defer pool.Close()

		source := postgres.NewAssignmentSource(pool, postgres.DefaultTables())
		if assignments, err = source.FetchAssignments(ctx); err != nil {
			return nil, err
		}
		if addresses, err = source.FetchAddresses(ctx); err != nil {
			return nil, err
		}
	case cfg.Assignments != "":
		if isWorkbook(cfg.Assignments) {
			assignments, err = xlsx.NewLoader().LoadAssignments(cfg.Assignments, c.config.AssignmentsSheet)
		} else {
			var loader *csv.Loader
			loader, err = csv.NewLoaderWithEncoding(cfg.Input.Encoding)
			if err == nil {
				assignments, err = loader.LoadAssignments(cfg.Assignments)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("error loading assignments: %w", err)
		}
	}

	if err := repo.LoadAssignments(assignments); err != nil {
		return nil, fmt.Errorf("failed to load assignments into repository: %w", err)
	}
	if err := repo.LoadAddresses(addresses); err != nil {
		return nil, fmt.Errorf("failed to load addresses into repository: %w", err)
	}

	if cfg.Addresses != "" {
		book, err := config.LoadAddressBook(cfg.Addresses)
		if err != nil {
			return nil, err
		}
		if err := repo.LoadAddresses(book); err != nil {
			return nil, fmt.Errorf("failed to load addresses into repository: %w", err)
		}
	}

	return repo, nil
}

func (c *TrackCommand) deliver(
	ctx context.Context,
	cfg *config.Config,
	result *dto.RunResult,
	eventStore events.EventStore,
	logger *slog.Logger,
) error {
	var notifier delivery.Notifier
	if c.config.DryRun {
		notifier = notify.NewWriterNotifier(c.out)
	} else {
		notifier = notify.NewSMTPNotifier(cfg.SMTP)
	}

	retry := delivery.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Delivery.MaxAttempts
	retry.InitialDelay = cfg.Delivery.InitialDelay

	dispatchConfig := delivery.Config{
		Concurrency:   cfg.Delivery.Concurrency,
		RatePerSecond: cfg.Delivery.RatePerSecond,
		Retry:         retry,
		RunID:         result.RunID,
	}
	if c.config.DryRun {
		dispatchConfig.Concurrency = 1
		dispatchConfig.RatePerSecond = 0
	}
	dispatcher := delivery.NewDispatcher(notifier, dispatchConfig, eventStore, logger)

	report := dispatcher.Dispatch(ctx, result.Digests)

	fmt.Fprintf(c.out, "✉️  Delivery: %d sent, %d failed, %d skipped\n", report.Delivered, report.Failed, report.Skipped)
	for _, outcome := range report.Outcomes {
		if outcome.Status != delivery.Delivered {
			fmt.Fprintf(c.out, "  %-15s %-8s %s\n", outcome.Administrator, outcome.Status, outcome.Error)
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d digest(s) could not be delivered", report.Failed)
	}
	return nil
}

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// printHeader prints the command header information
func (c *TrackCommand) printHeader(cfg *config.Config) {
	fmt.Fprintf(c.out, "🚀 Acompanhamento de Requisições\n")
	fmt.Fprintf(c.out, "Input: %s\n", cfg.Input.Path)
	switch {
	case cfg.DatabaseURL != "":
		fmt.Fprintf(c.out, "Assignments: database\n")
	case cfg.Assignments != "":
		fmt.Fprintf(c.out, "Assignments: %s\n", cfg.Assignments)
	}
	if cfg.Addresses != "" {
		fmt.Fprintf(c.out, "Addresses: %s\n", cfg.Addresses)
	}
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *TrackCommand) showHelp() {
	fmt.Fprintf(c.out, `acompreq - follow-up of construction site requisitions

USAGE:
    acompreq -input AcompReq.xlsx -assignments adm.csv -addresses enderecos.json
    acompreq generate -output <dir>        # Write a sample requisition log

OPTIONS:
    -env <file>          Env file to load (default: .env when present)
    -input <file>        Requisition log, .xlsx or .csv (env ACOMPREQ_INPUT)
    -sheet <name>        Worksheet of the log (default: first sheet)
    -encoding <name>     CSV encoding: utf-8, windows-1252, iso-8859-1
    -assignments <file>  Site to administrator table, .xlsx or .csv
    -assignments-sheet   Worksheet of the assignment table
    -addresses <file>    JSON object {"ADMINISTRATOR": "address"}
    -database-url <url>  Read assignments and addresses from Postgres instead
    -as-of <date>        Reference date YYYY-MM-DD (default: today)
    -format <fmt>        Output format: text, json, csv, xlsx (default: text)
    -output <dir>        Output directory; text format also saves the digests there
    -send                Deliver digests over SMTP (SMTP_* variables)
    -dry-run             Print the digests instead of sending them
    -serve               Serve the HTTP API instead of printing a report
    -addr <addr>         HTTP listen address (env HTTP_ADDR, default :8080)
    -verbose             Enable verbose output
    -help                Show this help message

INPUT COLUMNS:
    EMPRD, EMPRD_DESC, EMPRD_UF, REQ_CDG, REQ_DATA, INSUMO_CDG, INSUMO_DESC,
    INSUMO_GRUPO, OF_CDG, QTD (snake_case names such as site_id are accepted too)

EXAMPLES:
    # Weekly report for a past reference date
    acompreq -input AcompReq.xlsx -assignments adm.xlsx -as-of 2026-10-19

    # Preview the e-mails
    acompreq -input AcompReq.xlsx -assignments adm.csv -addresses enderecos.json -dry-run

    # Export the requisition table and the needs-purchasing view
    acompreq -input AcompReq.xlsx -format xlsx -output relatorios/
`)
}
