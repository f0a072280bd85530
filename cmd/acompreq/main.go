package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "generate" {
		err = runGenerate(ctx, os.Args[2:])
	} else {
		err = runTrack(ctx)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTrack(ctx context.Context) error {
	var (
		envFile          = flag.String("env", ".env", "Env file to load when present")
		input            = flag.String("input", "", "Requisition log, .xlsx or .csv")
		sheet            = flag.String("sheet", "", "Worksheet of the requisition log")
		encoding         = flag.String("encoding", "", "CSV encoding: utf-8, windows-1252, iso-8859-1")
		assignments      = flag.String("assignments", "", "Site to administrator table, .xlsx or .csv")
		assignmentsSheet = flag.String("assignments-sheet", "", "Worksheet of the assignment table")
		addresses        = flag.String("addresses", "", "JSON address book")
		databaseURL      = flag.String("database-url", "", "Read assignments and addresses from Postgres")
		asOf             = flag.String("as-of", "", "Reference date YYYY-MM-DD (default: today)")
		outputDir        = flag.String("output", "", "Output directory for results (optional)")
		format           = flag.String("format", "text", "Output format: text, json, csv, xlsx")
		send             = flag.Bool("send", false, "Deliver digests over SMTP")
		dryRun           = flag.Bool("dry-run", false, "Print the digests instead of sending them")
		serve            = flag.Bool("serve", false, "Serve the HTTP API")
		addr             = flag.String("addr", "", "HTTP listen address")
		verbose          = flag.Bool("verbose", false, "Enable verbose output")
		help             = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	cmd := commands.NewTrackCommand(commands.Config{
		EnvFile:          *envFile,
		Input:            *input,
		Sheet:            *sheet,
		Encoding:         *encoding,
		Assignments:      *assignments,
		AssignmentsSheet: *assignmentsSheet,
		Addresses:        *addresses,
		DatabaseURL:      *databaseURL,
		AsOf:             *asOf,
		OutputDir:        *outputDir,
		Format:           *format,
		Send:             *send,
		DryRun:           *dryRun,
		Serve:            *serve,
		Addr:             *addr,
		Verbose:          *verbose,
		Help:             *help,
	})
	return cmd.Execute(ctx)
}

func runGenerate(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		outputDir      = flags.String("output", "", "Output directory for generated files")
		sites          = flags.Int("sites", 5, "Number of construction sites")
		requisitions   = flags.Int("requisitions", 4, "Requisitions per site")
		maxItems       = flags.Int("max-items", 6, "Maximum insumo lines per requisition")
		coverage       = flags.Float64("coverage", 0.6, "Share of lines with a purchase order")
		administrators = flags.Int("administrators", 3, "Number of administrators")
		days           = flags.Int("days", 21, "Spread requisition dates over the last N days")
		asOf           = flags.String("as-of", "", "Reference date YYYY-MM-DD (default: today)")
		seed           = flags.Int64("seed", 0, "Random seed (0 picks one from the clock)")
		verbose        = flags.Bool("verbose", false, "Enable verbose output")
		help           = flags.Bool("help", false, "Show help message")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	var reference time.Time
	if *asOf != "" {
		parsed, err := time.Parse(entities.DateLayout, *asOf)
		if err != nil {
			return fmt.Errorf("invalid -as-of %q, expected YYYY-MM-DD", *asOf)
		}
		reference = parsed
	}

	cmd := commands.NewGenerateCommand(commands.GenerateConfig{
		Sites:          *sites,
		Requisitions:   *requisitions,
		MaxItems:       *maxItems,
		Coverage:       *coverage,
		Administrators: *administrators,
		Days:           *days,
		AsOf:           reference,
		OutputDir:      *outputDir,
		Seed:           *seed,
		Help:           *help,
		Verbose:        *verbose,
	})
	return cmd.Execute(ctx)
}
