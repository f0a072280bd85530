package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// GenerateConfig holds configuration for sample data generation
type GenerateConfig struct {
	Sites          int     // Number of construction sites
	Requisitions   int     // Requisitions per site
	MaxItems       int     // Maximum insumo lines per requisition
	Coverage       float64 // Share of lines already matched to a purchase order (0..1)
	Administrators int     // Number of administrators sharing the sites
	Days           int     // Requisition dates spread over this many days before AsOf
	AsOf           time.Time
	OutputDir      string // Output directory for generated files
	Seed           int64  // Random seed for reproducible generation
	Help           bool
	Verbose        bool
	Out            io.Writer
}

// GenerateCommand writes a synthetic requisition log with its assignment table and address book
type GenerateCommand struct {
	config GenerateConfig
	faker  *gofakeit.Faker
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.AsOf.IsZero() {
		config.AsOf = time.Now()
	}
	out := config.Out
	if out == nil {
		out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		faker:  gofakeit.New(seed),
		out:    out,
	}
}

type generatedSite struct {
	id            string
	desc          string
	region        string
	administrator string
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out,
			"🔧 Generating %d sites x %d requisitions, up to %d items each, %.0f%% covered\n",
			cmd.config.Sites,
			cmd.config.Requisitions,
			cmd.config.MaxItems,
			cmd.config.Coverage*100,
		)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sites := cmd.generateSites()

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "📋 Generating requisicoes.csv...")
	}
	if err := cmd.generateRequisitions(sites); err != nil {
		return fmt.Errorf("failed to generate requisitions: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.out, "👷 Generating adm.csv and enderecos.json...")
	}
	if err := cmd.generateAssignments(sites); err != nil {
		return fmt.Errorf("failed to generate assignments: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Sample data generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("-output is required")
	case cmd.config.Sites < 1 || cmd.config.Requisitions < 1 || cmd.config.MaxItems < 1:
		return fmt.Errorf("sites, requisitions and max items must be positive")
	case cmd.config.Administrators < 1:
		return fmt.Errorf("at least one administrator is required")
	case cmd.config.Coverage < 0 || cmd.config.Coverage > 1:
		return fmt.Errorf("coverage must be between 0 and 1, got %g", cmd.config.Coverage)
	case cmd.config.Days < 1:
		return fmt.Errorf("days must be positive")
	}
	return nil
}

func (cmd *GenerateCommand) generateSites() []generatedSite {
	administrators := make([]string, cmd.config.Administrators)
	for i := range administrators {
		administrators[i] = cmd.faker.FirstName()
	}

	sites := make([]generatedSite, cmd.config.Sites)
	for i := range sites {
		sites[i] = generatedSite{
			id:            strconv.Itoa(100 + i),
			desc:          "Obra " + cmd.faker.Street(),
			region:        cmd.faker.StateAbr(),
			administrator: administrators[i%len(administrators)],
		}
	}
	return sites
}

// generateRequisitions writes the log with the upstream column names. Purchase orders are
// written as "12345.0" now and then, the way spreadsheet exports produce them.
func (cmd *GenerateCommand) generateRequisitions(sites []generatedSite) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, "requisicoes.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"EMPRD", "EMPRD_DESC", "EMPRD_UF", "REQ_CDG", "REQ_DATA",
		"INSUMO_CDG", "INSUMO_DESC", "INSUMO_GRUPO", "OF_CDG", "QTD"}
	if err := writer.Write(header); err != nil {
		return err
	}

	requisition := 1
	for _, site := range sites {
		for r := 0; r < cmd.config.Requisitions; r++ {
			date := cmd.config.AsOf.AddDate(0, 0, -cmd.faker.Number(0, cmd.config.Days-1))
			items := cmd.faker.Number(1, cmd.config.MaxItems)

			for i := 0; i < items; i++ {
				order := ""
				if cmd.faker.Float64Range(0, 1) < cmd.config.Coverage {
					order = strconv.Itoa(cmd.faker.Number(10000, 99999))
					if cmd.faker.Bool() {
						order += ".0"
					}
				}

				record := []string{
					site.id,
					site.desc,
					site.region,
					strconv.Itoa(requisition),
					date.Format(entities.DateLayout),
					strconv.Itoa(cmd.faker.Number(1000, 9999)),
					cmd.faker.ProductName(),
					cmd.faker.ProductCategory(),
					order,
					strconv.Itoa(cmd.faker.Number(1, 500)),
				}
				if err := writer.Write(record); err != nil {
					return err
				}
			}
			requisition++
		}
	}

	writer.Flush()
	return writer.Error()
}

func (cmd *GenerateCommand) generateAssignments(sites []generatedSite) error {
	file, err := os.Create(filepath.Join(cmd.config.OutputDir, "adm.csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"EMPRD", "ADM"}); err != nil {
		return err
	}

	addresses := make(map[string]string)
	for _, site := range sites {
		if err := writer.Write([]string{site.id, site.administrator}); err != nil {
			return err
		}
		addresses[site.administrator] = cmd.faker.Email()
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cmd.config.OutputDir, "enderecos.json"), data, 0644)
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Sample Requisition Log Generator

USAGE:
    acompreq generate [OPTIONS]

OPTIONS:
    -output <DIR>        Output directory for generated files (required)
    -sites <N>           Number of construction sites (default: 5)
    -requisitions <N>    Requisitions per site (default: 4)
    -max-items <N>       Maximum insumo lines per requisition (default: 6)
    -coverage <F>        Share of lines with a purchase order, 0..1 (default: 0.6)
    -administrators <N>  Number of administrators (default: 3)
    -days <N>            Spread requisition dates over the last N days (default: 21)
    -as-of <DATE>        Reference date YYYY-MM-DD (default: today)
    -seed <N>            Random seed for reproducible generation
    -verbose             Enable verbose output
    -help                Show this help message

EXAMPLES:
    # Generate a small log and report on it
    acompreq generate -output ./amostra -seed 42
    acompreq -input ./amostra/requisicoes.csv -assignments ./amostra/adm.csv -addresses ./amostra/enderecos.json`)
}
