package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	RunTime   time.Duration
	Out       io.Writer
}

func (c Config) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Generate writes the run result in the configured format
func Generate(result *dto.RunResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "xlsx":
		return generateXLSXOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(result *dto.RunResult, config Config) error {
	w := config.out()

	fmt.Fprintf(w, "📊 Acompanhamento de Requisições (%s)\n", result.Window.Label)
	fmt.Fprintf(w, "==============================================\n\n")

	fmt.Fprintf(w, "Referência: %s\n", result.AsOf.Format(entities.DateLayout))
	fmt.Fprintf(w, "Total de requisições: %d\n", result.Summary.TotalRequisitions)
	fmt.Fprintf(w, "Totalmente compradas: %d\n", result.Summary.FullyFulfilled)
	fmt.Fprintf(w, "Com pendências: %d\n", result.Summary.Pending)
	if result.Summary.RejectedLines > 0 || result.Duplicates > 0 {
		fmt.Fprintf(w, "Linhas rejeitadas: %d, duplicadas: %d\n", result.Summary.RejectedLines, result.Duplicates)
	}
	if config.RunTime > 0 {
		fmt.Fprintf(w, "Tempo de processamento: %v\n", config.RunTime)
	}
	fmt.Fprintln(w)

	if len(result.Aggregates) > 0 {
		fmt.Fprintf(w, "📋 Requisições:\n")
		fmt.Fprintf(w, "%-10s %-24s %-12s %-12s %-6s %-6s %-6s %-16s %-15s\n",
			"Obra", "Descrição", "Requisição", "Data", "Itens", "OFs", "Pend.", "Status", "ADM")
		fmt.Fprintf(w, "%-10s %-24s %-12s %-12s %-6s %-6s %-6s %-16s %-15s\n",
			"----------", "------------------------", "------------", "------------",
			"------", "------", "------", "----------------", "---------------")

		for _, agg := range result.Aggregates {
			fmt.Fprintf(w, "%-10s %-24s %-12s %-12s %-6d %-6d %-6d %-16s %-15s\n",
				agg.SiteID,
				truncate(agg.SiteDesc, 24),
				agg.RequisitionID,
				formatDate(agg.RequisitionDate),
				agg.ItemCount,
				agg.FulfilledCount,
				agg.PendingCount,
				agg.Status,
				agg.Administrator)
		}
		fmt.Fprintln(w)
	}

	if len(result.PendingLines) > 0 {
		fmt.Fprintf(w, "🛒 Requisições sem OF:\n")
		for _, line := range result.PendingLines {
			fmt.Fprintf(w, "  %-10s %-24s %-12s %s\n",
				line.SiteID, truncate(line.SiteDesc, 24), line.RequisitionID, line.ItemDesc)
		}
		fmt.Fprintln(w)
	}

	if len(result.Administrators) > 0 {
		fmt.Fprintf(w, "✉️  Resumos por administrador:\n")
		for _, administrator := range result.Administrators {
			digest := result.Digests[administrator]
			address := digest.Address
			if digest.AddressMissing {
				address = "(sem endereço)"
			}
			fmt.Fprintf(w, "  %-15s %-30s %d requisições, %d com pendências\n",
				administrator, address, len(digest.Entries), digest.PendingRequisitions())
		}
		fmt.Fprintln(w)
	}

	if len(result.MissingAddress) > 0 {
		fmt.Fprintf(w, "⚠️  Administradores sem endereço: %v\n\n", result.MissingAddress)
	}

	if config.Verbose {
		for _, rejected := range result.Rejected {
			fmt.Fprintf(w, "  rejeitada: linha %d: %s\n", rejected.Row, rejected.Reason)
		}
	}

	if config.OutputDir != "" {
		return WriteDigests(result, config)
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.RunResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.out(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "acompreq.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes the requisition table; with an output directory it also
// writes the needs-purchasing view
func generateCSVOutput(result *dto.RunResult, config Config) error {
	if config.OutputDir == "" {
		return WriteAggregatesCSV(config.out(), result.Aggregates)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	requisitionsFile := filepath.Join(config.OutputDir, "requisicoes.csv")
	if err := writeFile(requisitionsFile, func(w io.Writer) error {
		return WriteAggregatesCSV(w, result.Aggregates)
	}); err != nil {
		return fmt.Errorf("failed to write requisitions CSV: %w", err)
	}

	pendingFile := filepath.Join(config.OutputDir, "requisicoes_sem_of.csv")
	if err := writeFile(pendingFile, func(w io.Writer) error {
		return WritePendingCSV(w, result.PendingLines)
	}); err != nil {
		return fmt.Errorf("failed to write pending lines CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.out(), "  Requisitions: %s\n", requisitionsFile)
		fmt.Fprintf(config.out(), "  Pending lines: %s\n", pendingFile)
	}
	return nil
}

var aggregateHeader = []string{
	"EMPRD", "EMPRD_DESC", "EMPRD_UF", "REQ_CDG", "REQ_DATA",
	"QTD_INSUMOS", "QTD_COMPRADOS", "QTD_PENDENTE", "STATUS", "ADM",
}

var pendingHeader = []string{"EMPRD", "EMPRD_DESC", "REQ_CDG", "REQ_DATA", "INSUMO_CDG", "INSUMO_DESC"}

func aggregateRow(agg entities.RequisitionAggregate) []string {
	return []string{
		string(agg.SiteID),
		agg.SiteDesc,
		agg.SiteRegion,
		string(agg.RequisitionID),
		formatDate(agg.RequisitionDate),
		strconv.Itoa(agg.ItemCount),
		strconv.Itoa(agg.FulfilledCount),
		strconv.Itoa(agg.PendingCount),
		agg.Status.String(),
		string(agg.Administrator),
	}
}

func pendingRow(line dto.PendingLine) []string {
	return []string{
		string(line.SiteID),
		line.SiteDesc,
		string(line.RequisitionID),
		formatDate(line.RequisitionDate),
		string(line.ItemID),
		line.ItemDesc,
	}
}

// WriteAggregatesCSV writes one row per requisition using the upstream column names
func WriteAggregatesCSV(w io.Writer, aggregates []entities.RequisitionAggregate) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(aggregateHeader); err != nil {
		return err
	}
	for _, agg := range aggregates {
		if err := writer.Write(aggregateRow(agg)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePendingCSV writes the lines still waiting for a purchase order
func WritePendingCSV(w io.Writer, lines []dto.PendingLine) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(pendingHeader); err != nil {
		return err
	}
	for _, line := range lines {
		if err := writer.Write(pendingRow(line)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDigests saves every rendered digest under OutputDir/digests
func WriteDigests(result *dto.RunResult, config Config) error {
	dir := filepath.Join(config.OutputDir, "digests")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create digest directory: %w", err)
	}

	for _, administrator := range result.Administrators {
		digest := result.Digests[administrator]
		filename := filepath.Join(dir, DigestFilename(administrator))
		if err := os.WriteFile(filename, []byte(digest.Render()), 0644); err != nil {
			return fmt.Errorf("failed to write digest for %s: %w", administrator, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.out(), "💾 Digest for %s saved to: %s\n", administrator, filename)
		}
	}
	return nil
}

// DigestFilename maps an administrator name onto a safe file name
func DigestFilename(administrator entities.AdministratorName) string {
	name := []rune(string(administrator))
	for i, r := range name {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			name[i] = '_'
		}
	}
	return string(name) + ".txt"
}

func writeFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entities.DateLayout)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
