package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/acompreq/pkg/application/dto"
)

const (
	requisitionsSheet = "Requisicoes"
	pendingSheet      = "Sem OF"
)

// generateXLSXOutput writes a workbook with the requisition table and the needs-purchasing view
func generateXLSXOutput(result *dto.RunResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for xlsx format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "acompreq_relatorio.xlsx")
	if err := WriteWorkbook(filename, result); err != nil {
		return err
	}

	if config.Verbose {
		fmt.Fprintf(config.out(), "💾 Workbook saved to: %s\n", filename)
	}
	return nil
}

// WriteWorkbook saves the run result as an Excel workbook
func WriteWorkbook(filename string, result *dto.RunResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", requisitionsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(pendingSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	requisitionRows := make([][]string, 0, len(result.Aggregates))
	for _, agg := range result.Aggregates {
		requisitionRows = append(requisitionRows, aggregateRow(agg))
	}
	if err := writeSheet(f, requisitionsSheet, aggregateHeader, requisitionRows, headerStyle); err != nil {
		return err
	}

	pendingRows := make([][]string, 0, len(result.PendingLines))
	for _, line := range result.PendingLines {
		pendingRows = append(pendingRows, pendingRow(line))
	}
	if err := writeSheet(f, pendingSheet, pendingHeader, pendingRows, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	for i, value := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet, err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sheet, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 16)
}
