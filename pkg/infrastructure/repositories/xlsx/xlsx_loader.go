package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/tabular"
)

// maxExcelSerial is the serial number of 9999-12-31, the last date Excel can represent
const maxExcelSerial = 2958465

// Loader reads the requisition workbook (AcompReq.xlsx) and assignment sheets
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadRequisitionLines reads the raw requisition log from sheet, or the first sheet when
// sheet is empty. Cells are read unformatted, so numeric purchase orders keep their stored
// value and date cells arrive as serial numbers that are converted here.
func (l *Loader) LoadRequisitionLines(filename, sheet string) ([]entities.RawRequisitionLine, error) {
	rows, err := readRows(filename, sheet)
	if err != nil {
		return nil, err
	}

	layout, err := tabular.ResolveRequisitionHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", filename, err)
	}

	lines := make([]entities.RawRequisitionLine, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if tabular.IsBlank(row) {
			continue
		}
		line := layout.Line(i+2, row)
		line.RequisitionDate = serialToDate(line.RequisitionDate)
		lines = append(lines, line)
	}

	return lines, nil
}

// LoadAssignments reads the site to administrator table from sheet
func (l *Loader) LoadAssignments(filename, sheet string) ([]entities.AdministratorAssignment, error) {
	rows, err := readRows(filename, sheet)
	if err != nil {
		return nil, err
	}

	layout, err := tabular.ResolveAssignmentHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", filename, err)
	}

	var assignments []entities.AdministratorAssignment
	for _, row := range rows[1:] {
		if assignment, ok := layout.Assignment(row); ok {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func readRows(filename, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook %s has no sheets", filename)
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, filename, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %q of %s has no header", sheet, filename)
	}
	return rows, nil
}

// serialToDate turns an Excel serial date into an ISO date; other values pass through
func serialToDate(value string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 || serial > maxExcelSerial {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format(entities.DateLayout)
}
