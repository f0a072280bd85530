package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/vsinha/acompreq/pkg/domain/entities"
	"github.com/vsinha/acompreq/pkg/infrastructure/repositories/tabular"
)

// Loader reads requisition logs and assignment tables exported as CSV
type Loader struct {
	decoder *encoding.Decoder
}

// NewLoader creates a CSV loader for UTF-8 files
func NewLoader() *Loader {
	return &Loader{}
}

// NewLoaderWithEncoding creates a loader for files in a legacy single-byte encoding
// ("windows-1252" or "iso-8859-1"); "utf-8" and "" mean no decoding.
func NewLoaderWithEncoding(name string) (*Loader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return &Loader{}, nil
	case "windows-1252", "cp1252":
		return &Loader{decoder: charmap.Windows1252.NewDecoder()}, nil
	case "iso-8859-1", "latin1":
		return &Loader{decoder: charmap.ISO8859_1.NewDecoder()}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// LoadRequisitionLines loads the raw requisition log. A file with only a header yields no lines.
func (l *Loader) LoadRequisitionLines(filename string) ([]entities.RawRequisitionLine, error) {
	records, err := l.readRecords(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read requisitions CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("requisitions CSV %s has no header", filename)
	}

	layout, err := tabular.ResolveRequisitionHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("requisitions CSV %s: %w", filename, err)
	}

	lines := make([]entities.RawRequisitionLine, 0, len(records)-1)
	for i, record := range records[1:] {
		if tabular.IsBlank(record) {
			continue
		}
		lines = append(lines, layout.Line(i+2, record))
	}

	return lines, nil
}

// LoadAssignments loads the site to administrator table
func (l *Loader) LoadAssignments(filename string) ([]entities.AdministratorAssignment, error) {
	records, err := l.readRecords(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignments CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("assignments CSV %s has no header", filename)
	}

	layout, err := tabular.ResolveAssignmentHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("assignments CSV %s: %w", filename, err)
	}

	var assignments []entities.AdministratorAssignment
	for _, record := range records[1:] {
		if assignment, ok := layout.Assignment(record); ok {
			assignments = append(assignments, assignment)
		}
	}

	return assignments, nil
}

func (l *Loader) readRecords(filename string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	var source io.Reader = file
	if l.decoder != nil {
		source = l.decoder.Reader(file)
	}

	data, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return reader.ReadAll()
}

// detectDelimiter picks ';' for exports from locales that use the decimal comma
func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte{';'}) > bytes.Count(header, []byte{','}) {
		return ';'
	}
	return ','
}
