// Package spreadsheet reads and writes tabular case-record files.
//
// Imports accept xlsx workbooks and delimited text with a fixed header
// row per record kind. Rows are exposed as header-keyed maps so the
// validator and the per-kind services stay ignorant of cell addressing.
package spreadsheet

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyFile         = errors.New("spreadsheet_empty")
	ErrMissingHeader     = errors.New("spreadsheet_missing_header")
	ErrUnsupportedFormat = errors.New("spreadsheet_unsupported_format")
	ErrTooManyRows       = errors.New("spreadsheet_too_many_rows")
)

// Row is one data row keyed by header column name. Cells under a
// header the file does not carry are absent, not empty strings.
type Row map[string]string

// Format identifies the on-disk encoding of an import or export file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a user-supplied format token to a Format.
func ParseFormat(raw string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "xlsx":
		return FormatXLSX, true
	case "csv":
		return FormatCSV, true
	default:
		return "", false
	}
}

// DetectFormat picks a Format from a filename extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Read parses the file into header-keyed rows, choosing the codec from
// the filename. maxRows of 0 disables the row cap.
func Read(r io.Reader, filename string, maxRows int) ([]Row, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ReadWorkbook(r, maxRows)
	default:
		return ReadCSV(r, maxRows)
	}
}

func keyRows(header []string, records [][]string, maxRows int) ([]Row, error) {
	if len(header) == 0 {
		return nil, ErrMissingHeader
	}
	if maxRows > 0 && len(records) > maxRows {
		return nil, ErrTooManyRows
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(columns))
		for i, cell := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			row[columns[i]] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
