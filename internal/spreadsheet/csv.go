package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses delimited text with the first record as the header.
func ReadCSV(r io.Reader, maxRows int) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Imports from older exports may carry trailing empty columns.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return keyRows(records[0], records[1:], maxRows)
}

// WriteCSV writes header plus rows as delimited text. Free-text fields
// containing delimiters or quotes are escaped by the encoder.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
