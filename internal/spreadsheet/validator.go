package spreadsheet

import (
	"strconv"
	"strings"
)

// RowError describes one failed cell. Row carries the spreadsheet line
// number as the user sees it: data index + 2, counting the header row
// and 1-based numbering.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// ColumnRule constrains one column of an import schema.
type ColumnRule struct {
	Name     string
	Required bool
	Numeric  bool
	Allowed  []string
}

// Schema is the ordered column rule set for one record kind.
type Schema struct {
	Columns []ColumnRule
}

// Header returns the column names in schema order, used to verify
// uploads and to render export header rows.
func (s Schema) Header() []string {
	names := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		names[i] = col.Name
	}
	return names
}

// ValidateRow checks one data row at 0-based index. The returned slice
// is empty when the row is valid.
func (s Schema) ValidateRow(row Row, index int) []RowError {
	line := index + 2
	var errs []RowError

	for _, col := range s.Columns {
		value := strings.TrimSpace(row[col.Name])

		if value == "" {
			if col.Required {
				errs = append(errs, RowError{
					Row:     line,
					Column:  col.Name,
					Message: "required column is empty",
				})
			}
			continue
		}

		if len(col.Allowed) > 0 && !contains(col.Allowed, value) {
			errs = append(errs, RowError{
				Row:     line,
				Column:  col.Name,
				Message: "must be one of: " + strings.Join(col.Allowed, ", "),
				Value:   value,
			})
		}

		if col.Numeric {
			n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
			if err != nil {
				errs = append(errs, RowError{
					Row:     line,
					Column:  col.Name,
					Message: "must be a number",
					Value:   value,
				})
			} else if n < 0 {
				errs = append(errs, RowError{
					Row:     line,
					Column:  col.Name,
					Message: "must not be negative",
					Value:   value,
				})
			}
		}
	}

	return errs
}

// ValidateAll validates every row before returning, so the caller can
// report the complete error list in one pass. A non-empty result
// rejects the whole batch; no rows from a failing batch are imported.
func (s Schema) ValidateAll(rows []Row) []RowError {
	var errs []RowError
	for i, row := range rows {
		errs = append(errs, s.ValidateRow(row, i)...)
	}
	return errs
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
