package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var claimSchema = Schema{
	Columns: []ColumnRule{
		{Name: "Claim ID", Required: true},
		{Name: "Employer", Required: true},
		{Name: "Type", Required: true, Allowed: []string{"age", "invalidity", "survivors"}},
		{Name: "Amount Requested", Required: true, Numeric: true},
		{Name: "Amount Paid", Numeric: true},
		{Name: "Status", Required: true, Allowed: []string{"pending", "reviewed", "approved"}},
	},
}

func validRow(id string) Row {
	return Row{
		"Claim ID":         id,
		"Employer":         "Acme Mills",
		"Type":             "age",
		"Amount Requested": "120000",
		"Amount Paid":      "0",
		"Status":           "pending",
	}
}

func TestValidateRowValid(t *testing.T) {
	assert.Empty(t, claimSchema.ValidateRow(validRow("CLM-001"), 0))
}

func TestValidateRowRequired(t *testing.T) {
	row := validRow("CLM-001")
	row["Employer"] = "  "

	errs := claimSchema.ValidateRow(row, 0)
	assert.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, "Employer", errs[0].Column)
	assert.Equal(t, "required column is empty", errs[0].Message)
}

func TestValidateRowEnumerated(t *testing.T) {
	row := validRow("CLM-001")
	row["Status"] = "archived"

	errs := claimSchema.ValidateRow(row, 3)
	assert.Len(t, errs, 1)
	assert.Equal(t, 5, errs[0].Row)
	assert.Equal(t, "Status", errs[0].Column)
	assert.Equal(t, "must be one of: pending, reviewed, approved", errs[0].Message)
	assert.Equal(t, "archived", errs[0].Value)
}

func TestValidateRowNumeric(t *testing.T) {
	row := validRow("CLM-001")
	row["Amount Requested"] = "lots"
	errs := claimSchema.ValidateRow(row, 0)
	assert.Len(t, errs, 1)
	assert.Equal(t, "must be a number", errs[0].Message)

	row["Amount Requested"] = "-50"
	errs = claimSchema.ValidateRow(row, 0)
	assert.Len(t, errs, 1)
	assert.Equal(t, "must not be negative", errs[0].Message)

	row["Amount Requested"] = "1,200,000"
	assert.Empty(t, claimSchema.ValidateRow(row, 0))
}

// A batch with failures at data indexes 2 and 5 reports spreadsheet
// rows 4 and 7 and nothing else.
func TestValidateAllExhaustive(t *testing.T) {
	rows := make([]Row, 7)
	for i := range rows {
		rows[i] = validRow("CLM-00" + string(rune('1'+i)))
	}
	rows[2]["Status"] = "bogus"
	rows[5]["Claim ID"] = ""

	errs := claimSchema.ValidateAll(rows)
	assert.Len(t, errs, 2)
	assert.Equal(t, 4, errs[0].Row)
	assert.Equal(t, 7, errs[1].Row)
}

func TestValidateAllCleanBatch(t *testing.T) {
	rows := []Row{validRow("CLM-001"), validRow("CLM-002")}
	assert.Empty(t, claimSchema.ValidateAll(rows))
}

func TestSchemaHeader(t *testing.T) {
	assert.Equal(t, []string{"Claim ID", "Employer", "Type", "Amount Requested", "Amount Paid", "Status"}, claimSchema.Header())
}
