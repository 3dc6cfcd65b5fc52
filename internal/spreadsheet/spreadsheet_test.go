package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		`Claim ID,Employer,Status`,
		`CLM-001,"Acme Mills, Ltd",pending`,
		`CLM-002,Blue Transit,reviewed`,
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Mills, Ltd", rows[0]["Employer"])
	assert.Equal(t, "reviewed", rows[1]["Status"])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), 0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSVRowCap(t *testing.T) {
	input := "A\n1\n2\n3\n"
	_, err := ReadCSV(strings.NewReader(input), 2)
	assert.ErrorIs(t, err, ErrTooManyRows)
}

func TestWorkbookRoundTrip(t *testing.T) {
	header := []string{"Claim ID", "Employer", "Amount Paid"}
	data := [][]interface{}{
		{"CLM-001", "Acme Mills", 120000},
		{"CLM-002", "Blue Transit", 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, "Claims", header, data))

	rows, err := ReadWorkbook(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CLM-001", rows[0]["Claim ID"])
	assert.Equal(t, "Blue Transit", rows[1]["Employer"])
	assert.Equal(t, "120000", rows[0]["Amount Paid"])
}

func TestWriteCSVQuotesFreeText(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []string{"Claim ID", "Employer"}, [][]string{
		{"CLM-001", `Acme "Mills", Ltd`},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Acme ""Mills"", Ltd"`)
}

func TestDetectFormat(t *testing.T) {
	format, err := DetectFormat("claims-2024.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)

	format, err = DetectFormat("claims.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = DetectFormat("claims.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	format, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatXLSX, format)

	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
}
