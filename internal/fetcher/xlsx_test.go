package fetcher

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

// sheetSpec lists rows; a float64 value becomes a numeric cell.
type sheetSpec struct {
	name string
	rows [][]any
}

func buildWorkbook(t *testing.T, sheets ...sheetSpec) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		require.NoError(t, err)
		for _, rowData := range s.rows {
			row := sheet.AddRow()
			for _, v := range rowData {
				cell := row.AddCell()
				switch val := v.(type) {
				case float64:
					cell.SetFloat(val)
				case int:
					cell.SetInt(val)
				case string:
					cell.SetString(val)
				}
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX_PrefersNamedSheet(t *testing.T) {
	data := buildWorkbook(t,
		sheetSpec{name: "Summary", rows: [][]any{{"Total"}, {"42"}}},
		sheetSpec{name: "Calls", rows: [][]any{
			{"Agent Name", "Duration (seconds)"},
			{"Matt", 125.0},
		}},
	)

	tbl, err := ReadXLSX(data, "Calls")
	require.NoError(t, err)
	assert.Equal(t, "Calls", tbl.Sheet)
	assert.Equal(t, []string{"Agent Name", "Duration (seconds)"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)

	assert.Equal(t, 0, tbl.Column("Agent Name"))
	assert.Equal(t, 1, tbl.Column("Duration (seconds)"))
	assert.Equal(t, -1, tbl.Column("Missing"))

	assert.Equal(t, "Matt", tbl.Cell(0, 0).Text)
	dur := tbl.Cell(0, 1)
	assert.True(t, dur.Numeric)
	assert.Equal(t, 125.0, dur.Number)
	assert.Equal(t, "125", dur.Text)
}

func TestReadXLSX_FallsBackToFirstSheet(t *testing.T) {
	data := buildWorkbook(t, sheetSpec{name: "Export", rows: [][]any{
		{"Agent Name"},
		{"Brian"},
	}})

	tbl, err := ReadXLSX(data, "Calls")
	require.NoError(t, err)
	assert.Equal(t, "Export", tbl.Sheet)
	assert.Equal(t, "Brian", tbl.Cell(0, 0).Text)
}

func TestReadXLSX_SkipsBlankRows(t *testing.T) {
	data := buildWorkbook(t, sheetSpec{name: "Calls", rows: [][]any{
		{"Agent Name", "Source"},
		{"Matt", "Google"},
		{"", "  "},
		{"Jake", "Direct"},
	}})

	tbl, err := ReadXLSX(data, "Calls")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Jake", tbl.Cell(1, 0).Text)
}

func TestReadXLSX_ShortRowsReadBlank(t *testing.T) {
	data := buildWorkbook(t, sheetSpec{name: "Calls", rows: [][]any{
		{"A", "B", "C"},
		{"only-a"},
	}})

	tbl, err := ReadXLSX(data, "Calls")
	require.NoError(t, err)
	assert.Equal(t, Cell{}, tbl.Cell(0, 2))
	assert.Equal(t, Cell{}, tbl.Cell(5, 0))
}

func TestReadXLSX_HeaderOnly(t *testing.T) {
	data := buildWorkbook(t, sheetSpec{name: "Calls", rows: [][]any{{"Agent Name"}}})

	tbl, err := ReadXLSX(data, "Calls")
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

func TestReadXLSX_InvalidBytes(t *testing.T) {
	_, err := ReadXLSX([]byte("definitely not a zip archive"), "Calls")
	assert.Error(t, err)
}

func TestExcelTime(t *testing.T) {
	got := ExcelTime(45000.5, false)
	assert.Equal(t, "2023-03-15 12:00", got.Format("2006-01-02 15:04"))

	got = ExcelTime(45000.0+(9*time.Hour+30*time.Minute).Hours()/24, false)
	assert.Equal(t, "2023-03-15 09:30", got.Format("2006-01-02 15:04"))
}
