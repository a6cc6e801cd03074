// Package fetcher loads call-tracking exports and reads their workbook
// cells.
package fetcher

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Cell is one spreadsheet cell. Numeric cells carry both their number and
// a plain decimal rendering of it.
type Cell struct {
	Text    string
	Numeric bool
	Number  float64
}

// Table is one worksheet: the first row as the header, the rest as data.
// Rows that are entirely blank are dropped.
type Table struct {
	Sheet    string
	Header   []string
	Rows     [][]Cell
	Date1904 bool

	index map[string]int
}

// ReadXLSX parses workbook bytes and returns preferredSheet if it exists,
// otherwise the first sheet. Only unreadable bytes or a workbook with no
// sheets return an error.
func ReadXLSX(data []byte, preferredSheet string) (*Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}

	sheet := f.Sheet[preferredSheet]
	if sheet == nil {
		if len(f.Sheets) == 0 {
			return nil, eris.New("xlsx: workbook has no sheets")
		}
		sheet = f.Sheets[0]
	}

	t := &Table{
		Sheet:    sheet.Name,
		Date1904: f.Date1904,
		index:    make(map[string]int),
	}

	for i, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := rowToCells(row)
		if i == 0 {
			t.Header = make([]string, len(cells))
			for j, c := range cells {
				name := strings.TrimSpace(c.Text)
				t.Header[j] = name
				if _, dup := t.index[name]; !dup && name != "" {
					t.index[name] = j
				}
			}
			continue
		}
		if blankRow(cells) {
			continue
		}
		t.Rows = append(t.Rows, cells)
	}

	return t, nil
}

// Column returns the index of the named header, or -1.
func (t *Table) Column(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the cell at row r and column c. Missing cells are blank.
func (t *Table) Cell(r, c int) Cell {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return Cell{}
	}
	return t.Rows[r][c]
}

// Time converts a spreadsheet serial date using the workbook's epoch.
func (t *Table) Time(serial float64) time.Time {
	return ExcelTime(serial, t.Date1904)
}

// ExcelTime converts a spreadsheet serial date to a wall-clock time,
// rounded to the second.
func ExcelTime(serial float64, date1904 bool) time.Time {
	return xlsx.TimeFromExcelTime(serial, date1904).Round(time.Second)
}

func rowToCells(row *xlsx.Row) []Cell {
	cells := make([]Cell, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = toCell(cell)
	}
	return cells
}

func toCell(cell *xlsx.Cell) Cell {
	if cell.Type() == xlsx.CellTypeNumeric {
		if n, err := cell.Float(); err == nil {
			return Cell{
				Text:    strconv.FormatFloat(n, 'f', -1, 64),
				Numeric: true,
				Number:  n,
			}
		}
	}
	return Cell{Text: cell.Value}
}

func blankRow(cells []Cell) bool {
	for _, c := range cells {
		if strings.TrimSpace(c.Text) != "" {
			return false
		}
	}
	return true
}
