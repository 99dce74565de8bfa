// Package sheet decodes spreadsheet exports into plain string tables.
//
// XLSX workbooks are read with excelize; anything that is not a ZIP
// container is treated as CSV. Only the first worksheet is used, and its
// first row is the header.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sentinel errors for table loading.
var (
	ErrEmptyTable      = errors.New("spreadsheet has no header row")
	ErrUnreadable      = errors.New("spreadsheet could not be read")
	ErrUnsupportedType = errors.New("unsupported spreadsheet format")
)

// Format is a detected spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls" // legacy BIFF, detected only to reject it clearly
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// Detect sniffs the format from the leading bytes.
func Detect(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	default:
		return FormatCSV
	}
}

// Table is a header plus rectangular rows of trimmed cell text.
// Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header named name.
func (t Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Loader decodes one spreadsheet.
type Loader interface {
	Load(data []byte) (Table, error)
}

// AutoLoader dispatches on Detect.
type AutoLoader struct {
	XLSX XLSXLoader
	CSV  CSVLoader
}

// Load implements Loader.
func (a AutoLoader) Load(data []byte) (Table, error) {
	switch Detect(data) {
	case FormatXLSX:
		return a.XLSX.Load(data)
	case FormatXLS:
		return Table{}, fmt.Errorf("%w: legacy .xls, save as .xlsx or .csv", ErrUnsupportedType)
	default:
		return a.CSV.Load(data)
	}
}

// XLSXLoader reads a worksheet from an XLSX workbook.
type XLSXLoader struct {
	Sheet string // empty = first sheet
}

// Load implements Loader.
func (x XLSXLoader) Load(data []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	name := x.Sheet
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, ErrEmptyTable
		}
		name = sheets[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return Table{}, fmt.Errorf("%w: sheet %q: %v", ErrUnreadable, name, err)
	}
	return newTable(rows)
}

// CSVLoader reads comma-separated text, tolerating a UTF-8 BOM and ragged rows.
type CSVLoader struct {
	Comma rune // zero = ','
}

// Load implements Loader.
func (c CSVLoader) Load(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		rows = append(rows, rec)
	}
	return newTable(rows)
}

// newTable trims cells, drops blank rows and pads or cuts rows to the header width.
func newTable(raw [][]string) (Table, error) {
	if len(raw) == 0 || isBlank(raw[0]) {
		return Table{}, ErrEmptyTable
	}

	header := trimAll(raw[0])
	t := Table{Header: header, Rows: make([][]string, 0, len(raw)-1)}

	for _, r := range raw[1:] {
		if isBlank(r) {
			continue
		}
		row := make([]string, len(header))
		for i := range row {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
