package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/xuri/excelize/v2"
)

// Table is a rectangular block of cells. Every row has len(Header) cells
// when a header is present.
type Table struct {
	Header []string
	Rows   [][]string
}

// skipSheets lists workbook sheets that hold documentation rather than data.
var skipSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// Read decodes a table, choosing the decoder from the file extension:
// .tsv/.tab are tab separated, .xlsx is a workbook, anything else is CSV.
func Read(name string, data []byte, header bool) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return ReadDelimited(data, '\t', header)
	case ".xlsx", ".xlsm":
		return ReadXLSX(data, header)
	case ".xls":
		return nil, cerrors.NewUnsupported("spreadsheet format", "legacy .xls workbooks; save as .xlsx")
	default:
		return ReadDelimited(data, ',', header)
	}
}

// ReadDelimited parses CSV-like content separated by comma.
func ReadDelimited(data []byte, comma rune, header bool) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, cerrors.NewParse("CSV", "", err.Error())
	}
	return newTable(rows, header), nil
}

// ReadXLSX reads the first data sheet of a workbook.
func ReadXLSX(data []byte, header bool) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, cerrors.NewParse("XLSX", "", err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, cerrors.NewParse("XLSX", "", "no sheets in workbook")
	}
	sheet := ""
	for _, s := range sheets {
		if !skipSheets[strings.ToLower(strings.TrimSpace(s))] {
			sheet = s
			break
		}
	}
	if sheet == "" {
		sheet = sheets[len(sheets)-1]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, cerrors.NewParse("XLSX", sheet, fmt.Sprintf("reading rows: %v", err))
	}
	return newTable(rows, header), nil
}

func newTable(rows [][]string, header bool) *Table {
	t := &Table{}
	if header && len(rows) > 0 {
		t.Header = make([]string, len(rows[0]))
		for i, h := range rows[0] {
			t.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		rows = rows[1:]
	}
	width := len(t.Header)
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if width > 0 {
			row = fit(row, width)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// fit pads short rows with empty cells and trims ragged long ones.
func fit(row []string, width int) []string {
	switch {
	case len(row) < width:
		out := make([]string, width)
		copy(out, row)
		return out
	case len(row) > width:
		return row[:width]
	}
	return row
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
