package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	XLSXFilename    = "data.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	XLSXSheet       = "data"
)

// WriteXLSX writes the pivot into a single sheet workbook. Numeric cells
// are stored as numbers.
func WriteXLSX(w io.Writer, records []Record) error {
	t, err := Pivot(records)
	if err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), XLSXSheet); err != nil {
		return err
	}
	rows := append([][]string{t.Header}, t.Rows...)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(XLSXSheet, cell, cellValue(v, r == 0 || c == 0)); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// cellValue keeps labels as text and converts values to numbers.
func cellValue(v string, label bool) any {
	if label || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
