package export

import (
	"bytes"
	"encoding/csv"
	"io"
)

const (
	CSVFilename    = "data.csv"
	CSVContentType = "text/csv; charset=utf-8"
)

// WriteCSV pivots records and writes them as CSV. Nothing reaches w when
// the pivot or the encoding fails.
func WriteCSV(w io.Writer, records []Record) error {
	t, err := Pivot(records)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}
