package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dataforgoodfr/shiftdataportal-sub001/core/dataset"
)

var ErrEmptyPayload = errors.New("export payload has no records")

// Record is one exported series: ID labels the row, Data holds its points.
type Record struct {
	ID   json.RawMessage `json:"id"`
	Data []Point         `json:"data"`
}

// Point keeps x and y as raw JSON so numbers are written back unchanged.
type Point struct {
	X json.RawMessage `json:"x"`
	Y json.RawMessage `json:"y"`
}

// Table is the pivoted form: an empty corner cell, then one column per x
// value of the first record, one row per record.
type Table struct {
	Header []string
	Rows   [][]string
}

// DecodeRecords parses a JSON array of records.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode export payload: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyPayload
	}
	return records, nil
}

func Pivot(records []Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrEmptyPayload
	}
	t := Table{Header: []string{""}}
	columns := make([]string, 0, len(records[0].Data))
	for _, p := range records[0].Data {
		columns = append(columns, rawText(p.X))
	}
	t.Header = append(t.Header, columns...)
	for _, rec := range records {
		values := make(map[string]string, len(rec.Data))
		for _, p := range rec.Data {
			values[rawText(p.X)] = rawText(p.Y)
		}
		row := make([]string, 0, len(columns)+1)
		row = append(row, rawText(rec.ID))
		for _, col := range columns {
			row = append(row, values[col])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// FromSeries turns chart series into export records keyed by category.
func FromSeries(categories []string, series []dataset.Series) []Record {
	out := make([]Record, 0, len(series))
	for _, s := range series {
		id, _ := json.Marshal(s.Name)
		rec := Record{ID: id, Data: make([]Point, 0, len(categories))}
		for i, c := range categories {
			x, _ := json.Marshal(c)
			if _, err := strconv.Atoi(c); err == nil {
				x = json.RawMessage(c)
			}
			y := json.RawMessage("null")
			if v := s.ValueAt(i); v != nil {
				y = json.RawMessage(strconv.FormatFloat(*v, 'f', -1, 64))
			}
			rec.Data = append(rec.Data, Point{X: x, Y: y})
		}
		out = append(out, rec)
	}
	return out
}

// rawText renders a JSON scalar as a cell: strings unquoted, null empty,
// numbers and booleans as written.
func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return strings.TrimSpace(string(trimmed))
}
