package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Dataset is a column-ordered table. Rows are keyed by header name so
// callers can build them from heterogeneous records without caring about
// column positions.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// row projects a keyed row onto the header order. Missing keys become
// empty cells.
func (d Dataset) row(values map[string]string) []string {
	cells := make([]string, len(d.Headers))
	for i, name := range d.Headers {
		cells[i] = values[name]
	}
	return cells
}

// CSVExporter renders datasets as RFC 4180 CSV.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// WriteTo streams the dataset to w, header line first.
func (e *CSVExporter) WriteTo(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv export: dataset has no columns")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(data.Headers); err != nil {
		return fmt.Errorf("csv export: header: %w", err)
	}
	for i, values := range data.Rows {
		if err := cw.Write(data.row(values)); err != nil {
			return fmt.Errorf("csv export: row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Render buffers the whole document in memory. Export payloads are
// page-sized, so this stays cheap.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.WriteTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
