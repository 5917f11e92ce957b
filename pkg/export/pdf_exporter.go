package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 190.0
	pdfHeaderRowH = 8.0
	pdfBodyRowH   = 7.0
)

// PDFExporter renders datasets as a single-table A4 document with a
// title line and a generation timestamp.
type PDFExporter struct {
	now func() time.Time
}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render lays the dataset out as a bordered table. Columns share the
// page width evenly; gofpdf inserts page breaks as rows overflow.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf export: dataset has no columns")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	}
	doc.SetFont("Arial", "I", 8)
	doc.CellFormat(0, 5, "Generated "+e.now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	doc.Ln(4)

	colWidth := pdfPageWidth / float64(len(data.Headers))

	doc.SetFont("Arial", "B", 10)
	doc.SetFillColor(230, 230, 230)
	for _, name := range data.Headers {
		doc.CellFormat(colWidth, pdfHeaderRowH, name, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 9)
	for _, values := range data.Rows {
		for _, cell := range data.row(values) {
			doc.CellFormat(colWidth, pdfBodyRowH, cell, "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf export: %w", err)
	}
	return buf.Bytes(), nil
}
