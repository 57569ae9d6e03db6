package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// TableDocument is the input to the report renderer: a title and a simple
// tabular layout.
type TableDocument struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Renderer produces a binary document from a table layout.
type Renderer interface {
	Render(doc TableDocument) ([]byte, error)
}

// FPDFRenderer renders table documents as A4 portrait PDFs.
type FPDFRenderer struct{}

// NewFPDFRenderer creates a new FPDFRenderer.
func NewFPDFRenderer() *FPDFRenderer {
	return &FPDFRenderer{}
}

// column widths in mm for the 5-column student report; sums to the printable
// width of an A4 page with 10mm margins.
var columnWidths = []float64{50, 55, 30, 20, 35}

// Render produces the PDF bytes for a table document.
// PRE: every row has len(doc.Columns) cells
// POST: Returns a complete PDF document
func (r *FPDFRenderer) Render(doc TableDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := columnWidths
	if len(doc.Columns) != len(widths) {
		// Fallback: distribute the printable width evenly.
		widths = make([]float64, len(doc.Columns))
		for i := range widths {
			widths[i] = 190.0 / float64(len(doc.Columns))
		}
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(229, 231, 235)
	for i, col := range doc.Columns {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range doc.Rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %v", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
