package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 277.0

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct {
	// MaxCellRunes truncates long cell values; zero keeps them whole.
	MaxCellRunes int
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{MaxCellRunes: 90}
}

// Render creates a PDF document with an optional title and table body.
// Widths are relative column weights; nil spreads columns evenly.
func (e *PDFExporter) Render(data Dataset, title string, widths []float64) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	if widths != nil && len(widths) != len(data.Headers) {
		return nil, fmt.Errorf("pdf widths: got %d, want %d", len(widths), len(data.Headers))
	}
	cols := columnWidths(widths, len(data.Headers))

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 9)
	for i, header := range data.Headers {
		pdf.CellFormat(cols[i], 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			value := truncate(row[header], e.MaxCellRunes)
			pdf.CellFormat(cols[i], 7, tr(value), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(weights []float64, n int) []float64 {
	out := make([]float64, n)
	var total float64
	for _, w := range weights {
		total += w
	}
	for i := range out {
		if total <= 0 {
			out[i] = pageWidth / float64(n)
			continue
		}
		out[i] = pageWidth * weights[i] / total
	}
	return out
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
