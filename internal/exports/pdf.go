package exports

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/dhatukala/dhatukala/pkg/models"
)

// renderOptions controls catalogue rendering.
type renderOptions struct {
	Title       string
	Password    string // Empty leaves the PDF unprotected.
	GeneratedAt time.Time
}

// renderCatalogue writes a product catalogue PDF to path. A non-empty
// password encrypts the document; recipients can open and print it but
// not modify or copy from it.
func renderCatalogue(path string, products []models.Product, opts renderOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if opts.Password != "" {
		pdf.SetProtection(gofpdf.CnProtectPrint, opts.Password, "")
	}
	pdf.SetTitle(opts.Title, true)
	pdf.SetAuthor("Dhatukala", true)

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, opts.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(110, 110, 110)
	subtitle := fmt.Sprintf("%d products | generated %s",
		len(products), opts.GeneratedAt.Format("2 January 2006"))
	pdf.CellFormat(0, 6, subtitle, "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	type column struct {
		header string
		width  float64
		value  func(p models.Product) string
	}
	columns := []column{
		{"Name", 56, func(p models.Product) string { return p.Name }},
		{"Metal", 24, func(p models.Product) string { return string(p.Metal) }},
		{"Category", 26, func(p models.Product) string { return string(p.Category) }},
		{"Finish", 24, func(p models.Product) string { return string(p.FinishType) }},
		{"Wt (kg)", 16, func(p models.Product) string { return trimFloat(p.WeightKg) }},
		{"Ht (in)", 16, func(p models.Product) string { return trimFloat(p.HeightInch) }},
		{"Price (Rs)", 28, func(p models.Product) string { return trimFloat(p.Price) }},
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 225, 205)
	for _, col := range columns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	fill := false
	pdf.SetFillColor(248, 245, 238)
	for _, p := range products {
		for _, col := range columns {
			pdf.CellFormat(col.width, 7, col.value(p), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	if len(products) == 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No products match the selected filters.", "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write catalogue pdf: %w", err)
	}
	return nil
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
