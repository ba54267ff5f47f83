package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/vsinha/quoting/pkg/application/dto"
)

// GeneratePDF renders the price breaks of a quote rollup as a one-page summary
func GeneratePDF(result *dto.QuoteRollup) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quote "+result.QuoteID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Quotation "+result.QuoteID)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Computed %s", result.ComputedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(30, 7, "Line")
	pdf.Cell(20, 7, "Qty")
	pdf.Cell(25, 7, "Unit Cost")
	pdf.Cell(20, 7, "Disc %")
	pdf.Cell(20, 7, "Markup %")
	pdf.Cell(30, 7, "Ext Cost")
	pdf.Cell(30, 7, "Ext Price")
	pdf.Cell(15, 7, "Days")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	for _, pb := range result.PriceBreaks {
		pdf.Cell(30, 6, trim(pb.LineID, 16))
		pdf.Cell(20, 6, formatQuantity(pb.Quantity))
		pdf.Cell(25, 6, pb.UnitCost.StringFixed(2))
		pdf.Cell(20, 6, fmt.Sprintf("%.2f", pb.DiscountPercent))
		pdf.Cell(20, 6, fmt.Sprintf("%.2f", pb.MarkupPercent))
		pdf.Cell(30, 6, pb.ExtendedCost.StringFixed(2))
		pdf.Cell(30, 6, pb.ExtendedPrice.StringFixed(2))
		pdf.Cell(15, 6, fmt.Sprintf("%d", pb.LeadTimeDays))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Total: "+result.TotalExtendedPrice.StringFixed(2))
	pdf.Ln(8)

	if len(result.Warnings) > 0 {
		pdf.SetFont("Helvetica", "", 8)
		for _, w := range result.Warnings {
			pdf.Cell(0, 5, trim(w, 110))
			pdf.Ln(5)
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
