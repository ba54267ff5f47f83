package output

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vsinha/quoting/pkg/application/dto"
)

// GenerateExcel renders a quote rollup as a workbook with a cost sheet and a
// price sheet and returns the file contents
func GenerateExcel(result *dto.QuoteRollup) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	costSheet := "Cost Rollup"
	if err := f.SetSheetName(f.GetSheetName(0), costSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	priceSheet := "Price Breaks"
	if _, err := f.NewSheet(priceSheet); err != nil {
		return nil, fmt.Errorf("create price sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	numberFormat := "#,##0.00"
	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &numberFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	// Cost sheet
	costHeaders := []string{"Line", "Item", "Quantity", "Material", "Labor", "Overhead", "Setup h", "Production h", "Unit Cost"}
	if err := writeSheetHeader(f, costSheet, "Quote "+result.QuoteID+" cost rollup", costHeaders, titleStyle, headerStyle); err != nil {
		return nil, err
	}
	row := 4
	for _, line := range result.Lines {
		values := []interface{}{
			sanitizeExcelCell(line.LineID),
			sanitizeExcelCell(line.ItemID),
			line.Quantity,
			line.Totals.MaterialCost,
			line.Totals.LaborCost,
			line.Totals.OverheadCost,
			line.Totals.SetupHours,
			line.Totals.ProductionHours,
			line.UnitCost.InexactFloat64(),
		}
		if err := writeSheetRow(f, costSheet, row, values, cellStyle); err != nil {
			return nil, err
		}
		row++
	}

	// Price sheet
	priceHeaders := []string{"Line", "Quantity", "Unit Cost", "Unit Tax", "Discount %", "Markup %", "Extended Cost", "Extended Price", "Lead Time (days)"}
	if err := writeSheetHeader(f, priceSheet, "Quote "+result.QuoteID+" price breaks", priceHeaders, titleStyle, headerStyle); err != nil {
		return nil, err
	}
	row = 4
	for _, pb := range result.PriceBreaks {
		values := []interface{}{
			sanitizeExcelCell(pb.LineID),
			pb.Quantity,
			pb.UnitCost.InexactFloat64(),
			pb.UnitTaxAmount.InexactFloat64(),
			pb.DiscountPercent,
			pb.MarkupPercent,
			pb.ExtendedCost.InexactFloat64(),
			pb.ExtendedPrice.InexactFloat64(),
			pb.LeadTimeDays,
		}
		if err := writeSheetRow(f, priceSheet, row, values, cellStyle); err != nil {
			return nil, err
		}
		row++
	}

	row++
	totalLabel, _ := excelize.CoordinatesToCellName(7, row)
	totalValue, _ := excelize.CoordinatesToCellName(8, row)
	f.SetCellValue(priceSheet, totalLabel, "Total:")
	f.SetCellValue(priceSheet, totalValue, result.TotalExtendedPrice.InexactFloat64())
	f.SetCellStyle(priceSheet, totalLabel, totalValue, titleStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetHeader(f *excelize.File, sheet, title string, headers []string, titleStyle, headerStyle int) error {
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 3)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		f.SetCellValue(sheet, cell, h)
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 14); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 3)
	f.SetCellStyle(sheet, "A3", last, headerStyle)
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("row %d cell: %w", row, err)
		}
		f.SetCellValue(sheet, cell, v)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	f.SetCellStyle(sheet, first, last, style)
	return nil
}

// sanitizeExcelCell prefixes leading formula characters with a quote
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1,
		}
	}
	return borders
}
