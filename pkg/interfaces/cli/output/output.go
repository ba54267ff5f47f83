package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/quoting/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format        string
	OutputDir     string
	Verbose       bool
	RecomputeTime time.Duration
	// Stdout receives console output; nil means os.Stdout
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Formats lists the supported output formats
func Formats() []string {
	return []string{"text", "json", "csv", "xlsx", "pdf"}
}

// Generate creates output for every rollup in the specified format
func Generate(results []*dto.QuoteRollup, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(results, config)
	case "json":
		return generateJSONOutput(results, config)
	case "csv":
		return generateCSVOutput(results, config)
	case "xlsx":
		return generateBinaryOutput(results, config, "xlsx", GenerateExcel)
	case "pdf":
		return generateBinaryOutput(results, config, "pdf", GeneratePDF)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(results []*dto.QuoteRollup, config Config) error {
	w := config.stdout()

	for _, result := range results {
		fmt.Fprintf(w, "📊 Quote %s\n", result.QuoteID)
		fmt.Fprintf(w, "======================\n\n")
		fmt.Fprintf(w, "Lines: %d\n", countLines(result))
		fmt.Fprintf(w, "Price Breaks: %d\n", len(result.PriceBreaks))
		if config.RecomputeTime > 0 {
			fmt.Fprintf(w, "Recompute Time: %v\n", config.RecomputeTime)
		}
		fmt.Fprintln(w)

		if len(result.Lines) > 0 {
			fmt.Fprintf(w, "📋 Cost Rollup:\n")
			fmt.Fprintf(w, "%-12s %-10s %12s %12s %12s %10s %10s %12s\n",
				"Line", "Qty", "Material", "Labor", "Overhead", "Setup h", "Prod h", "Unit Cost")
			fmt.Fprintf(w, "%-12s %-10s %12s %12s %12s %10s %10s %12s\n",
				"------------", "----------", "------------", "------------", "------------", "----------", "----------", "------------")

			for _, line := range result.Lines {
				fmt.Fprintf(w, "%-12s %-10s %12s %12s %12s %10.2f %10.2f %12s\n",
					line.LineID,
					formatQuantity(line.Quantity),
					dto.Money(line.Totals.MaterialCost).StringFixed(2),
					dto.Money(line.Totals.LaborCost).StringFixed(2),
					dto.Money(line.Totals.OverheadCost).StringFixed(2),
					line.Totals.SetupHours,
					line.Totals.ProductionHours,
					line.UnitCost.StringFixed(2))
			}
			fmt.Fprintln(w)
		}

		if len(result.PriceBreaks) > 0 {
			fmt.Fprintf(w, "💰 Price Breaks:\n")
			fmt.Fprintf(w, "%-12s %-10s %12s %8s %8s %14s %14s %6s\n",
				"Line", "Qty", "Unit Cost", "Disc %", "Markup %", "Ext Cost", "Ext Price", "Days")
			fmt.Fprintf(w, "%-12s %-10s %12s %8s %8s %14s %14s %6s\n",
				"------------", "----------", "------------", "--------", "--------", "--------------", "--------------", "------")

			for _, pb := range result.PriceBreaks {
				fmt.Fprintf(w, "%-12s %-10s %12s %8.2f %8.2f %14s %14s %6d\n",
					pb.LineID,
					formatQuantity(pb.Quantity),
					pb.UnitCost.StringFixed(2),
					pb.DiscountPercent,
					pb.MarkupPercent,
					pb.ExtendedCost.StringFixed(2),
					pb.ExtendedPrice.StringFixed(2),
					pb.LeadTimeDays)
			}
			fmt.Fprintf(w, "\nTotal Extended Price: %s\n\n", result.TotalExtendedPrice.StringFixed(2))
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintf(w, "⚠️  Warnings:\n")
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "  - %s\n", warning)
			}
			fmt.Fprintln(w)
		}
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(results []*dto.QuoteRollup, config Config) error {
	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Fprintln(config.stdout(), string(jsonData))
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "quote_rollup.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput creates one CSV for line rollups and one for price breaks
func generateCSVOutput(results []*dto.QuoteRollup, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rollupFile := filepath.Join(config.OutputDir, "line_rollups.csv")
	if err := writeRollupsCSV(results, rollupFile); err != nil {
		return fmt.Errorf("failed to write line rollups CSV: %w", err)
	}

	pricesFile := filepath.Join(config.OutputDir, "price_breaks.csv")
	if err := writePriceBreaksCSV(results, pricesFile); err != nil {
		return fmt.Errorf("failed to write price breaks CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.stdout(), "  Line Rollups: %s\n", rollupFile)
		fmt.Fprintf(config.stdout(), "  Price Breaks: %s\n", pricesFile)
	}
	return nil
}

func generateBinaryOutput(results []*dto.QuoteRollup, config Config, ext string, render func(*dto.QuoteRollup) ([]byte, error)) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for %s format", ext)
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, result := range results {
		data, err := render(result)
		if err != nil {
			return fmt.Errorf("failed to render quote %s: %w", result.QuoteID, err)
		}
		filename := filepath.Join(config.OutputDir, fmt.Sprintf("quote_%s.%s", result.QuoteID, ext))
		if err := os.WriteFile(filename, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		if config.Verbose {
			fmt.Fprintf(config.stdout(), "💾 Quote %s saved to: %s\n", result.QuoteID, filename)
		}
	}
	return nil
}

func writeRollupsCSV(results []*dto.QuoteRollup, filename string) error {
	rows := [][]string{{
		"quote_id", "line_id", "item_id", "quantity", "material_cost", "labor_cost",
		"overhead_cost", "setup_hours", "production_hours", "unit_cost",
	}}
	for _, result := range results {
		for _, line := range result.Lines {
			rows = append(rows, []string{
				result.QuoteID,
				line.LineID,
				line.ItemID,
				formatQuantity(line.Quantity),
				formatFloat(line.Totals.MaterialCost),
				formatFloat(line.Totals.LaborCost),
				formatFloat(line.Totals.OverheadCost),
				formatFloat(line.Totals.SetupHours),
				formatFloat(line.Totals.ProductionHours),
				line.UnitCost.StringFixed(2),
			})
		}
	}
	return writeCSV(filename, rows)
}

func writePriceBreaksCSV(results []*dto.QuoteRollup, filename string) error {
	rows := [][]string{{
		"quote_id", "line_id", "quantity_id", "quantity", "unit_cost", "unit_tax_amount",
		"discount_percent", "markup_percent", "extended_cost", "extended_price", "lead_time_days",
	}}
	for _, result := range results {
		for _, pb := range result.PriceBreaks {
			rows = append(rows, []string{
				result.QuoteID,
				pb.LineID,
				pb.QuantityID,
				formatQuantity(pb.Quantity),
				pb.UnitCost.StringFixed(2),
				pb.UnitTaxAmount.StringFixed(2),
				formatFloat(pb.DiscountPercent),
				formatFloat(pb.MarkupPercent),
				pb.ExtendedCost.StringFixed(2),
				pb.ExtendedPrice.StringFixed(2),
				strconv.Itoa(pb.LeadTimeDays),
			})
		}
	}
	return writeCSV(filename, rows)
}

func writeCSV(filename string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	return writer.WriteAll(rows)
}

func countLines(result *dto.QuoteRollup) int {
	seen := make(map[string]bool)
	for _, line := range result.Lines {
		seen[line.LineID] = true
	}
	for _, pb := range result.PriceBreaks {
		seen[pb.LineID] = true
	}
	return len(seen)
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
