package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// Writer persists quote snapshots as a scenario directory readable by Loader
type Writer struct{}

// NewWriter creates a new CSV writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteScenario writes all five scenario files for the given snapshots into dir,
// creating the directory when needed
func (w *Writer) WriteScenario(dir string, snapshots []*entities.QuoteSnapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scenario directory %s: %w", dir, err)
	}

	var lines, assemblies, operations, materials, quantities [][]string
	for _, s := range snapshots {
		for _, l := range s.Lines {
			qs := make([]string, len(l.Quantities))
			for i, q := range l.Quantities {
				qs[i] = formatFloat(q)
			}
			lines = append(lines, []string{l.ID, l.QuoteID, l.ItemID, l.Description, l.Replenishment.String(), strings.Join(qs, "|")})
		}
		for _, a := range s.Assemblies {
			assemblies = append(assemblies, []string{a.ID, a.LineID, deref(a.ParentAssemblyID), formatOptional(a.QuantityPerParent), a.Description})
		}
		for _, op := range s.Operations {
			operations = append(operations, []string{
				op.ID, op.LineID, deref(op.AssemblyID), op.Description,
				formatOptional(op.SetupHours), formatOptional(op.ProductionStandard), string(op.StandardFactor),
				formatOptional(op.LaborRate), formatOptional(op.OverheadRate), formatOptional(op.QuotingRate),
			})
		}
		for _, m := range s.Materials {
			materials = append(materials, []string{m.ID, m.OperationID, m.ItemID, m.Description, formatOptional(m.Quantity), formatOptional(m.UnitCost)})
		}
		for _, q := range s.LineQuantities {
			quantities = append(quantities, []string{
				q.ID, q.LineID, formatFloat(q.Quantity), formatFloat(q.AdditionalCost), formatFloat(q.UnitTaxAmount),
				formatFloat(q.MarkupPercent), formatFloat(q.DiscountPercent), strconv.Itoa(q.LeadTimeDays),
			})
		}
	}

	tables := []struct {
		file   string
		header []string
		rows   [][]string
	}{
		{LinesFile, linesHeader, lines},
		{AssembliesFile, assembliesHeader, assemblies},
		{OperationsFile, operationsHeader, operations},
		{MaterialsFile, materialsHeader, materials},
		{QuantitiesFile, quantitiesHeader, quantities},
	}
	for _, t := range tables {
		if err := writeTable(filepath.Join(dir, t.file), t.header, t.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", filename, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows to %s: %w", filename, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
