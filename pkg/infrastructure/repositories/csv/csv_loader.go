package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// Scenario file names inside a scenario directory
const (
	LinesFile      = "lines.csv"
	AssembliesFile = "assemblies.csv"
	OperationsFile = "operations.csv"
	MaterialsFile  = "materials.csv"
	QuantitiesFile = "quantities.csv"
)

var (
	linesHeader      = []string{"id", "quote_id", "item_id", "description", "replenishment", "quantities"}
	assembliesHeader = []string{"id", "line_id", "parent_assembly_id", "quantity_per_parent", "description"}
	operationsHeader = []string{"id", "line_id", "assembly_id", "description", "setup_hours", "production_standard", "standard_factor", "labor_rate", "overhead_rate", "quoting_rate"}
	materialsHeader  = []string{"id", "operation_id", "item_id", "description", "quantity", "unit_cost"}
	quantitiesHeader = []string{"id", "line_id", "quantity", "additional_cost", "unit_tax_amount", "markup_percent", "discount_percent", "lead_time_days"}
)

// Loader handles loading quote records from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads every scenario file in dir and groups the records into one
// snapshot per quote id. lines.csv and operations.csv are required; the other
// files may be absent.
func (l *Loader) LoadScenario(dir string) ([]*entities.QuoteSnapshot, error) {
	lines, err := l.LoadLines(filepath.Join(dir, LinesFile))
	if err != nil {
		return nil, err
	}
	operations, err := l.LoadOperations(filepath.Join(dir, OperationsFile))
	if err != nil {
		return nil, err
	}
	assemblies, err := l.LoadAssemblies(filepath.Join(dir, AssembliesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	materials, err := l.LoadMaterials(filepath.Join(dir, MaterialsFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	quantities, err := l.LoadQuantities(filepath.Join(dir, QuantitiesFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return groupByQuote(lines, assemblies, operations, materials, quantities), nil
}

// LoadLines loads quotation lines from a CSV file
func (l *Loader) LoadLines(filename string) ([]entities.QuotationLine, error) {
	rows, err := readTable(filename, "lines", linesHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]entities.QuotationLine, 0, len(rows))
	for i, record := range rows {
		line, err := parseLine(record)
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// LoadAssemblies loads quotation assemblies from a CSV file
func (l *Loader) LoadAssemblies(filename string) ([]entities.QuotationAssembly, error) {
	rows, err := readTable(filename, "assemblies", assembliesHeader)
	if err != nil {
		return nil, err
	}

	assemblies := make([]entities.QuotationAssembly, 0, len(rows))
	for i, record := range rows {
		qtyPer, err := parseOptionalFloat(record[3], "quantity_per_parent")
		if err != nil {
			return nil, fmt.Errorf("assemblies CSV row %d: %w", i+2, err)
		}
		a, err := entities.NewQuotationAssembly(record[0], record[1], entities.String(strings.TrimSpace(record[2])), qtyPer)
		if err != nil {
			return nil, fmt.Errorf("assemblies CSV row %d: %w", i+2, err)
		}
		a.Description = record[4]
		assemblies = append(assemblies, *a)
	}
	return assemblies, nil
}

// LoadOperations loads quotation operations from a CSV file
func (l *Loader) LoadOperations(filename string) ([]entities.QuotationOperation, error) {
	rows, err := readTable(filename, "operations", operationsHeader)
	if err != nil {
		return nil, err
	}

	operations := make([]entities.QuotationOperation, 0, len(rows))
	for i, record := range rows {
		op, err := parseOperation(record)
		if err != nil {
			return nil, fmt.Errorf("operations CSV row %d: %w", i+2, err)
		}
		operations = append(operations, *op)
	}
	return operations, nil
}

// LoadMaterials loads quotation materials from a CSV file
func (l *Loader) LoadMaterials(filename string) ([]entities.QuotationMaterial, error) {
	rows, err := readTable(filename, "materials", materialsHeader)
	if err != nil {
		return nil, err
	}

	materials := make([]entities.QuotationMaterial, 0, len(rows))
	for i, record := range rows {
		quantity, err := parseOptionalFloat(record[4], "quantity")
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		unitCost, err := parseOptionalFloat(record[5], "unit_cost")
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		m, err := entities.NewQuotationMaterial(record[0], record[1], quantity, unitCost)
		if err != nil {
			return nil, fmt.Errorf("materials CSV row %d: %w", i+2, err)
		}
		m.ItemID = record[2]
		m.Description = record[3]
		materials = append(materials, *m)
	}
	return materials, nil
}

// LoadQuantities loads quantity break rows from a CSV file
func (l *Loader) LoadQuantities(filename string) ([]entities.QuotationLineQuantity, error) {
	rows, err := readTable(filename, "quantities", quantitiesHeader)
	if err != nil {
		return nil, err
	}

	quantities := make([]entities.QuotationLineQuantity, 0, len(rows))
	for i, record := range rows {
		q, err := parseLineQuantity(record)
		if err != nil {
			return nil, fmt.Errorf("quantities CSV row %d: %w", i+2, err)
		}
		quantities = append(quantities, q)
	}
	return quantities, nil
}

// readTable opens a CSV file, validates its header and returns the data rows.
// A header-only file yields no rows.
func readTable(filename, name string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", name, filename, err)
	}
	defer file.Close()

	return parseTable(file, name, expectedHeader)
}

func parseTable(r io.Reader, name string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", name, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", name)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", name, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", name, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseLine(record []string) (*entities.QuotationLine, error) {
	mode, err := entities.ParseReplenishmentMode(record[4])
	if err != nil {
		return nil, err
	}

	var quantities []float64
	for _, part := range strings.Split(record[5], "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		q, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantities: %s", record[5])
		}
		quantities = append(quantities, q)
	}

	line, err := entities.NewQuotationLine(record[0], record[1], record[2], mode, quantities)
	if err != nil {
		return nil, err
	}
	line.Description = record[3]
	return line, nil
}

func parseOperation(record []string) (*entities.QuotationOperation, error) {
	op, err := entities.NewQuotationOperation(
		record[0],
		record[1],
		entities.String(strings.TrimSpace(record[2])),
		entities.StandardFactor(strings.TrimSpace(record[6])),
	)
	if err != nil {
		return nil, err
	}
	op.Description = record[3]

	fields := []struct {
		raw  string
		name string
		dst  **float64
	}{
		{record[4], "setup_hours", &op.SetupHours},
		{record[5], "production_standard", &op.ProductionStandard},
		{record[7], "labor_rate", &op.LaborRate},
		{record[8], "overhead_rate", &op.OverheadRate},
		{record[9], "quoting_rate", &op.QuotingRate},
	}
	for _, f := range fields {
		v, err := parseOptionalFloat(f.raw, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	return op, nil
}

func parseLineQuantity(record []string) (entities.QuotationLineQuantity, error) {
	q := entities.QuotationLineQuantity{ID: record[0], LineID: record[1]}
	if q.LineID == "" {
		return q, fmt.Errorf("line_id cannot be empty")
	}

	fields := []struct {
		raw  string
		name string
		dst  *float64
	}{
		{record[2], "quantity", &q.Quantity},
		{record[3], "additional_cost", &q.AdditionalCost},
		{record[4], "unit_tax_amount", &q.UnitTaxAmount},
		{record[5], "markup_percent", &q.MarkupPercent},
		{record[6], "discount_percent", &q.DiscountPercent},
	}
	for _, f := range fields {
		v, err := parseOptionalFloat(f.raw, f.name)
		if err != nil {
			return q, err
		}
		if v != nil {
			*f.dst = *v
		}
	}

	if s := strings.TrimSpace(record[7]); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid lead_time_days: %s", record[7])
		}
		q.LeadTimeDays = days
	}

	return q, nil
}

// parseOptionalFloat maps an empty cell to nil
func parseOptionalFloat(s, name string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %s", name, s)
	}
	return &v, nil
}

// groupByQuote splits flat record lists into per-quote snapshots, following the
// line -> operation ownership chain for records that carry no quote id
func groupByQuote(
	lines []entities.QuotationLine,
	assemblies []entities.QuotationAssembly,
	operations []entities.QuotationOperation,
	materials []entities.QuotationMaterial,
	quantities []entities.QuotationLineQuantity,
) []*entities.QuoteSnapshot {
	var snapshots []*entities.QuoteSnapshot
	byQuote := make(map[string]*entities.QuoteSnapshot)
	quoteOfLine := make(map[string]string, len(lines))

	snapshotFor := func(quoteID string) *entities.QuoteSnapshot {
		s, ok := byQuote[quoteID]
		if !ok {
			s = &entities.QuoteSnapshot{QuoteID: quoteID}
			byQuote[quoteID] = s
			snapshots = append(snapshots, s)
		}
		return s
	}

	for _, line := range lines {
		quoteOfLine[line.ID] = line.QuoteID
		s := snapshotFor(line.QuoteID)
		s.Lines = append(s.Lines, line)
	}

	// records pointing at unknown lines stay in a quote keyed by the empty id so
	// the validator can report them
	for _, a := range assemblies {
		s := snapshotFor(quoteOfLine[a.LineID])
		s.Assemblies = append(s.Assemblies, a)
	}

	quoteOfOperation := make(map[string]string, len(operations))
	for _, op := range operations {
		quoteID := quoteOfLine[op.LineID]
		quoteOfOperation[op.ID] = quoteID
		s := snapshotFor(quoteID)
		s.Operations = append(s.Operations, op)
	}

	for _, m := range materials {
		s := snapshotFor(quoteOfOperation[m.OperationID])
		s.Materials = append(s.Materials, m)
	}

	for _, q := range quantities {
		s := snapshotFor(quoteOfLine[q.LineID])
		s.LineQuantities = append(s.LineQuantities, q)
	}

	return snapshots
}
