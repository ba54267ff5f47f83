package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/quoting/pkg/application/dto"
	"github.com/vsinha/quoting/pkg/application/services"
	domainservices "github.com/vsinha/quoting/pkg/domain/services"
	"github.com/vsinha/quoting/pkg/infrastructure/events"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/quoting/pkg/interfaces/cli/output"
)

// Config holds configuration for the rollup command
type Config struct {
	ScenarioDir string
	QuoteID     string
	LineID      string
	Quantities  []float64
	OutputDir   string
	Format      string
	Verbose     bool
	Help        bool
	// Stdout receives all console output; nil means os.Stdout
	Stdout io.Writer
}

// RollupCommand loads a CSV scenario and prints the cost rollup of every quote
type RollupCommand struct {
	config Config
	out    io.Writer
}

// NewRollupCommand creates a new rollup command with the given configuration
func NewRollupCommand(config Config) *RollupCommand {
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &RollupCommand{
		config: config,
		out:    out,
	}
}

// Execute runs the rollup command
func (c *RollupCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if c.config.Verbose {
		c.printHeader()
		fmt.Fprintln(c.out, "📂 Loading scenario from CSV files...")
	}

	snapshots, err := csv.NewLoader().LoadScenario(c.config.ScenarioDir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	repo := memory.NewQuoteRepository(len(snapshots))
	validator := domainservices.NewBOMValidator()
	var quoteIDs []string
	for _, snapshot := range snapshots {
		if c.config.QuoteID != "" && snapshot.QuoteID != c.config.QuoteID {
			continue
		}

		validation := validator.ValidateQuote(snapshot)
		if validation.HasCycles {
			return fmt.Errorf("quote %s has assembly cycles: %v", snapshot.QuoteID, validation.CyclePaths)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.out, "✅ Quote %s: %d lines, %d assemblies, %d operations, %d materials, %d quantity rows\n",
				snapshot.QuoteID, len(snapshot.Lines), len(snapshot.Assemblies), len(snapshot.Operations),
				len(snapshot.Materials), len(snapshot.LineQuantities))
			for _, e := range validation.Errors {
				fmt.Fprintf(c.out, "  ❌ %s\n", e)
			}
			for _, w := range validation.Warnings {
				fmt.Fprintf(c.out, "  ⚠️  %s\n", w)
			}
		}

		if err := repo.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to load quote %s into repository: %w", snapshot.QuoteID, err)
		}
		quoteIDs = append(quoteIDs, snapshot.QuoteID)
	}
	if len(quoteIDs) == 0 {
		if c.config.QuoteID != "" {
			return fmt.Errorf("quote %s not found in %s", c.config.QuoteID, c.config.ScenarioDir)
		}
		return fmt.Errorf("no quotes found in %s", c.config.ScenarioDir)
	}

	eventStore := events.NewInMemoryEventStore()
	quoteService := services.NewQuoteService(repo, eventStore)

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🔄 Recomputing cost rollups...")
	}

	startTime := time.Now()
	results := make([]*dto.QuoteRollup, 0, len(quoteIDs))
	for _, quoteID := range quoteIDs {
		if _, err := quoteService.Load(ctx, quoteID); err != nil {
			return fmt.Errorf("error recomputing quote %s: %w", quoteID, err)
		}
		result, err := quoteService.Rollup(quoteID, services.RollupOptions{
			LineID:     c.config.LineID,
			Quantities: c.config.Quantities,
		})
		if err != nil {
			return fmt.Errorf("error rolling up quote %s: %w", quoteID, err)
		}
		results = append(results, result)
	}
	recomputeTime := time.Since(startTime)

	if c.config.Verbose {
		recorded, _ := eventStore.ReadAllEvents(0)
		fmt.Fprintf(c.out, "✅ %d quotes recomputed in %v (%d events)\n\n", len(results), recomputeTime, len(recorded))
	}

	err = output.Generate(results, output.Config{
		Format:        c.config.Format,
		OutputDir:     c.config.OutputDir,
		Verbose:       c.config.Verbose,
		RecomputeTime: recomputeTime,
		Stdout:        c.out,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.out, "🏁 Rollup complete!")
	}
	return nil
}

// validateInputs validates the command configuration
func (c *RollupCommand) validateInputs() error {
	if c.config.ScenarioDir == "" {
		return fmt.Errorf("must specify -scenario directory")
	}
	if _, err := os.Stat(c.config.ScenarioDir); err != nil {
		return fmt.Errorf("scenario directory not found: %s", c.config.ScenarioDir)
	}
	for _, f := range output.Formats() {
		if f == c.config.Format {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q, expected one of %s", c.config.Format, strings.Join(output.Formats(), ", "))
}

// ParseQuantities parses a comma separated quantity list such as "1,10,100"
func ParseQuantities(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var quantities []float64
	for _, part := range strings.Split(s, ",") {
		q, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity %q", part)
		}
		if q < 0 {
			return nil, fmt.Errorf("quantity must not be negative: %v", q)
		}
		quantities = append(quantities, q)
	}
	return quantities, nil
}

// printHeader prints the command header information
func (c *RollupCommand) printHeader() {
	fmt.Fprintf(c.out, "🚀 Quotation Cost Rollup CLI\n")
	fmt.Fprintf(c.out, "Scenario: %s\n", c.config.ScenarioDir)
	fmt.Fprintf(c.out, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.out, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(c.out)
}

// showHelp displays the help message
func (c *RollupCommand) showHelp() {
	fmt.Fprintf(c.out, `Quotation Cost Rollup CLI - per-line cost and price breaks for manufactured quotes

USAGE:
    quoting -scenario <directory> [OPTIONS]
    quoting generate [OPTIONS]

OPTIONS:
    -scenario <dir>       Path to scenario directory containing CSV files
    -quote <id>           Only roll up this quote
    -line <id>            Only roll up this line
    -quantities <list>    Comma separated quantities overriding each line's candidates
    -output <dir>         Output directory for results (required for csv, xlsx, pdf)
    -format <fmt>         Output format: text, json, csv, xlsx, pdf (default: text)
    -verbose              Enable verbose output
    -help                 Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── lines.csv         # Quotation lines (required)
    ├── operations.csv    # Operations per line or assembly (required)
    ├── assemblies.csv    # Assembly tree (optional)
    ├── materials.csv     # Materials per operation (optional)
    └── quantities.csv    # Priced quantity breaks (optional)

CSV FILE FORMATS:

lines.csv:
    id,quote_id,item_id,description,replenishment,quantities
    L1,Q-100,ENCLOSURE,Control enclosure,Make,1|10|100

assemblies.csv:
    id,line_id,parent_assembly_id,quantity_per_parent,description
    A1,L1,,1,Frame
    A2,L1,A1,4,Side panel

operations.csv:
    id,line_id,assembly_id,description,setup_hours,production_standard,standard_factor,labor_rate,overhead_rate,quoting_rate
    OP1,L1,,Laser cut,0.5,6,Minutes/Piece,40,10,
    OP2,L1,A2,Press brake,0.25,30,Pieces/Hour,,,60

materials.csv:
    id,operation_id,item_id,description,quantity,unit_cost
    M1,OP1,SHEET-16GA,Sheet,2,12.5

quantities.csv:
    id,line_id,quantity,additional_cost,unit_tax_amount,markup_percent,discount_percent,lead_time_days
    LQ1,L1,10,2,1,25,10,21

EXAMPLES:
    # Roll up every quote in a scenario
    quoting -scenario examples/enclosure -verbose

    # Price one line at custom quantities
    quoting -scenario examples/enclosure -line L1 -quantities 5,50,500

    # Export workbooks
    quoting -scenario examples/enclosure -format xlsx -output results/

    # Generate a random scenario
    quoting generate -quotes 2 -lines 20 -depth 4 -output ./generated
`)
}
