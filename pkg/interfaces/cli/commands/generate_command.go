package commands

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/csv"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Quotes    int    // Number of quotes to generate
	Lines     int    // Lines per quote
	MaxDepth  int    // Maximum depth of each line's assembly tree
	OutputDir string // Output directory for generated files
	Seed      int64  // Random seed for reproducible generation
	Help      bool   // Show help
	Verbose   bool   // Verbose output
	Stdout    io.Writer
}

// GenerateCommand writes a random but structurally valid quote scenario
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Quotes <= 0 {
		config.Quotes = 1
	}
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// assemblyNode is one assembly of the generated tree
type assemblyNode struct {
	ID       string
	ParentID string
	Level    int
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if cmd.config.Lines <= 0 {
		return fmt.Errorf("-lines must be positive")
	}
	if cmd.config.MaxDepth < 0 {
		return fmt.Errorf("-depth must not be negative")
	}
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("-output directory is required")
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "🔧 Generating %d quotes with %d lines each, max depth %d\n",
			cmd.config.Quotes, cmd.config.Lines, cmd.config.MaxDepth)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	snapshots := make([]*entities.QuoteSnapshot, 0, cmd.config.Quotes)
	for i := 0; i < cmd.config.Quotes; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		snapshots = append(snapshots, cmd.generateQuote(i+1))
	}

	if err := csv.NewWriter().WriteScenario(cmd.config.OutputDir, snapshots); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

// newID draws a uuid from the seeded source so scenarios are reproducible
func (cmd *GenerateCommand) newID(prefix string) string {
	id, err := uuid.NewRandomFromReader(cmd.rand)
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, cmd.rand.Int63())
	}
	return prefix + "-" + id.String()
}

func (cmd *GenerateCommand) generateQuote(n int) *entities.QuoteSnapshot {
	quoteID := fmt.Sprintf("Q-%04d", n)
	snapshot := &entities.QuoteSnapshot{QuoteID: quoteID}

	for i := 0; i < cmd.config.Lines; i++ {
		lineID := cmd.newID("L")
		mode := entities.Make
		if cmd.rand.Float64() < 0.15 {
			mode = entities.Buy
		}

		quantities := cmd.generateQuantities()
		snapshot.Lines = append(snapshot.Lines, entities.QuotationLine{
			ID:            lineID,
			QuoteID:       quoteID,
			ItemID:        fmt.Sprintf("ITEM-%04d-%03d", n, i+1),
			Description:   cmd.generateDescription(mode),
			Replenishment: mode,
			Quantities:    quantities,
		})

		tree := cmd.generateAssemblyTree()
		for _, node := range tree {
			a := entities.QuotationAssembly{
				ID:                node.ID,
				LineID:            lineID,
				ParentAssemblyID:  entities.String(node.ParentID),
				QuantityPerParent: entities.Float(float64(1 + cmd.rand.Intn(4))),
				Description:       fmt.Sprintf("Level %d assembly", node.Level),
			}
			snapshot.Assemblies = append(snapshot.Assemblies, a)
		}

		// one line-level operation plus one per assembly
		targets := []string{""}
		for _, node := range tree {
			targets = append(targets, node.ID)
		}
		for _, assemblyID := range targets {
			op := cmd.generateOperation(lineID, assemblyID)
			snapshot.Operations = append(snapshot.Operations, op)
			for m := 0; m < cmd.rand.Intn(3); m++ {
				snapshot.Materials = append(snapshot.Materials, entities.QuotationMaterial{
					ID:          cmd.newID("M"),
					OperationID: op.ID,
					ItemID:      fmt.Sprintf("RAW-%03d", cmd.rand.Intn(500)),
					Quantity:    entities.Float(roundTo(0.1+cmd.rand.Float64()*5, 2)),
					UnitCost:    entities.Float(roundTo(0.5+cmd.rand.Float64()*50, 2)),
				})
			}
		}

		for _, q := range quantities {
			snapshot.LineQuantities = append(snapshot.LineQuantities, entities.QuotationLineQuantity{
				ID:              cmd.newID("LQ"),
				LineID:          lineID,
				Quantity:        q,
				AdditionalCost:  roundTo(cmd.rand.Float64()*5, 2),
				UnitTaxAmount:   roundTo(cmd.rand.Float64()*2, 2),
				MarkupPercent:   float64(10 + cmd.rand.Intn(31)),
				DiscountPercent: float64(cmd.rand.Intn(4) * 5),
				LeadTimeDays:    5 + cmd.rand.Intn(40),
			})
		}
	}

	return snapshot
}

// generateAssemblyTree builds a tree of up to MaxDepth levels, each parent
// having 1-3 children
func (cmd *GenerateCommand) generateAssemblyTree() []assemblyNode {
	var nodes []assemblyNode
	if cmd.config.MaxDepth == 0 {
		return nodes
	}

	currentLevel := []assemblyNode{{ID: cmd.newID("A"), Level: 1}}
	nodes = append(nodes, currentLevel...)

	for level := 2; level <= cmd.config.MaxDepth; level++ {
		var nextLevel []assemblyNode
		for _, parent := range currentLevel {
			numChildren := 1 + cmd.rand.Intn(3)
			for c := 0; c < numChildren; c++ {
				// leave some branches short
				if cmd.rand.Float64() < 0.3 {
					continue
				}
				child := assemblyNode{ID: cmd.newID("A"), ParentID: parent.ID, Level: level}
				nextLevel = append(nextLevel, child)
			}
		}
		if len(nextLevel) == 0 {
			break
		}
		nodes = append(nodes, nextLevel...)
		currentLevel = nextLevel
	}
	return nodes
}

func (cmd *GenerateCommand) generateOperation(lineID, assemblyID string) entities.QuotationOperation {
	factors := entities.KnownStandardFactors()
	factor := factors[cmd.rand.Intn(len(factors))]

	op := entities.QuotationOperation{
		ID:                 cmd.newID("OP"),
		LineID:             lineID,
		AssemblyID:         entities.String(assemblyID),
		Description:        cmd.generateOperationName(),
		SetupHours:         entities.Float(roundTo(cmd.rand.Float64()*2, 2)),
		ProductionStandard: entities.Float(cmd.generateStandard(factor)),
		StandardFactor:     factor,
	}

	// about one operation in five is costed at a single quoting rate
	if cmd.rand.Float64() < 0.2 {
		op.QuotingRate = entities.Float(float64(50 + cmd.rand.Intn(100)))
	} else {
		op.LaborRate = entities.Float(float64(25 + cmd.rand.Intn(40)))
		op.OverheadRate = entities.Float(float64(5 + cmd.rand.Intn(30)))
	}
	return op
}

// generateStandard picks a plausible production standard for the factor
func (cmd *GenerateCommand) generateStandard(factor entities.StandardFactor) float64 {
	switch factor {
	case entities.PiecesPerHour, entities.PiecesPerMinute:
		return float64(1 + cmd.rand.Intn(60))
	case entities.TotalHours, entities.TotalMinutes:
		return float64(1 + cmd.rand.Intn(8))
	case entities.HoursPer100Pieces, entities.HoursPer1000Pieces,
		entities.MinutesPer100Pieces, entities.MinutesPer1000Pieces:
		return float64(1 + cmd.rand.Intn(20))
	default:
		return roundTo(0.1+cmd.rand.Float64()*10, 2)
	}
}

func (cmd *GenerateCommand) generateQuantities() []float64 {
	base := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}
	start := cmd.rand.Intn(4)
	count := 1 + cmd.rand.Intn(3)
	var quantities []float64
	for i := start; i < len(base) && len(quantities) < count; i += 1 + cmd.rand.Intn(2) {
		quantities = append(quantities, base[i])
	}
	return quantities
}

func (cmd *GenerateCommand) generateDescription(mode entities.ReplenishmentMode) string {
	if mode == entities.Buy {
		return "Purchased component"
	}
	names := []string{"Enclosure", "Bracket", "Chassis", "Housing", "Panel", "Frame", "Manifold"}
	return names[cmd.rand.Intn(len(names))]
}

func (cmd *GenerateCommand) generateOperationName() string {
	names := []string{"Laser cut", "Press brake", "Weld", "Deburr", "Powder coat", "Assemble", "Inspect", "Machine"}
	return names[cmd.rand.Intn(len(names))]
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Quote Scenario Generator

USAGE:
    quoting generate [OPTIONS]

OPTIONS:
    -quotes <N>         Number of quotes to generate (default: 1)
    -lines <N>          Lines per quote (required)
    -depth <N>          Maximum depth of each line's assembly tree (default: 3)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small scenario
    quoting generate -lines 10 -depth 3 -output ./test_scenario

    # Generate a reproducible large scenario
    quoting generate -quotes 5 -lines 200 -depth 6 -seed 12345 -output ./large_scenario -verbose`)
}
