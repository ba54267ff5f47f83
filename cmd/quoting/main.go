package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vsinha/quoting/pkg/infrastructure/config"
	"github.com/vsinha/quoting/pkg/interfaces/cli/commands"
)

func main() {
	ctx := context.Background()

	if len(os.Args) > 1 && os.Args[1] == "generate" {
		runGenerate(ctx, os.Args[2:])
		return
	}

	cfg := config.Load()

	// Command line flags
	var (
		scenarioDir = flag.String("scenario", cfg.ScenarioDir, "Path to scenario directory containing CSV files")
		quoteID     = flag.String("quote", "", "Only roll up this quote")
		lineID      = flag.String("line", "", "Only roll up this line")
		quantities  = flag.String("quantities", "", "Comma separated quantities, e.g. 1,10,100")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv, xlsx, pdf")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	qs, err := commands.ParseQuantities(*quantities)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := commands.NewRollupCommand(commands.Config{
		ScenarioDir: *scenarioDir,
		QuoteID:     *quoteID,
		LineID:      *lineID,
		Quantities:  qs,
		OutputDir:   *outputDir,
		Format:      *format,
		Verbose:     *verbose,
		Help:        *help,
	})

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		quotes    = fs.Int("quotes", 1, "Number of quotes to generate")
		lines     = fs.Int("lines", 10, "Lines per quote")
		depth     = fs.Int("depth", 3, "Maximum depth of each line's assembly tree")
		outputDir = fs.String("output", "", "Output directory for generated files")
		seed      = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	cmd := commands.NewGenerateCommand(commands.GenerateConfig{
		Quotes:    *quotes,
		Lines:     *lines,
		MaxDepth:  *depth,
		OutputDir: *outputDir,
		Seed:      *seed,
		Help:      *help,
		Verbose:   *verbose,
	})

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
