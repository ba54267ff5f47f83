package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/csv"
	testhelpers "github.com/vsinha/quoting/pkg/infrastructure/testing"
)

func TestGenerateCommand_WritesLoadableScenario(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scenario")
	cmd := NewGenerateCommand(GenerateConfig{
		Quotes:    2,
		Lines:     5,
		MaxDepth:  3,
		OutputDir: dir,
		Seed:      42,
		Stdout:    &bytes.Buffer{},
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	snapshots, err := csv.NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("generated scenario does not load: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(snapshots))
	}
	for _, s := range snapshots {
		if len(s.Lines) != 5 {
			t.Errorf("quote %s: expected 5 lines, got %d", s.QuoteID, len(s.Lines))
		}
		if len(s.Operations) < 5 {
			t.Errorf("quote %s: expected at least one operation per line, got %d", s.QuoteID, len(s.Operations))
		}
	}
}

func TestGenerateCommand_SeedIsReproducible(t *testing.T) {
	read := func(seed int64) []byte {
		dir := t.TempDir()
		cmd := NewGenerateCommand(GenerateConfig{Lines: 3, MaxDepth: 2, OutputDir: dir, Seed: seed, Stdout: &bytes.Buffer{}})
		if err := cmd.Execute(context.Background()); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, csv.OperationsFile))
		if err != nil {
			t.Fatalf("read operations: %v", err)
		}
		return data
	}

	if !bytes.Equal(read(7), read(7)) {
		t.Error("expected identical output for the same seed")
	}
}

func TestGenerateCommand_InvalidConfig(t *testing.T) {
	tests := []GenerateConfig{
		{Lines: 0, OutputDir: "x"},
		{Lines: 1, MaxDepth: -1, OutputDir: "x"},
		{Lines: 1},
	}
	for _, cfg := range tests {
		cfg.Stdout = &bytes.Buffer{}
		if err := NewGenerateCommand(cfg).Execute(context.Background()); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func writeEnclosureScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	err := csv.NewWriter().WriteScenario(dir, []*entities.QuoteSnapshot{testhelpers.BuildEnclosureQuote()})
	if err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}
	return dir
}

func TestRollupCommand_JSON(t *testing.T) {
	dir := writeEnclosureScenario(t)

	var buf bytes.Buffer
	cmd := NewRollupCommand(Config{ScenarioDir: dir, Format: "json", Stdout: &buf})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	var results []struct {
		QuoteID            string `json:"quote_id"`
		TotalExtendedPrice string `json:"total_extended_price"`
		Lines              []struct {
			LineID   string  `json:"line_id"`
			Quantity float64 `json:"quantity"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(buf.Bytes(), &results); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(results) != 1 || results[0].QuoteID != testhelpers.EnclosureQuoteID {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].TotalExtendedPrice != "648.75" {
		t.Errorf("expected total 648.75, got %s", results[0].TotalExtendedPrice)
	}
	if len(results[0].Lines) != 4 {
		t.Errorf("expected 4 line rollups, got %d", len(results[0].Lines))
	}
}

func TestRollupCommand_LineAndQuantities(t *testing.T) {
	dir := writeEnclosureScenario(t)

	var buf bytes.Buffer
	cmd := NewRollupCommand(Config{
		ScenarioDir: dir,
		LineID:      "L-ENC",
		Quantities:  []float64{10},
		Format:      "text",
		Verbose:     true,
		Stdout:      &buf,
	})
	if err := cmd.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "53.00") {
		t.Errorf("expected unit cost 53.00 in output:\n%s", out)
	}
	if strings.Contains(out, "L-BRK") {
		t.Errorf("expected L-BRK to be filtered out:\n%s", out)
	}
	if !strings.Contains(out, "Rollup complete") {
		t.Errorf("expected verbose footer:\n%s", out)
	}
}

func TestRollupCommand_Errors(t *testing.T) {
	dir := writeEnclosureScenario(t)

	cyclic := t.TempDir()
	if err := csv.NewWriter().WriteScenario(cyclic, []*entities.QuoteSnapshot{testhelpers.BuildCyclicQuote()}); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	tests := []struct {
		name   string
		config Config
	}{
		{"missing scenario", Config{Format: "text"}},
		{"unknown dir", Config{ScenarioDir: filepath.Join(dir, "nope"), Format: "text"}},
		{"bad format", Config{ScenarioDir: dir, Format: "html"}},
		{"unknown quote", Config{ScenarioDir: dir, QuoteID: "Q-NONE", Format: "text"}},
		{"unknown line", Config{ScenarioDir: dir, LineID: "L-NONE", Format: "text"}},
		{"cycle", Config{ScenarioDir: cyclic, Format: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Stdout = &bytes.Buffer{}
			if err := NewRollupCommand(tt.config).Execute(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseQuantities(t *testing.T) {
	got, err := ParseQuantities(" 1, 10 ,100")
	if err != nil {
		t.Fatalf("ParseQuantities failed: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{1, 10, 100}) {
		t.Errorf("unexpected quantities: %v", got)
	}

	if got, err := ParseQuantities(""); err != nil || got != nil {
		t.Errorf("expected nil for empty input, got %v, %v", got, err)
	}
	for _, bad := range []string{"1,x", "-5"} {
		if _, err := ParseQuantities(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
