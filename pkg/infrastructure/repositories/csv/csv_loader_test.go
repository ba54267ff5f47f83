package csv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, LinesFile, `id,quote_id,item_id,description,replenishment,quantities
L1,Q-100,WIDGET,Widget,Make,1|10|100
L2,Q-200,BRACKET,Bracket,buy,
`)
	writeFile(t, dir, AssembliesFile, `id,line_id,parent_assembly_id,quantity_per_parent,description
A1,L1,,2,Frame
A2,L1,A1,3,Panel
`)
	writeFile(t, dir, OperationsFile, `id,line_id,assembly_id,description,setup_hours,production_standard,standard_factor,labor_rate,overhead_rate,quoting_rate
OP1,L1,,Cut,0.5,2,Minutes/Piece,30,10,
OP2,L1,A2,Weld,,6,Pieces/Hour,,,45
OP3,L2,,Inspect,1,,Total Hours,20,,
`)
	writeFile(t, dir, MaterialsFile, `id,operation_id,item_id,description,quantity,unit_cost
M1,OP1,STEEL,Sheet,2,5
M2,OP3,BOLT,Bolt,,0.25
`)
	writeFile(t, dir, QuantitiesFile, `id,line_id,quantity,additional_cost,unit_tax_amount,markup_percent,discount_percent,lead_time_days
LQ1,L1,10,1.5,0.2,20,10,14
LQ2,L1,100,,,,,
`)
	return dir
}

func TestLoader_LoadScenario(t *testing.T) {
	dir := writeScenario(t)

	snapshots, err := NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(snapshots))
	}

	q1 := snapshots[0]
	if q1.QuoteID != "Q-100" {
		t.Errorf("expected first quote Q-100, got %s", q1.QuoteID)
	}
	if len(q1.Lines) != 1 || len(q1.Assemblies) != 2 || len(q1.Operations) != 2 || len(q1.Materials) != 1 || len(q1.LineQuantities) != 2 {
		t.Errorf("unexpected Q-100 record counts: lines=%d assemblies=%d operations=%d materials=%d quantities=%d",
			len(q1.Lines), len(q1.Assemblies), len(q1.Operations), len(q1.Materials), len(q1.LineQuantities))
	}

	line := q1.Lines[0]
	if line.Replenishment != entities.Make {
		t.Errorf("expected Make, got %v", line.Replenishment)
	}
	if len(line.Quantities) != 3 || line.Quantities[2] != 100 {
		t.Errorf("expected quantities [1 10 100], got %v", line.Quantities)
	}

	a1 := q1.Assemblies[0]
	if !a1.IsRoot() {
		t.Error("expected A1 to be a root assembly")
	}
	if a1.QuantityPerParent == nil || *a1.QuantityPerParent != 2 {
		t.Errorf("expected A1 quantity per parent 2, got %v", a1.QuantityPerParent)
	}
	if a2 := q1.Assemblies[1]; a2.ParentAssemblyID == nil || *a2.ParentAssemblyID != "A1" {
		t.Errorf("expected A2 parent A1, got %v", a2.ParentAssemblyID)
	}

	op1 := q1.Operations[0]
	if op1.AssemblyID != nil {
		t.Errorf("expected OP1 without assembly, got %v", *op1.AssemblyID)
	}
	if op1.QuotingRate != nil {
		t.Error("expected empty quoting_rate to load as nil")
	}
	if op1.StandardFactor != entities.MinutesPerPiece {
		t.Errorf("expected Minutes/Piece, got %s", op1.StandardFactor)
	}
	op2 := q1.Operations[1]
	if op2.SetupHours != nil || op2.LaborRate != nil {
		t.Error("expected empty cells on OP2 to load as nil")
	}
	if op2.QuotingRate == nil || *op2.QuotingRate != 45 {
		t.Errorf("expected OP2 quoting rate 45, got %v", op2.QuotingRate)
	}

	lq := q1.LineQuantities[0]
	if lq.Quantity != 10 || lq.AdditionalCost != 1.5 || lq.MarkupPercent != 20 || lq.DiscountPercent != 10 || lq.LeadTimeDays != 14 {
		t.Errorf("unexpected quantity row: %+v", lq)
	}
	if blank := q1.LineQuantities[1]; blank.AdditionalCost != 0 || blank.LeadTimeDays != 0 {
		t.Errorf("expected blank cells to default to zero, got %+v", blank)
	}

	q2 := snapshots[1]
	if q2.QuoteID != "Q-200" {
		t.Errorf("expected second quote Q-200, got %s", q2.QuoteID)
	}
	if q2.Lines[0].Replenishment != entities.Buy {
		t.Errorf("expected Buy, got %v", q2.Lines[0].Replenishment)
	}
	if len(q2.Materials) != 1 || q2.Materials[0].Quantity != nil {
		t.Errorf("expected one material with nil quantity on Q-200, got %+v", q2.Materials)
	}
}

func TestLoader_LoadScenario_OptionalFilesMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, LinesFile, "id,quote_id,item_id,description,replenishment,quantities\nL1,Q-1,ITEM,,Make,5\n")
	writeFile(t, dir, OperationsFile, "id,line_id,assembly_id,description,setup_hours,production_standard,standard_factor,labor_rate,overhead_rate,quoting_rate\n")

	snapshots, err := NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(snapshots))
	}
	if len(snapshots[0].Operations) != 0 || len(snapshots[0].Assemblies) != 0 {
		t.Errorf("expected no operations or assemblies, got %+v", snapshots[0])
	}
}

func TestLoader_LoadScenario_RequiredFileMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, LinesFile, "id,quote_id,item_id,description,replenishment,quantities\n")

	_, err := NewLoader().LoadScenario(dir)
	if err == nil {
		t.Fatal("expected error when operations.csv is missing")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		load     func(l *Loader, path string) error
		contains string
	}{
		{
			name:    "header mismatch",
			file:    LinesFile,
			content: "id,quote,item\nL1,Q,I\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadLines(path)
				return err
			},
			contains: "header mismatch",
		},
		{
			name:    "empty file",
			file:    LinesFile,
			content: "",
			load: func(l *Loader, path string) error {
				_, err := l.LoadLines(path)
				return err
			},
			contains: "header row",
		},
		{
			name:    "bad replenishment",
			file:    LinesFile,
			content: "id,quote_id,item_id,description,replenishment,quantities\nL1,Q,I,,Borrow,1\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadLines(path)
				return err
			},
			contains: "row 2",
		},
		{
			name:    "bad quantity list",
			file:    LinesFile,
			content: "id,quote_id,item_id,description,replenishment,quantities\nL1,Q,I,,Make,1|x\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadLines(path)
				return err
			},
			contains: "invalid quantities",
		},
		{
			name:    "bad setup hours",
			file:    OperationsFile,
			content: "id,line_id,assembly_id,description,setup_hours,production_standard,standard_factor,labor_rate,overhead_rate,quoting_rate\nOP1,L1,,,abc,,,,,\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadOperations(path)
				return err
			},
			contains: "invalid setup_hours",
		},
		{
			name:    "negative labor rate",
			file:    OperationsFile,
			content: "id,line_id,assembly_id,description,setup_hours,production_standard,standard_factor,labor_rate,overhead_rate,quoting_rate\nOP1,L1,,,1,,,-40,,\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadOperations(path)
				return err
			},
			contains: "labor rate must not be negative",
		},
		{
			name:    "self parent",
			file:    AssembliesFile,
			content: "id,line_id,parent_assembly_id,quantity_per_parent,description\nA1,L1,A1,1,\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadAssemblies(path)
				return err
			},
			contains: "own parent",
		},
		{
			name:    "bad lead time",
			file:    QuantitiesFile,
			content: "id,line_id,quantity,additional_cost,unit_tax_amount,markup_percent,discount_percent,lead_time_days\nLQ1,L1,1,,,,,soon\n",
			load: func(l *Loader, path string) error {
				_, err := l.LoadQuantities(path)
				return err
			},
			contains: "lead_time_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			err := tt.load(NewLoader(), filepath.Join(dir, tt.file))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestWriter_WriteScenario_RoundTrip(t *testing.T) {
	src := writeScenario(t)
	loaded, err := NewLoader().LoadScenario(src)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "out")
	if err := NewWriter().WriteScenario(dst, loaded); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	reloaded, err := NewLoader().LoadScenario(dst)
	if err != nil {
		t.Fatalf("LoadScenario of written scenario failed: %v", err)
	}

	if len(reloaded) != len(loaded) {
		t.Fatalf("expected %d quotes, got %d", len(loaded), len(reloaded))
	}
	got := reloaded[0]
	if len(got.Operations) != 2 || got.Operations[1].QuotingRate == nil || *got.Operations[1].QuotingRate != 45 {
		t.Errorf("operation fields not preserved: %+v", got.Operations)
	}
	if got.Operations[0].QuotingRate != nil {
		t.Error("nil quoting rate should stay nil after writing")
	}
	if got.Lines[0].Quantities[1] != 10 {
		t.Errorf("line quantities not preserved: %v", got.Lines[0].Quantities)
	}
	if got.LineQuantities[0].LeadTimeDays != 14 {
		t.Errorf("lead time not preserved: %+v", got.LineQuantities[0])
	}
}
