package rollup

import (
	"fmt"
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// deepSnapshot chains depth assemblies under one line, each with one operation
// and one material
func deepSnapshot(depth int) *entities.QuoteSnapshot {
	s := &entities.QuoteSnapshot{
		QuoteID: "Q-DEEP",
		Lines:   []entities.QuotationLine{{ID: "L1", QuoteID: "Q-DEEP", Quantities: []float64{1, 10, 100}}},
	}
	parent := ""
	for i := 0; i < depth; i++ {
		id := fmt.Sprintf("A%d", i)
		s.Assemblies = append(s.Assemblies, assembly(id, "L1", parent, entities.Float(2)))
		s.Operations = append(s.Operations, benchOperation(fmt.Sprintf("OP%d", i), "L1", id))
		s.Materials = append(s.Materials, entities.QuotationMaterial{
			ID: fmt.Sprintf("M%d", i), OperationID: fmt.Sprintf("OP%d", i),
			Quantity: entities.Float(1), UnitCost: entities.Float(1.5),
		})
		parent = id
	}
	return s
}

// wideSnapshot hangs width root assemblies off each of lines lines
func wideSnapshot(lines, width int) *entities.QuoteSnapshot {
	s := &entities.QuoteSnapshot{QuoteID: "Q-WIDE"}
	for l := 0; l < lines; l++ {
		lineID := fmt.Sprintf("L%d", l)
		s.Lines = append(s.Lines, entities.QuotationLine{ID: lineID, QuoteID: "Q-WIDE", Quantities: []float64{1, 50}})
		for a := 0; a < width; a++ {
			id := fmt.Sprintf("%s-A%d", lineID, a)
			opID := fmt.Sprintf("%s-OP%d", lineID, a)
			s.Assemblies = append(s.Assemblies, assembly(id, lineID, "", entities.Float(3)))
			s.Operations = append(s.Operations, benchOperation(opID, lineID, id))
			s.Materials = append(s.Materials, entities.QuotationMaterial{
				ID: opID + "-M", OperationID: opID, Quantity: entities.Float(2), UnitCost: entities.Float(0.25),
			})
		}
	}
	return s
}

func benchOperation(id, lineID, assemblyID string) entities.QuotationOperation {
	return entities.QuotationOperation{
		ID:                 id,
		LineID:             lineID,
		AssemblyID:         entities.String(assemblyID),
		SetupHours:         entities.Float(0.5),
		ProductionStandard: entities.Float(12),
		StandardFactor:     entities.PiecesPerHour,
		LaborRate:          entities.Float(45),
		OverheadRate:       entities.Float(15),
	}
}

func BenchmarkRecompute_DeepBOM(b *testing.B) {
	snapshot := deepSnapshot(50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Recompute(snapshot); err != nil {
			b.Fatalf("Recompute failed: %v", err)
		}
	}
}

func BenchmarkRecompute_WideBOM(b *testing.B) {
	snapshot := wideSnapshot(20, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Recompute(snapshot); err != nil {
			b.Fatalf("Recompute failed: %v", err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	engine, err := Recompute(wideSnapshot(1, 500))
	if err != nil {
		b.Fatalf("Recompute failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range Categories() {
			engine.Evaluate("L0", c, float64(i%100+1))
		}
	}
}

func TestRecompute_DeepBOMExtendsQuantities(t *testing.T) {
	engine := mustRecompute(t, deepSnapshot(5))

	// assembly i is consumed 2^(i+1) times per unit, material costs 1.5 each
	want := 0.0
	for i := 0; i < 5; i++ {
		want += 1.5 * float64(int(1)<<(i+1))
	}
	assertClose(t, "materialCost", engine.Evaluate("L1", MaterialCost, 1), want)
	assertClose(t, "setupHours", engine.Evaluate("L1", SetupHours, 100), 2.5)
}
