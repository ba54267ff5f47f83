package rollup

import (
	"math"
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

const tolerance = 1e-9

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func mustRecompute(t *testing.T, snapshot *entities.QuoteSnapshot) *Engine {
	t.Helper()
	engine, err := Recompute(snapshot)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	return engine
}

func assembly(id, lineID, parentID string, qtyPer *float64) entities.QuotationAssembly {
	return entities.QuotationAssembly{
		ID:                id,
		LineID:            lineID,
		ParentAssemblyID:  entities.String(parentID),
		QuantityPerParent: qtyPer,
	}
}

// scenarioSnapshot is one line with a single line-level operation: 2h setup at
// 50/10 labor/overhead, 60 Minutes/Piece, and one material at 1 x 3.00
func scenarioSnapshot() *entities.QuoteSnapshot {
	return &entities.QuoteSnapshot{
		QuoteID: "Q-100",
		Lines: []entities.QuotationLine{
			{ID: "L1", QuoteID: "Q-100", ItemID: "BRACKET", Replenishment: entities.Make, Quantities: []float64{1, 10}},
		},
		Operations: []entities.QuotationOperation{
			{
				ID:                 "OP1",
				LineID:             "L1",
				SetupHours:         entities.Float(2),
				ProductionStandard: entities.Float(60),
				StandardFactor:     entities.MinutesPerPiece,
				LaborRate:          entities.Float(50),
				OverheadRate:       entities.Float(10),
			},
		},
		Materials: []entities.QuotationMaterial{
			{ID: "M1", OperationID: "OP1", Quantity: entities.Float(1), UnitCost: entities.Float(3)},
		},
	}
}
