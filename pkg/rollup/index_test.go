package rollup

import (
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

func TestBuildIndex_GroupsPreserveInsertionOrder(t *testing.T) {
	snapshot := &entities.QuoteSnapshot{
		Assemblies: []entities.QuotationAssembly{
			assembly("A2", "L1", "", nil),
			assembly("B1", "L2", "", nil),
			assembly("A1", "L1", "A2", entities.Float(4)),
		},
		Operations: []entities.QuotationOperation{
			{ID: "OP3", LineID: "L1"},
			{ID: "OP1", LineID: "L1", AssemblyID: entities.String("A1")},
			{ID: "OP2", LineID: "L2"},
		},
		Materials: []entities.QuotationMaterial{
			{ID: "M2", OperationID: "OP3"},
			{ID: "M1", OperationID: "OP3"},
		},
	}

	idx := BuildIndex(snapshot)

	asm := idx.AssembliesForLine("L1")
	if len(asm) != 2 || asm[0].ID != "A2" || asm[1].ID != "A1" {
		t.Fatalf("Expected assemblies [A2 A1] for L1, got %v", asm)
	}

	ops := idx.OperationsForLine("L1")
	if len(ops) != 2 || ops[0].ID != "OP3" || ops[1].ID != "OP1" {
		t.Fatalf("Expected operations [OP3 OP1] for L1, got %v", ops)
	}
	if ops[1].AssemblyID != "A1" {
		t.Errorf("Expected OP1 attached to A1, got %q", ops[1].AssemblyID)
	}

	mats := idx.MaterialsForOperation("OP3")
	if len(mats) != 2 || mats[0].ID != "M2" || mats[1].ID != "M1" {
		t.Fatalf("Expected materials [M2 M1] for OP3, got %v", mats)
	}

	if len(idx.OperationsForLine("missing")) != 0 {
		t.Error("Expected no operations for unknown line")
	}
}

func TestBuildIndex_NormalizesDefaults(t *testing.T) {
	snapshot := &entities.QuoteSnapshot{
		Assemblies: []entities.QuotationAssembly{{ID: "A1", LineID: "L1"}},
		Operations: []entities.QuotationOperation{{ID: "OP1", LineID: "L1"}},
		Materials:  []entities.QuotationMaterial{{ID: "M1", OperationID: "OP1"}},
	}

	idx := BuildIndex(snapshot)

	a, ok := idx.Assembly("A1")
	if !ok {
		t.Fatal("Expected assembly A1 to be indexed")
	}
	if a.QuantityPerParent != 1 {
		t.Errorf("Expected absent quantity per parent to default to 1, got %v", a.QuantityPerParent)
	}
	if a.ParentID != "" {
		t.Errorf("Expected empty parent id, got %q", a.ParentID)
	}

	op := idx.OperationsForLine("L1")[0]
	if op.SetupHours != 0 || op.ProductionStandard != 0 || op.LaborRate != 0 || op.OverheadRate != 0 {
		t.Errorf("Expected absent numbers to default to 0, got %+v", op)
	}
	if op.HasQuotingRate {
		t.Error("Expected absent quoting rate to be reported as absent")
	}

	m := idx.MaterialsForOperation("OP1")[0]
	if m.Quantity != 0 || m.UnitCost != 0 {
		t.Errorf("Expected absent material numbers to default to 0, got %+v", m)
	}
}

func TestBuildIndex_NilSnapshot(t *testing.T) {
	idx := BuildIndex(nil)
	if len(idx.AssembliesForLine("L1")) != 0 {
		t.Error("Expected empty index for nil snapshot")
	}
}
