package services

import (
	"testing"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

func assemblyWithParent(id, lineID, parentID string) entities.QuotationAssembly {
	return entities.QuotationAssembly{
		ID:               id,
		LineID:           lineID,
		ParentAssemblyID: entities.String(parentID),
	}
}

func TestBOMValidator_DetectSimpleCycle(t *testing.T) {
	// A -> B -> A
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}},
		Assemblies: []entities.QuotationAssembly{
			assemblyWithParent("A", "L1", "B"),
			assemblyWithParent("B", "L1", "A"),
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if !result.HasCycles {
		t.Error("Expected cycle to be detected")
	}
	if len(result.CyclePaths) != 1 {
		t.Fatalf("Expected one cycle path, got %v", result.CyclePaths)
	}
	if got := result.CyclePaths[0]; len(got) != 3 || got[0] != "A" || got[2] != "A" {
		t.Errorf("Expected closed path [A B A], got %v", got)
	}
	if result.Valid() {
		t.Error("Expected validation errors for cycles")
	}
}

func TestBOMValidator_DetectLongerCycle(t *testing.T) {
	// A -> B -> C -> A, with D hanging off the cycle
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}},
		Assemblies: []entities.QuotationAssembly{
			assemblyWithParent("A", "L1", "B"),
			assemblyWithParent("B", "L1", "C"),
			assemblyWithParent("C", "L1", "A"),
			assemblyWithParent("D", "L1", "C"),
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if !result.HasCycles {
		t.Error("Expected cycle to be detected")
	}
	if len(result.CyclePaths) != 1 {
		t.Errorf("Expected the cycle to be reported once, got %v", result.CyclePaths)
	}
}

func TestBOMValidator_NoCycles(t *testing.T) {
	// forest: A <- B <- D, A <- C, E
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}},
		Assemblies: []entities.QuotationAssembly{
			{ID: "A", LineID: "L1"},
			assemblyWithParent("B", "L1", "A"),
			assemblyWithParent("C", "L1", "A"),
			assemblyWithParent("D", "L1", "B"),
			{ID: "E", LineID: "L1"},
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if result.HasCycles {
		t.Errorf("Expected no cycles, got %v", result.CyclePaths)
	}
	if !result.Valid() {
		t.Errorf("Expected no validation errors, got %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestBOMValidator_DetectDuplicateIDs(t *testing.T) {
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}},
		Operations: []entities.QuotationOperation{
			{ID: "OP1", LineID: "L1"},
			{ID: "OP1", LineID: "L1"},
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if len(result.DuplicateIDs) != 1 || result.DuplicateIDs[0] != "operation:OP1" {
		t.Errorf("Expected duplicate operation:OP1, got %v", result.DuplicateIDs)
	}
	if result.Valid() {
		t.Error("Expected validation errors for duplicates")
	}
}

func TestBOMValidator_DanglingReferencesAreWarnings(t *testing.T) {
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}, {ID: "L2"}},
		Assemblies: []entities.QuotationAssembly{
			{ID: "A", LineID: "L1"},
			assemblyWithParent("B", "L2", "A"),
			assemblyWithParent("C", "L1", "MISSING"),
		},
		Operations: []entities.QuotationOperation{
			{ID: "OP1", LineID: "L9"},
			{ID: "OP2", LineID: "L1", AssemblyID: entities.String("NOPE")},
		},
		Materials: []entities.QuotationMaterial{
			{ID: "M1", OperationID: "OP404"},
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if len(result.DanglingReferences) != 5 {
		t.Errorf("Expected 5 dangling references, got %d: %v", len(result.DanglingReferences), result.DanglingReferences)
	}
	if !result.Valid() {
		t.Errorf("Dangling references should not be errors, got %v", result.Errors)
	}
	if len(result.Warnings) != 5 {
		t.Errorf("Expected 5 warnings, got %v", result.Warnings)
	}
}

func TestBOMValidator_UnknownStandardFactor(t *testing.T) {
	snapshot := &entities.QuoteSnapshot{
		Lines: []entities.QuotationLine{{ID: "L1"}},
		Operations: []entities.QuotationOperation{
			{ID: "OP1", LineID: "L1", ProductionStandard: entities.Float(5), StandardFactor: "Hours/Batch"},
			{ID: "OP2", LineID: "L1", ProductionStandard: entities.Float(5), StandardFactor: entities.TotalHours},
			// no production standard, the tag is irrelevant
			{ID: "OP3", LineID: "L1", StandardFactor: "garbage"},
		},
	}

	result := NewBOMValidator().ValidateQuote(snapshot)

	if len(result.UnknownStandardFactors) != 1 {
		t.Errorf("Expected 1 unknown standard factor, got %v", result.UnknownStandardFactors)
	}
	if !result.Valid() {
		t.Errorf("Unknown standard factors should not be errors, got %v", result.Errors)
	}
}

func TestBOMValidator_EmptyQuote(t *testing.T) {
	result := NewBOMValidator().ValidateQuote(&entities.QuoteSnapshot{})

	if result.HasCycles {
		t.Error("Empty quote should not have cycles")
	}
	if !result.Valid() || len(result.Warnings) > 0 {
		t.Error("Empty quote should have no validation errors or warnings")
	}

	if !NewBOMValidator().ValidateQuote(nil).Valid() {
		t.Error("Nil snapshot should validate cleanly")
	}
}
