package entities

import (
	"strings"
	"testing"
)

func TestNewQuotationAssembly_Validation(t *testing.T) {
	assembly, err := NewQuotationAssembly("ASM1", "LINE1", nil, Float(2))
	if err != nil {
		t.Fatalf("Expected valid assembly creation to succeed: %v", err)
	}
	if !assembly.IsRoot() {
		t.Error("Expected assembly without parent to be a root")
	}

	testCases := []struct {
		name        string
		id          string
		lineID      string
		parentID    *string
		qtyPer      *float64
		expectError string
	}{
		{"empty id", "", "LINE1", nil, nil, "assembly id cannot be empty"},
		{"empty line", "ASM1", "", nil, nil, "line id cannot be empty"},
		{"self parent", "ASM1", "LINE1", String("ASM1"), nil, "cannot be its own parent"},
		{"negative qty", "ASM1", "LINE1", nil, Float(-1), "must not be negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewQuotationAssembly(tc.id, tc.lineID, tc.parentID, tc.qtyPer)
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expectError)
			}
			if !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %q", tc.expectError, err.Error())
			}
		})
	}
}

func TestQuotationAssembly_IsRoot(t *testing.T) {
	empty := ""
	parent := "ASM0"

	if !(QuotationAssembly{ID: "A"}).IsRoot() {
		t.Error("nil parent should be a root")
	}
	if !(QuotationAssembly{ID: "A", ParentAssemblyID: &empty}).IsRoot() {
		t.Error("empty parent id should be a root")
	}
	if (QuotationAssembly{ID: "A", ParentAssemblyID: &parent}).IsRoot() {
		t.Error("assembly with parent should not be a root")
	}
}

func TestNewQuotationOperation_Validation(t *testing.T) {
	op, err := NewQuotationOperation("OP1", "LINE1", nil, MinutesPerPiece)
	if err != nil {
		t.Fatalf("Expected valid operation creation to succeed: %v", err)
	}
	if op.StandardFactor != MinutesPerPiece {
		t.Errorf("Expected standard factor %s, got %s", MinutesPerPiece, op.StandardFactor)
	}

	if _, err := NewQuotationOperation("", "LINE1", nil, MinutesPerPiece); err == nil {
		t.Error("Expected error for empty operation id")
	}
	if _, err := NewQuotationOperation("OP1", "", nil, MinutesPerPiece); err == nil {
		t.Error("Expected error for empty line id")
	}
}

func TestQuotationOperation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		op      QuotationOperation
		wantErr bool
	}{
		{"all absent", QuotationOperation{ID: "OP1"}, false},
		{"all set", QuotationOperation{ID: "OP1", SetupHours: Float(1), ProductionStandard: Float(6),
			LaborRate: Float(40), OverheadRate: Float(10), QuotingRate: Float(0)}, false},
		{"negative setup", QuotationOperation{ID: "OP1", SetupHours: Float(-1)}, true},
		{"negative standard", QuotationOperation{ID: "OP1", ProductionStandard: Float(-6)}, true},
		{"negative labor rate", QuotationOperation{ID: "OP1", LaborRate: Float(-40)}, true},
		{"negative overhead rate", QuotationOperation{ID: "OP1", OverheadRate: Float(-10)}, true},
		{"negative quoting rate", QuotationOperation{ID: "OP1", QuotingRate: Float(-60)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewQuotationMaterial_Validation(t *testing.T) {
	if _, err := NewQuotationMaterial("MAT1", "OP1", Float(1), Float(3)); err != nil {
		t.Fatalf("Expected valid material creation to succeed: %v", err)
	}
	if _, err := NewQuotationMaterial("MAT1", "", nil, nil); err == nil {
		t.Error("Expected error for empty operation id")
	}
	if _, err := NewQuotationMaterial("MAT1", "OP1", Float(-2), nil); err == nil {
		t.Error("Expected error for negative quantity")
	}
}

func TestStandardFactor_IsKnown(t *testing.T) {
	for _, f := range KnownStandardFactors() {
		if !f.IsKnown() {
			t.Errorf("Expected %q to be known", f)
		}
	}
	if len(KnownStandardFactors()) != 11 {
		t.Errorf("Expected 11 standard factors, got %d", len(KnownStandardFactors()))
	}
	if StandardFactor("Furlongs/Fortnight").IsKnown() {
		t.Error("Expected unknown tag to be rejected")
	}
}
