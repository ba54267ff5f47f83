package entities

import "fmt"

// QuotationAssembly is a sub-unit consumed by a parent assembly or directly by a line
type QuotationAssembly struct {
	ID                string   `json:"id"`
	LineID            string   `json:"line_id"`
	ParentAssemblyID  *string  `json:"parent_assembly_id,omitempty"`  // nil = direct child of the line
	QuantityPerParent *float64 `json:"quantity_per_parent,omitempty"` // nil = 1
	Description       string   `json:"description,omitempty"`
}

// NewQuotationAssembly creates a validated QuotationAssembly
func NewQuotationAssembly(id, lineID string, parentID *string, qtyPerParent *float64) (*QuotationAssembly, error) {
	if id == "" {
		return nil, fmt.Errorf("assembly id cannot be empty")
	}
	if lineID == "" {
		return nil, fmt.Errorf("assembly %s: line id cannot be empty", id)
	}
	if parentID != nil && *parentID == id {
		return nil, fmt.Errorf("assembly %s cannot be its own parent", id)
	}
	if qtyPerParent != nil && *qtyPerParent < 0 {
		return nil, fmt.Errorf("assembly %s: quantity per parent must not be negative, got %v", id, *qtyPerParent)
	}

	return &QuotationAssembly{
		ID:                id,
		LineID:            lineID,
		ParentAssemblyID:  parentID,
		QuantityPerParent: qtyPerParent,
	}, nil
}

// IsRoot reports whether the assembly hangs directly off its line
func (a QuotationAssembly) IsRoot() bool {
	return a.ParentAssemblyID == nil || *a.ParentAssemblyID == ""
}

// QuotationOperation is one manufacturing step attached to a line or an assembly
type QuotationOperation struct {
	ID                 string         `json:"id"`
	LineID             string         `json:"line_id"`
	AssemblyID         *string        `json:"assembly_id,omitempty"` // nil = attached to the line itself
	Description        string         `json:"description,omitempty"`
	SetupHours         *float64       `json:"setup_hours,omitempty"`
	ProductionStandard *float64       `json:"production_standard,omitempty"`
	StandardFactor     StandardFactor `json:"standard_factor"`
	LaborRate          *float64       `json:"labor_rate,omitempty"`
	OverheadRate       *float64       `json:"overhead_rate,omitempty"`
	QuotingRate        *float64       `json:"quoting_rate,omitempty"` // replaces labor and overhead when set
}

// NewQuotationOperation creates a validated QuotationOperation
func NewQuotationOperation(id, lineID string, assemblyID *string, factor StandardFactor) (*QuotationOperation, error) {
	if id == "" {
		return nil, fmt.Errorf("operation id cannot be empty")
	}
	if lineID == "" {
		return nil, fmt.Errorf("operation %s: line id cannot be empty", id)
	}

	return &QuotationOperation{
		ID:             id,
		LineID:         lineID,
		AssemblyID:     assemblyID,
		StandardFactor: factor,
	}, nil
}

// Validate rejects negative hours, standards and rates. Absent values are valid.
func (op QuotationOperation) Validate() error {
	numbers := []struct {
		name  string
		value *float64
	}{
		{"setup hours", op.SetupHours},
		{"production standard", op.ProductionStandard},
		{"labor rate", op.LaborRate},
		{"overhead rate", op.OverheadRate},
		{"quoting rate", op.QuotingRate},
	}
	for _, n := range numbers {
		if n.value != nil && *n.value < 0 {
			return fmt.Errorf("operation %s: %s must not be negative, got %v", op.ID, n.name, *n.value)
		}
	}
	return nil
}

// QuotationMaterial is a consumable attached to an operation
type QuotationMaterial struct {
	ID          string   `json:"id"`
	OperationID string   `json:"operation_id"`
	ItemID      string   `json:"item_id,omitempty"`
	Description string   `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitCost    *float64 `json:"unit_cost,omitempty"`
}

// NewQuotationMaterial creates a validated QuotationMaterial
func NewQuotationMaterial(id, operationID string, quantity, unitCost *float64) (*QuotationMaterial, error) {
	if id == "" {
		return nil, fmt.Errorf("material id cannot be empty")
	}
	if operationID == "" {
		return nil, fmt.Errorf("material %s: operation id cannot be empty", id)
	}
	if quantity != nil && *quantity < 0 {
		return nil, fmt.Errorf("material %s: quantity must not be negative, got %v", id, *quantity)
	}

	return &QuotationMaterial{
		ID:          id,
		OperationID: operationID,
		Quantity:    quantity,
		UnitCost:    unitCost,
	}, nil
}

// Float returns a pointer to v, for populating optional numeric fields
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s, or nil when s is empty
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
