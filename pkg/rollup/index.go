package rollup

import "github.com/vsinha/quoting/pkg/domain/entities"

// Assembly is a normalized QuotationAssembly: absent numbers are already defaulted
type Assembly struct {
	ID                string
	LineID            string
	ParentID          string // empty = direct child of the line
	QuantityPerParent float64
}

// Operation is a normalized QuotationOperation
type Operation struct {
	ID                 string
	LineID             string
	AssemblyID         string // empty = attached to the line
	SetupHours         float64
	ProductionStandard float64
	StandardFactor     entities.StandardFactor
	LaborRate          float64
	OverheadRate       float64
	QuotingRate        float64
	HasQuotingRate     bool
}

// Material is a normalized QuotationMaterial
type Material struct {
	ID          string
	OperationID string
	Quantity    float64
	UnitCost    float64
}

// BOMIndex groups the flat record lists of a quote by parent id. Group order
// follows the order records appear in the snapshot.
type BOMIndex struct {
	assembliesByLine     map[string][]*Assembly
	assembliesByID       map[string]*Assembly
	operationsByLine     map[string][]*Operation
	materialsByOperation map[string][]*Material
}

// BuildIndex normalizes every record once and indexes it by parent id
func BuildIndex(snapshot *entities.QuoteSnapshot) *BOMIndex {
	idx := &BOMIndex{
		assembliesByLine:     make(map[string][]*Assembly),
		assembliesByID:       make(map[string]*Assembly),
		operationsByLine:     make(map[string][]*Operation),
		materialsByOperation: make(map[string][]*Material),
	}
	if snapshot == nil {
		return idx
	}

	for i := range snapshot.Assemblies {
		a := normalizeAssembly(snapshot.Assemblies[i])
		idx.assembliesByLine[a.LineID] = append(idx.assembliesByLine[a.LineID], a)
		idx.assembliesByID[a.ID] = a
	}

	for i := range snapshot.Operations {
		op := normalizeOperation(snapshot.Operations[i])
		idx.operationsByLine[op.LineID] = append(idx.operationsByLine[op.LineID], op)
	}

	for i := range snapshot.Materials {
		m := normalizeMaterial(snapshot.Materials[i])
		idx.materialsByOperation[m.OperationID] = append(idx.materialsByOperation[m.OperationID], m)
	}

	return idx
}

// AssembliesForLine returns the assemblies owned by a line
func (idx *BOMIndex) AssembliesForLine(lineID string) []*Assembly {
	return idx.assembliesByLine[lineID]
}

// Assembly looks up an assembly by id
func (idx *BOMIndex) Assembly(id string) (*Assembly, bool) {
	a, ok := idx.assembliesByID[id]
	return a, ok
}

// OperationsForLine returns every operation of a line, whether attached to the
// line directly or to one of its assemblies
func (idx *BOMIndex) OperationsForLine(lineID string) []*Operation {
	return idx.operationsByLine[lineID]
}

// MaterialsForOperation returns the materials consumed by an operation
func (idx *BOMIndex) MaterialsForOperation(operationID string) []*Material {
	return idx.materialsByOperation[operationID]
}

func normalizeAssembly(a entities.QuotationAssembly) *Assembly {
	parentID := ""
	if a.ParentAssemblyID != nil {
		parentID = *a.ParentAssemblyID
	}
	return &Assembly{
		ID:                a.ID,
		LineID:            a.LineID,
		ParentID:          parentID,
		QuantityPerParent: valueOr(a.QuantityPerParent, 1),
	}
}

func normalizeOperation(op entities.QuotationOperation) *Operation {
	assemblyID := ""
	if op.AssemblyID != nil {
		assemblyID = *op.AssemblyID
	}
	return &Operation{
		ID:                 op.ID,
		LineID:             op.LineID,
		AssemblyID:         assemblyID,
		SetupHours:         valueOr(op.SetupHours, 0),
		ProductionStandard: valueOr(op.ProductionStandard, 0),
		StandardFactor:     op.StandardFactor,
		LaborRate:          valueOr(op.LaborRate, 0),
		OverheadRate:       valueOr(op.OverheadRate, 0),
		QuotingRate:        valueOr(op.QuotingRate, 0),
		HasQuotingRate:     op.QuotingRate != nil,
	}
}

func normalizeMaterial(m entities.QuotationMaterial) *Material {
	return &Material{
		ID:          m.ID,
		OperationID: m.OperationID,
		Quantity:    valueOr(m.Quantity, 0),
		UnitCost:    valueOr(m.UnitCost, 0),
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
