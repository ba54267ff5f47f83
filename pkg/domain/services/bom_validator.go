package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// BOMValidator checks the structural integrity of a quote's bill of operations
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the results of quote validation
type ValidationResult struct {
	HasCycles              bool
	CyclePaths             [][]string
	DanglingReferences     []string
	DuplicateIDs           []string
	UnknownStandardFactors []string
	Errors                 []string
	Warnings               []string
}

// Valid reports whether the quote can be rolled up
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateQuote performs validation on every record of a quote snapshot.
// Cycles and duplicate ids are errors; dangling references and unknown
// standard factors only degrade the rollup and are reported as warnings.
func (v *BOMValidator) ValidateQuote(snapshot *entities.QuoteSnapshot) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:             make([][]string, 0),
		DanglingReferences:     make([]string, 0),
		DuplicateIDs:           make([]string, 0),
		UnknownStandardFactors: make([]string, 0),
		Errors:                 make([]string, 0),
		Warnings:               make([]string, 0),
	}
	if snapshot == nil {
		return result
	}

	// Build parent map for cycle detection
	parentMap := v.buildParentMap(snapshot.Assemblies)

	cycles := v.detectCycles(parentMap)
	result.HasCycles = len(cycles) > 0
	result.CyclePaths = cycles

	result.DuplicateIDs = v.detectDuplicateIDs(snapshot)
	result.DanglingReferences = v.detectDanglingReferences(snapshot)

	for _, op := range snapshot.Operations {
		if op.ProductionStandard != nil && *op.ProductionStandard != 0 && !op.StandardFactor.IsKnown() {
			result.UnknownStandardFactors = append(result.UnknownStandardFactors,
				fmt.Sprintf("operation %s: %q", op.ID, op.StandardFactor))
		}
	}

	if result.HasCycles {
		for _, cycle := range result.CyclePaths {
			result.Errors = append(result.Errors, fmt.Sprintf("assembly cycle detected: %v", cycle))
		}
	}

	if len(result.DuplicateIDs) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate record ids: %v", result.DuplicateIDs))
	}

	for _, ref := range result.DanglingReferences {
		result.Warnings = append(result.Warnings, "dangling reference: "+ref)
	}
	for _, f := range result.UnknownStandardFactors {
		result.Warnings = append(result.Warnings, "unknown standard factor contributes 0 hours: "+f)
	}

	return result
}

// buildParentMap creates a map of assembly -> parent assembly
func (v *BOMValidator) buildParentMap(assemblies []entities.QuotationAssembly) map[string]string {
	parentMap := make(map[string]string, len(assemblies))
	for _, a := range assemblies {
		if a.IsRoot() {
			continue
		}
		parentMap[a.ID] = *a.ParentAssemblyID
	}
	return parentMap
}

// detectCycles uses DFS to find cycles in the assembly parent graph
func (v *BOMValidator) detectCycles(parentMap map[string]string) [][]string {
	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)
	cycles := make([][]string, 0)

	// sorted so the reported cycles are stable across runs
	ids := make([]string, 0, len(parentMap))
	for id := range parentMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			path := make([]string, 0)
			v.dfsDetectCycle(id, parentMap, visited, recursionStack, path, &cycles)
		}
	}

	return cycles
}

// dfsDetectCycle follows the parent pointer from current, recording a cycle
// when it reaches an assembly already on the recursion stack
func (v *BOMValidator) dfsDetectCycle(
	current string,
	parentMap map[string]string,
	visited map[string]bool,
	recursionStack map[string]bool,
	path []string,
	cycles *[][]string,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	if parent, exists := parentMap[current]; exists {
		if !visited[parent] {
			v.dfsDetectCycle(parent, parentMap, visited, recursionStack, path, cycles)
		} else if recursionStack[parent] {
			cycleStart := -1
			for i, id := range path {
				if id == parent {
					cycleStart = i
					break
				}
			}

			if cycleStart != -1 {
				cycle := make([]string, 0, len(path)-cycleStart+1)
				cycle = append(cycle, path[cycleStart:]...)
				cycle = append(cycle, parent) // Close the cycle
				*cycles = append(*cycles, cycle)
			}
		}
	}

	recursionStack[current] = false
}

// detectDuplicateIDs finds record ids used more than once within a record kind
func (v *BOMValidator) detectDuplicateIDs(snapshot *entities.QuoteSnapshot) []string {
	duplicates := make([]string, 0)
	check := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				duplicates = append(duplicates, kind+":"+id)
				continue
			}
			seen[id] = true
		}
	}

	lineIDs := make([]string, 0, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lineIDs = append(lineIDs, l.ID)
	}
	assemblyIDs := make([]string, 0, len(snapshot.Assemblies))
	for _, a := range snapshot.Assemblies {
		assemblyIDs = append(assemblyIDs, a.ID)
	}
	operationIDs := make([]string, 0, len(snapshot.Operations))
	for _, op := range snapshot.Operations {
		operationIDs = append(operationIDs, op.ID)
	}
	materialIDs := make([]string, 0, len(snapshot.Materials))
	for _, m := range snapshot.Materials {
		materialIDs = append(materialIDs, m.ID)
	}

	check("line", lineIDs)
	check("assembly", assemblyIDs)
	check("operation", operationIDs)
	check("material", materialIDs)
	return duplicates
}

// detectDanglingReferences finds foreign ids that point at no record, and
// assemblies whose parent belongs to another line
func (v *BOMValidator) detectDanglingReferences(snapshot *entities.QuoteSnapshot) []string {
	refs := make([]string, 0)

	lines := make(map[string]bool, len(snapshot.Lines))
	for _, l := range snapshot.Lines {
		lines[l.ID] = true
	}
	assemblies := make(map[string]entities.QuotationAssembly, len(snapshot.Assemblies))
	for _, a := range snapshot.Assemblies {
		assemblies[a.ID] = a
	}
	operations := make(map[string]bool, len(snapshot.Operations))
	for _, op := range snapshot.Operations {
		operations[op.ID] = true
	}

	for _, a := range snapshot.Assemblies {
		if !lines[a.LineID] {
			refs = append(refs, fmt.Sprintf("assembly %s -> line %s", a.ID, a.LineID))
		}
		if a.IsRoot() {
			continue
		}
		parent, ok := assemblies[*a.ParentAssemblyID]
		if !ok {
			refs = append(refs, fmt.Sprintf("assembly %s -> parent %s", a.ID, *a.ParentAssemblyID))
		} else if parent.LineID != a.LineID {
			refs = append(refs, fmt.Sprintf("assembly %s on line %s -> parent %s on line %s", a.ID, a.LineID, parent.ID, parent.LineID))
		}
	}

	for _, op := range snapshot.Operations {
		if !lines[op.LineID] {
			refs = append(refs, fmt.Sprintf("operation %s -> line %s", op.ID, op.LineID))
		}
		if op.AssemblyID != nil && *op.AssemblyID != "" {
			if _, ok := assemblies[*op.AssemblyID]; !ok {
				refs = append(refs, fmt.Sprintf("operation %s -> assembly %s", op.ID, *op.AssemblyID))
			}
		}
	}

	for _, m := range snapshot.Materials {
		if !operations[m.OperationID] {
			refs = append(refs, fmt.Sprintf("material %s -> operation %s", m.ID, m.OperationID))
		}
	}

	return refs
}
