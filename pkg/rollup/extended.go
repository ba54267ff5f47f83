package rollup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAssemblyCycle is returned when an assembly's parent chain leads back to itself
var ErrAssemblyCycle = errors.New("assembly parent chain contains a cycle")

// CycleError carries the assembly ids walked before the revisit
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAssemblyCycle, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrAssemblyCycle
}

// quantityResolver computes how many of an assembly one unit of its line consumes.
// The memo lives for a single recompute pass.
type quantityResolver struct {
	index    *BOMIndex
	memo     map[string]float64
	warnings []string
}

func newQuantityResolver(index *BOMIndex) *quantityResolver {
	return &quantityResolver{
		index: index,
		memo:  make(map[string]float64),
	}
}

// ExtendedQuantity returns the product of QuantityPerParent along the chain from
// the assembly up to its line. The ascent stops at the first memoized ancestor,
// and at a parent that is missing or owned by another line.
func (r *quantityResolver) ExtendedQuantity(assemblyID string) (float64, error) {
	if v, ok := r.memo[assemblyID]; ok {
		return v, nil
	}

	var chain []*Assembly
	visited := make(map[string]bool)
	base := 1.0

	current := assemblyID
	for current != "" {
		if len(chain) > 0 {
			if parent, ok := r.index.Assembly(current); ok && parent.LineID != chain[0].LineID {
				r.warnings = append(r.warnings, fmt.Sprintf("assembly %s references parent %s on line %s, treating it as a root", chain[len(chain)-1].ID, current, parent.LineID))
				break
			}
		}
		if v, ok := r.memo[current]; ok {
			base = v
			break
		}
		if visited[current] {
			path := make([]string, 0, len(chain)+1)
			for _, a := range chain {
				path = append(path, a.ID)
			}
			return 0, &CycleError{Path: append(path, current)}
		}

		a, ok := r.index.Assembly(current)
		if !ok {
			if current == assemblyID {
				r.warnings = append(r.warnings, fmt.Sprintf("unknown assembly %s, using extended quantity 1", assemblyID))
			} else {
				r.warnings = append(r.warnings, fmt.Sprintf("assembly %s references missing parent %s, treating it as a root", chain[len(chain)-1].ID, current))
			}
			break
		}

		visited[current] = true
		chain = append(chain, a)
		current = a.ParentID
	}

	// ext(a) = qtyPerParent(a) * ext(parent(a)), filled from the top of the chain down
	extended := base
	for i := len(chain) - 1; i >= 0; i-- {
		extended = chain[i].QuantityPerParent * extended
		r.memo[chain[i].ID] = extended
	}

	if len(chain) == 0 {
		r.memo[assemblyID] = extended
	}
	return extended, nil
}
