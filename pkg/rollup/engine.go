package rollup

import (
	"fmt"
	"time"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// Engine is the derived cost-rollup state for one quote snapshot. An Engine is
// never mutated after Recompute returns; a data change produces a new Engine.
type Engine struct {
	snapshot   *entities.QuoteSnapshot
	index      *BOMIndex
	effects    map[string]*LinePriceEffects
	lineIDs    []string
	warnings   []string
	computedAt time.Time
}

// Recompute rebuilds every line's effects from a raw snapshot. It fails only on
// structural problems such as a cyclic assembly graph; missing numbers default.
func Recompute(snapshot *entities.QuoteSnapshot) (*Engine, error) {
	if snapshot == nil {
		snapshot = &entities.QuoteSnapshot{}
	}

	index := BuildIndex(snapshot)
	c := newCompiler(index)

	engine := &Engine{
		snapshot:   snapshot,
		index:      index,
		effects:    make(map[string]*LinePriceEffects, len(snapshot.Lines)),
		lineIDs:    make([]string, 0, len(snapshot.Lines)),
		computedAt: time.Now(),
	}

	for _, line := range snapshot.Lines {
		if _, seen := engine.effects[line.ID]; seen {
			engine.warnings = append(engine.warnings, fmt.Sprintf("duplicate line %s ignored", line.ID))
			continue
		}
		effects, err := c.compileLine(line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compile quote %s: %w", snapshot.QuoteID, err)
		}
		engine.effects[line.ID] = effects
		engine.lineIDs = append(engine.lineIDs, line.ID)
	}

	engine.warnings = append(engine.warnings, c.resolver.warnings...)
	engine.warnings = append(engine.warnings, c.warnings...)
	return engine, nil
}

// Effects returns the compiled effects of a line
func (e *Engine) Effects(lineID string) (*LinePriceEffects, bool) {
	if e == nil {
		return nil, false
	}
	effects, ok := e.effects[lineID]
	return effects, ok
}

// Evaluate sums a line's effects for a category at the requested quantity.
// Unknown lines evaluate to 0.
func (e *Engine) Evaluate(lineID string, category Category, quantity float64) float64 {
	effects, _ := e.Effects(lineID)
	return effects.Evaluate(category, quantity)
}

// Totals evaluates every category of a line at one quantity
func (e *Engine) Totals(lineID string, quantity float64) CostBreakdown {
	effects, _ := e.Effects(lineID)
	return CostBreakdown{
		MaterialCost:    effects.Evaluate(MaterialCost, quantity),
		LaborCost:       effects.Evaluate(LaborCost, quantity),
		OverheadCost:    effects.Evaluate(OverheadCost, quantity),
		SetupHours:      effects.Evaluate(SetupHours, quantity),
		ProductionHours: effects.Evaluate(ProductionHours, quantity),
	}
}

// LineIDs returns the compiled line ids in snapshot order
func (e *Engine) LineIDs() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.lineIDs))
	copy(out, e.lineIDs)
	return out
}

// Snapshot returns the raw records the engine was built from
func (e *Engine) Snapshot() *entities.QuoteSnapshot {
	if e == nil {
		return nil
	}
	return e.snapshot
}

// Index returns the BOM index built during recompute
func (e *Engine) Index() *BOMIndex {
	if e == nil {
		return nil
	}
	return e.index
}

// Warnings lists data problems that degraded to zero or default contributions
func (e *Engine) Warnings() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.warnings))
	copy(out, e.warnings)
	return out
}

// ComputedAt is when the engine was built
func (e *Engine) ComputedAt() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.computedAt
}
