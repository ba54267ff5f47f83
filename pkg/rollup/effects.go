package rollup

import (
	"fmt"
	"strings"
)

// Category is a cost or time bucket that effects contribute to
type Category int

const (
	MaterialCost Category = iota
	LaborCost
	OverheadCost
	SetupHours
	ProductionHours

	categoryCount
)

// Categories lists every category in display order
func Categories() []Category {
	return []Category{MaterialCost, LaborCost, OverheadCost, SetupHours, ProductionHours}
}

// String method for Category enum
func (c Category) String() string {
	switch c {
	case MaterialCost:
		return "materialCost"
	case LaborCost:
		return "laborCost"
	case OverheadCost:
		return "overheadCost"
	case SetupHours:
		return "setupHours"
	case ProductionHours:
		return "productionHours"
	default:
		return "unknown"
	}
}

// ParseCategory accepts the category names produced by String, case-insensitively
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %s", s)
}

// MarshalText lets categories be used as JSON object keys
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Effect is one cost or time contribution as a function of the requested build
// quantity. Effects close over resolved constants only.
type Effect func(quantity float64) float64

// LinePriceEffects holds the compiled effects of one quotation line
type LinePriceEffects struct {
	LineID  string
	effects [categoryCount][]Effect
}

// NewLinePriceEffects returns an empty effect table for a line
func NewLinePriceEffects(lineID string) *LinePriceEffects {
	return &LinePriceEffects{LineID: lineID}
}

// Add appends an effect to a category
func (l *LinePriceEffects) Add(category Category, effect Effect) {
	if category < 0 || category >= categoryCount {
		return
	}
	l.effects[category] = append(l.effects[category], effect)
}

// Effects returns a copy of the effects compiled for a category
func (l *LinePriceEffects) Effects(category Category) []Effect {
	if l == nil || category < 0 || category >= categoryCount {
		return nil
	}
	out := make([]Effect, len(l.effects[category]))
	copy(out, l.effects[category])
	return out
}

// Len returns the number of effects in a category
func (l *LinePriceEffects) Len(category Category) int {
	if l == nil || category < 0 || category >= categoryCount {
		return 0
	}
	return len(l.effects[category])
}

// Evaluate sums every effect of a category at the given quantity
func (l *LinePriceEffects) Evaluate(category Category, quantity float64) float64 {
	if l == nil || category < 0 || category >= categoryCount {
		return 0
	}
	var total float64
	for _, effect := range l.effects[category] {
		total += effect(quantity)
	}
	return total
}

// compiler turns the indexed BOM of a quote into per-line effects
type compiler struct {
	index    *BOMIndex
	resolver *quantityResolver
	warnings []string
}

func newCompiler(index *BOMIndex) *compiler {
	return &compiler{
		index:    index,
		resolver: newQuantityResolver(index),
	}
}

// compileLine walks every operation of the line and the materials under it
func (c *compiler) compileLine(lineID string) (*LinePriceEffects, error) {
	effects := NewLinePriceEffects(lineID)

	for _, op := range c.index.OperationsForLine(lineID) {
		extendedQty := 1.0
		if op.AssemblyID != "" {
			qty, err := c.resolver.ExtendedQuantity(op.AssemblyID)
			if err != nil {
				return nil, fmt.Errorf("operation %s on line %s: %w", op.ID, lineID, err)
			}
			extendedQty = qty
		}

		c.addMaterialEffects(effects, op, extendedQty)
		c.addSetupEffects(effects, op)
		c.addProductionEffects(effects, op, extendedQty)
	}

	return effects, nil
}

func (c *compiler) addMaterialEffects(effects *LinePriceEffects, op *Operation, extendedQty float64) {
	var materialCostFlat float64
	for _, m := range c.index.MaterialsForOperation(op.ID) {
		materialCostFlat += m.Quantity * m.UnitCost
	}
	effects.Add(MaterialCost, func(q float64) float64 {
		return materialCostFlat * q * extendedQty
	})
}

// addSetupEffects adds the once-per-run setup time; it is never scaled by the
// extended quantity
func (c *compiler) addSetupEffects(effects *LinePriceEffects, op *Operation) {
	setupHours := op.SetupHours
	if setupHours == 0 {
		return
	}

	effects.Add(SetupHours, func(float64) float64 { return setupHours })

	if op.HasQuotingRate {
		rate := op.QuotingRate
		effects.Add(OverheadCost, func(float64) float64 { return setupHours * rate })
		return
	}

	laborRate, overheadRate := op.LaborRate, op.OverheadRate
	effects.Add(LaborCost, func(float64) float64 { return setupHours * laborRate })
	effects.Add(OverheadCost, func(float64) float64 { return setupHours * overheadRate })
}

func (c *compiler) addProductionEffects(effects *LinePriceEffects, op *Operation, extendedQty float64) {
	if op.ProductionStandard == 0 {
		return
	}

	if !op.StandardFactor.IsKnown() {
		c.warnings = append(c.warnings, fmt.Sprintf("unknown standard factor %q on operation %s", op.StandardFactor, op.ID))
	}
	hoursPerUnit := HoursPerUnit(op.StandardFactor, op.ProductionStandard)

	if IsQuantityIndependent(op.StandardFactor) {
		effects.Add(ProductionHours, func(float64) float64 { return hoursPerUnit })
		if op.HasQuotingRate {
			rate := op.QuotingRate
			effects.Add(OverheadCost, func(float64) float64 { return hoursPerUnit * rate })
			return
		}
		laborRate, overheadRate := op.LaborRate, op.OverheadRate
		effects.Add(LaborCost, func(float64) float64 { return hoursPerUnit * laborRate })
		effects.Add(OverheadCost, func(float64) float64 { return hoursPerUnit * overheadRate })
		return
	}

	effects.Add(ProductionHours, func(q float64) float64 {
		return hoursPerUnit * q * extendedQty
	})
	if op.HasQuotingRate {
		rate := op.QuotingRate
		effects.Add(OverheadCost, func(q float64) float64 { return hoursPerUnit * q * extendedQty * rate })
		return
	}
	laborRate, overheadRate := op.LaborRate, op.OverheadRate
	effects.Add(LaborCost, func(q float64) float64 { return hoursPerUnit * q * extendedQty * laborRate })
	effects.Add(OverheadCost, func(q float64) float64 { return hoursPerUnit * q * extendedQty * overheadRate })
}
