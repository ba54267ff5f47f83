package rollup

import "github.com/vsinha/quoting/pkg/domain/entities"

// CostBreakdown is the batch total of every category at one quantity
type CostBreakdown struct {
	MaterialCost    float64 `json:"material_cost"`
	LaborCost       float64 `json:"labor_cost"`
	OverheadCost    float64 `json:"overhead_cost"`
	SetupHours      float64 `json:"setup_hours"`
	ProductionHours float64 `json:"production_hours"`
}

// PriceBreak is the priced result for one QuotationLineQuantity row
type PriceBreak struct {
	LineID       string        `json:"line_id"`
	QuantityID   string        `json:"quantity_id"`
	Quantity     float64       `json:"quantity"`
	Totals       CostBreakdown `json:"totals"`
	LeadTimeDays int           `json:"lead_time_days"`

	UnitMaterialCost   float64 `json:"unit_material_cost"`
	UnitLaborCost      float64 `json:"unit_labor_cost"`
	UnitOverheadCost   float64 `json:"unit_overhead_cost"`
	UnitAdditionalCost float64 `json:"unit_additional_cost"`
	UnitTaxAmount      float64 `json:"unit_tax_amount"`
	UnitCost           float64 `json:"unit_cost"`
	MarkupPercent      float64 `json:"markup_percent"`
	DiscountPercent    float64 `json:"discount_percent"`
	ExtendedCost       float64 `json:"extended_cost"`
	ExtendedPrice      float64 `json:"extended_price"`
}

// UnitCost adds the per-unit cost components
func UnitCost(materialCost, laborCost, overheadCost, additionalCost float64) float64 {
	return materialCost + laborCost + overheadCost + additionalCost
}

// ExtendedCost is quantity * (unitCost + unitTaxAmount)
func ExtendedCost(quantity, unitCost, unitTaxAmount float64) float64 {
	return quantity * (unitCost + unitTaxAmount)
}

// ExtendedPrice applies the discount before the markup
func ExtendedPrice(extendedCost, discountPercent, markupPercent float64) float64 {
	return extendedCost * (1 - discountPercent/100) * (1 + markupPercent/100)
}

// PerUnit converts a batch total into a per-piece figure; a zero quantity yields 0
func PerUnit(total, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return total / quantity
}

// Price evaluates a line at the row's quantity and combines the batch totals
// with the row's additional cost, tax, discount and markup
func (e *Engine) Price(row entities.QuotationLineQuantity) PriceBreak {
	totals := e.Totals(row.LineID, row.Quantity)

	pb := PriceBreak{
		LineID:             row.LineID,
		QuantityID:         row.ID,
		Quantity:           row.Quantity,
		Totals:             totals,
		LeadTimeDays:       row.LeadTimeDays,
		UnitMaterialCost:   PerUnit(totals.MaterialCost, row.Quantity),
		UnitLaborCost:      PerUnit(totals.LaborCost, row.Quantity),
		UnitOverheadCost:   PerUnit(totals.OverheadCost, row.Quantity),
		UnitAdditionalCost: row.AdditionalCost,
		UnitTaxAmount:      row.UnitTaxAmount,
		MarkupPercent:      row.MarkupPercent,
		DiscountPercent:    row.DiscountPercent,
	}
	pb.UnitCost = UnitCost(pb.UnitMaterialCost, pb.UnitLaborCost, pb.UnitOverheadCost, pb.UnitAdditionalCost)
	pb.ExtendedCost = ExtendedCost(row.Quantity, pb.UnitCost, pb.UnitTaxAmount)
	pb.ExtendedPrice = ExtendedPrice(pb.ExtendedCost, row.DiscountPercent, row.MarkupPercent)
	return pb
}

// PriceLine prices every quantity row stored for a line. Lines without rows are
// priced at their candidate build quantities with no adjustments.
func (e *Engine) PriceLine(lineID string) []PriceBreak {
	if e == nil {
		return nil
	}
	rows := e.snapshot.QuantitiesForLine(lineID)
	if len(rows) == 0 {
		if line, ok := e.snapshot.Line(lineID); ok {
			for _, q := range line.Quantities {
				rows = append(rows, entities.QuotationLineQuantity{LineID: lineID, Quantity: q})
			}
		}
	}

	breaks := make([]PriceBreak, 0, len(rows))
	for _, row := range rows {
		breaks = append(breaks, e.Price(row))
	}
	return breaks
}
