package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/quoting/pkg/rollup"
)

// moneyPlaces is the rounding applied to every exported currency amount
const moneyPlaces = 2

// LineRollup is a line's batch totals at one candidate build quantity
type LineRollup struct {
	LineID      string               `json:"line_id"`
	ItemID      string               `json:"item_id"`
	Description string               `json:"description,omitempty"`
	Quantity    float64              `json:"quantity"`
	Totals      rollup.CostBreakdown `json:"totals"`
	UnitCost    decimal.Decimal      `json:"unit_cost"`
}

// PriceBreak is a priced quantity row with money rounded for presentation.
// Raw keeps the unrounded engine values.
type PriceBreak struct {
	LineID          string            `json:"line_id"`
	QuantityID      string            `json:"quantity_id,omitempty"`
	Quantity        float64           `json:"quantity"`
	LeadTimeDays    int               `json:"lead_time_days"`
	UnitCost        decimal.Decimal   `json:"unit_cost"`
	UnitTaxAmount   decimal.Decimal   `json:"unit_tax_amount"`
	MarkupPercent   float64           `json:"markup_percent"`
	DiscountPercent float64           `json:"discount_percent"`
	ExtendedCost    decimal.Decimal   `json:"extended_cost"`
	ExtendedPrice   decimal.Decimal   `json:"extended_price"`
	Raw             rollup.PriceBreak `json:"raw"`
}

// QuoteRollup is the presentation view of one recomputed quote
type QuoteRollup struct {
	QuoteID            string          `json:"quote_id"`
	ComputedAt         time.Time       `json:"computed_at"`
	Lines              []LineRollup    `json:"lines"`
	PriceBreaks        []PriceBreak    `json:"price_breaks"`
	TotalExtendedPrice decimal.Decimal `json:"total_extended_price"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// Money rounds a float amount to currency precision
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(moneyPlaces)
}

// NewLineRollup converts batch totals at quantity into a LineRollup
func NewLineRollup(lineID, itemID, description string, quantity float64, totals rollup.CostBreakdown) LineRollup {
	unit := rollup.UnitCost(
		rollup.PerUnit(totals.MaterialCost, quantity),
		rollup.PerUnit(totals.LaborCost, quantity),
		rollup.PerUnit(totals.OverheadCost, quantity),
		0,
	)
	return LineRollup{
		LineID:      lineID,
		ItemID:      itemID,
		Description: description,
		Quantity:    quantity,
		Totals:      totals,
		UnitCost:    Money(unit),
	}
}

// NewPriceBreak rounds an engine price break for presentation
func NewPriceBreak(pb rollup.PriceBreak) PriceBreak {
	return PriceBreak{
		LineID:          pb.LineID,
		QuantityID:      pb.QuantityID,
		Quantity:        pb.Quantity,
		LeadTimeDays:    pb.LeadTimeDays,
		UnitCost:        Money(pb.UnitCost),
		UnitTaxAmount:   Money(pb.UnitTaxAmount),
		MarkupPercent:   pb.MarkupPercent,
		DiscountPercent: pb.DiscountPercent,
		ExtendedCost:    Money(pb.ExtendedCost),
		ExtendedPrice:   Money(pb.ExtendedPrice),
		Raw:             pb,
	}
}

// SumExtendedPrice totals the rounded extended prices
func SumExtendedPrice(breaks []PriceBreak) decimal.Decimal {
	total := decimal.Zero
	for _, pb := range breaks {
		total = total.Add(pb.ExtendedPrice)
	}
	return total
}
