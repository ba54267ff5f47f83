package entities

import (
	"fmt"
	"strings"
)

// ReplenishmentMode describes how a quotation line is sourced
type ReplenishmentMode int

const (
	Make ReplenishmentMode = iota
	Buy
	Pick
)

// String method for ReplenishmentMode enum
func (m ReplenishmentMode) String() string {
	switch m {
	case Make:
		return "Make"
	case Buy:
		return "Buy"
	case Pick:
		return "Pick"
	default:
		return "Unknown"
	}
}

// ParseReplenishmentMode converts a stored tag into a ReplenishmentMode
func ParseReplenishmentMode(s string) (ReplenishmentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "make", "":
		return Make, nil
	case "buy":
		return Buy, nil
	case "pick":
		return Pick, nil
	default:
		return Make, fmt.Errorf("unknown replenishment mode: %s", s)
	}
}

// MarshalText encodes the mode by name
func (m ReplenishmentMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the names ParseReplenishmentMode accepts
func (m *ReplenishmentMode) UnmarshalText(text []byte) error {
	mode, err := ParseReplenishmentMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// QuotationLine is one buildable item on a quote
type QuotationLine struct {
	ID            string            `json:"id"`
	QuoteID       string            `json:"quote_id"`
	ItemID        string            `json:"item_id,omitempty"`
	Description   string            `json:"description,omitempty"`
	Replenishment ReplenishmentMode `json:"replenishment"`
	Quantities    []float64         `json:"quantities"` // candidate build quantities, in display order
}

// NewQuotationLine creates a validated QuotationLine
func NewQuotationLine(id, quoteID, itemID string, mode ReplenishmentMode, quantities []float64) (*QuotationLine, error) {
	if id == "" {
		return nil, fmt.Errorf("line id cannot be empty")
	}
	for _, q := range quantities {
		if q < 0 {
			return nil, fmt.Errorf("line %s: quantity must not be negative, got %v", id, q)
		}
	}

	return &QuotationLine{
		ID:            id,
		QuoteID:       quoteID,
		ItemID:        itemID,
		Replenishment: mode,
		Quantities:    quantities,
	}, nil
}

// QuotationLineQuantity is one priced quantity break for a line. The editor owns
// these rows; the rollup only reads them.
type QuotationLineQuantity struct {
	ID              string  `json:"id"`
	LineID          string  `json:"line_id"`
	Quantity        float64 `json:"quantity"`
	AdditionalCost  float64 `json:"additional_cost"`
	UnitTaxAmount   float64 `json:"unit_tax_amount"`
	MarkupPercent   float64 `json:"markup_percent"`
	DiscountPercent float64 `json:"discount_percent"`
	LeadTimeDays    int     `json:"lead_time_days"`
}

// QuoteSnapshot is the read-only set of raw records for one quote
type QuoteSnapshot struct {
	QuoteID        string                  `json:"quote_id"`
	Lines          []QuotationLine         `json:"lines"`
	Assemblies     []QuotationAssembly     `json:"assemblies"`
	Operations     []QuotationOperation    `json:"operations"`
	Materials      []QuotationMaterial     `json:"materials"`
	LineQuantities []QuotationLineQuantity `json:"line_quantities"`
}

// Validate runs the record checks of every constructor over a snapshot built
// elsewhere, such as one decoded from JSON
func (s *QuoteSnapshot) Validate() error {
	for _, l := range s.Lines {
		if _, err := NewQuotationLine(l.ID, l.QuoteID, l.ItemID, l.Replenishment, l.Quantities); err != nil {
			return err
		}
	}
	for _, a := range s.Assemblies {
		if _, err := NewQuotationAssembly(a.ID, a.LineID, a.ParentAssemblyID, a.QuantityPerParent); err != nil {
			return err
		}
	}
	for _, op := range s.Operations {
		if _, err := NewQuotationOperation(op.ID, op.LineID, op.AssemblyID, op.StandardFactor); err != nil {
			return err
		}
		if err := op.Validate(); err != nil {
			return err
		}
	}
	for _, m := range s.Materials {
		if _, err := NewQuotationMaterial(m.ID, m.OperationID, m.Quantity, m.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

// Line returns the line with the given id
func (s *QuoteSnapshot) Line(id string) (*QuotationLine, bool) {
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			return &s.Lines[i], true
		}
	}
	return nil, false
}

// QuantitiesForLine returns the quantity break rows of a line in stored order
func (s *QuoteSnapshot) QuantitiesForLine(lineID string) []QuotationLineQuantity {
	var rows []QuotationLineQuantity
	for _, q := range s.LineQuantities {
		if q.LineID == lineID {
			rows = append(rows, q)
		}
	}
	return rows
}
