package testing

import (
	"context"

	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/memory"
)

// Quote ids of the fixtures below
const (
	EnclosureQuoteID = "Q-ENC"
	CyclicQuoteID    = "Q-CYCLE"
)

// BuildEnclosureQuote builds a two-line sheet-metal enclosure quote.
//
// At quantity 10 line L-ENC rolls up to material 330, labor 90, overhead 110,
// setup 0.75 h and production 1 + 1 + 4/3 h. Its quantity row prices at unit
// cost 55, extended cost 560 and extended price 630. Line L-BRK is a bought
// bracket costing 3.75 per piece.
func BuildEnclosureQuote() *entities.QuoteSnapshot {
	return &entities.QuoteSnapshot{
		QuoteID: EnclosureQuoteID,
		Lines: []entities.QuotationLine{
			{ID: "L-ENC", QuoteID: EnclosureQuoteID, ItemID: "ENCLOSURE-200", Description: "Control enclosure", Replenishment: entities.Make, Quantities: []float64{1, 10, 100}},
			{ID: "L-BRK", QuoteID: EnclosureQuoteID, ItemID: "BRACKET-7", Description: "Wall bracket", Replenishment: entities.Buy, Quantities: []float64{5}},
		},
		Assemblies: []entities.QuotationAssembly{
			{ID: "A-FRAME", LineID: "L-ENC", Description: "Frame"},
			{ID: "A-PANEL", LineID: "L-ENC", ParentAssemblyID: entities.String("A-FRAME"), QuantityPerParent: entities.Float(4), Description: "Side panel"},
		},
		Operations: []entities.QuotationOperation{
			{
				ID:                 "OP-CUT",
				LineID:             "L-ENC",
				Description:        "Laser cut",
				SetupHours:         entities.Float(0.5),
				ProductionStandard: entities.Float(6),
				StandardFactor:     entities.MinutesPerPiece,
				LaborRate:          entities.Float(40),
				OverheadRate:       entities.Float(10),
			},
			{
				ID:                 "OP-BEND",
				LineID:             "L-ENC",
				AssemblyID:         entities.String("A-PANEL"),
				Description:        "Press brake",
				SetupHours:         entities.Float(0.25),
				ProductionStandard: entities.Float(30),
				StandardFactor:     entities.PiecesPerHour,
				QuotingRate:        entities.Float(60),
			},
			{
				ID:                 "OP-INSP",
				LineID:             "L-ENC",
				Description:        "First article inspection",
				ProductionStandard: entities.Float(1),
				StandardFactor:     entities.TotalHours,
				LaborRate:          entities.Float(30),
			},
			{
				ID:          "OP-BUY",
				LineID:      "L-BRK",
				Description: "Purchase",
			},
		},
		Materials: []entities.QuotationMaterial{
			{ID: "M-SHEET", OperationID: "OP-CUT", ItemID: "SHEET-16GA", Quantity: entities.Float(2), UnitCost: entities.Float(12.5)},
			{ID: "M-PAINT", OperationID: "OP-BEND", ItemID: "POWDER-RAL7035", Quantity: entities.Float(0.1), UnitCost: entities.Float(20)},
			{ID: "M-BRK", OperationID: "OP-BUY", ItemID: "BRACKET-7", Quantity: entities.Float(1), UnitCost: entities.Float(3.75)},
		},
		LineQuantities: []entities.QuotationLineQuantity{
			{ID: "LQ-ENC-10", LineID: "L-ENC", Quantity: 10, AdditionalCost: 2, UnitTaxAmount: 1, MarkupPercent: 25, DiscountPercent: 10, LeadTimeDays: 21},
			{ID: "LQ-BRK-5", LineID: "L-BRK", Quantity: 5, LeadTimeDays: 3},
		},
	}
}

// BuildCyclicQuote builds a quote whose two assemblies name each other as parent
func BuildCyclicQuote() *entities.QuoteSnapshot {
	return &entities.QuoteSnapshot{
		QuoteID: CyclicQuoteID,
		Lines: []entities.QuotationLine{
			{ID: "L-LOOP", QuoteID: CyclicQuoteID, ItemID: "LOOP", Quantities: []float64{1}},
		},
		Assemblies: []entities.QuotationAssembly{
			{ID: "A-X", LineID: "L-LOOP", ParentAssemblyID: entities.String("A-Y")},
			{ID: "A-Y", LineID: "L-LOOP", ParentAssemblyID: entities.String("A-X")},
		},
		Operations: []entities.QuotationOperation{
			{ID: "OP-LOOP", LineID: "L-LOOP", AssemblyID: entities.String("A-X"), ProductionStandard: entities.Float(1), StandardFactor: entities.HoursPerPiece, LaborRate: entities.Float(10)},
		},
	}
}

// BuildQuoteRepository returns a memory repository holding both fixtures
func BuildQuoteRepository() *memory.QuoteRepository {
	repo := memory.NewQuoteRepository(2)
	ctx := context.Background()
	_ = repo.SaveSnapshot(ctx, BuildEnclosureQuote())
	_ = repo.SaveSnapshot(ctx, BuildCyclicQuote())
	return repo
}
