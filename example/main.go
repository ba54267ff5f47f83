package main

import (
	"context"
	"fmt"

	"github.com/vsinha/quoting/pkg/application/services"
	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/infrastructure/events"
	"github.com/vsinha/quoting/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/quoting/pkg/rollup"
)

func main() {
	ctx := context.Background()

	// Store a valve body quote
	repo := memory.NewQuoteRepository(1)
	if err := repo.SaveSnapshot(ctx, buildValveBodyQuote()); err != nil {
		fmt.Printf("❌ Save failed: %v\n", err)
		return
	}

	eventStore := events.NewInMemoryEventStore()
	svc := services.NewQuoteService(repo, eventStore)

	fmt.Println("🧮 Rolling up quote Q-VALVE...")
	engine, err := svc.Load(ctx, "Q-VALVE")
	if err != nil {
		fmt.Printf("❌ Recompute failed: %v\n", err)
		return
	}
	fmt.Printf("  Lines: %v\n", engine.LineIDs())
	fmt.Println()

	// Evaluate every category at each candidate quantity
	fmt.Println("📊 Batch totals for L-VALVE:")
	for _, q := range []float64{1, 25, 250} {
		fmt.Printf("  Quantity %v:\n", q)
		for _, c := range rollup.Categories() {
			v, err := svc.Evaluate("Q-VALVE", "L-VALVE", c, q)
			if err != nil {
				fmt.Printf("❌ Evaluate failed: %v\n", err)
				return
			}
			fmt.Printf("    %-16s %10.2f\n", c, v)
		}
	}
	fmt.Println()

	// Price the quantity breaks
	breaks, err := svc.PriceBreaks("Q-VALVE", "L-VALVE")
	if err != nil {
		fmt.Printf("❌ Pricing failed: %v\n", err)
		return
	}
	fmt.Println("💰 Price breaks:")
	for _, pb := range breaks {
		fmt.Printf("  %v units: unit cost %s, extended price %s (lead %d days)\n",
			pb.Quantity, pb.UnitCost.StringFixed(2), pb.ExtendedPrice.StringFixed(2), pb.LeadTimeDays)
	}
	fmt.Println()

	if warnings := engine.Warnings(); len(warnings) > 0 {
		fmt.Println("⚠️  Warnings:")
		for _, w := range warnings {
			fmt.Printf("  %s\n", w)
		}
		fmt.Println()
	}

	recorded, _ := eventStore.ReadAllEvents(0)
	fmt.Printf("📨 %d events recorded\n", len(recorded))
	fmt.Println("✅ Rollup complete!")
}

func buildValveBodyQuote() *entities.QuoteSnapshot {
	return &entities.QuoteSnapshot{
		QuoteID: "Q-VALVE",
		Lines: []entities.QuotationLine{
			{ID: "L-VALVE", QuoteID: "Q-VALVE", ItemID: "VALVE-BODY", Description: "Machined valve body",
				Replenishment: entities.Make, Quantities: []float64{1, 25, 250}},
		},
		Assemblies: []entities.QuotationAssembly{
			{ID: "A-BODY", LineID: "L-VALVE", Description: "Body"},
			{ID: "A-SEAT", LineID: "L-VALVE", ParentAssemblyID: entities.String("A-BODY"),
				QuantityPerParent: entities.Float(2), Description: "Seat insert"},
		},
		Operations: []entities.QuotationOperation{
			{ID: "OP-MILL", LineID: "L-VALVE", AssemblyID: entities.String("A-BODY"), Description: "CNC mill",
				SetupHours: entities.Float(1.5), ProductionStandard: entities.Float(18), StandardFactor: entities.MinutesPerPiece,
				LaborRate: entities.Float(55), OverheadRate: entities.Float(35)},
			{ID: "OP-PRESS", LineID: "L-VALVE", AssemblyID: entities.String("A-SEAT"), Description: "Press fit seats",
				ProductionStandard: entities.Float(120), StandardFactor: entities.PiecesPerHour,
				QuotingRate: entities.Float(48)},
			{ID: "OP-FAI", LineID: "L-VALVE", Description: "First article inspection",
				ProductionStandard: entities.Float(2), StandardFactor: entities.TotalHours,
				LaborRate: entities.Float(60)},
		},
		Materials: []entities.QuotationMaterial{
			{ID: "M-BAR", OperationID: "OP-MILL", ItemID: "AL-6061-BAR", Quantity: entities.Float(1.2), UnitCost: entities.Float(8.4)},
			{ID: "M-SEAT", OperationID: "OP-PRESS", ItemID: "PTFE-SEAT", Quantity: entities.Float(1), UnitCost: entities.Float(1.15)},
		},
		LineQuantities: []entities.QuotationLineQuantity{
			{ID: "LQ-1", LineID: "L-VALVE", Quantity: 1, MarkupPercent: 40, LeadTimeDays: 10},
			{ID: "LQ-25", LineID: "L-VALVE", Quantity: 25, MarkupPercent: 30, LeadTimeDays: 15},
			{ID: "LQ-250", LineID: "L-VALVE", Quantity: 250, MarkupPercent: 22, DiscountPercent: 5, LeadTimeDays: 30},
		},
	}
}
