package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/domain/repositories"
)

// QuoteRepository keeps quote snapshots in memory, in load order
type QuoteRepository struct {
	mu        sync.RWMutex
	snapshots []entities.QuoteSnapshot
	index     map[string]int
}

// NewQuoteRepository creates an in-memory quote repository
func NewQuoteRepository(expectedQuotes int) *QuoteRepository {
	return &QuoteRepository{
		snapshots: make([]entities.QuoteSnapshot, 0, expectedQuotes),
		index:     make(map[string]int, expectedQuotes),
	}
}

// Verify interface compliance
var _ repositories.QuoteRepository = (*QuoteRepository)(nil)
var _ repositories.QuoteWriter = (*QuoteRepository)(nil)

// SaveSnapshot stores or replaces the records of a quote
func (r *QuoteRepository) SaveSnapshot(ctx context.Context, snapshot *entities.QuoteSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if snapshot.QuoteID == "" {
		return fmt.Errorf("quote id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneSnapshot(snapshot)
	if i, exists := r.index[snapshot.QuoteID]; exists {
		r.snapshots[i] = stored
		return nil
	}
	r.index[snapshot.QuoteID] = len(r.snapshots)
	r.snapshots = append(r.snapshots, stored)
	return nil
}

// GetSnapshot returns a copy of the stored records of a quote
func (r *QuoteRepository) GetSnapshot(ctx context.Context, quoteID string) (*entities.QuoteSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[quoteID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrQuoteNotFound, quoteID)
	}
	snapshot := cloneSnapshot(&r.snapshots[i])
	return &snapshot, nil
}

// ListQuoteIDs returns every stored quote id in load order
func (r *QuoteRepository) ListQuoteIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		ids = append(ids, s.QuoteID)
	}
	return ids, nil
}

// cloneSnapshot copies the record slices so callers cannot mutate stored state.
// Optional numeric pointers are shared; records are treated as immutable values.
func cloneSnapshot(s *entities.QuoteSnapshot) entities.QuoteSnapshot {
	out := entities.QuoteSnapshot{
		QuoteID:        s.QuoteID,
		Lines:          append([]entities.QuotationLine(nil), s.Lines...),
		Assemblies:     append([]entities.QuotationAssembly(nil), s.Assemblies...),
		Operations:     append([]entities.QuotationOperation(nil), s.Operations...),
		Materials:      append([]entities.QuotationMaterial(nil), s.Materials...),
		LineQuantities: append([]entities.QuotationLineQuantity(nil), s.LineQuantities...),
	}
	for i := range out.Lines {
		out.Lines[i].Quantities = append([]float64(nil), out.Lines[i].Quantities...)
	}
	return out
}
