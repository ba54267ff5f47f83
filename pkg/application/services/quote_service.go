package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vsinha/quoting/pkg/application/dto"
	"github.com/vsinha/quoting/pkg/domain/entities"
	"github.com/vsinha/quoting/pkg/domain/repositories"
	domainservices "github.com/vsinha/quoting/pkg/domain/services"
	"github.com/vsinha/quoting/pkg/infrastructure/events"
	"github.com/vsinha/quoting/pkg/rollup"
)

var (
	// ErrStaleRecompute is returned to a recompute that finished after a newer
	// one for the same quote had already started. Its result is discarded.
	ErrStaleRecompute = errors.New("stale recompute discarded")
	// ErrQuoteNotLoaded is returned when no recompute has been committed for a quote
	ErrQuoteNotLoaded = errors.New("quote not loaded")
	// ErrLineNotFound is returned for a line id the quote does not contain
	ErrLineNotFound = errors.New("line not found")
)

// quoteState is the committed result of the latest recompute of a quote
type quoteState struct {
	engine     *rollup.Engine
	validation *domainservices.ValidationResult
	generation uint64
}

// QuoteService owns the current rollup of every loaded quote. Each data change
// triggers a full recompute; when recomputes overlap the most recently started
// one wins and older results are dropped.
type QuoteService struct {
	repo       repositories.QuoteRepository
	validator  *domainservices.BOMValidator
	eventStore events.EventStore

	mu          sync.Mutex
	states      map[string]*quoteState
	generations map[string]uint64
	saveLocks   map[string]*sync.Mutex
}

// NewQuoteService creates a quote service. eventStore may be nil.
func NewQuoteService(repo repositories.QuoteRepository, eventStore events.EventStore) *QuoteService {
	return &QuoteService{
		repo:        repo,
		validator:   domainservices.NewBOMValidator(),
		eventStore:  eventStore,
		states:      make(map[string]*quoteState),
		generations: make(map[string]uint64),
		saveLocks:   make(map[string]*sync.Mutex),
	}
}

// Load reads the quote from the repository and recomputes it
func (s *QuoteService) Load(ctx context.Context, quoteID string) (*rollup.Engine, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("quote service has no repository")
	}
	generation := s.beginAfterSaves(quoteID)

	snapshot, err := s.repo.GetSnapshot(ctx, quoteID)
	if err != nil {
		s.fail(quoteID, generation, err)
		return nil, fmt.Errorf("load quote %s: %w", quoteID, err)
	}
	return s.recompute(ctx, generation, snapshot)
}

// LoadAll recomputes every quote the repository knows
func (s *QuoteService) LoadAll(ctx context.Context) ([]string, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("quote service has no repository")
	}
	ids, err := s.repo.ListQuoteIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	for _, id := range ids {
		if _, err := s.Load(ctx, id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// Apply recomputes a quote from a snapshot pushed by the editor
func (s *QuoteService) Apply(ctx context.Context, snapshot *entities.QuoteSnapshot) (*rollup.Engine, error) {
	if snapshot == nil || snapshot.QuoteID == "" {
		return nil, fmt.Errorf("snapshot must carry a quote id")
	}
	generation := s.begin(snapshot.QuoteID)
	return s.recompute(ctx, generation, snapshot)
}

// Store saves a snapshot through writer and recomputes it. Saves of one quote
// are serialized and each takes its generation while holding the quote's save
// lock, so the last snapshot stored is also the one whose recompute commits.
func (s *QuoteService) Store(ctx context.Context, writer repositories.QuoteWriter, snapshot *entities.QuoteSnapshot) (*rollup.Engine, error) {
	if snapshot == nil || snapshot.QuoteID == "" {
		return nil, fmt.Errorf("snapshot must carry a quote id")
	}
	if writer == nil {
		return s.Apply(ctx, snapshot)
	}
	quoteID := snapshot.QuoteID

	lock := s.saveLock(quoteID)
	lock.Lock()
	generation := s.begin(quoteID)
	err := writer.SaveSnapshot(ctx, snapshot)
	lock.Unlock()

	if err != nil {
		s.fail(quoteID, generation, err)
		return nil, fmt.Errorf("store quote %s: %w", quoteID, err)
	}
	return s.recompute(ctx, generation, snapshot)
}

func (s *QuoteService) recompute(ctx context.Context, generation uint64, snapshot *entities.QuoteSnapshot) (*rollup.Engine, error) {
	start := time.Now()
	quoteID := snapshot.QuoteID

	validation := s.validator.ValidateQuote(snapshot)
	for _, e := range validation.Errors {
		log.Printf("[quote] %s: invalid: %s", quoteID, e)
	}

	engine, err := rollup.Recompute(snapshot)
	if err != nil {
		s.fail(quoteID, generation, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.fail(quoteID, generation, err)
		return nil, fmt.Errorf("recompute quote %s: %w", quoteID, err)
	}

	latest, committed := s.commit(quoteID, generation, &quoteState{
		engine:     engine,
		validation: validation,
		generation: generation,
	})
	if !committed {
		log.Printf("[quote] %s: discarding generation %d, generation %d is newer", quoteID, generation, latest)
		s.publish(quoteID, events.RecomputeDiscardedEvent, events.RecomputeDiscarded{
			QuoteID:          quoteID,
			Generation:       generation,
			LatestGeneration: latest,
		})
		return nil, fmt.Errorf("quote %s generation %d: %w", quoteID, generation, ErrStaleRecompute)
	}

	for _, w := range engine.Warnings() {
		log.Printf("[quote] %s: %s", quoteID, w)
	}
	for _, w := range validation.Warnings {
		log.Printf("[quote] %s: %s", quoteID, w)
	}
	s.publish(quoteID, events.EffectsRecomputedEvent, events.EffectsRecomputed{
		QuoteID:    quoteID,
		Generation: generation,
		LineIDs:    engine.LineIDs(),
		Warnings:   engine.Warnings(),
		Duration:   time.Since(start),
	})
	return engine, nil
}

// begin starts a new generation for the quote and returns its token
func (s *QuoteService) begin(quoteID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[quoteID]++
	return s.generations[quoteID]
}

// beginAfterSaves waits for an in-flight save of the quote before taking a
// generation, so a later read never sees data older than an earlier save
func (s *QuoteService) beginAfterSaves(quoteID string) uint64 {
	lock := s.saveLock(quoteID)
	lock.Lock()
	defer lock.Unlock()
	return s.begin(quoteID)
}

func (s *QuoteService) saveLock(quoteID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.saveLocks[quoteID]
	if !ok {
		lock = &sync.Mutex{}
		s.saveLocks[quoteID] = lock
	}
	return lock
}

// commit installs state only when generation is still the newest started
func (s *QuoteService) commit(quoteID string, generation uint64, state *quoteState) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.generations[quoteID]
	if generation != latest {
		return latest, false
	}
	s.states[quoteID] = state
	return latest, true
}

func (s *QuoteService) fail(quoteID string, generation uint64, err error) {
	log.Printf("[quote] %s: recompute generation %d failed: %v", quoteID, generation, err)
	s.publish(quoteID, events.RecomputeFailedEvent, events.RecomputeFailed{
		QuoteID:    quoteID,
		Generation: generation,
		Error:      err.Error(),
	})
}

func (s *QuoteService) publish(quoteID, eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(quoteID, events.NewEvent(eventType, quoteID, data)); err != nil {
		log.Printf("[quote] %s: failed to publish %s: %v", quoteID, eventType, err)
	}
}

func (s *QuoteService) state(quoteID string) (*quoteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[quoteID]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", quoteID, ErrQuoteNotLoaded)
	}
	return state, nil
}

// Engine returns the committed engine of a quote
func (s *QuoteService) Engine(quoteID string) (*rollup.Engine, error) {
	state, err := s.state(quoteID)
	if err != nil {
		return nil, err
	}
	return state.engine, nil
}

// History returns the retained recompute events of a quote, oldest first
func (s *QuoteService) History(quoteID string) ([]events.Event, error) {
	if s.eventStore == nil {
		return []events.Event{}, nil
	}
	return s.eventStore.ReadEvents(quoteID, 1)
}

// Validation returns the validation report of the committed recompute
func (s *QuoteService) Validation(quoteID string) (*domainservices.ValidationResult, error) {
	state, err := s.state(quoteID)
	if err != nil {
		return nil, err
	}
	return state.validation, nil
}

// Generation returns the generation of the committed recompute, 0 if none
func (s *QuoteService) Generation(quoteID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[quoteID]; ok {
		return state.generation
	}
	return 0
}

// Effects returns a line's compiled price effects
func (s *QuoteService) Effects(quoteID, lineID string) (*rollup.LinePriceEffects, error) {
	engine, err := s.Engine(quoteID)
	if err != nil {
		return nil, err
	}
	effects, ok := engine.Effects(lineID)
	if !ok {
		return nil, fmt.Errorf("quote %s line %s: %w", quoteID, lineID, ErrLineNotFound)
	}
	return effects, nil
}

// Evaluate sums one category of a line at quantity
func (s *QuoteService) Evaluate(quoteID, lineID string, category rollup.Category, quantity float64) (float64, error) {
	effects, err := s.Effects(quoteID, lineID)
	if err != nil {
		return 0, err
	}
	return effects.Evaluate(category, quantity), nil
}

// PriceBreaks prices every quantity row of a line
func (s *QuoteService) PriceBreaks(quoteID, lineID string) ([]dto.PriceBreak, error) {
	engine, err := s.Engine(quoteID)
	if err != nil {
		return nil, err
	}
	if _, ok := engine.Effects(lineID); !ok {
		return nil, fmt.Errorf("quote %s line %s: %w", quoteID, lineID, ErrLineNotFound)
	}
	return priceBreaks(engine, lineID), nil
}

func priceBreaks(engine *rollup.Engine, lineID string) []dto.PriceBreak {
	raw := engine.PriceLine(lineID)
	breaks := make([]dto.PriceBreak, 0, len(raw))
	for _, pb := range raw {
		breaks = append(breaks, dto.NewPriceBreak(pb))
	}
	return breaks
}

// RollupOptions narrows a quote rollup
type RollupOptions struct {
	// LineID limits the rollup to one line when set
	LineID string
	// Quantities overrides each line's candidate build quantities
	Quantities []float64
}

// Rollup assembles the presentation view of a committed quote
func (s *QuoteService) Rollup(quoteID string, opts RollupOptions) (*dto.QuoteRollup, error) {
	state, err := s.state(quoteID)
	if err != nil {
		return nil, err
	}
	engine := state.engine
	snapshot := engine.Snapshot()

	result := &dto.QuoteRollup{
		QuoteID:     quoteID,
		ComputedAt:  engine.ComputedAt(),
		Lines:       make([]dto.LineRollup, 0),
		PriceBreaks: make([]dto.PriceBreak, 0),
		Warnings:    engine.Warnings(),
	}
	// unknown factors already appear among the engine warnings
	result.Warnings = append(result.Warnings, state.validation.Errors...)
	for _, ref := range state.validation.DanglingReferences {
		result.Warnings = append(result.Warnings, "dangling reference: "+ref)
	}

	found := false
	for _, lineID := range engine.LineIDs() {
		if opts.LineID != "" && lineID != opts.LineID {
			continue
		}
		found = true
		line, _ := snapshot.Line(lineID)

		quantities := opts.Quantities
		if len(quantities) == 0 {
			quantities = line.Quantities
		}
		for _, q := range quantities {
			result.Lines = append(result.Lines, dto.NewLineRollup(lineID, line.ItemID, line.Description, q, engine.Totals(lineID, q)))
		}

		result.PriceBreaks = append(result.PriceBreaks, priceBreaks(engine, lineID)...)
	}
	if opts.LineID != "" && !found {
		return nil, fmt.Errorf("quote %s line %s: %w", quoteID, opts.LineID, ErrLineNotFound)
	}

	result.TotalExtendedPrice = dto.SumExtendedPrice(result.PriceBreaks)
	return result, nil
}
