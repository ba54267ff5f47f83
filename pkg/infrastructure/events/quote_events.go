package events

import (
	"fmt"
	"log"
	"time"
)

const (
	EffectsRecomputedEvent  = "quote.effects.recomputed"
	RecomputeDiscardedEvent = "quote.recompute.discarded"
	RecomputeFailedEvent    = "quote.recompute.failed"
)

// EffectsRecomputed is published after a recompute became the quote's current state
type EffectsRecomputed struct {
	QuoteID    string        `json:"quote_id"`
	Generation uint64        `json:"generation"`
	LineIDs    []string      `json:"line_ids"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RecomputeDiscarded is published when a finished recompute lost to a newer one
type RecomputeDiscarded struct {
	QuoteID          string `json:"quote_id"`
	Generation       uint64 `json:"generation"`
	LatestGeneration uint64 `json:"latest_generation"`
}

// RecomputeFailed is published when loading or compiling a quote failed
type RecomputeFailed struct {
	QuoteID    string `json:"quote_id"`
	Generation uint64 `json:"generation"`
	Error      string `json:"error"`
}

// NewRecomputeLogger logs one line per committed recompute. Failures and
// discards are logged by the service that publishes them.
func NewRecomputeLogger(logger *log.Logger) *HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	return &HandlerFunc{
		Types: []string{EffectsRecomputedEvent},
		Fn: func(e Event) error {
			payload, ok := e.Data().(EffectsRecomputed)
			if !ok {
				return fmt.Errorf("unexpected payload %T for %s", e.Data(), e.Type())
			}
			logger.Printf("[events] quote %s generation %d: %d lines recomputed in %s, %d warnings",
				payload.QuoteID, payload.Generation, len(payload.LineIDs), payload.Duration, len(payload.Warnings))
			return nil
		},
	}
}
