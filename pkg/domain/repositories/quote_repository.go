package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/quoting/pkg/domain/entities"
)

// ErrQuoteNotFound is returned when a repository holds no records for a quote
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteRepository provides read-only snapshots of a quote's raw records
type QuoteRepository interface {
	// GetSnapshot returns lines, assemblies, operations, materials and quantity
	// rows for one quote as a single consistent read.
	GetSnapshot(ctx context.Context, quoteID string) (*entities.QuoteSnapshot, error)
	ListQuoteIDs(ctx context.Context) ([]string, error)
}

// QuoteWriter stores raw quote records. Only loaders and fixtures write; the
// rollup never persists computed values.
type QuoteWriter interface {
	SaveSnapshot(ctx context.Context, snapshot *entities.QuoteSnapshot) error
}
