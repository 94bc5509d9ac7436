package port

import (
	"context"

	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/projection"
)

// WriteResult reports how much of a snapshot a sink accepted.
//
// Skipped counts records the sink already held, or rejected
// as duplicates without failing the batch.
type WriteResult struct {
	Inserted int
	Skipped  int
}

// A Sink persists one shape of the generated catalog.
type Sink interface {
	Name() string

	// EnsureSchema creates tables, collections or topics and
	// clears data of a previous seed run when cleanup is enabled.
	EnsureSchema(context.Context) error

	Write(context.Context, projection.Snapshot) (WriteResult, error)

	// Count reads totals back from the sink.
	Count(context.Context) (domain.Counts, error)

	Close(context.Context)
}
