// Package projection maps a generated dataset onto the physical shapes
// of the sinks: flat relational rows and store documents with embedded offers.
package projection

import (
	"fmt"

	"github.com/niksmo/catalog-seed/internal/core/domain"
)

// Snapshot carries both projections of one dataset.
type Snapshot struct {
	Tables    Tables
	Documents []StoreDocument
}

func Project(ds domain.Dataset) (Snapshot, error) {
	const op = "projection.Project"

	docs, err := Documents(ds)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return Snapshot{Tables: Relational(ds), Documents: docs}, nil
}
