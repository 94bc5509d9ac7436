package generator

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/niksmo/catalog-seed/internal/core/domain"
)

var ErrInconsistent = errors.New("inconsistent dataset")

type pairKey struct {
	store   uuid.UUID
	product uuid.UUID
}

// Validate checks cross-entity invariants of a generated dataset.
//
// Any violation means a generator bug, the run must not reach the sinks.
func Validate(ds domain.Dataset) error {
	const op = "generator.Validate"

	var errs []error
	violate := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	categories := make(map[uuid.UUID]struct{}, len(ds.Categories))
	names := make(map[string]struct{}, len(ds.Categories))
	for _, c := range ds.Categories {
		categories[c.ID] = struct{}{}
		if _, ok := names[c.Name]; ok {
			violate("category %s: duplicate name %q", c.ID, c.Name)
		}
		names[c.Name] = struct{}{}
	}

	products := make(map[uuid.UUID]struct{}, len(ds.Products))
	eans := make(map[string]struct{}, len(ds.Products))
	for _, p := range ds.Products {
		products[p.ID] = struct{}{}
		if _, ok := categories[p.CategoryID]; !ok {
			violate("product %s: unknown category %s", p.ID, p.CategoryID)
		}
		if !ValidEAN(p.EAN) {
			violate("product %s: invalid ean %q", p.ID, p.EAN)
		}
		if _, ok := eans[p.EAN]; ok {
			violate("product %s: duplicate ean %q", p.ID, p.EAN)
		}
		eans[p.EAN] = struct{}{}
	}

	stores := make(map[uuid.UUID]struct{}, len(ds.Stores))
	storeNames := make(map[string]struct{}, len(ds.Stores))
	urls := make(map[string]struct{}, len(ds.Stores))
	for _, s := range ds.Stores {
		stores[s.ID] = struct{}{}
		if _, ok := storeNames[s.Name]; ok {
			violate("store %s: duplicate name %q", s.ID, s.Name)
		}
		if _, ok := urls[s.URL]; ok {
			violate("store %s: duplicate url %q", s.ID, s.URL)
		}
		storeNames[s.Name] = struct{}{}
		urls[s.URL] = struct{}{}
	}

	if limit := len(ds.Stores) * len(ds.Products); len(ds.Offers) > limit {
		violate("%d offers exceed %d candidate pairs", len(ds.Offers), limit)
	}

	pairs := make(map[pairKey]struct{}, len(ds.Offers))
	for _, o := range ds.Offers {
		if _, ok := stores[o.StoreID]; !ok {
			violate("offer: unknown store %s", o.StoreID)
		}
		if _, ok := products[o.ProductID]; !ok {
			violate("offer: unknown product %s", o.ProductID)
		}
		k := pairKey{o.StoreID, o.ProductID}
		if _, ok := pairs[k]; ok {
			violate("offer: duplicate pair (%s, %s)", o.StoreID, o.ProductID)
		}
		pairs[k] = struct{}{}
	}

	if len(errs) != 0 {
		return fmt.Errorf("%s: %w: %w", op, ErrInconsistent, errors.Join(errs...))
	}
	return nil
}
