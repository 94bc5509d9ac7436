package generator

import (
	"errors"
	"fmt"
)

var (
	ErrNoCategories  = errors.New("products requested without categories")
	ErrNegativeCount = errors.New("negative entity count")
)

// Plan is the number of entities a run is asked to produce.
type Plan struct {
	Categories int
	Products   int
	Stores     int
	Offers     int
}

// An Adjustment records a requested count the plan could not honor.
type Adjustment struct {
	Field     string
	Requested int
	Applied   int
	Reason    string
}

func (a Adjustment) String() string {
	return fmt.Sprintf(
		"%s: requested %d, applied %d: %s",
		a.Field, a.Requested, a.Applied, a.Reason,
	)
}

// MaxOffers is the size of the candidate pair set.
func (p Plan) MaxOffers() int {
	return p.Stores * p.Products
}

// Normalize checks preconditions and fits the offers count
// into the candidate pair set.
//
// Precondition violations are returned as errors. Capacity
// shortfalls are coerced and reported as adjustments.
func (p Plan) Normalize() (Plan, []Adjustment, error) {
	const op = "Plan.Normalize"

	var errs []error
	for _, c := range []struct {
		field string
		n     int
	}{
		{"categories", p.Categories},
		{"products", p.Products},
		{"stores", p.Stores},
		{"offers", p.Offers},
	} {
		if c.n < 0 {
			errs = append(errs, fmt.Errorf("%w: %s=%d", ErrNegativeCount, c.field, c.n))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return p, nil, fmt.Errorf("%s: %w", op, err)
	}

	if p.Categories == 0 && p.Products > 0 {
		return p, nil, fmt.Errorf(
			"%s: %w: increase categories or set products to 0",
			op, ErrNoCategories,
		)
	}

	var adjs []Adjustment

	if (p.Stores == 0 || p.Products == 0) && p.Offers > 0 {
		adjs = append(adjs, Adjustment{
			Field:     "offers",
			Requested: p.Offers,
			Applied:   0,
			Reason:    "no stores or no products to pair",
		})
		p.Offers = 0
	}

	if limit := p.MaxOffers(); p.Offers > limit {
		adjs = append(adjs, Adjustment{
			Field:     "offers",
			Requested: p.Offers,
			Applied:   limit,
			Reason:    "only that many unique (store, product) pairs exist",
		})
		p.Offers = limit
	}

	return p, adjs, nil
}
