package generator

import (
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	minPriceFactor = 0.6
	maxPriceFactor = 1.2
)

// Offers samples k distinct (store, product) pairs without replacement.
//
// The candidate set is every pair of the two populations, indexed as
// storeIdx*len(products) + productIdx. A partial Fisher-Yates shuffle over
// that index space draws k of them, so no pair repeats. k is capped to the
// candidate set size and is zero when either population is empty.
//
// Each offer is priced from its product retail price scaled by
// a factor in [0.6, 1.2) and rounded to cents.
func (g *Generator) Offers(
	k int, stores []domain.Store, products []domain.Product,
) []domain.Offer {
	total := len(stores) * len(products)
	k = min(k, total)
	if k <= 0 {
		return nil
	}

	r := g.src.rnd
	swapped := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	vs := make([]domain.Offer, 0, k)
	for i := range k {
		j := i + r.IntN(total-i)
		pick := at(j)
		swapped[j] = at(i)

		s := stores[pick/len(products)]
		p := products[pick%len(products)]

		factor := minPriceFactor + r.Float64()*(maxPriceFactor-minPriceFactor)
		vs = append(vs, domain.Offer{
			StoreID:   s.ID,
			ProductID: p.ID,
			Price:     p.RetailPrice.Mul(decimal.NewFromFloat(factor)).Round(2),
			Amount:    r.IntN(domain.MaxAmount + 1),
		})
	}
	return vs
}
