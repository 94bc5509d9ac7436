package generator_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/generator"
	"github.com/niksmo/catalog-seed/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAttempts = 1000

type constFragments struct{}

func (constFragments) Word() string       { return "word" }
func (constFragments) Company() string    { return "Acme" }
func (constFragments) Color() string      { return "Red" }
func (constFragments) DomainName() string { return "acme.test" }

func newGenerator(seed uint64) *generator.Generator {
	return generator.New(generator.NewSource(seed), testAttempts)
}

func generate(t *testing.T, seed uint64, plan generator.Plan) generator.Result {
	t.Helper()
	res, err := newGenerator(seed).Generate(plan)
	require.NoError(t, err)
	require.NoError(t, generator.Validate(res.Dataset))
	return res
}

func TestGenerateScenarios(t *testing.T) {
	t.Run("SmallCatalog", func(t *testing.T) {
		res := generate(t, 42, generator.Plan{
			Categories: 3, Products: 10, Stores: 2, Offers: 5,
		})
		ds := res.Dataset

		require.Len(t, ds.Categories, 3)
		require.Len(t, ds.Products, 10)
		require.Len(t, ds.Stores, 2)
		require.Len(t, ds.Offers, 5)
		assert.Empty(t, res.Adjustments)

		categories := make(map[uuid.UUID]bool)
		for _, c := range ds.Categories {
			categories[c.ID] = true
		}
		products := make(map[uuid.UUID]domain.Product)
		for _, p := range ds.Products {
			assert.True(t, categories[p.CategoryID])
			products[p.ID] = p
		}

		halfCent := decimal.RequireFromString("0.005")
		pairs := make(map[[2]uuid.UUID]bool)
		for _, o := range ds.Offers {
			key := [2]uuid.UUID{o.StoreID, o.ProductID}
			assert.False(t, pairs[key], "duplicate pair")
			pairs[key] = true

			p, ok := products[o.ProductID]
			require.True(t, ok)
			lo := p.RetailPrice.Mul(decimal.NewFromFloat(0.6)).Sub(halfCent)
			hi := p.RetailPrice.Mul(decimal.NewFromFloat(1.2)).Add(halfCent)
			assert.True(t, o.Price.GreaterThanOrEqual(lo), o.Price.String())
			assert.True(t, o.Price.LessThanOrEqual(hi), o.Price.String())
			assert.True(t, o.Price.IsPositive())
			assert.GreaterOrEqual(t, o.Amount, 0)
			assert.LessOrEqual(t, o.Amount, 250)
		}
	})

	t.Run("NoProducts", func(t *testing.T) {
		res := generate(t, 1, generator.Plan{
			Categories: 1, Products: 0, Stores: 3, Offers: 10,
		})
		assert.Empty(t, res.Dataset.Offers)
		assert.Len(t, res.Dataset.Stores, 3)
		assert.Equal(t, 0, res.Plan.Offers)
		require.Len(t, res.Adjustments, 1)
		assert.Equal(t, 10, res.Adjustments[0].Requested)
		assert.Equal(t, 0, res.Adjustments[0].Applied)
	})

	t.Run("CappedToAllPairs", func(t *testing.T) {
		res := generate(t, 7, generator.Plan{
			Categories: 1, Products: 2, Stores: 2, Offers: 100,
		})
		assert.Len(t, res.Dataset.Offers, 4)
		require.Len(t, res.Adjustments, 1)
		assert.Equal(t, generator.Adjustment{
			Field:     "offers",
			Requested: 100,
			Applied:   4,
			Reason:    res.Adjustments[0].Reason,
		}, res.Adjustments[0])
	})

	t.Run("ProductsWithoutCategories", func(t *testing.T) {
		_, err := newGenerator(1).Generate(generator.Plan{Products: 1})
		require.ErrorIs(t, err, generator.ErrNoCategories)
	})

	t.Run("Empty", func(t *testing.T) {
		res := generate(t, 1, generator.Plan{})
		assert.Equal(t, domain.Counts{}, res.Dataset.Counts())
	})
}

func TestGenerateUniqueness(t *testing.T) {
	res := generate(t, 2024, generator.Plan{
		Categories: 40, Products: 500, Stores: 20, Offers: 3000,
	})
	ds := res.Dataset

	require.Len(t, ds.Offers, 3000)

	seen := make(map[string]bool)
	for _, c := range ds.Categories {
		assert.False(t, seen[c.Name], c.Name)
		assert.LessOrEqual(t, len([]rune(c.Name)), 64)
		seen[c.Name] = true
	}

	seen = make(map[string]bool)
	for _, p := range ds.Products {
		assert.False(t, seen[p.EAN], p.EAN)
		assert.True(t, generator.ValidEAN(p.EAN), p.EAN)
		assert.LessOrEqual(t, len([]rune(p.Name)), 64)
		assert.True(t, p.RetailPrice.GreaterThanOrEqual(decimal.RequireFromString("2.50")))
		assert.True(t, p.RetailPrice.LessThanOrEqual(decimal.RequireFromString("999.99")))
		assert.LessOrEqual(t, -p.RetailPrice.Exponent(), int32(2))
		seen[p.EAN] = true
	}

	names := make(map[string]bool)
	urls := make(map[string]bool)
	for _, s := range ds.Stores {
		assert.False(t, names[s.Name], s.Name)
		assert.False(t, urls[s.URL], s.URL)
		assert.LessOrEqual(t, len([]rune(s.Name)), 64)
		assert.LessOrEqual(t, len([]rune(s.URL)), 128)
		assert.Contains(t, s.URL, "https://")
		names[s.Name] = true
		urls[s.URL] = true
	}
}

func TestGenerateDeterminism(t *testing.T) {
	plan := generator.Plan{Categories: 5, Products: 30, Stores: 4, Offers: 60}

	for _, seed := range []uint64{0, 99, math.MaxUint64} {
		t.Run(strconv.FormatUint(seed, 10), func(t *testing.T) {
			a := generate(t, seed, plan)
			b := generate(t, seed, plan)
			assert.Equal(t, a.Dataset, b.Dataset)
		})
	}

	a := generate(t, 99, plan)
	c := generate(t, 100, plan)
	assert.NotEqual(t, a.Dataset.Products, c.Dataset.Products)
}

func TestOffersCoverage(t *testing.T) {
	g := newGenerator(3)
	ds, err := g.Generate(generator.Plan{Categories: 1, Products: 3, Stores: 2})
	require.NoError(t, err)

	t.Run("AllPairs", func(t *testing.T) {
		offers := g.Offers(6, ds.Dataset.Stores, ds.Dataset.Products)
		require.Len(t, offers, 6)

		pairs := make(map[[2]uuid.UUID]bool)
		for _, o := range offers {
			pairs[[2]uuid.UUID{o.StoreID, o.ProductID}] = true
		}
		assert.Len(t, pairs, 6)
	})

	t.Run("Capped", func(t *testing.T) {
		offers := g.Offers(50, ds.Dataset.Stores, ds.Dataset.Products)
		assert.Len(t, offers, 6)
	})

	t.Run("EmptyPopulation", func(t *testing.T) {
		assert.Empty(t, g.Offers(5, nil, ds.Dataset.Products))
		assert.Empty(t, g.Offers(5, ds.Dataset.Stores, nil))
	})
}

func TestExhaustion(t *testing.T) {
	g := generator.New(generator.NewSourceWith(1, constFragments{}), 10)

	t.Run("Categories", func(t *testing.T) {
		vs, err := g.Categories(1)
		require.NoError(t, err)
		assert.Equal(t, "Word", vs[0].Name)

		_, err = g.Categories(2)
		require.ErrorIs(t, err, retry.ErrExhausted)
	})

	t.Run("Stores", func(t *testing.T) {
		vs, err := g.Stores(1)
		require.NoError(t, err)
		assert.Equal(t, "Acme Store", vs[0].Name)
		assert.Equal(t, "https://acme.test/word-word-word", vs[0].URL)

		_, err = g.Stores(2)
		require.ErrorIs(t, err, retry.ErrExhausted)
	})

	t.Run("ProductNames", func(t *testing.T) {
		cats, err := g.Categories(1)
		require.NoError(t, err)

		vs, err := g.Products(3, cats)
		require.NoError(t, err)
		for _, p := range vs {
			assert.Equal(t, "Acme Red Word", p.Name)
		}
	})
}

func TestTruncation(t *testing.T) {
	long := constLong{}
	g := generator.New(generator.NewSourceWith(1, long), 10)

	cats, err := g.Categories(1)
	require.NoError(t, err)
	assert.Len(t, []rune(cats[0].Name), 64)

	stores, err := g.Stores(1)
	require.NoError(t, err)
	assert.Len(t, []rune(stores[0].Name), 64)
	assert.Len(t, []rune(stores[0].URL), 128)
}

type constLong struct{}

func (constLong) Word() string       { return string(make100('w')) }
func (constLong) Company() string    { return string(make100('c')) }
func (constLong) Color() string      { return "Red" }
func (constLong) DomainName() string { return string(make100('d')) + ".test" }

func make100(r rune) []rune {
	rs := make([]rune, 100)
	for i := range rs {
		rs[i] = r
	}
	return rs
}
