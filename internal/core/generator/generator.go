package generator

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/pkg/retry"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	minRetailPrice = decimal.RequireFromString("2.50")
	maxRetailPrice = decimal.RequireFromString("999.99")
)

// Result is a generated dataset together with the plan it was built from.
type Result struct {
	Dataset     domain.Dataset
	Plan        Plan
	Adjustments []Adjustment
}

// A Generator produces entity populations under uniqueness constraints.
//
// Every uniqueness loop gives up after MaxAttempts consecutive
// rejected candidates and returns [retry.ErrExhausted].
type Generator struct {
	src   *Source
	retry retry.Config
	title cases.Caser
}

func New(src *Source, maxAttempts int) *Generator {
	return &Generator{
		src:   src,
		retry: retry.Config{MaxAttempts: maxAttempts},
		title: cases.Title(language.English),
	}
}

// Generate builds categories, products, stores and offers in that order.
func (g *Generator) Generate(plan Plan) (Result, error) {
	const op = "Generator.Generate"
	log := slog.With("op", op)

	plan, adjs, err := plan.Normalize()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range adjs {
		log.Warn("plan adjusted", "adjustment", a.String())
	}

	var ds domain.Dataset

	ds.Categories, err = g.Categories(plan.Categories)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	ds.Products, err = g.Products(plan.Products, ds.Categories)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	ds.Stores, err = g.Stores(plan.Stores)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	ds.Offers = g.Offers(plan.Offers, ds.Stores, ds.Products)

	return Result{Dataset: ds, Plan: plan, Adjustments: adjs}, nil
}

// Categories returns n categories with pairwise distinct names.
func (g *Generator) Categories(n int) ([]domain.Category, error) {
	const op = "Generator.Categories"

	used := make(map[string]struct{}, n)
	vs := make([]domain.Category, 0, n)

	for len(vs) < n {
		name, err := retry.Until(g.retry, g.categoryName, unused(used))
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %d of %d names: %w", op, len(vs), n, err,
			)
		}
		used[name] = struct{}{}
		vs = append(vs, domain.Category{ID: g.src.NewID(), Name: name})
	}
	return vs, nil
}

// Products returns n products referencing categories chosen at random.
//
// Codes are checksum-valid and unique within the call.
func (g *Generator) Products(
	n int, categories []domain.Category,
) ([]domain.Product, error) {
	const op = "Generator.Products"

	if n > 0 && len(categories) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoCategories)
	}

	r := g.src.rnd
	used := make(map[string]struct{}, n)
	vs := make([]domain.Product, 0, n)

	for len(vs) < n {
		c := categories[r.IntN(len(categories))]
		name := g.productName()
		price := g.uniformPrice(minRetailPrice, maxRetailPrice)

		ean, err := retry.Until(g.retry, g.ean, unused(used))
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %d of %d codes: %w", op, len(vs), n, err,
			)
		}
		used[ean] = struct{}{}

		vs = append(vs, domain.Product{
			ID:          g.src.NewID(),
			CategoryID:  c.ID,
			EAN:         ean,
			Name:        name,
			RetailPrice: price,
		})
	}
	return vs, nil
}

type storeCandidate struct {
	name string
	url  string
}

// Stores returns n stores whose names and urls are pairwise distinct.
func (g *Generator) Stores(n int) ([]domain.Store, error) {
	const op = "Generator.Stores"

	usedNames := make(map[string]struct{}, n)
	usedURLs := make(map[string]struct{}, n)
	vs := make([]domain.Store, 0, n)

	accept := func(c storeCandidate) bool {
		_, nameTaken := usedNames[c.name]
		_, urlTaken := usedURLs[c.url]
		return !nameTaken && !urlTaken
	}

	for len(vs) < n {
		c, err := retry.Until(g.retry, g.storeCandidate, accept)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %d of %d stores: %w", op, len(vs), n, err,
			)
		}
		usedNames[c.name] = struct{}{}
		usedURLs[c.url] = struct{}{}
		vs = append(vs, domain.Store{ID: g.src.NewID(), Name: c.name, URL: c.url})
	}
	return vs, nil
}

func (g *Generator) categoryName() string {
	return truncate(g.title.String(g.src.fake.Word()), domain.MaxNameLen)
}

func (g *Generator) productName() string {
	f := g.src.fake
	name := f.Company() + " " + f.Color() + " " + f.Word()
	return truncate(g.title.String(name), domain.MaxNameLen)
}

func (g *Generator) storeCandidate() storeCandidate {
	f := g.src.fake
	name := truncate(f.Company()+" Store", domain.MaxNameLen)
	url := truncate(
		"https://"+f.DomainName()+"/"+slug(f.Word(), f.Word(), f.Word()),
		domain.MaxURLLen,
	)
	return storeCandidate{name, url}
}

func (g *Generator) ean() string {
	return NewEAN(g.src.rnd)
}

// uniformPrice draws from [lo, hi] rounded to cents.
func (g *Generator) uniformPrice(lo, hi decimal.Decimal) decimal.Decimal {
	f := decimal.NewFromFloat(g.src.rnd.Float64())
	return lo.Add(hi.Sub(lo).Mul(f)).Round(2)
}

func unused(used map[string]struct{}) func(string) bool {
	return func(v string) bool {
		_, ok := used[v]
		return !ok
	}
}

func slug(words ...string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, strings.Fields(strings.ToLower(w))...)
	}
	return strings.Join(parts, "-")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
