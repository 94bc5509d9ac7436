package projection

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/shopspring/decimal"
)

var ErrUnresolved = errors.New("unresolved reference")

type (
	// StoreDocument is a store with its offers embedded.
	StoreDocument struct {
		ID     uuid.UUID
		Name   string
		URL    string
		Offers []OfferDocument
	}

	// OfferDocument embeds a copy of the offered product.
	OfferDocument struct {
		Product ProductSnapshot
		Price   decimal.Decimal
		Amount  int
	}

	// ProductSnapshot is the product as it was at projection time,
	// with the category id resolved to the category name.
	ProductSnapshot struct {
		ID          uuid.UUID
		Category    string
		EAN         string
		Name        string
		RetailPrice decimal.Decimal
	}
)

// Documents groups offers by store and copies the referenced products in.
//
// Every store gets a document, stores without offers get an empty list.
// Offers keep their dataset order. The copies are not kept in sync with
// anything after projection.
func Documents(ds domain.Dataset) ([]StoreDocument, error) {
	const op = "projection.Documents"

	categories := make(map[uuid.UUID]string, len(ds.Categories))
	for _, c := range ds.Categories {
		categories[c.ID] = c.Name
	}

	products := make(map[uuid.UUID]ProductSnapshot, len(ds.Products))
	for _, p := range ds.Products {
		name, ok := categories[p.CategoryID]
		if !ok {
			return nil, fmt.Errorf(
				"%s: %w: product %s category %s",
				op, ErrUnresolved, p.ID, p.CategoryID,
			)
		}
		products[p.ID] = ProductSnapshot{
			ID:          p.ID,
			Category:    name,
			EAN:         p.EAN,
			Name:        p.Name,
			RetailPrice: p.RetailPrice,
		}
	}

	byStore := make(map[uuid.UUID][]OfferDocument, len(ds.Stores))
	for _, s := range ds.Stores {
		byStore[s.ID] = []OfferDocument{}
	}

	for _, o := range ds.Offers {
		if _, ok := byStore[o.StoreID]; !ok {
			return nil, fmt.Errorf(
				"%s: %w: offer store %s", op, ErrUnresolved, o.StoreID,
			)
		}
		p, ok := products[o.ProductID]
		if !ok {
			return nil, fmt.Errorf(
				"%s: %w: offer product %s", op, ErrUnresolved, o.ProductID,
			)
		}
		byStore[o.StoreID] = append(byStore[o.StoreID], OfferDocument{
			Product: p,
			Price:   o.Price,
			Amount:  o.Amount,
		})
	}

	docs := make([]StoreDocument, 0, len(ds.Stores))
	for _, s := range ds.Stores {
		docs = append(docs, StoreDocument{
			ID:     s.ID,
			Name:   s.Name,
			URL:    s.URL,
			Offers: byStore[s.ID],
		})
	}
	return docs, nil
}

// OfferCount is the total number of embedded offers.
func OfferCount(docs []StoreDocument) (n int) {
	for _, d := range docs {
		n += len(d.Offers)
	}
	return n
}
