package mongodb

import "github.com/niksmo/catalog-seed/internal/core/projection"

type (
	storeDoc struct {
		ID     string     `bson:"id"`
		Name   string     `bson:"name"`
		URL    string     `bson:"url"`
		Offers []offerDoc `bson:"offers"`
	}

	offerDoc struct {
		Product productDoc `bson:"product"`
		Price   float64    `bson:"price"`
		Amount  int        `bson:"amount"`
	}

	productDoc struct {
		ID          string  `bson:"id"`
		Category    string  `bson:"category"`
		EAN         string  `bson:"ean"`
		Name        string  `bson:"name"`
		RetailPrice float64 `bson:"retailPrice"`
	}
)

func toStoreDoc(d projection.StoreDocument) storeDoc {
	offers := make([]offerDoc, len(d.Offers))
	for i, o := range d.Offers {
		offers[i] = offerDoc{
			Product: productDoc{
				ID:          o.Product.ID.String(),
				Category:    o.Product.Category,
				EAN:         o.Product.EAN,
				Name:        o.Product.Name,
				RetailPrice: o.Product.RetailPrice.InexactFloat64(),
			},
			Price:  o.Price.InexactFloat64(),
			Amount: o.Amount,
		}
	}
	return storeDoc{
		ID:     d.ID.String(),
		Name:   d.Name,
		URL:    d.URL,
		Offers: offers,
	}
}

func toInsertable(docs []projection.StoreDocument) []any {
	vs := make([]any, len(docs))
	for i, d := range docs {
		vs[i] = toStoreDoc(d)
	}
	return vs
}
