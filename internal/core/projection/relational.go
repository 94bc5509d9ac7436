package projection

import (
	"github.com/google/uuid"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	CategoryRow struct {
		ID   uuid.UUID
		Name string
	}

	ProductRow struct {
		ID          uuid.UUID
		CategoryID  uuid.UUID
		EAN         string
		Name        string
		RetailPrice decimal.Decimal
	}

	StoreRow struct {
		ID   uuid.UUID
		Name string
		URL  string
	}

	OfferRow struct {
		StoreID   uuid.UUID
		ProductID uuid.UUID
		Price     decimal.Decimal
		Amount    int
	}
)

// Tables holds one row per entity, in load order.
type Tables struct {
	Categories []CategoryRow
	Products   []ProductRow
	Stores     []StoreRow
	Offers     []OfferRow
}

func (r CategoryRow) Values() []any { return []any{r.ID, r.Name} }

func (r ProductRow) Values() []any {
	return []any{r.ID, r.CategoryID, r.EAN, r.Name, r.RetailPrice}
}

func (r StoreRow) Values() []any { return []any{r.ID, r.Name, r.URL} }

func (r OfferRow) Values() []any {
	return []any{r.StoreID, r.ProductID, r.Price, r.Amount}
}

func (t Tables) Counts() domain.Counts {
	return domain.Counts{
		Categories: int64(len(t.Categories)),
		Products:   int64(len(t.Products)),
		Stores:     int64(len(t.Stores)),
		Offers:     int64(len(t.Offers)),
	}
}

// Relational maps every entity onto its table row.
func Relational(ds domain.Dataset) (t Tables) {
	t.Categories = make([]CategoryRow, len(ds.Categories))
	for i, c := range ds.Categories {
		t.Categories[i] = CategoryRow{ID: c.ID, Name: c.Name}
	}

	t.Products = make([]ProductRow, len(ds.Products))
	for i, p := range ds.Products {
		t.Products[i] = ProductRow{
			ID:          p.ID,
			CategoryID:  p.CategoryID,
			EAN:         p.EAN,
			Name:        p.Name,
			RetailPrice: p.RetailPrice,
		}
	}

	t.Stores = make([]StoreRow, len(ds.Stores))
	for i, s := range ds.Stores {
		t.Stores[i] = StoreRow{ID: s.ID, Name: s.Name, URL: s.URL}
	}

	t.Offers = make([]OfferRow, len(ds.Offers))
	for i, o := range ds.Offers {
		t.Offers[i] = OfferRow{
			StoreID:   o.StoreID,
			ProductID: o.ProductID,
			Price:     o.Price,
			Amount:    o.Amount,
		}
	}
	return t
}
