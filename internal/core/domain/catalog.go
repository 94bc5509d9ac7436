package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLen = 64
	MaxURLLen  = 128
	EANLen     = 13
	MaxAmount  = 250
)

type (
	Category struct {
		ID   uuid.UUID
		Name string
	}

	Product struct {
		ID          uuid.UUID
		CategoryID  uuid.UUID
		EAN         string
		Name        string
		RetailPrice decimal.Decimal
	}

	Store struct {
		ID   uuid.UUID
		Name string
		URL  string
	}

	Offer struct {
		StoreID   uuid.UUID
		ProductID uuid.UUID
		Price     decimal.Decimal
		Amount    int
	}
)

// Dataset is the whole generated catalog of a single run.
//
// It is built once and never mutated afterwards.
type Dataset struct {
	Categories []Category
	Products   []Product
	Stores     []Store
	Offers     []Offer
}

func (d Dataset) Counts() Counts {
	return Counts{
		Categories: int64(len(d.Categories)),
		Products:   int64(len(d.Products)),
		Stores:     int64(len(d.Stores)),
		Offers:     int64(len(d.Offers)),
	}
}

// Counts holds per-entity totals, either generated or read back from a sink.
//
// A negative value means the sink does not keep that entity.
type Counts struct {
	Categories int64
	Products   int64
	Stores     int64
	Offers     int64
}
