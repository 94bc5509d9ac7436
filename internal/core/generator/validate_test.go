package generator_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) domain.Dataset {
		return generate(t, 5, generator.Plan{
			Categories: 2, Products: 4, Stores: 2, Offers: 6,
		}).Dataset
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, generator.Validate(valid(t)))
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		ds := valid(t)
		ds.Products[0].CategoryID = uuid.New()
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "unknown category")
	})

	t.Run("UnknownOfferRefs", func(t *testing.T) {
		ds := valid(t)
		ds.Offers[0].StoreID = uuid.New()
		ds.Offers[1].ProductID = uuid.New()
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "unknown store")
		assert.Contains(t, err.Error(), "unknown product")
	})

	t.Run("DuplicatePair", func(t *testing.T) {
		ds := valid(t)
		ds.Offers[1].StoreID = ds.Offers[0].StoreID
		ds.Offers[1].ProductID = ds.Offers[0].ProductID
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "duplicate pair")
	})

	t.Run("TooManyOffers", func(t *testing.T) {
		ds := valid(t)
		ds.Stores = ds.Stores[:1]
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "candidate pairs")
	})

	t.Run("BadCodes", func(t *testing.T) {
		ds := valid(t)
		ds.Products[0].EAN = "4006381333932"
		ds.Products[2].EAN = ds.Products[1].EAN
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "invalid ean")
		assert.Contains(t, err.Error(), "duplicate ean")
	})

	t.Run("DuplicateNames", func(t *testing.T) {
		ds := valid(t)
		ds.Categories[1].Name = ds.Categories[0].Name
		ds.Stores[1].URL = ds.Stores[0].URL
		err := generator.Validate(ds)
		require.ErrorIs(t, err, generator.ErrInconsistent)
		assert.Contains(t, err.Error(), "duplicate name")
		assert.Contains(t, err.Error(), "duplicate url")
	})
}
