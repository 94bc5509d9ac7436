package postgresql

import (
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/niksmo/catalog-seed/internal/core/domain"
	"github.com/niksmo/catalog-seed/internal/core/generator"
	"github.com/niksmo/catalog-seed/internal/core/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAddrEnv points the integration test at a disposable database,
// e.g. admin:admin@localhost:5432/postgres?sslmode=disable.
const testAddrEnv = "CATALOG_SEED_TEST_PG"

func TestDescribe(t *testing.T) {
	t.Run("Constraint", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "s_stores_url_key"}
		err := describe(pgErr)
		assert.ErrorIs(t, err, pgErr)
		assert.Contains(t, err.Error(), `constraint "s_stores_url_key"`)
	})

	t.Run("Other", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Equal(t, plain, describe(plain))
	})
}

func TestRowsOf(t *testing.T) {
	rows := rowsOf([]projection.StoreRow{
		{Name: "a", URL: "https://a.test"},
		{Name: "b", URL: "https://b.test"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[1].Values()[1])
}

func TestSinkIntegration(t *testing.T) {
	addr, ok := os.LookupEnv(testAddrEnv)
	if !ok {
		t.Skipf("%s is not set", testAddrEnv)
	}

	res, err := generator.New(generator.NewSource(1), 1000).Generate(
		generator.Plan{Categories: 3, Products: 20, Stores: 4, Offers: 30},
	)
	require.NoError(t, err)
	snap, err := projection.Project(res.Dataset)
	require.NoError(t, err)

	s, err := New(t.Context(), addr, true)
	require.NoError(t, err)
	defer s.Close(t.Context())

	require.NoError(t, s.EnsureSchema(t.Context()))

	wr, err := s.Write(t.Context(), snap)
	require.NoError(t, err)
	assert.Equal(t, 57, wr.Inserted)
	assert.Zero(t, wr.Skipped)

	// same snapshot again is a no-op
	wr, err = s.Write(t.Context(), snap)
	require.NoError(t, err)
	assert.Zero(t, wr.Inserted)
	assert.Equal(t, 57, wr.Skipped)

	counts, err := s.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{Categories: 3, Products: 20, Stores: 4, Offers: 30}, counts)
}
