package product

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/repository/postgres"
	"github.com/mkovardin/webshop/internal/testutil"
)

func Test_ProductService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, fn func(s *ProductService)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewService(&postgres.ProductRepo{DB: tx}))
		})
	}

	params := ProductParams{
		Name:     "Keyboard",
		Category: "peripherals",
		Price:    decimal.RequireFromString("89.90"),
	}

	t.Run("create assigns id", func(t *testing.T) {
		withTx(t, func(s *ProductService) {
			created, err := s.Create(t.Context(), params)

			require.NoError(t, err)
			require.NotEqual(t, uuid.Nil, created.ID, "service must mint the product id")
			require.Equal(t, "Keyboard", created.Name)
		})
	})

	t.Run("update round trip", func(t *testing.T) {
		withTx(t, func(s *ProductService) {
			created, err := s.Create(t.Context(), params)
			require.NoError(t, err)

			updated, err := s.Update(t.Context(), created.ID, ProductParams{
				Name:  "Better keyboard",
				Price: decimal.RequireFromString("99.90"),
			})

			require.NoError(t, err)
			require.Equal(t, created.ID, updated.ID)
			require.Equal(t, "Better keyboard", updated.Name)

			got, err := s.Get(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, "Better keyboard", got.Name)
		})
	})

	t.Run("delete then get", func(t *testing.T) {
		withTx(t, func(s *ProductService) {
			created, err := s.Create(t.Context(), params)
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), created.ID))

			_, err = s.Get(t.Context(), created.ID)
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})
}
