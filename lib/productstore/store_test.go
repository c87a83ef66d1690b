package productstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"medisearch-backend/lib/catalog"
	"medisearch-backend/lib/telemetry"
)

func intp(v int) *int { return &v }

func testStore(t *testing.T) Store {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(Schema)
	require.NoError(t, err)
	return NewStore(sqlite)
}

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:productstore")
	defer cleanup()

	store := testStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		res, err := store.Pull(ctx, catalog.SourceAhumada, "dolor")
		require.NoError(t, err)
		require.Len(t, res, 0)
	}

	now := time.Now()
	err := store.Push(ctx, PushRequest{
		Time:     now,
		Source:   catalog.SourceAhumada,
		Category: "dolor",
		Products: []catalog.Product{
			{
				Source:     catalog.SourceAhumada,
				LocalID:    "83412",
				Name:       "Paracetamol 500 mg",
				OfferPrice: intp(1990),
				Stock:      catalog.StockAvailable,
			},
			{
				Source:  catalog.SourceAhumada,
				LocalID: "83413",
				Name:    "Ibuprofeno 400 mg",
			},
			{
				// not keyable, silently dropped
				Source: catalog.SourceAhumada,
				Name:   "Sin ID",
			},
		},
	})
	require.NoError(t, err)

	res, err := store.Pull(ctx, catalog.SourceAhumada, "dolor")
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "Paracetamol 500 mg", res[0].Name)
	require.NotNil(t, res[0].OfferPrice)
	require.Equal(t, 1990, *res[0].OfferPrice)
	require.Equal(t, catalog.StockAvailable, res[0].Stock)
}

func TestPushReplacesCategory(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:productstore")
	defer cleanup()

	store := testStore(t)
	ctx := context.Background()

	push := func(localIDs ...string) {
		products := make([]catalog.Product, len(localIDs))
		for i, id := range localIDs {
			products[i] = catalog.Product{Source: catalog.SourceCruzVerde, LocalID: id, Name: "p" + id}
		}
		err := store.Push(ctx, PushRequest{
			Time:     time.Now(),
			Source:   catalog.SourceCruzVerde,
			Category: "dermatologia",
			Products: products,
		})
		require.NoError(t, err)
	}

	push("1", "2", "3")
	push("2", "4")

	res, err := store.Pull(ctx, catalog.SourceCruzVerde, "dermatologia")
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, "p2", res[0].Name)
	require.Equal(t, "p4", res[1].Name)
}

func TestPushKeepsOtherCategories(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:productstore")
	defer cleanup()

	store := testStore(t)
	ctx := context.Background()

	for _, category := range []string{"dolor", "vitaminas"} {
		err := store.Push(ctx, PushRequest{
			Time:     time.Now(),
			Source:   catalog.SourceSalcobrand,
			Category: category,
			Products: []catalog.Product{
				{Source: catalog.SourceSalcobrand, LocalID: "1", Name: category},
			},
		})
		require.NoError(t, err)
	}

	res, err := store.Pull(ctx, catalog.SourceSalcobrand, "dolor")
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "dolor", res[0].Name)
}
