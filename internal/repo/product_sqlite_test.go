package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rogerio-castellano/catalog-service/internal/db"
	"github.com/rogerio-castellano/catalog-service/internal/models"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteRepo(t *testing.T) *repo.SQLProductRepository {
	t.Helper()
	database, err := db.Connect(db.SQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.EnsureSchema(context.Background(), database, db.SQLite))
	return repo.NewSQLProductRepository(database, db.SQLite, 0)
}

func TestSQLite_CreateThenList(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	in := models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, ImageURL: "http://x/img.png"}
	created, err := r.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	products, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	in.ID = created.ID
	assert.Equal(t, in, products[0])
}

func TestSQLite_UpdateKeepsImageWhenAbsent(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	created, err := r.Create(ctx, models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, ImageURL: "/uploads/a.png"})
	require.NoError(t, err)

	updated, err := r.Update(ctx, created.ID, models.ProductUpdate{Name: "Cup", Brand: "Umbrella", Category: "Home", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Cup", updated.Name)
	assert.Equal(t, "/uploads/a.png", updated.ImageURL)

	img := "/uploads/b.png"
	updated, err = r.Update(ctx, created.ID, models.ProductUpdate{Name: "Cup", Brand: "Umbrella", Category: "Home", Price: 3, ImageURL: &img})
	require.NoError(t, err)
	assert.Equal(t, img, updated.ImageURL)

	stored, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestSQLite_NotFoundLeavesStoreUnchanged(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	_, err := r.Create(ctx, models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 1, ImageURL: "u"})
	require.NoError(t, err)
	before, err := r.GetAll(ctx)
	require.NoError(t, err)

	_, err = r.Update(ctx, 999, models.ProductUpdate{Name: "x", Brand: "y", Category: "z", Price: 2})
	assert.ErrorIs(t, err, repo.ErrProductNotFound)
	assert.ErrorIs(t, r.Delete(ctx, 999), repo.ErrProductNotFound)

	after, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSQLite_DeleteRemovesRecord(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	a, _ := r.Create(ctx, models.Product{Name: "A", Brand: "b", Category: "c", Price: 1, ImageURL: "u"})
	b, _ := r.Create(ctx, models.Product{Name: "B", Brand: "b", Category: "c", Price: 2, ImageURL: "u"})

	require.NoError(t, r.Delete(ctx, a.ID))

	products, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, b.ID, products[0].ID)
}

func TestSQLite_DuplicatesAllowed(t *testing.T) {
	r := setupSQLiteRepo(t)
	ctx := context.Background()

	p := models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, ImageURL: "u"}
	first, err := r.Create(ctx, p)
	require.NoError(t, err)
	second, err := r.Create(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
