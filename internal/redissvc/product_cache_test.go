package redissvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/catalog-service/internal/models"
	"github.com/rogerio-castellano/catalog-service/internal/redissvc"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *repo.InMemoryProductRepository, *redissvc.CachedProductRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repo.NewInMemoryProductRepository()
	cached := redissvc.NewCachedProductRepository(store, redissvc.NewRedisService(rdb, time.Minute), nil)
	return mr, store, cached
}

func mug() models.Product {
	return models.Product{Name: "Mug", Brand: "Acme", Category: "Kitchen", Price: 9.99, ImageURL: "http://x/img.png"}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := redissvc.Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer rdb.Close()

	_, err = redissvc.Connect(context.Background(), "not-a-url")
	assert.Error(t, err)
}

func TestGetAll_PopulatesCache(t *testing.T) {
	mr, _, cached := setupCache(t)
	ctx := context.Background()

	_, err := cached.Create(ctx, mug())
	require.NoError(t, err)

	products, err := cached.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.True(t, mr.Exists("catalog:products:all"))
	assert.Equal(t, time.Minute, mr.TTL("catalog:products:all"))
}

func TestGetAll_EmptyIsNotNil(t *testing.T) {
	_, _, cached := setupCache(t)

	for range 2 {
		products, err := cached.GetAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	}
}

func TestGetByID_ServedFromCache(t *testing.T) {
	_, store, cached := setupCache(t)
	ctx := context.Background()

	created, err := cached.Create(ctx, mug())
	require.NoError(t, err)

	_, err = cached.GetByID(ctx, created.ID)
	require.NoError(t, err)

	// Bypass the decorator so only the cache still holds the product.
	require.NoError(t, store.Delete(ctx, created.ID))

	got, err := cached.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestMutationsInvalidate(t *testing.T) {
	mr, _, cached := setupCache(t)
	ctx := context.Background()

	created, err := cached.Create(ctx, mug())
	require.NoError(t, err)
	_, err = cached.GetAll(ctx)
	require.NoError(t, err)
	_, err = cached.GetByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = cached.Update(ctx, created.ID, models.ProductUpdate{Name: "Cup", Brand: "Acme", Category: "Kitchen", Price: 1})
	require.NoError(t, err)
	assert.False(t, mr.Exists("catalog:products:all"))
	assert.False(t, mr.Exists("catalog:products:1"))

	got, err := cached.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cup", got.Name)
	assert.Equal(t, "http://x/img.png", got.ImageURL)

	require.NoError(t, cached.Delete(ctx, created.ID))
	_, err = cached.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repo.ErrProductNotFound)

	products, err := cached.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestNotFoundPassesThrough(t *testing.T) {
	_, _, cached := setupCache(t)
	ctx := context.Background()

	_, err := cached.GetByID(ctx, 7)
	assert.ErrorIs(t, err, repo.ErrProductNotFound)
	_, err = cached.Update(ctx, 7, models.ProductUpdate{Name: "x"})
	assert.ErrorIs(t, err, repo.ErrProductNotFound)
	assert.ErrorIs(t, cached.Delete(ctx, 7), repo.ErrProductNotFound)
}

func TestRedisDownFallsBackToStore(t *testing.T) {
	mr, _, cached := setupCache(t)
	ctx := context.Background()

	mr.Close()

	created, err := cached.Create(ctx, mug())
	require.NoError(t, err)

	products, err := cached.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{created}, products)

	got, err := cached.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCorruptEntryIsIgnored(t *testing.T) {
	mr, _, cached := setupCache(t)
	ctx := context.Background()

	created, err := cached.Create(ctx, mug())
	require.NoError(t, err)
	require.NoError(t, mr.Set("catalog:products:1", "{not json"))

	got, err := cached.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
