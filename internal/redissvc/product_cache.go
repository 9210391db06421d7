package redissvc

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rogerio-castellano/catalog-service/internal/models"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"go.uber.org/zap"
)

const (
	allProductsKey   = "catalog:products:all"
	productKeyPrefix = "catalog:products:"
)

func productKey(id int) string {
	return productKeyPrefix + strconv.Itoa(id)
}

// CachedProductRepository serves reads from Redis and falls back to the
// wrapped repository on a miss. Every successful mutation drops the list
// entry and the entry of the affected product. Redis failures are logged
// and never fail the request.
type CachedProductRepository struct {
	next  repo.ProductRepository
	cache *RedisService
	log   *zap.Logger
}

func NewCachedProductRepository(next repo.ProductRepository, cache *RedisService, log *zap.Logger) *CachedProductRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedProductRepository{next: next, cache: cache, log: log}
}

func (c *CachedProductRepository) get(ctx context.Context, key string, dst any) bool {
	data, err := c.cache.Rdb().Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedProductRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.cache.Rdb().Set(ctx, key, data, c.cache.TTL()).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id int) {
	keys := []string{allProductsKey}
	if id > 0 {
		keys = append(keys, productKey(id))
	}
	if err := c.cache.Rdb().Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		c.log.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	created, err := c.next.Create(ctx, product)
	if err != nil {
		return created, err
	}
	c.invalidate(ctx, 0)
	return created, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if c.get(ctx, allProductsKey, &products) && products != nil {
		return products, nil
	}

	products, err := c.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, allProductsKey, products)
	return products, nil
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (models.Product, error) {
	var product models.Product
	if c.get(ctx, productKey(id), &product) {
		return product, nil
	}

	product, err := c.next.GetByID(ctx, id)
	if err != nil {
		return product, err
	}
	c.set(ctx, productKey(id), product)
	return product, nil
}

func (c *CachedProductRepository) Update(ctx context.Context, id int, update models.ProductUpdate) (models.Product, error) {
	updated, err := c.next.Update(ctx, id, update)
	if err != nil {
		return updated, err
	}
	c.invalidate(ctx, id)
	return updated, nil
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}
