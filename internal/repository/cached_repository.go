package repository

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/cache"
	"product-catalog/internal/domain"

	"go.uber.org/zap"
)

const allProductsKey = "products:all"

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

type cachedProductRepository struct {
	repo   ProductRepository
	cache  *cache.RedisCache
	logger *zap.Logger
}

// NewCachedProductRepository adds a Redis read-through cache in front of repo.
// Cache failures are logged and fall back to repo.
func NewCachedProductRepository(repo ProductRepository, c *cache.RedisCache, logger *zap.Logger) ProductRepository {
	return &cachedProductRepository{
		repo:   repo,
		cache:  c,
		logger: logger,
	}
}

func (r *cachedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.repo.Create(ctx, product); err != nil {
		return err
	}

	r.invalidate(ctx, allProductsKey)
	return nil
}

func (r *cachedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.repo.Update(ctx, product); err != nil {
		return err
	}

	r.invalidate(ctx, productKey(product.ID), allProductsKey)
	return nil
}

func (r *cachedProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, productKey(id), allProductsKey)
	return nil
}

func (r *cachedProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)

	var product domain.Product
	err := r.cache.Get(ctx, key, &product)
	if err == nil {
		r.logger.Debug("Cache hit", zap.String("key", key))
		return &product, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	found, err := r.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, found); err != nil {
		r.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
	}

	return found, nil
}

func (r *cachedProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.cache.Get(ctx, allProductsKey, &products)
	if err == nil {
		r.logger.Debug("Cache hit", zap.String("key", allProductsKey))
		return products, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Cache read failed", zap.String("key", allProductsKey), zap.Error(err))
	}

	products, err = r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, allProductsKey, products); err != nil {
		r.logger.Warn("Failed to cache product list", zap.Error(err))
	}

	return products, nil
}

func (r *cachedProductRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.logger.Warn("Failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
