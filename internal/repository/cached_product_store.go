package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/redis"
)

const (
	storeCacheProductPrefix = "store:product:"
	storeCacheListPrefix    = "store:list:"
	storeCacheCategoriesKey = "store:categories"

	// DefaultStoreCacheTTL applies when no TTL is configured
	DefaultStoreCacheTTL = 5 * time.Minute
)

// CachedProductStore is a read-through Redis cache in front of a
// ProductStore. Get, List and Categories are cached; every write drops the
// affected product and all cached listings. Cache failures fall back to the
// underlying store.
type CachedProductStore struct {
	next  ProductStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedProductStore wraps next with a cache
func NewCachedProductStore(next ProductStore, client *redis.Client, ttl time.Duration) *CachedProductStore {
	if ttl <= 0 {
		ttl = DefaultStoreCacheTTL
	}
	return &CachedProductStore{next: next, redis: client, ttl: ttl}
}

// Create inserts through the store and drops cached listings
func (s *CachedProductStore) Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.StoredProduct, error) {
	p, err := s.next.Create(ctx, attrs)
	if err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return p, nil
}

// Get serves from cache when possible
func (s *CachedProductStore) Get(ctx context.Context, id string) (*domain.StoredProduct, error) {
	key := storeCacheProductPrefix + id

	var cached domain.StoredProduct
	if s.load(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, p)
	return p, nil
}

// Update writes through and drops the cached product and listings
func (s *CachedProductStore) Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.StoredProduct, error) {
	p, err := s.next.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return p, nil
}

// Delete removes through the store and drops the cached product and listings
func (s *CachedProductStore) Delete(ctx context.Context, id string) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// List serves from cache when the same query was answered recently
func (s *CachedProductStore) List(ctx context.Context, q *StoreQuery) ([]domain.StoredProduct, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	key := storeCacheListPrefix + listCacheKey(q)

	var cached []domain.StoredProduct
	if s.load(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.next.List(ctx, q)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, products)
	return products, nil
}

// PrefixSearch is not cached
func (s *CachedProductStore) PrefixSearch(ctx context.Context, field, prefix string) ([]domain.StoredProduct, error) {
	return s.next.PrefixSearch(ctx, field, prefix)
}

// Categories serves from cache when possible
func (s *CachedProductStore) Categories(ctx context.Context) ([]string, error) {
	var cached []string
	if s.load(ctx, storeCacheCategoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.next.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, storeCacheCategoriesKey, categories)
	return categories, nil
}

func (s *CachedProductStore) load(ctx context.Context, key string, out any) bool {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Get().Warn("store cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Get().Warn("store cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CachedProductStore) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logger.Get().Warn("store cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CachedProductStore) invalidate(ctx context.Context, id string) {
	if err := s.redis.Del(ctx, storeCacheProductPrefix+id).Err(); err != nil {
		logger.Get().Warn("store cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
	s.invalidateLists(ctx)
}

func (s *CachedProductStore) invalidateLists(ctx context.Context) {
	if err := s.redis.DeleteByPattern(ctx, storeCacheListPrefix+"*"); err != nil {
		logger.Get().Warn("store cache invalidation failed", zap.Error(err))
	}
	if err := s.redis.Del(ctx, storeCacheCategoriesKey).Err(); err != nil {
		logger.Get().Warn("store cache invalidation failed", zap.Error(err))
	}
}

func listCacheKey(q *StoreQuery) string {
	if q == nil {
		q = &StoreQuery{}
	}
	active := "any"
	if q.IsActive != nil {
		active = fmt.Sprint(*q.IsActive)
	}
	field, desc := q.sort()
	return fmt.Sprintf("c=%s|b=%s|a=%s|s=%s|d=%t|l=%d", q.Category, q.Brand, active, field, desc, q.Limit)
}
