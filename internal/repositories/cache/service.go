package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"admitdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService wraps the redis client with JSON payloads and a default TTL.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds a namespaced cache key.
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Center caching

func (s *CacheService) CacheCenter(ctx context.Context, center *models.Center) error {
	if center == nil {
		return errors.New("cannot cache nil center")
	}
	keys := []string{
		s.GenerateKey("center", "id", center.ID),
		s.GenerateKey("center", "code", center.Code),
	}
	for _, key := range keys {
		if err := s.Set(ctx, key, center); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheService) GetCenter(ctx context.Context, key string) (*models.Center, error) {
	var center models.Center
	found, err := s.Get(ctx, key, &center)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &center, nil
}

// InvalidateCenter drops both lookup keys and the superadmin listing.
func (s *CacheService) InvalidateCenter(ctx context.Context, centerID uint, code string) error {
	return s.Delete(ctx,
		s.GenerateKey("center", "id", centerID),
		s.GenerateKey("center", "code", code),
		CenterListKey,
	)
}

// CenterListKey caches the superadmin center listing.
const CenterListKey = "center:list:all"

func (s *CacheService) CacheCenterList(ctx context.Context, list []models.CenterSummary) error {
	return s.Set(ctx, CenterListKey, list)
}

func (s *CacheService) GetCenterList(ctx context.Context) ([]models.CenterSummary, error) {
	var list []models.CenterSummary
	found, err := s.Get(ctx, CenterListKey, &list)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return list, nil
}

// FlushAll flushes all keys from the cache.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
