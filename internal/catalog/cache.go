package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const cacheKey = "catalog:cards"

// CachedProvider wraps another provider with a Redis cache. The catalog
// changes rarely, so a generous TTL keeps database reads off the hot path.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

// NewCachedProvider constructs a cached catalog over the given provider.
func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CachedProvider{inner: inner, client: client, ttl: ttl}
}

// List returns the cached catalog, falling back to the inner provider on a
// miss or a cache failure.
func (p *CachedProvider) List(ctx context.Context) ([]Entry, error) {
	if p.client != nil {
		data, err := p.client.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var entries []Entry
			if err := json.Unmarshal(data, &entries); err == nil {
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get cached catalog: %w", err)
		}
	}

	entries, err := p.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if p.client != nil {
		if payload, err := json.Marshal(entries); err == nil {
			_ = p.client.Set(ctx, cacheKey, payload, p.ttl).Err()
		}
	}

	return entries, nil
}

// Invalidate removes the cached catalog entry if it exists.
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	if err := p.client.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("delete cached catalog: %w", err)
	}

	return nil
}
