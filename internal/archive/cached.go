package archive

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"archivesync/internal/domain"
)

type ClientInterface interface {
	SearchShows(ctx context.Context, artistName string) ([]domain.Show, error)
	GetShow(ctx context.Context, identifier string) (*domain.Show, error)
}

var _ ClientInterface = (*Client)(nil)
var _ ClientInterface = (*CachedClient)(nil)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// CachedClient wraps a Client with a read-through cache. Item metadata
// on Archive.org is effectively immutable, so cache errors are ignored
// and the wrapped client is always the fallback.
type CachedClient struct {
	client ClientInterface
	cache  Cache
	ttl    time.Duration
}

func NewCachedClient(client ClientInterface, cache Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  cache,
		ttl:    ttl,
	}
}

type cachedShows struct {
	Shows []domain.Show `json:"shows"`
}

type cachedShow struct {
	Show     *domain.Show `json:"show"`
	NotFound bool         `json:"not_found"`
}

func (c *CachedClient) SearchShows(ctx context.Context, artistName string) ([]domain.Show, error) {
	cacheKey := "archive:shows:" + strings.ToLower(artistName)

	if data, err := c.cache.GetCache(cacheKey); err == nil && data != nil {
		var cached cachedShows
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return cached.Shows, nil
		}
	}

	shows, err := c.client.SearchShows(ctx, artistName)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(cachedShows{Shows: shows}); marshalErr == nil {
		_ = c.cache.SetCache(cacheKey, data, c.ttl)
	}
	return shows, nil
}

func (c *CachedClient) GetShow(ctx context.Context, identifier string) (*domain.Show, error) {
	cacheKey := "archive:show:" + identifier

	if data, err := c.cache.GetCache(cacheKey); err == nil && data != nil {
		var cached cachedShow
		if unmarshalErr := json.Unmarshal(data, &cached); unmarshalErr == nil {
			return cached.Show, nil
		}
	}

	show, err := c.client.GetShow(ctx, identifier)
	if err != nil {
		return nil, err
	}

	cached := cachedShow{Show: show}
	if show == nil {
		cached.NotFound = true
	}
	if data, marshalErr := json.Marshal(cached); marshalErr == nil {
		_ = c.cache.SetCache(cacheKey, data, c.ttl)
	}
	return show, nil
}
