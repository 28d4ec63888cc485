package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"archivesync/internal/domain"
)

type mockClient struct {
	searchCalls int
	getCalls    int
	shows       []domain.Show
	show        *domain.Show
	err         error
}

func (m *mockClient) SearchShows(ctx context.Context, artistName string) ([]domain.Show, error) {
	m.searchCalls++
	return m.shows, m.err
}

func (m *mockClient) GetShow(ctx context.Context, identifier string) (*domain.Show, error) {
	m.getCalls++
	return m.show, m.err
}

type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) GetCache(key string) ([]byte, error) {
	return c.data[key], nil
}

func (c *mapCache) SetCache(key string, data []byte, ttl time.Duration) error {
	c.data[key] = data
	return nil
}

func TestCachedClient_SearchShows(t *testing.T) {
	mock := &mockClient{shows: []domain.Show{{Identifier: "gd1977-05-08", Title: "Barton Hall"}}}
	cached := NewCachedClient(mock, newMapCache(), time.Hour)

	for i := 0; i < 3; i++ {
		shows, err := cached.SearchShows(context.Background(), "Grateful Dead")
		if err != nil {
			t.Fatalf("SearchShows failed: %v", err)
		}
		if len(shows) != 1 || shows[0].Identifier != "gd1977-05-08" {
			t.Fatalf("Unexpected shows: %+v", shows)
		}
	}
	if mock.searchCalls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", mock.searchCalls)
	}
}

func TestCachedClient_SearchShows_KeyIsCaseInsensitive(t *testing.T) {
	mock := &mockClient{shows: []domain.Show{{Identifier: "gd1977-05-08"}}}
	cached := NewCachedClient(mock, newMapCache(), time.Hour)

	if _, err := cached.SearchShows(context.Background(), "Grateful Dead"); err != nil {
		t.Fatalf("SearchShows failed: %v", err)
	}
	if _, err := cached.SearchShows(context.Background(), "GRATEFUL DEAD"); err != nil {
		t.Fatalf("SearchShows failed: %v", err)
	}
	if mock.searchCalls != 1 {
		t.Errorf("Expected a shared cache entry across casings, got %d upstream calls", mock.searchCalls)
	}
}

func TestCachedClient_GetShow(t *testing.T) {
	mock := &mockClient{show: &domain.Show{
		Identifier: "gd1977-05-08",
		Tracks:     []domain.CandidateTrack{{Title: "Scarlet Begonias", LengthSeconds: 552}},
	}}
	cached := NewCachedClient(mock, newMapCache(), time.Hour)

	for i := 0; i < 2; i++ {
		show, err := cached.GetShow(context.Background(), "gd1977-05-08")
		if err != nil {
			t.Fatalf("GetShow failed: %v", err)
		}
		if show == nil || len(show.Tracks) != 1 {
			t.Fatalf("Unexpected show: %+v", show)
		}
	}
	if mock.getCalls != 1 {
		t.Errorf("Expected 1 upstream call, got %d", mock.getCalls)
	}
}

func TestCachedClient_GetShow_CachesNotFound(t *testing.T) {
	mock := &mockClient{show: nil}
	cached := NewCachedClient(mock, newMapCache(), time.Hour)

	for i := 0; i < 2; i++ {
		show, err := cached.GetShow(context.Background(), "does-not-exist")
		if err != nil {
			t.Fatalf("GetShow failed: %v", err)
		}
		if show != nil {
			t.Fatalf("Expected nil show, got %+v", show)
		}
	}
	if mock.getCalls != 1 {
		t.Errorf("Expected the miss to be cached, got %d upstream calls", mock.getCalls)
	}
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	mock := &mockClient{err: errors.New("archive unreachable")}
	cached := NewCachedClient(mock, newMapCache(), time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := cached.SearchShows(context.Background(), "Grateful Dead"); err == nil {
			t.Fatal("Expected an error")
		}
	}
	if mock.searchCalls != 2 {
		t.Errorf("Expected errors to pass through uncached, got %d upstream calls", mock.searchCalls)
	}
}
