package progress

import (
	"errors"
	"strings"
	"testing"
	"time"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
	"archivesync/internal/logger"
)

type fakeStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
	fail bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeStore) GetCache(key string) ([]byte, error) {
	if f.fail {
		return nil, errors.New("store down")
	}
	return f.data[key], nil
}

func (f *fakeStore) SetCache(key string, data []byte, ttl time.Duration) error {
	if f.fail {
		return errors.New("store down")
	}
	f.data[key] = data
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) DeleteCachePrefix(prefix string) error {
	if f.fail {
		return errors.New("store down")
	}
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	return nil
}

func newTestTracker(store Store) *Tracker {
	return NewTracker(store, logger.Default())
}

func TestTracker_GetIdle(t *testing.T) {
	tracker := newTestTracker(newFakeStore())
	if entry := tracker.Get("Grateful Dead"); entry != nil {
		t.Errorf("Expected nil for unknown artist, got %+v", entry)
	}
}

func TestTracker_UpdateAndGet(t *testing.T) {
	tracker := newTestTracker(newFakeStore())
	tracker.Update("Grateful Dead", 3, 10, 42, "corr-1")

	entry := tracker.Get("Grateful Dead")
	if entry == nil {
		t.Fatal("Expected progress entry, got nil")
	}
	if entry.Status != domain.ProgressStatusRunning {
		t.Errorf("Expected running status, got %s", entry.Status)
	}
	if entry.Current != 3 || entry.Total != 10 || entry.Processed != 42 {
		t.Errorf("Unexpected counters: %+v", entry)
	}
	if entry.CorrelationID != "corr-1" {
		t.Errorf("Expected correlation id corr-1, got %s", entry.CorrelationID)
	}
}

func TestTracker_KeysAreCaseInsensitive(t *testing.T) {
	tracker := newTestTracker(newFakeStore())
	tracker.Update("Grateful Dead", 1, 2, 5, "")

	if entry := tracker.Get("grateful dead"); entry == nil {
		t.Error("Expected lookup to be case-insensitive on artist name")
	}
}

func TestTracker_ETAExtrapolation(t *testing.T) {
	store := newFakeStore()
	tracker := newTestTracker(store)

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return start }
	tracker.Update("Grateful Dead", 0, 10, 0, "")

	// 2 of 10 shows done after 4 minutes: 2 minutes per show, 16 to go.
	now := start.Add(4 * time.Minute)
	tracker.now = func() time.Time { return now }
	tracker.Update("Grateful Dead", 2, 10, 20, "")

	entry := tracker.Get("Grateful Dead")
	if entry.ETA == "" {
		t.Fatal("Expected an ETA for a running import with progress")
	}
	eta, err := time.Parse(time.RFC3339, entry.ETA)
	if err != nil {
		t.Fatalf("ETA is not RFC3339: %v", err)
	}
	expected := now.Add(16 * time.Minute)
	if !eta.Equal(expected) {
		t.Errorf("Expected ETA %s, got %s", expected.Format(time.RFC3339), entry.ETA)
	}
}

func TestTracker_NoETAWithoutProgress(t *testing.T) {
	tracker := newTestTracker(newFakeStore())

	tracker.Update("Grateful Dead", 0, 10, 0, "")
	if entry := tracker.Get("Grateful Dead"); entry.ETA != "" {
		t.Errorf("Expected no ETA before the first step completes, got %s", entry.ETA)
	}

	tracker.Update("Phish", 3, 0, 0, "")
	if entry := tracker.Get("Phish"); entry.ETA != "" {
		t.Errorf("Expected no ETA when total is unknown, got %s", entry.ETA)
	}
}

func TestTracker_CompleteAndFail(t *testing.T) {
	store := newFakeStore()
	tracker := newTestTracker(store)
	tracker.Update("Grateful Dead", 10, 10, 90, "")

	tracker.Complete("Grateful Dead")
	entry := tracker.Get("Grateful Dead")
	if entry.Status != domain.ProgressStatusCompleted {
		t.Errorf("Expected completed status, got %s", entry.Status)
	}
	if entry.ETA != "" {
		t.Errorf("Expected no ETA after completion, got %s", entry.ETA)
	}
	if _, err := time.Parse(time.RFC3339, entry.CompletedAt); err != nil {
		t.Errorf("Expected a completion timestamp, got %q", entry.CompletedAt)
	}
	// The status key keeps the shared TTL; only the marker is short-lived.
	if ttl := store.ttls[progressKey("Grateful Dead", "status")]; ttl != constants.ProgressTTL {
		t.Errorf("Expected status TTL %v, got %v", constants.ProgressTTL, ttl)
	}
	if ttl := store.ttls[progressKey("Grateful Dead", "completed_at")]; ttl != constants.CompletedMarkerTTL {
		t.Errorf("Expected marker TTL %v, got %v", constants.CompletedMarkerTTL, ttl)
	}

	tracker.Fail("Phish", "archive unreachable")
	entry = tracker.Get("Phish")
	if entry.Status != domain.ProgressStatusFailed {
		t.Errorf("Expected failed status, got %s", entry.Status)
	}
	if entry.Error != "archive unreachable" {
		t.Errorf("Expected error message, got %q", entry.Error)
	}
}

func TestTracker_Clear(t *testing.T) {
	store := newFakeStore()
	tracker := newTestTracker(store)
	tracker.Update("Grateful Dead", 3, 10, 42, "corr-1")
	tracker.Update("Phish", 1, 5, 9, "corr-2")

	tracker.Clear("Grateful Dead")
	if entry := tracker.Get("Grateful Dead"); entry != nil {
		t.Errorf("Expected cleared artist to read nil, got %+v", entry)
	}
	if entry := tracker.Get("Phish"); entry == nil {
		t.Error("Expected other artists to keep their progress")
	}
}

func TestTracker_SwallowsStoreFailures(t *testing.T) {
	store := newFakeStore()
	store.fail = true
	tracker := newTestTracker(store)

	// None of these may panic or surface an error.
	tracker.Update("Grateful Dead", 1, 2, 3, "corr-1")
	tracker.Complete("Grateful Dead")
	tracker.Fail("Grateful Dead", "boom")
	tracker.Clear("Grateful Dead")

	if entry := tracker.Get("Grateful Dead"); entry != nil {
		t.Errorf("Expected nil snapshot when the store is down, got %+v", entry)
	}
}
