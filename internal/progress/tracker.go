package progress

import (
	"strconv"
	"strings"
	"time"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
	"archivesync/internal/logger"
)

// Store is the TTL key-value slice of the store the tracker needs.
type Store interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
	DeleteCachePrefix(prefix string) error
}

// Tracker keeps ephemeral per-artist import progress in the TTL store.
// Progress is best-effort: a store failure is logged and swallowed so
// it can never take an import down with it. Fields are written as
// independent keys, so a reader may see a snapshot that mixes two
// consecutive updates.
type Tracker struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewTracker(store Store, log *logger.Logger) *Tracker {
	return &Tracker{
		store: store,
		log:   log.WithComponent("progress"),
		now:   time.Now,
	}
}

func progressKey(artistName, field string) string {
	return "progress:" + strings.ToLower(artistName) + ":" + field
}

func (t *Tracker) set(artistName, field, value string, ttl time.Duration) {
	if err := t.store.SetCache(progressKey(artistName, field), []byte(value), ttl); err != nil {
		t.log.Warn("Failed to write progress field", "artist", artistName, "field", field, "error", err)
	}
}

func (t *Tracker) get(artistName, field string) string {
	data, err := t.store.GetCache(progressKey(artistName, field))
	if err != nil {
		t.log.Warn("Failed to read progress field", "artist", artistName, "field", field, "error", err)
		return ""
	}
	return string(data)
}

// Update records one step of a running import. The first update for an
// artist also records the start time used for ETA extrapolation.
func (t *Tracker) Update(artistName string, current, total, processed int, correlationID string) {
	t.set(artistName, "status", string(domain.ProgressStatusRunning), constants.ProgressTTL)
	t.set(artistName, "current", strconv.Itoa(current), constants.ProgressTTL)
	t.set(artistName, "total", strconv.Itoa(total), constants.ProgressTTL)
	t.set(artistName, "processed", strconv.Itoa(processed), constants.ProgressTTL)
	if correlationID != "" {
		t.set(artistName, "correlation_id", correlationID, constants.ProgressTTL)
	}
	if t.get(artistName, "start_time") == "" {
		t.set(artistName, "start_time", t.now().Format(time.RFC3339), constants.ProgressTTL)
	}
}

// Complete marks the import finished. The status key keeps the shared
// TTL; a separate completed_at marker carries a short one so readers can
// tell a fresh completion from a stale one.
func (t *Tracker) Complete(artistName string) {
	t.set(artistName, "status", string(domain.ProgressStatusCompleted), constants.ProgressTTL)
	t.set(artistName, "completed_at", t.now().Format(time.RFC3339), constants.CompletedMarkerTTL)
}

// Fail marks the import failed and records the error for readers.
func (t *Tracker) Fail(artistName string, errMsg string) {
	t.set(artistName, "status", string(domain.ProgressStatusFailed), constants.ProgressTTL)
	t.set(artistName, "error", errMsg, constants.ProgressTTL)
}

// Clear drops every progress field for an artist.
func (t *Tracker) Clear(artistName string) {
	if err := t.store.DeleteCachePrefix(progressKey(artistName, "")); err != nil {
		t.log.Warn("Failed to clear progress", "artist", artistName, "error", err)
	}
}

// Get returns the current snapshot, or nil when no progress is recorded.
func (t *Tracker) Get(artistName string) *domain.ProgressEntry {
	status := t.get(artistName, "status")
	if status == "" {
		return nil
	}

	entry := &domain.ProgressEntry{
		Status:        domain.ProgressStatus(status),
		CorrelationID: t.get(artistName, "correlation_id"),
		Error:         t.get(artistName, "error"),
	}
	entry.Current, _ = strconv.Atoi(t.get(artistName, "current"))
	entry.Total, _ = strconv.Atoi(t.get(artistName, "total"))
	entry.Processed, _ = strconv.Atoi(t.get(artistName, "processed"))

	if entry.Status == domain.ProgressStatusCompleted {
		entry.CompletedAt = t.get(artistName, "completed_at")
	}
	if entry.Status == domain.ProgressStatusRunning {
		entry.ETA = t.estimateETA(artistName, entry.Current, entry.Total)
	}
	return entry
}

// estimateETA extrapolates linearly from the elapsed time per completed
// step. It returns an empty string until at least one step has finished
// or when the total is unknown.
func (t *Tracker) estimateETA(artistName string, current, total int) string {
	if current <= 0 || total <= 0 || current >= total {
		return ""
	}
	startRaw := t.get(artistName, "start_time")
	if startRaw == "" {
		return ""
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return ""
	}

	now := t.now()
	elapsed := now.Sub(start)
	if elapsed <= 0 {
		return ""
	}
	remaining := time.Duration(float64(elapsed) / float64(current) * float64(total-current))
	return now.Add(remaining).Format(time.RFC3339)
}
