package domain

import (
	"time"

	"archivesync/internal/constants"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type ProgressStatus string

const (
	ProgressStatusIdle      ProgressStatus = "idle"
	ProgressStatusRunning   ProgressStatus = "running"
	ProgressStatusCompleted ProgressStatus = "completed"
	ProgressStatusFailed    ProgressStatus = "failed"
)

// ArtistStatus tracks cumulative import counters for one artist.
// Counters are applied as atomic deltas; MatchRate is recomputed
// inside the same statement that applies them.
type ArtistStatus struct {
	ArtistName           string    `json:"artist_name" db:"artist_name"`
	ImportedTracks       int       `json:"imported_tracks" db:"imported_tracks"`
	MatchedTracks        int       `json:"matched_tracks" db:"matched_tracks"`
	UnmatchedTracks      int       `json:"unmatched_tracks" db:"unmatched_tracks"`
	DownloadedShows      int       `json:"downloaded_shows" db:"downloaded_shows"`
	TotalDurationSeconds float64   `json:"total_duration_seconds" db:"total_duration_seconds"`
	MatchRate            float64   `json:"match_rate" db:"match_rate"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// ImportRun is one import invocation. It transitions from running to
// completed or failed exactly once and is immutable after that.
type ImportRun struct {
	ID              int64      `json:"id" db:"id"`
	UUID            string     `json:"uuid" db:"uuid"`
	CorrelationID   string     `json:"correlation_id" db:"correlation_id"`
	ArtistName      string     `json:"artist_name" db:"artist_name"`
	Status          RunStatus  `json:"status" db:"status"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ShowsProcessed  int        `json:"shows_processed" db:"shows_processed"`
	TracksProcessed int        `json:"tracks_processed" db:"tracks_processed"`
}

// UnmatchedTrack records a track title that failed every match strategy.
// Priority is derived from the occurrence count at read time, never stored.
type UnmatchedTrack struct {
	ID              int64     `json:"id" db:"id"`
	ArtistName      string    `json:"artist_name" db:"artist_name"`
	TrackTitle      string    `json:"track_title" db:"track_title"`
	OccurrenceCount int       `json:"occurrence_count" db:"occurrence_count"`
	FirstSeenAt     time.Time `json:"first_seen_at" db:"first_seen_at"`
	LastSeenAt      time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// Priority buckets unmatched titles by how often they recur.
func (u *UnmatchedTrack) Priority() string {
	switch {
	case u.OccurrenceCount > constants.PriorityHighThreshold:
		return "high"
	case u.OccurrenceCount > constants.PriorityMediumThreshold:
		return "medium"
	default:
		return "low"
	}
}

// DailyMetrics is an immutable per-date rollup. The date primary key
// makes a concurrent double-aggregation fail on insert.
type DailyMetrics struct {
	Date                     string    `json:"date" db:"date"`
	ImportsCount             int       `json:"imports_count" db:"imports_count"`
	ShowsImported            int       `json:"shows_imported" db:"shows_imported"`
	TracksImported           int       `json:"tracks_imported" db:"tracks_imported"`
	AvgImportDurationSeconds int       `json:"avg_import_duration_seconds" db:"avg_import_duration_seconds"`
	TracksMatched            int       `json:"tracks_matched" db:"tracks_matched"`
	TracksUnmatched          int       `json:"tracks_unmatched" db:"tracks_unmatched"`
	MatchRate                float64   `json:"match_rate" db:"match_rate"`
	CreatedAt                time.Time `json:"created_at" db:"created_at"`
}

// ProgressEntry is the ephemeral progress snapshot kept in the TTL store.
// Fields are written independently, so readers may observe a partially
// updated but internally consistent snapshot.
type ProgressEntry struct {
	Status        ProgressStatus `json:"status"`
	Current       int            `json:"current"`
	Total         int            `json:"total"`
	Processed     int            `json:"processed"`
	ETA           string         `json:"eta"`
	CorrelationID string         `json:"correlation_id"`
	Error         string         `json:"error"`
	CompletedAt   string         `json:"completed_at,omitempty"`
}

// IdleProgress is the payload returned when no progress has been recorded.
func IdleProgress() *ProgressEntry {
	return &ProgressEntry{Status: ProgressStatusIdle}
}

// Song is a canonical catalog entry for one artist.
type Song struct {
	ID              int64  `json:"id" db:"id"`
	ArtistName      string `json:"artist_name" db:"artist_name"`
	Title           string `json:"title" db:"title"`
	NormalizedTitle string `json:"normalized_title" db:"normalized_title"`
}

// SongAlias maps a known alternate title to a canonical song title.
// Example: "Scarlet > Fire" -> "Scarlet Begonias".
type SongAlias struct {
	ID              int64  `json:"id" db:"id"`
	ArtistName      string `json:"artist_name" db:"artist_name"`
	Alias           string `json:"alias" db:"alias"`
	NormalizedAlias string `json:"normalized_alias" db:"normalized_alias"`
	CanonicalTitle  string `json:"canonical_title" db:"canonical_title"`
}

type MatchType string

const (
	MatchTypeExact     MatchType = "exact"
	MatchTypeAlias     MatchType = "alias"
	MatchTypeMetaphone MatchType = "metaphone"
	MatchTypeFuzzy     MatchType = "fuzzy"
	MatchTypeNone      MatchType = "none"
)

// CandidateTrack is an externally-sourced track awaiting reconciliation.
type CandidateTrack struct {
	Title         string  `json:"title"`
	SourceFile    string  `json:"source_file,omitempty"`
	LengthSeconds float64 `json:"length_seconds,omitempty"`
}

// MatchResult is the outcome of matching one candidate track.
type MatchResult struct {
	Title          string    `json:"title"`
	Matched        bool      `json:"matched"`
	MatchType      MatchType `json:"match_type"`
	CanonicalTitle string    `json:"canonical_title,omitempty"`
	Confidence     int       `json:"confidence"`
}

// ReconcileResult summarizes one reconciliation batch.
type ReconcileResult struct {
	Matched   int           `json:"matched"`
	Unmatched int           `json:"unmatched"`
	Skipped   int           `json:"skipped"`
	Details   []MatchResult `json:"details"`
}

// ArtistStats carries the rankable statistics for a lineup entry.
// Nil values mean the statistic is unknown and compare as zero.
type ArtistStats struct {
	Name       string   `json:"name"`
	SongCount  *int     `json:"song_count,omitempty"`
	TotalShows *int     `json:"total_shows,omitempty"`
	TotalHours *float64 `json:"total_hours,omitempty"`
}

// Show is one Archive.org item for an artist.
type Show struct {
	Identifier string           `json:"identifier"`
	Title      string           `json:"title"`
	Date       string           `json:"date,omitempty"`
	Tracks     []CandidateTrack `json:"tracks,omitempty"`
}

// RunAggregates sums completed import runs for one date.
type RunAggregates struct {
	ImportsCount       int     `db:"imports_count"`
	ShowsImported      int     `db:"shows_imported"`
	TracksImported     int     `db:"tracks_imported"`
	AvgDurationSeconds float64 `db:"avg_duration_seconds"`
}

// StatusSnapshot is a global aggregate over all artist status rows.
type StatusSnapshot struct {
	TracksMatched   int     `db:"tracks_matched"`
	TracksUnmatched int     `db:"tracks_unmatched"`
	AvgMatchRate    float64 `db:"avg_match_rate"`
}
