// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort          = "8080"
	DefaultDBPath        = "archivesync.db"
	DefaultArchiveURL    = "https://archive.org"
	DefaultConcurrency   = 2
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultRetryCount    = 3
	DefaultRetryBase     = 1 * time.Second
	DefaultUserAgent     = "archivesync/1.0"
	MinRequestInterval   = 750 * time.Millisecond
	DefaultAggregateHour = 2
)

// Match confidence per strategy
const (
	ConfidenceExact     = 100
	ConfidenceAlias     = 90
	ConfidenceMetaphone = 70
	MaxFuzzyConfidence  = 69
)

// DefaultSimilarityThreshold is the minimum Levenshtein similarity for a fuzzy match.
const DefaultSimilarityThreshold = 0.80

// Progress store TTLs
const (
	ProgressTTL        = 1 * time.Hour
	CompletedMarkerTTL = 5 * time.Minute
)

// Unmatched track priority thresholds (occurrence counts)
const (
	PriorityHighThreshold   = 10
	PriorityMediumThreshold = 5
)

// Archive metadata cache
const DefaultCacheTTL = 12 * time.Hour

// Dates
const MetricsDateLayout = "2006-01-02"

// Limits
const (
	MaxRunsListed       = 50
	MaxUnmatchedListed  = 200
	MaxShowsPerImport   = 500
	ImportQueueCapacity = 64
)

// Database tables
const (
	ArtistStatusTable = "artist_status"
	ImportRunsTable   = "import_runs"
	SongsTable        = "songs"
	UnmatchedTable    = "unmatched_tracks"
	DailyMetricsTable = "daily_metrics"
	CacheTable        = "cache"
)
