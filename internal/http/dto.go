package httpapp

import (
	"time"

	"archivesync/internal/domain"

	"github.com/dustin/go-humanize"
)

type importAccepted struct {
	ArtistName    string `json:"artist_name"`
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
}

// progressResponse decorates the raw progress entry with the artist
// name and a human-readable ETA ("in 12 minutes").
type progressResponse struct {
	ArtistName string `json:"artist_name"`
	*domain.ProgressEntry
	ETARelative string `json:"eta_relative,omitempty"`
}

func newProgressResponse(artistName string, entry *domain.ProgressEntry) progressResponse {
	resp := progressResponse{
		ArtistName:    artistName,
		ProgressEntry: entry,
	}
	if entry.ETA != "" {
		if eta, err := time.Parse(time.RFC3339, entry.ETA); err == nil {
			resp.ETARelative = humanize.Time(eta)
		}
	}
	return resp
}

// unmatchedResponse adds the derived priority bucket to an unmatched
// track row.
type unmatchedResponse struct {
	*domain.UnmatchedTrack
	Priority string `json:"priority"`
}

func newUnmatchedResponse(t *domain.UnmatchedTrack) unmatchedResponse {
	return unmatchedResponse{
		UnmatchedTrack: t,
		Priority:       t.Priority(),
	}
}
