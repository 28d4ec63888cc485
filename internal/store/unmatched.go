package store

import (
	"database/sql"
	"time"

	"archivesync/internal/domain"
)

// RecordUnmatched upserts one unmatched occurrence: a repeat title bumps
// occurrence_count, a new title starts at 1.
func (db *DB) RecordUnmatched(artistName, trackTitle string) error {
	query := `
		INSERT INTO unmatched_tracks (artist_name, track_title, occurrence_count, first_seen_at, last_seen_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(artist_name, track_title) DO UPDATE SET
			occurrence_count = occurrence_count + 1,
			last_seen_at = excluded.last_seen_at`

	now := time.Now()
	_, err := db.Exec(query, artistName, trackTitle, now, now)
	return err
}

func (db *DB) GetUnmatched(artistName, trackTitle string) (*domain.UnmatchedTrack, error) {
	query := `SELECT id, artist_name, track_title, occurrence_count, first_seen_at, last_seen_at
		FROM unmatched_tracks WHERE artist_name = ? AND track_title = ?`

	track := &domain.UnmatchedTrack{}
	err := db.Get(track, query, artistName, trackTitle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (db *DB) ListUnmatchedByArtist(artistName string, limit int) ([]*domain.UnmatchedTrack, error) {
	query := `SELECT id, artist_name, track_title, occurrence_count, first_seen_at, last_seen_at
		FROM unmatched_tracks WHERE artist_name = ?
		ORDER BY occurrence_count DESC, track_title ASC LIMIT ?`

	var tracks []*domain.UnmatchedTrack
	err := db.Select(&tracks, query, artistName, limit)
	return tracks, err
}

func (db *DB) DeleteUnmatched(artistName, trackTitle string) error {
	_, err := db.Exec(`DELETE FROM unmatched_tracks WHERE artist_name = ? AND track_title = ?`,
		artistName, trackTitle)
	return err
}
