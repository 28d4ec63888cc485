package store

import (
	"database/sql"
	"time"

	"archivesync/internal/domain"
)

// ArtistDeltas is one batch of counter increments for an artist.
type ArtistDeltas struct {
	ImportedTracks  int
	MatchedTracks   int
	UnmatchedTracks int
	DownloadedShows int
	DurationSeconds float64
}

// ApplyArtistDeltas upserts the artist row and applies all counter
// increments in a single statement, recomputing match_rate from the
// post-update counters. Keeping it one statement is what makes
// concurrent batches for the same artist safe from lost updates.
func (db *DB) ApplyArtistDeltas(artistName string, d ArtistDeltas) error {
	matchRate := 0.0
	if d.MatchedTracks+d.UnmatchedTracks > 0 {
		matchRate = roundRate(float64(d.MatchedTracks) * 100.0 / float64(d.MatchedTracks+d.UnmatchedTracks))
	}

	query := `
		INSERT INTO artist_status (
			artist_name, imported_tracks, matched_tracks, unmatched_tracks,
			downloaded_shows, total_duration_seconds, match_rate, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(artist_name) DO UPDATE SET
			imported_tracks = imported_tracks + excluded.imported_tracks,
			matched_tracks = matched_tracks + excluded.matched_tracks,
			unmatched_tracks = unmatched_tracks + excluded.unmatched_tracks,
			downloaded_shows = downloaded_shows + excluded.downloaded_shows,
			total_duration_seconds = total_duration_seconds + excluded.total_duration_seconds,
			match_rate = ROUND(CASE
				WHEN (matched_tracks + excluded.matched_tracks + unmatched_tracks + excluded.unmatched_tracks) = 0 THEN 0
				ELSE (matched_tracks + excluded.matched_tracks) * 100.0 /
					(matched_tracks + excluded.matched_tracks + unmatched_tracks + excluded.unmatched_tracks)
			END, 2),
			updated_at = excluded.updated_at`

	now := time.Now()
	_, err := db.Exec(query,
		artistName, d.ImportedTracks, d.MatchedTracks, d.UnmatchedTracks,
		d.DownloadedShows, d.DurationSeconds, matchRate, now, now)
	return err
}

func (db *DB) GetArtistStatus(artistName string) (*domain.ArtistStatus, error) {
	query := `SELECT artist_name, imported_tracks, matched_tracks, unmatched_tracks,
		downloaded_shows, total_duration_seconds, match_rate, created_at, updated_at
		FROM artist_status WHERE artist_name = ?`

	status := &domain.ArtistStatus{}
	err := db.Get(status, query, artistName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (db *DB) ListArtistStatus() ([]*domain.ArtistStatus, error) {
	query := `SELECT artist_name, imported_tracks, matched_tracks, unmatched_tracks,
		downloaded_shows, total_duration_seconds, match_rate, created_at, updated_at
		FROM artist_status ORDER BY artist_name ASC`

	var statuses []*domain.ArtistStatus
	err := db.Select(&statuses, query)
	return statuses, err
}

// DeleteArtistStatus removes an artist row. Only explicit admin action
// goes through here; imports never delete.
func (db *DB) DeleteArtistStatus(artistName string) error {
	_, err := db.Exec(`DELETE FROM artist_status WHERE artist_name = ?`, artistName)
	return err
}

// ListArtistStats assembles lineup statistics from the catalog and
// status tables. Artists present in only one of the two still appear;
// the missing statistics stay nil.
func (db *DB) ListArtistStats() ([]domain.ArtistStats, error) {
	query := `
		SELECT
			COALESCE(s.artist_name, a.artist_name) AS name,
			s.song_count,
			a.downloaded_shows,
			a.total_duration_seconds
		FROM (SELECT artist_name, COUNT(*) AS song_count FROM songs GROUP BY artist_name) s
		FULL OUTER JOIN artist_status a ON a.artist_name = s.artist_name
		ORDER BY name ASC`

	rows, err := db.Queryx(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.ArtistStats
	for rows.Next() {
		var (
			name      string
			songCount sql.NullInt64
			shows     sql.NullInt64
			duration  sql.NullFloat64
		)
		if err := rows.Scan(&name, &songCount, &shows, &duration); err != nil {
			return nil, err
		}
		entry := domain.ArtistStats{Name: name}
		if songCount.Valid {
			n := int(songCount.Int64)
			entry.SongCount = &n
		}
		if shows.Valid {
			n := int(shows.Int64)
			entry.TotalShows = &n
		}
		if duration.Valid {
			h := duration.Float64 / 3600.0
			entry.TotalHours = &h
		}
		stats = append(stats, entry)
	}
	return stats, rows.Err()
}

func roundRate(rate float64) float64 {
	return float64(int(rate*100+0.5)) / 100
}
