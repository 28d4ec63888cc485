package store

import (
	"database/sql"

	"archivesync/internal/domain"
)

func (db *DB) GetDailyMetrics(date string) (*domain.DailyMetrics, error) {
	query := `SELECT date, imports_count, shows_imported, tracks_imported,
		avg_import_duration_seconds, tracks_matched, tracks_unmatched, match_rate, created_at
		FROM daily_metrics WHERE date = ?`

	m := &domain.DailyMetrics{}
	err := db.Get(m, query, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// InsertDailyMetrics writes one rollup row. The date primary key rejects
// a second insert for the same date, so a racing aggregator fails here
// instead of duplicating.
func (db *DB) InsertDailyMetrics(m *domain.DailyMetrics) error {
	query := `INSERT INTO daily_metrics (date, imports_count, shows_imported, tracks_imported,
		avg_import_duration_seconds, tracks_matched, tracks_unmatched, match_rate)
		VALUES (:date, :imports_count, :shows_imported, :tracks_imported,
		:avg_import_duration_seconds, :tracks_matched, :tracks_unmatched, :match_rate)`

	_, err := db.NamedExec(query, m)
	return err
}

func (db *DB) ListDailyMetrics(limit int) ([]*domain.DailyMetrics, error) {
	query := `SELECT date, imports_count, shows_imported, tracks_imported,
		avg_import_duration_seconds, tracks_matched, tracks_unmatched, match_rate, created_at
		FROM daily_metrics ORDER BY date DESC LIMIT ?`

	var metrics []*domain.DailyMetrics
	err := db.Select(&metrics, query, limit)
	return metrics, err
}

// AggregateRunsOn sums completed runs whose completed_at falls on the
// given date (YYYY-MM-DD).
func (db *DB) AggregateRunsOn(date string) (*domain.RunAggregates, error) {
	query := `SELECT
		COUNT(*) AS imports_count,
		COALESCE(SUM(shows_processed), 0) AS shows_imported,
		COALESCE(SUM(tracks_processed), 0) AS tracks_imported,
		COALESCE(AVG((julianday(completed_at) - julianday(started_at)) * 86400.0), 0) AS avg_duration_seconds
		FROM import_runs
		WHERE status = 'completed' AND date(completed_at) = ?`

	agg := &domain.RunAggregates{}
	err := db.Get(agg, query, date)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// AggregateArtistStatus is a global snapshot over all artist rows,
// deliberately not filtered by date.
func (db *DB) AggregateArtistStatus() (*domain.StatusSnapshot, error) {
	query := `SELECT
		COALESCE(SUM(matched_tracks), 0) AS tracks_matched,
		COALESCE(SUM(unmatched_tracks), 0) AS tracks_unmatched,
		COALESCE(AVG(match_rate), 0) AS avg_match_rate
		FROM artist_status`

	snap := &domain.StatusSnapshot{}
	err := db.Get(snap, query)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
