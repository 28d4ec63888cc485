package store

import (
	"database/sql"
	"fmt"
	"time"

	"archivesync/internal/domain"
)

// timeLayout keeps run timestamps in a form SQLite's date functions can
// parse; the driver's default RFC3339Nano text is opaque to date() and
// julianday(), which the daily rollup queries depend on.
const timeLayout = "2006-01-02 15:04:05"

func (db *DB) CreateRun(run *domain.ImportRun) error {
	query := `INSERT INTO import_runs (uuid, correlation_id, artist_name, status, started_at, shows_processed, tracks_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := db.Exec(query, run.UUID, run.CorrelationID, run.ArtistName,
		run.Status, run.StartedAt.UTC().Format(timeLayout), run.ShowsProcessed, run.TracksProcessed)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

func (db *DB) GetRun(id int64) (*domain.ImportRun, error) {
	query := `SELECT id, uuid, correlation_id, artist_name, status, started_at, completed_at,
		shows_processed, tracks_processed FROM import_runs WHERE id = ?`

	run := &domain.ImportRun{}
	err := db.Get(run, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (db *DB) GetRunByCorrelationID(correlationID string) (*domain.ImportRun, error) {
	query := `SELECT id, uuid, correlation_id, artist_name, status, started_at, completed_at,
		shows_processed, tracks_processed FROM import_runs WHERE correlation_id = ?`

	run := &domain.ImportRun{}
	err := db.Get(run, query, correlationID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (db *DB) GetActiveRunByArtist(artistName string) (*domain.ImportRun, error) {
	query := `SELECT id, uuid, correlation_id, artist_name, status, started_at, completed_at,
		shows_processed, tracks_processed FROM import_runs
		WHERE artist_name = ? AND status = 'running' LIMIT 1`

	run := &domain.ImportRun{}
	err := db.Get(run, query, artistName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteRun transitions a running run to completed. The status guard
// makes the transition one-shot: a run that already finished stays as it is.
func (db *DB) CompleteRun(id int64, showsProcessed, tracksProcessed int) error {
	return db.finishRun(id, domain.RunStatusCompleted, showsProcessed, tracksProcessed)
}

// FailRun transitions a running run to failed.
func (db *DB) FailRun(id int64, showsProcessed, tracksProcessed int) error {
	return db.finishRun(id, domain.RunStatusFailed, showsProcessed, tracksProcessed)
}

func (db *DB) finishRun(id int64, status domain.RunStatus, showsProcessed, tracksProcessed int) error {
	query := `UPDATE import_runs
		SET status = ?, completed_at = ?, shows_processed = ?, tracks_processed = ?
		WHERE id = ? AND status = 'running'`

	res, err := db.Exec(query, status, time.Now().UTC().Format(timeLayout), showsProcessed, tracksProcessed, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("run %d is not running", id)
	}
	return nil
}

func (db *DB) ListRuns(limit int) ([]*domain.ImportRun, error) {
	query := `SELECT id, uuid, correlation_id, artist_name, status, started_at, completed_at,
		shows_processed, tracks_processed FROM import_runs ORDER BY started_at DESC LIMIT ?`

	var runs []*domain.ImportRun
	err := db.Select(&runs, query, limit)
	return runs, err
}
