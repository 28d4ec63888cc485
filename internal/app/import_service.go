package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"archivesync/internal/domain"
	"archivesync/internal/logger"
	"archivesync/internal/store"

	"github.com/google/uuid"
)

// ErrImportActive is returned when an import for the artist is already
// running.
var ErrImportActive = errors.New("import already active for artist")

// ShowSource lists and fetches shows for an artist.
type ShowSource interface {
	SearchShows(ctx context.Context, artistName string) ([]domain.Show, error)
	GetShow(ctx context.Context, identifier string) (*domain.Show, error)
}

// TrackReconciler matches one show's tracks against the catalog.
type TrackReconciler interface {
	Reconcile(artistName string, candidates []domain.CandidateTrack) (*domain.ReconcileResult, error)
}

// RunStore persists import runs and artist counters.
type RunStore interface {
	GetActiveRunByArtist(artistName string) (*domain.ImportRun, error)
	CreateRun(run *domain.ImportRun) error
	CompleteRun(id int64, showsProcessed, tracksProcessed int) error
	FailRun(id int64, showsProcessed, tracksProcessed int) error
	ApplyArtistDeltas(artistName string, d store.ArtistDeltas) error
}

// ProgressTracker records best-effort progress for readers.
type ProgressTracker interface {
	Update(artistName string, current, total, processed int, correlationID string)
	Complete(artistName string)
	Fail(artistName string, errMsg string)
}

// ImportService drives one artist import end to end: list shows, fetch
// each show's tracks, reconcile them, and keep run state and progress
// current along the way.
type ImportService struct {
	source     ShowSource
	reconciler TrackReconciler
	store      RunStore
	tracker    ProgressTracker
	log        *logger.Logger
}

func NewImportService(source ShowSource, reconciler TrackReconciler, runStore RunStore, tracker ProgressTracker, log *logger.Logger) *ImportService {
	return &ImportService{
		source:     source,
		reconciler: reconciler,
		store:      runStore,
		tracker:    tracker,
		log:        log.WithComponent("import"),
	}
}

// Run imports every show found for the artist. A missing correlation ID
// gets a generated one. One failing show is logged and skipped; the run
// only fails when the show listing itself is unavailable or the context
// is canceled.
func (s *ImportService) Run(ctx context.Context, artistName, correlationID string) (*domain.ImportRun, error) {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	runUUID := uuid.New().String()
	log := s.log.WithArtist(artistName).WithRun(runUUID, correlationID)

	active, err := s.store.GetActiveRunByArtist(artistName)
	if err != nil {
		return nil, fmt.Errorf("failed to check active runs: %w", err)
	}
	if active != nil {
		return nil, ErrImportActive
	}

	run := &domain.ImportRun{
		UUID:          runUUID,
		CorrelationID: correlationID,
		ArtistName:    artistName,
		Status:        domain.RunStatusRunning,
		StartedAt:     time.Now(),
	}
	if err := s.store.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	log.Info("Import started", "run_id", run.ID)

	shows, err := s.source.SearchShows(ctx, artistName)
	if err != nil {
		return run, s.fail(run, log, fmt.Errorf("failed to list shows: %w", err))
	}
	s.tracker.Update(artistName, 0, len(shows), 0, correlationID)

	showsProcessed := 0
	tracksProcessed := 0
	for i, show := range shows {
		if err := ctx.Err(); err != nil {
			run.ShowsProcessed = showsProcessed
			run.TracksProcessed = tracksProcessed
			return run, s.fail(run, log, err)
		}

		detail, err := s.source.GetShow(ctx, show.Identifier)
		if err != nil {
			log.Warn("Failed to fetch show, skipping", "identifier", show.Identifier, "error", err)
			s.tracker.Update(artistName, i+1, len(shows), tracksProcessed, correlationID)
			continue
		}
		if detail == nil {
			log.Warn("Show disappeared, skipping", "identifier", show.Identifier)
			s.tracker.Update(artistName, i+1, len(shows), tracksProcessed, correlationID)
			continue
		}

		result, err := s.reconciler.Reconcile(artistName, detail.Tracks)
		if err != nil {
			log.Warn("Failed to reconcile show, skipping", "identifier", show.Identifier, "error", err)
			s.tracker.Update(artistName, i+1, len(shows), tracksProcessed, correlationID)
			continue
		}

		showsProcessed++
		tracksProcessed += result.Matched + result.Unmatched
		if err := s.store.ApplyArtistDeltas(artistName, store.ArtistDeltas{DownloadedShows: 1}); err != nil {
			log.Warn("Failed to bump show counter", "identifier", show.Identifier, "error", err)
		}
		s.tracker.Update(artistName, i+1, len(shows), tracksProcessed, correlationID)
	}

	run.ShowsProcessed = showsProcessed
	run.TracksProcessed = tracksProcessed
	run.Status = domain.RunStatusCompleted
	if err := s.store.CompleteRun(run.ID, showsProcessed, tracksProcessed); err != nil {
		return run, fmt.Errorf("failed to complete run: %w", err)
	}
	s.tracker.Complete(artistName)

	log.Info("Import finished", "run_id", run.ID, "shows", showsProcessed, "tracks", tracksProcessed)
	return run, nil
}

func (s *ImportService) fail(run *domain.ImportRun, log *logger.Logger, cause error) error {
	run.Status = domain.RunStatusFailed
	if err := s.store.FailRun(run.ID, run.ShowsProcessed, run.TracksProcessed); err != nil {
		log.Error("Failed to mark run failed", "run_id", run.ID, "error", err)
	}
	s.tracker.Fail(run.ArtistName, cause.Error())
	log.Error("Import failed", "run_id", run.ID, "error", cause)
	return cause
}
