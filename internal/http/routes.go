package httpapp

import (
	"errors"
	"net/http"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
	"archivesync/internal/lineup"
	"archivesync/internal/worker"

	"github.com/google/uuid"
)

func (h *Handler) StartImport(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)
	if artist == "" {
		h.writeError(w, http.StatusBadRequest, "artist is required")
		return
	}

	correlationID := r.URL.Query().Get("correlation_id")
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	err := h.Worker.Submit(worker.ImportRequest{
		ArtistName:    artist,
		CorrelationID: correlationID,
	})
	switch {
	case errors.Is(err, worker.ErrArtistBusy):
		h.writeError(w, http.StatusConflict, "import already in progress for artist")
		return
	case errors.Is(err, worker.ErrQueueFull):
		h.writeError(w, http.StatusServiceUnavailable, "import queue is full")
		return
	case err != nil:
		h.Logger.Error("Failed to queue import", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to queue import")
		return
	}

	h.writeJSON(w, http.StatusAccepted, importAccepted{
		ArtistName:    artist,
		CorrelationID: correlationID,
		Status:        "queued",
	})
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	entry := h.Tracker.Get(artist)
	if entry == nil {
		entry = domain.IdleProgress()
	}
	h.writeJSON(w, http.StatusOK, newProgressResponse(artist, entry))
}

func (h *Handler) ClearProgress(w http.ResponseWriter, r *http.Request) {
	h.Tracker.Clear(artistParam(r))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListArtistStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Repo.ListArtistStatus()
	if err != nil {
		h.Logger.Error("Failed to list artist status", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list artist status")
		return
	}
	if statuses == nil {
		statuses = []*domain.ArtistStatus{}
	}
	h.writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) GetArtistStatus(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	status, err := h.Repo.GetArtistStatus(artist)
	if err != nil {
		h.Logger.Error("Failed to get artist status", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get artist status")
		return
	}
	if status == nil {
		h.writeError(w, http.StatusNotFound, "artist not found")
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) ListUnmatched(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	tracks, err := h.Repo.ListUnmatchedByArtist(artist, constants.MaxUnmatchedListed)
	if err != nil {
		h.Logger.Error("Failed to list unmatched tracks", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list unmatched tracks")
		return
	}

	out := make([]unmatchedResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, newUnmatchedResponse(t))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetDailyMetrics(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		list, err := h.Repo.ListDailyMetrics(constants.MaxRunsListed)
		if err != nil {
			h.Logger.Error("Failed to list daily metrics", "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to list daily metrics")
			return
		}
		if list == nil {
			list = []*domain.DailyMetrics{}
		}
		h.writeJSON(w, http.StatusOK, list)
		return
	}

	m, err := h.Repo.GetDailyMetrics(date)
	if err != nil {
		h.Logger.Error("Failed to get daily metrics", "date", date, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get daily metrics")
		return
	}
	if m == nil {
		h.writeError(w, http.StatusNotFound, "no metrics for date")
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) AggregateMetrics(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	m, err := h.Aggregator.AggregateDaily(date)
	if err != nil {
		h.Logger.Error("Aggregation failed", "date", date, "error", err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if m == nil {
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"skipped": true})
		return
	}
	h.writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	algorithm := lineup.Algorithm(r.URL.Query().Get("sort"))

	stats, err := h.Repo.ListArtistStats()
	if err != nil {
		h.Logger.Error("Failed to list artist stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list artist stats")
		return
	}

	sorted := lineup.SortByAlgorithm(stats, algorithm)
	if sorted == nil {
		sorted = []domain.ArtistStats{}
	}
	h.writeJSON(w, http.StatusOK, sorted)
}

// ClearCache drops every cached Archive.org response so the next import
// refetches fresh metadata. Progress keys share the table and are
// dropped too; they rebuild on the next update.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Repo.ClearCache(); err != nil {
		h.Logger.Error("Failed to clear cache", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Repo.ListRuns(constants.MaxRunsListed)
	if err != nil {
		h.Logger.Error("Failed to list runs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*domain.ImportRun{}
	}
	h.writeJSON(w, http.StatusOK, runs)
}
