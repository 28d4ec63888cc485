package httpapp

import (
	"encoding/json"
	"net/http"
	"net/url"

	"archivesync/internal/logger"
	"archivesync/internal/metrics"
	"archivesync/internal/progress"
	"archivesync/internal/store"
	"archivesync/internal/worker"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Repo       *store.DB
	Tracker    *progress.Tracker
	Aggregator *metrics.Aggregator
	Worker     *worker.Worker
	Logger     *logger.Logger
}

func NewHandler(repo *store.DB, tracker *progress.Tracker, aggregator *metrics.Aggregator, w *worker.Worker, log *logger.Logger) *Handler {
	return &Handler{
		Repo:       repo,
		Tracker:    tracker,
		Aggregator: aggregator,
		Worker:     w,
		Logger:     log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/import/{artist}", h.StartImport)

		r.Get("/progress/{artist}", h.GetProgress)
		r.Delete("/progress/{artist}", h.ClearProgress)

		r.Get("/artists/status", h.ListArtistStatus)
		r.Get("/artists/{artist}/status", h.GetArtistStatus)
		r.Delete("/artists/{artist}/status", h.ResetArtistStatus)
		r.Get("/artists/{artist}/unmatched", h.ListUnmatched)

		r.Get("/artists/{artist}/songs", h.ListSongs)
		r.Post("/artists/{artist}/songs", h.AddSong)
		r.Post("/artists/{artist}/aliases", h.AddAlias)

		r.Get("/metrics/daily", h.GetDailyMetrics)
		r.Post("/metrics/aggregate", h.AggregateMetrics)

		r.Get("/lineup", h.GetLineup)
		r.Get("/runs", h.ListRuns)

		r.Delete("/cache", h.ClearCache)
	})
}

// artistParam decodes the artist path segment; artist names carry
// spaces and punctuation.
func artistParam(r *http.Request) string {
	raw := chi.URLParam(r, "artist")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
