package httpapp

import (
	"encoding/json"
	"net/http"

	"archivesync/internal/domain"
	"archivesync/internal/reconcile"
)

type addSongRequest struct {
	Title string `json:"title"`
}

type addAliasRequest struct {
	Alias          string `json:"alias"`
	CanonicalTitle string `json:"canonical_title"`
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	songs, err := h.Repo.ListSongsByArtist(artist)
	if err != nil {
		h.Logger.Error("Failed to list songs", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list songs")
		return
	}
	if songs == nil {
		songs = []*domain.Song{}
	}
	h.writeJSON(w, http.StatusOK, songs)
}

func (h *Handler) AddSong(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	var req addSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	normalized := reconcile.Normalize(req.Title)
	if normalized == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	song := &domain.Song{
		ArtistName:      artist,
		Title:           req.Title,
		NormalizedTitle: normalized,
	}
	if err := h.Repo.AddSong(song); err != nil {
		h.Logger.Error("Failed to add song", "artist", artist, "title", req.Title, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to add song")
		return
	}

	// A title that used to miss is resolved now that it is in the catalog
	if err := h.Repo.DeleteUnmatched(artist, normalized); err != nil {
		h.Logger.Warn("Failed to clear unmatched entry", "artist", artist, "title", req.Title, "error", err)
	}

	h.writeJSON(w, http.StatusCreated, song)
}

func (h *Handler) AddAlias(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	var req addAliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	normalized := reconcile.Normalize(req.Alias)
	if normalized == "" || req.CanonicalTitle == "" {
		h.writeError(w, http.StatusBadRequest, "alias and canonical_title are required")
		return
	}

	// The alias must point at a song that exists
	canonical, err := h.Repo.GetSongByNormalizedTitle(artist, reconcile.Normalize(req.CanonicalTitle))
	if err != nil {
		h.Logger.Error("Failed to look up canonical song", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to look up canonical song")
		return
	}
	if canonical == nil {
		h.writeError(w, http.StatusBadRequest, "canonical title not in catalog")
		return
	}

	alias := &domain.SongAlias{
		ArtistName:      artist,
		Alias:           req.Alias,
		NormalizedAlias: normalized,
		CanonicalTitle:  canonical.Title,
	}
	if err := h.Repo.AddAlias(alias); err != nil {
		h.Logger.Error("Failed to add alias", "artist", artist, "alias", req.Alias, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to add alias")
		return
	}

	// Future imports match via the alias; drop the stale miss record
	if err := h.Repo.DeleteUnmatched(artist, normalized); err != nil {
		h.Logger.Warn("Failed to clear unmatched entry", "artist", artist, "alias", req.Alias, "error", err)
	}

	h.writeJSON(w, http.StatusCreated, alias)
}

// ResetArtistStatus drops the artist's counters so the next import
// starts from a clean row. Catalog and unmatched data stay.
func (h *Handler) ResetArtistStatus(w http.ResponseWriter, r *http.Request) {
	artist := artistParam(r)

	if err := h.Repo.DeleteArtistStatus(artist); err != nil {
		h.Logger.Error("Failed to reset artist status", "artist", artist, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to reset artist status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
