package httpapp

import (
	"bytes"
	"net/http"
	"testing"

	"archivesync/internal/domain"
	"archivesync/internal/store"
)

func postJSON(t *testing.T, url string, body string) *http.Response {
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestAddSong(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, env.server.URL+"/api/artists/Grateful%20Dead/songs", `{"title": "Ripple"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var song domain.Song
	decode(t, resp, &song)
	if song.NormalizedTitle != "ripple" {
		t.Errorf("Expected normalized title ripple, got %s", song.NormalizedTitle)
	}

	songs, err := env.db.ListSongsByArtist("Grateful Dead")
	if err != nil {
		t.Fatalf("ListSongsByArtist failed: %v", err)
	}
	if len(songs) != 1 {
		t.Errorf("Expected 1 song, got %d", len(songs))
	}
}

func TestAddSong_ResolvesUnmatched(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	if err := env.db.RecordUnmatched("Grateful Dead", "ripple"); err != nil {
		t.Fatalf("RecordUnmatched failed: %v", err)
	}

	resp := postJSON(t, env.server.URL+"/api/artists/Grateful%20Dead/songs", `{"title": "Ripple"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	track, err := env.db.GetUnmatched("Grateful Dead", "ripple")
	if err != nil {
		t.Fatalf("GetUnmatched failed: %v", err)
	}
	if track != nil {
		t.Errorf("Expected unmatched entry to be resolved, got %+v", track)
	}
}

func TestAddSong_RejectsBlankTitle(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, env.server.URL+"/api/artists/Grateful%20Dead/songs", `{"title": "---"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAddAlias(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	if err := env.db.AddSong(&domain.Song{
		ArtistName: "Grateful Dead", Title: "Scarlet Begonias", NormalizedTitle: "scarlet begonias",
	}); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	resp := postJSON(t, env.server.URL+"/api/artists/Grateful%20Dead/aliases",
		`{"alias": "Scarlet > Fire", "canonical_title": "Scarlet Begonias"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var alias domain.SongAlias
	decode(t, resp, &alias)
	if alias.NormalizedAlias != "scarlet fire" {
		t.Errorf("Expected normalized alias, got %s", alias.NormalizedAlias)
	}
	if alias.CanonicalTitle != "Scarlet Begonias" {
		t.Errorf("Expected canonical title, got %s", alias.CanonicalTitle)
	}
}

func TestAddAlias_RequiresCanonicalSong(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	resp := postJSON(t, env.server.URL+"/api/artists/Grateful%20Dead/aliases",
		`{"alias": "Scarlet > Fire", "canonical_title": "Not In Catalog"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown canonical title, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListSongs(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doRequest(t, "GET", env.server.URL+"/api/artists/Grateful%20Dead/songs")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var songs []domain.Song
	decode(t, resp, &songs)
	if len(songs) != 0 {
		t.Errorf("Expected empty list, got %d songs", len(songs))
	}
}

func TestResetArtistStatus(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	if err := env.db.ApplyArtistDeltas("Grateful Dead", store.ArtistDeltas{MatchedTracks: 3}); err != nil {
		t.Fatalf("ApplyArtistDeltas failed: %v", err)
	}

	resp := doRequest(t, "DELETE", env.server.URL+"/api/artists/Grateful%20Dead/status")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	status, err := env.db.GetArtistStatus("Grateful Dead")
	if err != nil {
		t.Fatalf("GetArtistStatus failed: %v", err)
	}
	if status != nil {
		t.Errorf("Expected status row to be gone, got %+v", status)
	}
}

func TestClearCache(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	if err := env.db.SetCache("archive:shows:grateful dead", []byte(`{}`), 0); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}

	resp := doRequest(t, "DELETE", env.server.URL+"/api/cache")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	data, err := env.db.GetCache("archive:shows:grateful dead")
	if err != nil || data != nil {
		t.Errorf("Expected cache to be empty, got %q, %v", data, err)
	}
}
