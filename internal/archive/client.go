package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
)

// Client talks to the Archive.org search and metadata APIs. Requests
// are serialized and rate limited; Archive.org throttles aggressive
// clients.
type Client struct {
	httpClient  *http.Client
	lastRequest time.Time
	baseURL     string
	userAgent   string
	mu          sync.Mutex
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: constants.DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// SearchShows lists live recordings for an artist from the etree
// collection, newest first.
func (c *Client) SearchShows(ctx context.Context, artistName string) ([]domain.Show, error) {
	if artistName == "" {
		return nil, nil
	}

	query := fmt.Sprintf(`creator:"%s" AND mediatype:(etree)`, artistName)
	u := fmt.Sprintf("%s/advancedsearch.php?q=%s&fl[]=identifier&fl[]=title&fl[]=date&sort[]=date+desc&rows=%d&output=json",
		c.baseURL, url.QueryEscape(query), constants.MaxShowsPerImport)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	shows := make([]domain.Show, 0, len(result.Response.Docs))
	for _, doc := range result.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		shows = append(shows, domain.Show{
			Identifier: doc.Identifier,
			Title:      doc.Title,
			Date:       doc.Date,
		})
	}
	return shows, nil
}

// GetShow fetches one item's metadata and extracts its track listing.
// It returns (nil, nil) when the item does not exist.
func (c *Client) GetShow(ctx context.Context, identifier string) (*domain.Show, error) {
	if identifier == "" {
		return nil, nil
	}

	u := fmt.Sprintf("%s/metadata/%s", c.baseURL, url.PathEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive returned status %d", resp.StatusCode)
	}

	var result metadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// The metadata endpoint returns an empty object for missing items.
	if result.Metadata.Identifier == "" && len(result.Files) == 0 {
		return nil, nil
	}

	show := &domain.Show{
		Identifier: identifier,
		Title:      result.Metadata.Title.String(),
		Date:       result.Metadata.Date.String(),
		Tracks:     extractTracks(result.Files),
	}
	return show, nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < constants.DefaultRetryCount; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if elapsed := time.Since(c.lastRequest); elapsed < constants.MinRequestInterval {
			time.Sleep(constants.MinRequestInterval - elapsed)
		}
		c.lastRequest = time.Now()

		resp, err := c.httpClient.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * constants.DefaultRetryBase)
	}
	return nil, lastErr
}

// trackFormats lists acceptable audio formats in preference order. An
// item usually carries the same tracks in several derivative formats;
// only the most preferred format present is used.
var trackFormats = []string{"Flac", "VBR MP3", "Ogg Vorbis", "Shorten"}

func extractTracks(files []itemFile) []domain.CandidateTrack {
	byFormat := make(map[string][]itemFile)
	for _, f := range files {
		byFormat[f.Format] = append(byFormat[f.Format], f)
	}

	var chosen []itemFile
	for _, format := range trackFormats {
		if len(byFormat[format]) > 0 {
			chosen = byFormat[format]
			break
		}
	}
	if chosen == nil {
		return nil
	}

	tracks := make([]domain.CandidateTrack, 0, len(chosen))
	for _, f := range chosen {
		title := f.Title.String()
		if title == "" {
			title = titleFromName(f.Name)
		}
		tracks = append(tracks, domain.CandidateTrack{
			Title:         title,
			SourceFile:    f.Name,
			LengthSeconds: parseLength(f.Length.String()),
		})
	}
	return tracks
}

// titleFromName falls back to the file name, minus directory and
// extension, when a file has no title tag.
func titleFromName(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// parseLength accepts the two length encodings Archive.org emits:
// plain seconds ("245.67") and colon-separated clock time ("4:05" or
// "1:04:05"). It returns 0 for anything unparseable.
func parseLength(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if !strings.Contains(raw, ":") {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 {
			return 0
		}
		return seconds
	}

	var total float64
	for _, part := range strings.Split(raw, ":") {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0
		}
		total = total*60 + v
	}
	return total
}

type searchResponse struct {
	Response struct {
		Docs []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Date       string `json:"date"`
}

type metadataResponse struct {
	Metadata itemMetadata `json:"metadata"`
	Files    []itemFile   `json:"files"`
}

type itemMetadata struct {
	Identifier string      `json:"identifier"`
	Title      stringOrSet `json:"title"`
	Date       stringOrSet `json:"date"`
}

type itemFile struct {
	Name   string      `json:"name"`
	Format string      `json:"format"`
	Title  stringOrSet `json:"title"`
	Length stringOrSet `json:"length"`
}

// stringOrSet tolerates metadata fields that are sometimes a string and
// sometimes an array of strings.
type stringOrSet []string

func (s *stringOrSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = stringOrSet{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = stringOrSet(many)
	return nil
}

func (s stringOrSet) String() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
