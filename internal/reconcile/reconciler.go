package reconcile

import (
	"fmt"
	"strings"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
	"archivesync/internal/logger"
	"archivesync/internal/store"

	"github.com/antzucaro/matchr"
)

// CatalogStore is the slice of the store the reconciler needs.
type CatalogStore interface {
	ListSongsByArtist(artistName string) ([]*domain.Song, error)
	ListAliasesByArtist(artistName string) ([]*domain.SongAlias, error)
	RecordUnmatched(artistName, trackTitle string) error
	ApplyArtistDeltas(artistName string, d store.ArtistDeltas) error
}

// Reconciler matches externally-sourced tracks against the canonical
// catalog. Strategies run in strict precedence: exact, alias, metaphone,
// fuzzy. The first hit wins.
type Reconciler struct {
	Store     CatalogStore
	Logger    *logger.Logger
	Threshold float64
}

func NewReconciler(catalog CatalogStore, log *logger.Logger, threshold float64) *Reconciler {
	if threshold <= 0 || threshold > 1 {
		threshold = constants.DefaultSimilarityThreshold
	}
	return &Reconciler{
		Store:     catalog,
		Logger:    log.WithComponent("reconciler"),
		Threshold: threshold,
	}
}

// catalogIndex is the per-batch in-memory view of one artist's catalog.
type catalogIndex struct {
	byNormalized map[string]string   // normalized title -> canonical title
	byAlias      map[string]string   // normalized alias -> canonical title
	byMetaphone  map[string][]string // metaphone code -> canonical titles
	normalized   []string            // all normalized titles, for fuzzy scan
}

func (r *Reconciler) loadCatalog(artistName string) (*catalogIndex, error) {
	songs, err := r.Store.ListSongsByArtist(artistName)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	aliases, err := r.Store.ListAliasesByArtist(artistName)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	idx := &catalogIndex{
		byNormalized: make(map[string]string, len(songs)),
		byAlias:      make(map[string]string, len(aliases)),
		byMetaphone:  make(map[string][]string),
	}
	for _, s := range songs {
		norm := s.NormalizedTitle
		if norm == "" {
			norm = Normalize(s.Title)
		}
		if _, exists := idx.byNormalized[norm]; exists {
			continue
		}
		idx.byNormalized[norm] = s.Title
		idx.normalized = append(idx.normalized, norm)

		primary, secondary := metaphoneCodes(norm)
		if primary != "" {
			idx.byMetaphone[primary] = append(idx.byMetaphone[primary], s.Title)
		}
		if secondary != "" {
			idx.byMetaphone[secondary] = append(idx.byMetaphone[secondary], s.Title)
		}
	}
	for _, a := range aliases {
		norm := a.NormalizedAlias
		if norm == "" {
			norm = Normalize(a.Alias)
		}
		idx.byAlias[norm] = a.CanonicalTitle
	}
	return idx, nil
}

// Reconcile processes one batch of candidate tracks for an artist and
// applies the resulting counter deltas in one atomic store update.
// A candidate without a title is skipped and counted neither way; a
// single bad record never aborts the batch.
func (r *Reconciler) Reconcile(artistName string, candidates []domain.CandidateTrack) (*domain.ReconcileResult, error) {
	idx, err := r.loadCatalog(artistName)
	if err != nil {
		return nil, err
	}

	log := r.Logger.WithArtist(artistName)
	result := &domain.ReconcileResult{
		Details: make([]domain.MatchResult, 0, len(candidates)),
	}
	var duration float64

	for _, candidate := range candidates {
		if candidate.Title == "" {
			log.Debug("Skipping candidate without title", "source_file", candidate.SourceFile)
			result.Skipped++
			continue
		}

		match := r.matchOne(idx, candidate.Title)
		result.Details = append(result.Details, match)
		duration += candidate.LengthSeconds

		if match.Matched {
			result.Matched++
			continue
		}

		result.Unmatched++
		if err := r.Store.RecordUnmatched(artistName, Normalize(candidate.Title)); err != nil {
			// The counter still reflects the miss; only the occurrence row is lost.
			log.Warn("Failed to record unmatched track", "title", candidate.Title, "error", err)
		}
	}

	deltas := store.ArtistDeltas{
		ImportedTracks:  result.Matched + result.Unmatched,
		MatchedTracks:   result.Matched,
		UnmatchedTracks: result.Unmatched,
		DurationSeconds: duration,
	}
	if err := r.Store.ApplyArtistDeltas(artistName, deltas); err != nil {
		return nil, fmt.Errorf("failed to apply artist deltas: %w", err)
	}

	log.Info("Reconciled batch",
		"candidates", len(candidates),
		"matched", result.Matched,
		"unmatched", result.Unmatched,
		"skipped", result.Skipped)
	return result, nil
}

func (r *Reconciler) matchOne(idx *catalogIndex, title string) domain.MatchResult {
	norm := Normalize(title)

	// 1. Exact match on normalized title
	if canonical, ok := idx.byNormalized[norm]; ok {
		return domain.MatchResult{
			Title:          title,
			Matched:        true,
			MatchType:      domain.MatchTypeExact,
			CanonicalTitle: canonical,
			Confidence:     constants.ConfidenceExact,
		}
	}

	// 2. Alias table
	if canonical, ok := idx.byAlias[norm]; ok {
		return domain.MatchResult{
			Title:          title,
			Matched:        true,
			MatchType:      domain.MatchTypeAlias,
			CanonicalTitle: canonical,
			Confidence:     constants.ConfidenceAlias,
		}
	}

	// 3. Phonetic match
	primary, secondary := metaphoneCodes(norm)
	for _, code := range []string{primary, secondary} {
		if code == "" {
			continue
		}
		if titles, ok := idx.byMetaphone[code]; ok && len(titles) > 0 {
			return domain.MatchResult{
				Title:          title,
				Matched:        true,
				MatchType:      domain.MatchTypeMetaphone,
				CanonicalTitle: titles[0],
				Confidence:     constants.ConfidenceMetaphone,
			}
		}
	}

	// 4. Fuzzy match above the similarity threshold
	bestSim := 0.0
	bestTitle := ""
	for _, catalogNorm := range idx.normalized {
		sim := similarity(norm, catalogNorm)
		if sim > bestSim {
			bestSim = sim
			bestTitle = catalogNorm
		}
	}
	if bestSim >= r.Threshold {
		return domain.MatchResult{
			Title:          title,
			Matched:        true,
			MatchType:      domain.MatchTypeFuzzy,
			CanonicalTitle: idx.byNormalized[bestTitle],
			Confidence:     int(bestSim * constants.MaxFuzzyConfidence),
		}
	}

	return domain.MatchResult{
		Title:     title,
		MatchType: domain.MatchTypeNone,
	}
}

// metaphoneCodes encodes a normalized title one word at a time and joins
// the per-word codes. DoubleMetaphone truncates whole strings to four
// sounds, which would collide every title sharing an opening word.
func metaphoneCodes(norm string) (string, string) {
	words := strings.Fields(norm)
	if len(words) == 0 {
		return "", ""
	}

	primaries := make([]string, len(words))
	secondaries := make([]string, len(words))
	for i, w := range words {
		p, s := matchr.DoubleMetaphone(w)
		primaries[i] = p
		if s == "" {
			s = p
		}
		secondaries[i] = s
	}

	primary := strings.Join(primaries, " ")
	secondary := strings.Join(secondaries, " ")
	if secondary == primary {
		secondary = ""
	}
	return primary, secondary
}

// similarity converts Levenshtein distance into a 0..1 score relative to
// the longer string.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := matchr.Levenshtein(a, b)
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}
