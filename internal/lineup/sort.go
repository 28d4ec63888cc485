package lineup

import (
	"sort"

	"archivesync/internal/domain"
)

// Algorithm selects which statistic ranks the lineup.
type Algorithm string

const (
	BySongVersions Algorithm = "songVersions"
	ByShows        Algorithm = "shows"
	ByHours        Algorithm = "hours"
)

// DefaultAlgorithm is the fallback for unknown or empty sort parameters.
const DefaultAlgorithm = BySongVersions

func IsValidAlgorithm(a Algorithm) bool {
	switch a {
	case BySongVersions, ByShows, ByHours:
		return true
	}
	return false
}

// SortByAlgorithm returns a new slice ranked descending by the chosen
// statistic. The input is never mutated, missing statistics compare as
// zero, and ties keep their original order. An unknown algorithm falls
// back to song versions.
func SortByAlgorithm(artists []domain.ArtistStats, algorithm Algorithm) []domain.ArtistStats {
	if !IsValidAlgorithm(algorithm) {
		algorithm = DefaultAlgorithm
	}

	sorted := make([]domain.ArtistStats, len(artists))
	copy(sorted, artists)

	sort.SliceStable(sorted, func(i, j int) bool {
		return statValue(&sorted[i], algorithm) > statValue(&sorted[j], algorithm)
	})
	return sorted
}

func statValue(a *domain.ArtistStats, algorithm Algorithm) float64 {
	switch algorithm {
	case ByShows:
		if a.TotalShows == nil {
			return 0
		}
		return float64(*a.TotalShows)
	case ByHours:
		if a.TotalHours == nil {
			return 0
		}
		return *a.TotalHours
	default:
		if a.SongCount == nil {
			return 0
		}
		return float64(*a.SongCount)
	}
}
