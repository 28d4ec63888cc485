package metrics

import (
	"fmt"
	"math"
	"time"

	"archivesync/internal/constants"
	"archivesync/internal/domain"
	"archivesync/internal/logger"
)

// MetricsStore is the slice of the store the aggregator needs.
type MetricsStore interface {
	GetDailyMetrics(date string) (*domain.DailyMetrics, error)
	InsertDailyMetrics(m *domain.DailyMetrics) error
	AggregateRunsOn(date string) (*domain.RunAggregates, error)
	AggregateArtistStatus() (*domain.StatusSnapshot, error)
}

// Aggregator rolls completed import runs up into one immutable row per
// date. Aggregation is idempotent: a date that already has a row is
// skipped, and the date primary key rejects a racing duplicate insert.
type Aggregator struct {
	store MetricsStore
	log   *logger.Logger
	now   func() time.Time
}

func NewAggregator(store MetricsStore, log *logger.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		log:   log.WithComponent("metrics"),
		now:   time.Now,
	}
}

// AggregateDaily builds the rollup for the given date (YYYY-MM-DD). An
// empty date aggregates yesterday. It returns (nil, nil) when the date
// was already aggregated.
func (a *Aggregator) AggregateDaily(date string) (*domain.DailyMetrics, error) {
	if date == "" {
		// Run timestamps are stored in UTC, so the rollup date is too.
		date = a.now().UTC().AddDate(0, 0, -1).Format(constants.MetricsDateLayout)
	}
	if _, err := time.Parse(constants.MetricsDateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	existing, err := a.store.GetDailyMetrics(date)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing metrics: %w", err)
	}
	if existing != nil {
		a.log.Debug("Metrics already aggregated", "date", date)
		return nil, nil
	}

	runs, err := a.store.AggregateRunsOn(date)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}
	status, err := a.store.AggregateArtistStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate artist status: %w", err)
	}

	m := &domain.DailyMetrics{
		Date:                     date,
		ImportsCount:             runs.ImportsCount,
		ShowsImported:            runs.ShowsImported,
		TracksImported:           runs.TracksImported,
		AvgImportDurationSeconds: int(math.Round(runs.AvgDurationSeconds)),
		TracksMatched:            status.TracksMatched,
		TracksUnmatched:          status.TracksUnmatched,
		MatchRate:                status.AvgMatchRate,
	}
	if err := a.store.InsertDailyMetrics(m); err != nil {
		return nil, fmt.Errorf("failed to insert daily metrics: %w", err)
	}

	a.log.Info("Aggregated daily metrics",
		"date", date,
		"imports", m.ImportsCount,
		"tracks", m.TracksImported,
		"match_rate", m.MatchRate)
	return m, nil
}
