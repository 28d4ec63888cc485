package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"archivesync/internal/app"
	"archivesync/internal/constants"
	"archivesync/internal/logger"
	"archivesync/internal/metrics"
)

var (
	// ErrArtistBusy is returned when the artist already has a queued or
	// running import.
	ErrArtistBusy = errors.New("import already queued for artist")
	// ErrQueueFull is returned when the import queue cannot accept more
	// requests.
	ErrQueueFull = errors.New("import queue is full")
)

// ImportRequest is one queued import.
type ImportRequest struct {
	ArtistName    string
	CorrelationID string
}

// Worker runs queued imports with bounded concurrency and triggers the
// daily metrics rollup once per day at the configured hour.
type Worker struct {
	Service       *app.ImportService
	Aggregator    *metrics.Aggregator
	MaxConcurrent int
	AggregateHour int
	Logger        *logger.Logger

	queue  chan ImportRequest
	busy   map[string]struct{}
	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWorker(service *app.ImportService, aggregator *metrics.Aggregator, maxConcurrent, aggregateHour int, log *logger.Logger) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = constants.DefaultConcurrency
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		Service:       service,
		Aggregator:    aggregator,
		MaxConcurrent: maxConcurrent,
		AggregateHour: aggregateHour,
		Logger:        log.WithComponent("worker"),
		queue:         make(chan ImportRequest, constants.ImportQueueCapacity),
		busy:          make(map[string]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting worker", "max_concurrent", w.MaxConcurrent)

	w.wg.Add(1)
	go w.processImports()

	w.wg.Add(1)
	go w.aggregateDaily()
}

func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

// Submit queues an import request. It fails fast when the artist is
// already queued or running, or when the queue is full.
func (w *Worker) Submit(req ImportRequest) error {
	key := strings.ToLower(req.ArtistName)

	w.mu.Lock()
	if _, exists := w.busy[key]; exists {
		w.mu.Unlock()
		return ErrArtistBusy
	}
	w.busy[key] = struct{}{}
	w.mu.Unlock()

	select {
	case w.queue <- req:
		return nil
	default:
		w.release(key)
		return ErrQueueFull
	}
}

// Busy reports whether the artist has a queued or running import.
func (w *Worker) Busy(artistName string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, exists := w.busy[strings.ToLower(artistName)]
	return exists
}

func (w *Worker) release(key string) {
	w.mu.Lock()
	delete(w.busy, key)
	w.mu.Unlock()
}

func (w *Worker) processImports() {
	defer w.wg.Done()

	sem := make(chan struct{}, w.MaxConcurrent)
	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.queue:
			select {
			case sem <- struct{}{}:
			case <-w.ctx.Done():
				w.release(strings.ToLower(req.ArtistName))
				return
			}
			w.wg.Add(1)
			go func(req ImportRequest) {
				defer w.wg.Done()
				defer func() { <-sem }()
				defer w.release(strings.ToLower(req.ArtistName))
				w.runImport(req)
			}(req)
		}
	}
}

func (w *Worker) runImport(req ImportRequest) {
	defer func() {
		if r := recover(); r != nil {
			w.Logger.Error("Panic during import", "artist", req.ArtistName, "panic", r)
		}
	}()

	if _, err := w.Service.Run(w.ctx, req.ArtistName, req.CorrelationID); err != nil {
		w.Logger.Error("Import failed", "artist", req.ArtistName, "error", err)
	}
}

// aggregateDaily checks once a minute whether the aggregation hour has
// arrived and rolls up yesterday's runs. AggregateDaily itself is
// idempotent, so firing more than once within the hour is harmless.
func (w *Worker) aggregateDaily() {
	defer w.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if time.Now().Hour() != w.AggregateHour {
				continue
			}
			if _, err := w.Aggregator.AggregateDaily(""); err != nil {
				w.Logger.Error("Daily aggregation failed", "error", err)
			}
		}
	}
}
