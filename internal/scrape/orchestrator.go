package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/health"
	"github.com/gradecast/gradecast/internal/pool"
	"github.com/gradecast/gradecast/internal/ranking"
)

// Broadcaster pushes scrape events to connected UI clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Result summarizes one scrape cycle.
type Result struct {
	Stations  int `json:"stations"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Songs     int `json:"songs"`
}

// Orchestrator runs scrape cycles across the enabled stations in small
// parallel batches, with a serial retry pass for the ones that failed.
type Orchestrator struct {
	cfg     config.ScrapeConfig
	store   *database.Store
	pool    *pool.Service
	ranking *ranking.Service
	fetcher Fetcher
	hub     Broadcaster
	health  *health.Service
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
}

// SetHealth wires the health service so station scrape failures surface
// as health issues.
func (o *Orchestrator) SetHealth(h *health.Service) {
	o.health = h
}

// NewOrchestrator creates a scrape orchestrator.
func NewOrchestrator(cfg config.ScrapeConfig, store *database.Store, poolSvc *pool.Service,
	rankingSvc *ranking.Service, fetcher Fetcher, hub Broadcaster, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		pool:    poolSvc,
		ranking: rankingSvc,
		fetcher: fetcher,
		hub:     hub,
		logger:  logger.With().Str("component", "scrape").Logger(),
	}
}

// ErrAlreadyRunning is returned when a cycle is requested while one runs.
var ErrAlreadyRunning = fmt.Errorf("scrape cycle already running")

// Run executes one scrape cycle. Only one cycle runs at a time.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.running = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	stations, err := o.store.ListEnabledStations(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Stations: len(stations)}
	o.logger.Info().Int("stations", len(stations)).Msg("Scrape cycle started")
	o.broadcast(EventScrapeStarted, ScrapeStartedPayload{Stations: len(stations)})

	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}

	var failed []*database.Station
	for start := 0; start < len(stations); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + batchSize
		if end > len(stations) {
			end = len(stations)
		}

		failed = append(failed, o.runBatch(ctx, stations[start:end], res)...)

		if end < len(stations) && o.cfg.BatchDelaySeconds > 0 {
			select {
			case <-time.After(time.Duration(o.cfg.BatchDelaySeconds) * time.Second):
			case <-ctx.Done():
			}
		}
	}

	// Failed stations get one more serial attempt at the end of the cycle.
	if o.cfg.RetryFailed {
		for _, st := range failed {
			if ctx.Err() != nil {
				break
			}
			if count, err := o.scrapeStation(ctx, st); err == nil {
				o.setHealth(st.ID, health.StatusOK, "")
				res.Succeeded++
				res.Failed--
				res.Songs += count
			}
		}
	}

	o.logger.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).
		Int("songs", res.Songs).Msg("Scrape cycle finished")
	o.broadcast(EventScrapeCompleted, ScrapeCompletedPayload{
		Stations: res.Stations, Succeeded: res.Succeeded, Failed: res.Failed, Songs: res.Songs,
	})
	return res, nil
}

// runBatch scrapes one batch of stations in parallel and returns the ones
// that failed.
func (o *Orchestrator) runBatch(ctx context.Context, batch []*database.Station, res *Result) []*database.Station {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []*database.Station

	for _, st := range batch {
		wg.Add(1)
		go func(st *database.Station) {
			defer wg.Done()
			count, err := o.scrapeStation(ctx, st)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Warn().Err(err).Str("station", st.ID).Msg("Station scrape failed")
				o.setHealth(st.ID, health.StatusError, err.Error())
				res.Failed++
				failed = append(failed, st)
				return
			}
			o.setHealth(st.ID, health.StatusOK, "")
			res.Succeeded++
			res.Songs += count
		}(st)
	}
	wg.Wait()
	return failed
}

// scrapeStation fetches one station and ingests its songs. The ranking
// only counts the now-playing song: the recent list repeats across cycles
// and would inflate play counts.
func (o *Orchestrator) scrapeStation(ctx context.Context, st *database.Station) (int, error) {
	timeout := time.Duration(o.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	songs, err := o.fetcher.Fetch(cctx, st)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	count := 0
	for _, song := range songs {
		if err := o.pool.Ingest(ctx, st.ID, song.Title, song.Artist, now); err != nil {
			o.logger.Warn().Err(err).Str("station", st.ID).Msg("Failed to ingest song")
			continue
		}
		count++
		if song.NowPlaying {
			if err := o.ranking.Record(ctx, song.Title, song.Artist, st.Style); err != nil {
				o.logger.Warn().Err(err).Str("station", st.ID).Msg("Failed to record ranking play")
			}
		}
	}
	return count, nil
}

func (o *Orchestrator) setHealth(stationID string, status health.Status, message string) {
	if o.health == nil {
		return
	}
	o.health.Set(health.CategoryStations, stationID, status, message)
}

func (o *Orchestrator) broadcast(msgType string, payload interface{}) {
	if o.hub == nil {
		return
	}
	if err := o.hub.Broadcast(msgType, payload); err != nil {
		o.logger.Debug().Err(err).Str("event", msgType).Msg("Broadcast failed")
	}
}
