package downloader

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/library"
)

// Broadcaster pushes queue events to connected UI clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// queueItem is one pending download with its attempt count.
type queueItem struct {
	song     *database.MissingSong
	attempts int
	seq      int64 // enqueue order, breaks urgency ties
}

// Queue is the urgency-ordered download queue. Items drain one at a time
// through the provider; at most one drain runs at once.
type Queue struct {
	cfg      config.DownloadConfig
	store    *database.Store
	provider Provider
	checker  library.Checker
	hub      Broadcaster
	logger   zerolog.Logger

	mu       sync.Mutex
	items    []*queueItem
	queued   map[string]bool // missing song ids currently in the queue
	nextSeq  int64
	draining bool
	enabled  bool
}

// NewQueue creates a download queue.
func NewQueue(cfg config.DownloadConfig, store *database.Store, provider Provider,
	checker library.Checker, hub Broadcaster, logger zerolog.Logger) *Queue {
	return &Queue{
		cfg:      cfg,
		store:    store,
		provider: provider,
		checker:  checker,
		hub:      hub,
		logger:   logger.With().Str("component", "download-queue").Logger(),
		queued:   make(map[string]bool),
		enabled:  cfg.Enabled,
	}
}

// Enabled reports whether the queue accepts and drains downloads.
func (q *Queue) Enabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

// SetEnabled flips draining on or off at runtime. Disabling does not
// discard pending items; a running drain stops before its next item.
func (q *Queue) SetEnabled(enabled bool) {
	q.mu.Lock()
	q.enabled = enabled
	q.mu.Unlock()
	q.logger.Info().Bool("enabled", enabled).Msg("Download queue toggled")
}

// Enqueue adds a missing song. A song already queued is left in place.
// A disabled queue still accepts items; the flag only gates draining, so
// nothing reported during a disabled window is lost.
func (q *Queue) Enqueue(song *database.MissingSong) {
	if song == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.queued[song.ID] {
		return
	}
	q.queued[song.ID] = true
	q.items = append(q.items, &queueItem{song: song, seq: q.nextSeq})
	q.nextSeq++

	q.logger.Debug().Str("artist", song.Artist).Str("title", song.Title).
		Int("urgency", song.Urgency).Int("pending", len(q.items)).
		Msg("Song queued for download")
}

// Len returns the number of pending items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Requeue reloads unsatisfied missing songs from the database, typically
// at startup.
func (q *Queue) Requeue(ctx context.Context) error {
	songs, err := q.store.ListMissing(ctx, database.MissingStatusMissing)
	if err != nil {
		return err
	}
	for _, song := range songs {
		q.Enqueue(song)
	}
	return nil
}

// pop removes and returns the most urgent item, oldest first on ties.
func (q *Queue) pop() *queueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	sort.SliceStable(q.items, func(i, j int) bool {
		if q.items[i].song.Urgency != q.items[j].song.Urgency {
			return q.items[i].song.Urgency > q.items[j].song.Urgency
		}
		return q.items[i].seq < q.items[j].seq
	})
	it := q.items[0]
	q.items = q.items[1:]
	return it
}

func (q *Queue) requeueItem(it *queueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, it)
}

func (q *Queue) forget(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queued, id)
}

// Drain processes the queue until it is empty. Only one drain runs at a
// time; concurrent calls return immediately.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.draining || !q.enabled {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	var succeeded, failed int
	for {
		if ctx.Err() != nil || !q.Enabled() {
			break
		}
		it := q.pop()
		if it == nil {
			break
		}

		if q.processItem(ctx, it) {
			succeeded++
		} else if it.attempts > q.cfg.RetryCap {
			failed++
		}

		if q.Len() > 0 && q.cfg.ItemDelaySeconds > 0 {
			select {
			case <-time.After(time.Duration(q.cfg.ItemDelaySeconds) * time.Second):
			case <-ctx.Done():
			}
		}
	}

	if succeeded > 0 || failed > 0 {
		q.logger.Info().Int("succeeded", succeeded).Int("failed", failed).Msg("Download queue drained")
		q.broadcast(EventQueueDrained, QueueDrainedPayload{Succeeded: succeeded, Failed: failed})
	}
}

// processItem attempts one download. A failed item goes back on the queue
// until its attempts exceed the retry cap.
func (q *Queue) processItem(ctx context.Context, it *queueItem) bool {
	song := it.song
	it.attempts++

	q.broadcast(EventDownloadStarted, DownloadStartedPayload{
		Artist: song.Artist, Title: song.Title, Urgency: song.Urgency, Attempt: it.attempts,
	})
	if err := q.store.UpdateMissingStatus(ctx, song.ID, database.MissingStatusDownloading); err != nil {
		q.logger.Warn().Err(err).Str("id", song.ID).Msg("Failed to mark song downloading")
	}

	started := time.Now()
	path, err := q.provider.Download(ctx, song.Artist, song.Title)
	elapsed := time.Since(started)

	if err != nil {
		q.logger.Warn().Err(err).Str("artist", song.Artist).Str("title", song.Title).
			Int("attempt", it.attempts).Msg("Download failed")

		exhausted := it.attempts > q.cfg.RetryCap
		q.broadcast(EventDownloadFailed, DownloadFailedPayload{
			Artist: song.Artist, Title: song.Title,
			Attempt: it.attempts, Exhausted: exhausted, Error: err.Error(),
		})

		if exhausted {
			q.recordHistory(ctx, song, "failed", elapsed, err)
			q.setStatus(ctx, song.ID, database.MissingStatusError)
			q.forget(song.ID)
		} else {
			q.setStatus(ctx, song.ID, database.MissingStatusMissing)
			q.requeueItem(it)
		}
		return false
	}

	q.recordHistory(ctx, song, "success", elapsed, nil)
	q.setStatus(ctx, song.ID, database.MissingStatusDownloaded)
	q.forget(song.ID)
	if q.checker != nil {
		q.checker.Invalidate()
	}

	q.logger.Info().Str("artist", song.Artist).Str("title", song.Title).
		Str("path", path).Dur("elapsed", elapsed).Msg("Download completed")
	q.broadcast(EventDownloadCompleted, DownloadCompletedPayload{
		Artist: song.Artist, Title: song.Title, Path: path,
	})
	return true
}

func (q *Queue) setStatus(ctx context.Context, id, status string) {
	if err := q.store.UpdateMissingStatus(ctx, id, status); err != nil {
		q.logger.Warn().Err(err).Str("id", id).Str("status", status).Msg("Failed to update missing song status")
	}
}

func (q *Queue) recordHistory(ctx context.Context, song *database.MissingSong, status string, elapsed time.Duration, cause error) {
	entry := database.DownloadHistoryEntry{
		Artist:     song.Artist,
		Title:      song.Title,
		Status:     status,
		DurationMs: elapsed.Milliseconds(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := q.store.CreateDownloadHistory(ctx, entry); err != nil {
		q.logger.Warn().Err(err).Msg("Failed to record download history")
	}
}

func (q *Queue) broadcast(msgType string, payload interface{}) {
	if q.hub == nil {
		return
	}
	if err := q.hub.Broadcast(msgType, payload); err != nil {
		q.logger.Debug().Err(err).Str("event", msgType).Msg("Broadcast failed")
	}
}
