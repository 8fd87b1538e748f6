// Package pool aggregates songs captured off competing stations.
package pool

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/database"
)

// Service owns the captured-song pool. Entries are deduplicated per station
// by normalized (title, artist); a newer capture supersedes the old one and
// nothing is ever hard-deleted.
type Service struct {
	store  *database.Store
	logger zerolog.Logger
}

// NewService creates a new pool service.
func NewService(store *database.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "pool").Logger(),
	}
}

// Ingest records one captured song for a station.
func (s *Service) Ingest(ctx context.Context, stationID, title, artist string, capturedAt time.Time) error {
	if title == "" || artist == "" {
		return nil
	}
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	err := s.store.UpsertPoolEntry(ctx, database.PoolEntry{
		StationID:  stationID,
		Title:      title,
		Artist:     artist,
		CapturedAt: capturedAt,
	})
	if err != nil {
		return err
	}

	s.logger.Debug().
		Str("station", stationID).
		Str("artist", artist).
		Str("title", title).
		Msg("Pool entry ingested")
	return nil
}

// ByStation returns one station's pool, freshest captures first.
func (s *Service) ByStation(ctx context.Context, stationID string) ([]*database.PoolEntry, error) {
	return s.store.ListPoolByStation(ctx, stationID)
}

// All returns the full combined pool, freshest first.
func (s *Service) All(ctx context.Context) ([]*database.PoolEntry, error) {
	return s.store.ListPool(ctx)
}

// ByStyle returns entries from stations sharing a style tag.
func (s *Service) ByStyle(ctx context.Context, style string) ([]*database.PoolEntry, error) {
	if style == "" {
		return nil, nil
	}
	return s.store.ListPoolByStyle(ctx, style)
}

// Regional returns entries from stations flagged regional.
func (s *Service) Regional(ctx context.Context) ([]*database.PoolEntry, error) {
	return s.store.ListRegionalPool(ctx)
}
