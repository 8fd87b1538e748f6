// Package missing tracks songs the generator wanted but the local library
// lacks, and feeds them to the download queue by urgency.
package missing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/ranking"
)

// Enqueuer receives newly reported missing songs. The download queue
// implements it; a nil enqueuer means downloads are disabled.
type Enqueuer interface {
	Enqueue(song *database.MissingSong)
}

// Service records and manages missing songs.
type Service struct {
	store    *database.Store
	ranking  *ranking.Service
	enqueuer Enqueuer
	logger   zerolog.Logger
}

// NewService creates a missing song service.
func NewService(store *database.Store, rankingSvc *ranking.Service, logger zerolog.Logger) *Service {
	return &Service{
		store:   store,
		ranking: rankingSvc,
		logger:  logger.With().Str("component", "missing").Logger(),
	}
}

// SetEnqueuer wires the download queue after construction.
func (s *Service) SetEnqueuer(e Enqueuer) {
	s.enqueuer = e
}

// Report records a missing song and hands it to the download queue. A song
// already on the list is not reported twice; its existing record is kept.
func (s *Service) Report(ctx context.Context, title, artist, stationID string) error {
	if title == "" || artist == "" {
		return fmt.Errorf("missing song needs both title and artist")
	}

	existing, err := s.store.GetMissingBySong(ctx, artist, title)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}

	song := database.MissingSong{
		ID:        uuid.New().String(),
		Title:     title,
		Artist:    artist,
		StationID: stationID,
		Status:    database.MissingStatusMissing,
		Urgency:   s.urgency(ctx, title, artist, stationID),
	}
	if err := s.store.CreateMissing(ctx, song); err != nil {
		return err
	}

	s.logger.Info().Str("artist", artist).Str("title", title).
		Str("station", stationID).Int("urgency", song.Urgency).
		Msg("Missing song reported")

	if s.enqueuer != nil {
		s.enqueuer.Enqueue(&song)
	}
	return nil
}

// urgency scores a missing song for download ordering: ranked songs score
// max(0, 50-position), and songs from stations flagged for priority
// downloads get a flat 100 boost on top.
func (s *Service) urgency(ctx context.Context, title, artist, stationID string) int {
	score := 0

	pos, err := s.ranking.Position(ctx, artist, title)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to read ranking position")
	} else if pos >= 0 && pos < 50 {
		score += 50 - pos
	}

	if stationID != "" {
		st, err := s.store.GetStation(ctx, stationID)
		if err == nil && st.PrioritizeDownloads {
			score += 100
		}
	}
	return score
}

// List returns missing songs, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*database.MissingSong, error) {
	return s.store.ListMissing(ctx, status)
}

// UpdateStatus moves a missing song through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case database.MissingStatusMissing, database.MissingStatusDownloading,
		database.MissingStatusDownloaded, database.MissingStatusError:
	default:
		return fmt.Errorf("invalid missing song status %q", status)
	}
	return s.store.UpdateMissingStatus(ctx, id, status)
}

// Delete removes one missing song.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteMissing(ctx, id)
}

// Clear removes every missing song.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.ClearMissing(ctx)
}
