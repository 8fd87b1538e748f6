// Package ranking maintains the popularity ranking used for substitutions
// and download priority scoring.
package ranking

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/database"
)

// Service accumulates play counts and answers position lookups.
type Service struct {
	store  *database.Store
	logger zerolog.Logger
}

// NewService creates a new ranking service.
func NewService(store *database.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "ranking").Logger(),
	}
}

// Record bumps a song's play count, creating the entry when unseen.
func (s *Service) Record(ctx context.Context, title, artist, style string) error {
	if title == "" || artist == "" {
		return nil
	}
	return s.store.IncrementRanking(ctx, title, artist, style)
}

// Top returns the ranking sorted descending by play count.
func (s *Service) Top(ctx context.Context, limit int) ([]*database.RankingSong, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.TopRanking(ctx, limit)
}

// Position returns the zero-based rank of a song, or -1 when unranked.
func (s *Service) Position(ctx context.Context, artist, title string) (int, error) {
	return s.store.RankingPosition(ctx, artist, title)
}
