// Package downloader drains missing songs through a download provider,
// ordered by urgency.
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/songtext"
)

// Credentials authenticate against a download provider.
type Credentials struct {
	Username string
	Password string
}

// Provider fetches one song and returns the path of the written file.
type Provider interface {
	Name() string
	Download(ctx context.Context, artist, title string) (string, error)
}

// MockProvider writes placeholder files instead of fetching anything.
// Useful for development and for running without a provider account.
type MockProvider struct {
	folder  string
	latency time.Duration
	creds   Credentials
	logger  zerolog.Logger
}

// NewMockProvider creates a mock provider writing into folder.
func NewMockProvider(folder string, creds Credentials, logger zerolog.Logger) *MockProvider {
	return &MockProvider{
		folder:  folder,
		latency: 100 * time.Millisecond,
		creds:   creds,
		logger:  logger.With().Str("component", "provider").Str("provider", "mock").Logger(),
	}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string { return "mock" }

// Download writes an empty placeholder file named like the real track.
func (p *MockProvider) Download(ctx context.Context, artist, title string) (string, error) {
	select {
	case <-time.After(p.latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := os.MkdirAll(p.folder, 0o755); err != nil {
		return "", fmt.Errorf("create download folder: %w", err)
	}

	path := filepath.Join(p.folder, songtext.SanitizeFilename(artist, title))
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return "", fmt.Errorf("write placeholder: %w", err)
	}

	p.logger.Debug().Str("path", path).Msg("Wrote placeholder download")
	return path, nil
}
