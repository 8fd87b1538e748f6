// Package scrape captures now-playing and recently-played songs from the
// monitored stations' pages and feeds them into the pool and the ranking.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/database"
)

// Song is one captured play.
type Song struct {
	Title      string
	Artist     string
	NowPlaying bool
}

// Fetcher extracts the songs currently listed on a station's page.
type Fetcher interface {
	Fetch(ctx context.Context, station *database.Station) ([]Song, error)
}

// HTTPFetcher fetches station pages over HTTP and extracts songs with the
// station's CSS selectors.
type HTTPFetcher struct {
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(timeout time.Duration, logger zerolog.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch downloads the station page and extracts the now-playing song plus
// the recently-played list. The now-playing entry comes first.
func (f *HTTPFetcher) Fetch(ctx context.Context, station *database.Station) ([]Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, station.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "gradecast/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", station.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", station.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", station.URL, err)
	}

	var songs []Song
	if station.NowPlayingSelector != "" {
		text := strings.TrimSpace(doc.Find(station.NowPlayingSelector).First().Text())
		if song, ok := parseSong(text); ok {
			song.NowPlaying = true
			songs = append(songs, song)
		}
	}
	if station.RecentSelector != "" {
		doc.Find(station.RecentSelector).Each(func(_ int, sel *goquery.Selection) {
			if song, ok := parseSong(strings.TrimSpace(sel.Text())); ok {
				songs = append(songs, song)
			}
		})
	}

	f.logger.Debug().Str("station", station.ID).Int("songs", len(songs)).Msg("Station page scraped")
	return songs, nil
}

// parseSong splits "Artist - Title" text. Extra dashes stay in the title,
// since artist names rarely contain " - " while titles sometimes do.
func parseSong(text string) (Song, bool) {
	parts := strings.SplitN(text, " - ", 2)
	if len(parts) != 2 {
		return Song{}, false
	}
	artist := strings.TrimSpace(parts[0])
	title := strings.TrimSpace(parts[1])
	if artist == "" || title == "" {
		return Song{}, false
	}
	return Song{Title: title, Artist: artist}, true
}
