// Package library answers whether a song already exists in the local
// music library.
package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/songtext"
)

// Checker is the capability the selection cascade uses to verify local
// availability before committing a song to the grade.
type Checker interface {
	Exists(ctx context.Context, artist, title string) (bool, error)
	// Invalidate drops cached listings, e.g. after a download completes.
	Invalidate()
}

// Config holds filesystem checker configuration.
type Config struct {
	SearchPaths         []string
	SimilarityThreshold float64
	CacheTTL            time.Duration
}

// FilesystemChecker scans configured folders and matches filenames by
// normalized token overlap.
type FilesystemChecker struct {
	cfg    Config
	logger zerolog.Logger

	mu        sync.Mutex
	files     []string // normalized base names without extension
	refreshed time.Time
}

// NewFilesystemChecker creates a checker over the configured search paths.
func NewFilesystemChecker(cfg Config, logger zerolog.Logger) *FilesystemChecker {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.6
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &FilesystemChecker{
		cfg:    cfg,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// Exists reports whether a file plausibly containing the song is present in
// any search path. The caller is expected to bound the call with a timeout
// context; cancellation is honored between directory reads.
func (c *FilesystemChecker) Exists(ctx context.Context, artist, title string) (bool, error) {
	files, err := c.listing(ctx)
	if err != nil {
		return false, err
	}

	want := songtext.Normalize(artist) + " " + songtext.Normalize(title)
	for _, name := range files {
		if songtext.Similarity(want, name) >= c.cfg.SimilarityThreshold {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached listing so the next check rescans.
func (c *FilesystemChecker) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = nil
	c.refreshed = time.Time{}
}

func (c *FilesystemChecker) listing(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.files != nil && time.Since(c.refreshed) < c.cfg.CacheTTL {
		return c.files, nil
	}

	var files []string
	for _, root := range c.cfg.SearchPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			ext := strings.ToLower(filepath.Ext(name))
			if ext != ".mp3" && ext != ".flac" && ext != ".ogg" && ext != ".wav" && ext != ".m4a" {
				return nil
			}
			files = append(files, songtext.Normalize(strings.TrimSuffix(name, filepath.Ext(name))))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	c.files = files
	c.refreshed = time.Now()
	c.logger.Debug().Int("files", len(files)).Msg("Library listing refreshed")
	return files, nil
}

// NoopChecker reports every song as available. Selected when no search
// paths are configured, so generation proceeds without a local library.
type NoopChecker struct{}

// Exists always reports true.
func (NoopChecker) Exists(context.Context, string, string) (bool, error) { return true, nil }

// Invalidate is a no-op.
func (NoopChecker) Invalidate() {}
