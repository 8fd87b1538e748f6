// Package health tracks the operational state of the engine's moving
// parts. All state is in-memory and resets on restart.
package health

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/database"
)

// Status represents the health state of an item.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Categories of tracked items.
const (
	CategoryDatabase  = "database"
	CategoryLibrary   = "library"
	CategoryOutput    = "output"
	CategoryStations  = "stations"
	CategoryDownloads = "downloads"
)

// Item is a single health-tracked item.
type Item struct {
	ID        string     `json:"id"`
	Category  string     `json:"category"`
	Status    Status     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Broadcaster pushes health changes to connected UI clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// EventHealthChanged is sent whenever an item changes status.
const EventHealthChanged = "health:changed"

// Service holds the current health items and runs the built-in checks.
type Service struct {
	store       *database.Store
	libraryDirs []string
	outputDir   string
	hub         Broadcaster
	logger      zerolog.Logger

	mu    sync.RWMutex
	items map[string]*Item // keyed by category + "/" + id
}

// NewService creates a health service.
func NewService(store *database.Store, libraryDirs []string, outputDir string,
	hub Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		store:       store,
		libraryDirs: libraryDirs,
		outputDir:   outputDir,
		hub:         hub,
		logger:      logger.With().Str("component", "health").Logger(),
		items:       make(map[string]*Item),
	}
}

// Set records the status of one item, broadcasting on change.
func (s *Service) Set(category, id string, status Status, message string) {
	key := category + "/" + id
	now := time.Now()

	s.mu.Lock()
	prev, existed := s.items[key]
	changed := !existed || prev.Status != status
	s.items[key] = &Item{ID: id, Category: category, Status: status, Message: message, Timestamp: &now}
	s.mu.Unlock()

	if !changed {
		return
	}
	if status != StatusOK {
		s.logger.Warn().Str("category", category).Str("id", id).Str("message", message).Msg("Health issue")
	} else if existed {
		s.logger.Info().Str("category", category).Str("id", id).Msg("Health restored")
	}
	if s.hub != nil {
		_ = s.hub.Broadcast(EventHealthChanged, s.Items())
	}
}

// Items returns a snapshot of all tracked items.
func (s *Service) Items() []*Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		copied := *item
		items = append(items, &copied)
	}
	return items
}

// Check runs the built-in checks: database reachability, library search
// paths, output folder writability and station scrape staleness.
func (s *Service) Check(ctx context.Context) {
	if _, err := s.store.ListStations(ctx); err != nil {
		s.Set(CategoryDatabase, "sqlite", StatusError, err.Error())
	} else {
		s.Set(CategoryDatabase, "sqlite", StatusOK, "")
	}

	for _, dir := range s.libraryDirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			s.Set(CategoryLibrary, dir, StatusError, "search path not reachable")
		} else {
			s.Set(CategoryLibrary, dir, StatusOK, "")
		}
	}

	s.checkOutput()
}

func (s *Service) checkOutput() {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		s.Set(CategoryOutput, s.outputDir, StatusError, "cannot create output folder")
		return
	}
	probe, err := os.CreateTemp(s.outputDir, ".health-*")
	if err != nil {
		s.Set(CategoryOutput, s.outputDir, StatusError, "output folder not writable")
		return
	}
	probe.Close()
	os.Remove(probe.Name())
	s.Set(CategoryOutput, s.outputDir, StatusOK, "")
}
