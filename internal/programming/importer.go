// Package programming imports the YAML bootstrap file describing stations,
// sequences and fixed content into the database.
package programming

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gradecast/gradecast/internal/database"
)

// File is the root of the programming YAML document.
type File struct {
	Stations      []StationDef      `yaml:"stations"`
	Sequences     []SequenceDef     `yaml:"sequences"`
	FixedContents []FixedContentDef `yaml:"fixed_contents"`
}

// StationDef defines one monitored station.
type StationDef struct {
	ID                  string `yaml:"id"`
	Name                string `yaml:"name"`
	URL                 string `yaml:"url"`
	NowPlayingSelector  string `yaml:"now_playing_selector"`
	RecentSelector      string `yaml:"recent_selector"`
	Enabled             *bool  `yaml:"enabled"` // absent means enabled
	Regional            bool   `yaml:"regional"`
	Style               string `yaml:"style"`
	PrioritizeDownloads bool   `yaml:"prioritize_downloads"`
}

// SequenceDef defines the default sequence or a scheduled override.
type SequenceDef struct {
	Name      string   `yaml:"name"`
	Default   bool     `yaml:"default"`
	Enabled   *bool    `yaml:"enabled"`
	Weekdays  []int    `yaml:"weekdays"`
	StartTime string   `yaml:"start_time"`
	EndTime   string   `yaml:"end_time"`
	Priority  int      `yaml:"priority"`
	Tokens    []string `yaml:"tokens"`
}

// FixedContentDef defines one fixed editorial item.
type FixedContentDef struct {
	Name             string   `yaml:"name"`
	FilenameTemplate string   `yaml:"filename_template"`
	DayPattern       string   `yaml:"day_pattern"` // WEEKDAYS, WEEKEND or ALL
	TimeSlots        []string `yaml:"time_slots"`
	PositionPolicy   string   `yaml:"position_policy"` // start, middle or end
	Enabled          *bool    `yaml:"enabled"`
}

// Importer loads a programming file into the store.
type Importer struct {
	store  *database.Store
	logger zerolog.Logger
}

// NewImporter creates a programming importer.
func NewImporter(store *database.Store, logger zerolog.Logger) *Importer {
	return &Importer{
		store:  store,
		logger: logger.With().Str("component", "programming").Logger(),
	}
}

// Parse reads and validates a programming file.
func Parse(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read programming file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse programming file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[string]bool, len(f.Stations))
	for _, st := range f.Stations {
		if st.ID == "" || st.URL == "" {
			return fmt.Errorf("station %q needs both id and url", st.Name)
		}
		if seen[st.ID] {
			return fmt.Errorf("duplicate station id %q", st.ID)
		}
		seen[st.ID] = true
	}

	defaults := 0
	for _, seq := range f.Sequences {
		if seq.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return fmt.Errorf("only one sequence may be the default, found %d", defaults)
	}
	return nil
}

// ImportIfEmpty loads the file into the database when no stations exist
// yet. An already populated database is left untouched so user edits
// survive restarts.
func (i *Importer) ImportIfEmpty(ctx context.Context, path string) error {
	stations, err := i.store.ListStations(ctx)
	if err != nil {
		return err
	}
	if len(stations) > 0 {
		i.logger.Debug().Int("stations", len(stations)).Msg("Database already populated, skipping import")
		return nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		i.logger.Info().Str("path", path).Msg("No programming file found, starting empty")
		return nil
	}

	f, err := Parse(path)
	if err != nil {
		return err
	}
	if err := i.Apply(ctx, f); err != nil {
		return err
	}

	i.logger.Info().Str("path", path).
		Int("stations", len(f.Stations)).
		Int("sequences", len(f.Sequences)).
		Int("fixedContents", len(f.FixedContents)).
		Msg("Programming imported")
	return nil
}

// Apply writes the file's contents into the store.
func (i *Importer) Apply(ctx context.Context, f *File) error {
	for _, st := range f.Stations {
		err := i.store.UpsertStation(ctx, database.Station{
			ID:                  st.ID,
			Name:                st.Name,
			URL:                 st.URL,
			NowPlayingSelector:  st.NowPlayingSelector,
			RecentSelector:      st.RecentSelector,
			Enabled:             enabled(st.Enabled),
			Regional:            st.Regional,
			Style:               st.Style,
			PrioritizeDownloads: st.PrioritizeDownloads,
		})
		if err != nil {
			return fmt.Errorf("import station %q: %w", st.ID, err)
		}
	}

	for _, seq := range f.Sequences {
		_, err := i.store.UpsertSequence(ctx, database.Sequence{
			Name:      seq.Name,
			IsDefault: seq.Default,
			Enabled:   enabled(seq.Enabled),
			Weekdays:  seq.Weekdays,
			StartTime: seq.StartTime,
			EndTime:   seq.EndTime,
			Priority:  seq.Priority,
			Tokens:    seq.Tokens,
		})
		if err != nil {
			return fmt.Errorf("import sequence %q: %w", seq.Name, err)
		}
	}

	for _, fc := range f.FixedContents {
		_, err := i.store.UpsertFixedContent(ctx, database.FixedContent{
			Name:             fc.Name,
			FilenameTemplate: fc.FilenameTemplate,
			DayPattern:       fc.DayPattern,
			TimeSlots:        fc.TimeSlots,
			PositionPolicy:   fc.PositionPolicy,
			Enabled:          enabled(fc.Enabled),
		})
		if err != nil {
			return fmt.Errorf("import fixed content %q: %w", fc.Name, err)
		}
	}
	return nil
}

func enabled(v *bool) bool {
	return v == nil || *v
}
