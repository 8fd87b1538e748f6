package grade

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/database"
)

// Broadcaster pushes events to connected UI clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Service orchestrates block builds: it runs the generator, merges the
// result into the weekday schedule file, records history and notifies
// clients.
type Service struct {
	cfg       config.GenerationConfig
	store     *database.Store
	generator *Generator
	writer    *MergeWriter
	hub       Broadcaster
	logger    zerolog.Logger

	mu        sync.Mutex
	lastBuilt string // weekday+block key of the last incremental build
}

// NewService creates a grade service.
func NewService(cfg config.GenerationConfig, store *database.Store, generator *Generator,
	writer *MergeWriter, hub Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		generator: generator,
		writer:    writer,
		hub:       hub,
		logger:    logger.With().Str("component", "grade").Logger(),
	}
}

// BuildUpcoming builds the block at the next half-hour boundary and merges
// it into that day's file. Repeated calls inside the same lead window are
// no-ops, so the trigger can fire more than once without rebuilding.
func (s *Service) BuildUpcoming(ctx context.Context, now time.Time) (*BlockResult, error) {
	lead := time.Duration(s.cfg.LeadMinutes) * time.Minute
	bt := NextBlockTime(now, lead)

	day := now
	if bt.MinuteOfDay() < now.Hour()*60+now.Minute() {
		day = now.Add(24 * time.Hour) // boundary wrapped past midnight
	}

	key := WeekdayCode(day.Weekday()) + " " + bt.Key()
	s.mu.Lock()
	if s.lastBuilt == key {
		s.mu.Unlock()
		s.logger.Debug().Str("block", key).Msg("Block already built, skipping")
		return nil, nil
	}
	s.mu.Unlock()

	res, err := s.BuildBlockAt(ctx, day, bt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastBuilt = key
	s.mu.Unlock()
	return res, nil
}

// BuildBlockAt builds one block for a specific day and merges it into the
// weekday file, leaving the other 47 lines untouched.
func (s *Service) BuildBlockAt(ctx context.Context, day time.Time, bt BlockTime) (*BlockResult, error) {
	s.logger.Info().Str("weekday", WeekdayCode(day.Weekday())).Str("block", bt.Key()).Msg("Building block")

	res, err := s.generator.BuildBlock(ctx, day, bt, false)
	if err != nil {
		return nil, err
	}

	if err := s.writer.Merge(day.Weekday(), map[string]string{bt.Key(): res.Line}); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, bt.Key(), res.Program, res.Processed, res.Found, res.Missing)
	s.broadcast(EventBlockBuilt, BlockBuiltPayload{
		Weekday:   WeekdayCode(day.Weekday()),
		Block:     bt.Key(),
		Program:   res.Program,
		Processed: res.Processed,
		Found:     res.Found,
		Missing:   res.Missing,
	})

	s.logger.Info().Str("block", bt.Key()).
		Int("processed", res.Processed).Int("found", res.Found).Int("missing", res.Missing).
		Msg("Block built")
	return res, nil
}

// BuildFullDay regenerates all 48 blocks of a day and rewrites its file.
func (s *Service) BuildFullDay(ctx context.Context, day time.Time) (*DayResult, error) {
	code := WeekdayCode(day.Weekday())
	s.logger.Info().Str("weekday", code).Msg("Building full day")
	s.broadcast(EventFullDayStarted, FullDayStartedPayload{Weekday: code})

	res, err := s.generator.BuildFullDay(ctx, day)
	if err != nil {
		return nil, err
	}

	lines := make(map[string]string, len(res.Blocks))
	for _, block := range res.Blocks {
		lines[block.Time.Key()] = block.Line
	}
	if err := s.writer.Merge(day.Weekday(), lines); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, "full day", code, res.Processed, res.Found, res.Missing)
	s.broadcast(EventFullDayCompleted, FullDayCompletedPayload{
		Weekday:   code,
		Blocks:    len(res.Blocks),
		Processed: res.Processed,
		Found:     res.Found,
		Missing:   res.Missing,
	})

	s.logger.Info().Str("weekday", code).Int("blocks", len(res.Blocks)).
		Int("processed", res.Processed).Int("found", res.Found).Int("missing", res.Missing).
		Msg("Full day built")
	return res, nil
}

// ReadDay returns the current lines of a weekday file keyed by "HH:MM".
func (s *Service) ReadDay(d time.Weekday) (map[string]string, error) {
	return s.writer.Read(d)
}

// FilePath returns the schedule file path for a weekday.
func (s *Service) FilePath(d time.Weekday) string {
	return s.writer.FilePath(d)
}

// History returns the most recent build records.
func (s *Service) History(ctx context.Context, limit int) ([]*database.GradeHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListGradeHistory(ctx, limit)
}

func (s *Service) recordHistory(ctx context.Context, block, program string, processed, found, missing int) {
	err := s.store.CreateGradeHistory(ctx, database.GradeHistoryEntry{
		Block:          block,
		Program:        program,
		SongsProcessed: processed,
		SongsFound:     found,
		SongsMissing:   missing,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record grade history")
	}
}

func (s *Service) broadcast(msgType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Broadcast(msgType, payload); err != nil {
		s.logger.Debug().Err(err).Str("event", msgType).Msg("Broadcast failed")
	}
}
