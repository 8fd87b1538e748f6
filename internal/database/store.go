package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gradecast/gradecast/internal/songtext"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store provides hand-written typed queries over the SQLite schema.
type Store struct {
	conn *sql.DB
}

// NewStore creates a query store on top of an open connection.
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// Station is a monitored competitor station.
type Station struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	URL                 string `json:"url"`
	NowPlayingSelector  string `json:"nowPlayingSelector"`
	RecentSelector      string `json:"recentSelector"`
	Enabled             bool   `json:"enabled"`
	Regional            bool   `json:"regional"`
	Style               string `json:"style"`
	PrioritizeDownloads bool   `json:"prioritizeDownloads"`
}

// PoolEntry is one captured song in a station's pool.
type PoolEntry struct {
	ID         int64     `json:"id"`
	StationID  string    `json:"stationId"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Tier buckets a pool entry by capture freshness.
// P0 is under a day old, P1 under three days, P2 anything older.
func (e *PoolEntry) Tier(now time.Time) string {
	age := now.Sub(e.CapturedAt)
	switch {
	case age < 24*time.Hour:
		return "P0"
	case age < 72*time.Hour:
		return "P1"
	default:
		return "P2"
	}
}

// RankingSong is one entry of the popularity ranking.
type RankingSong struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	PlayCount int64  `json:"playCount"`
	Style     string `json:"style"`
	Trend     int    `json:"trend"`
}

// Sequence is the default sequence or a scheduled override.
type Sequence struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	IsDefault bool     `json:"isDefault"`
	Enabled   bool     `json:"enabled"`
	Weekdays  []int    `json:"weekdays"` // time.Weekday values; empty means every day
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Priority  int      `json:"priority"`
	Tokens    []string `json:"tokens"`
}

// FixedContent is a user-authored fixed editorial item.
type FixedContent struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	FilenameTemplate string   `json:"filenameTemplate"`
	DayPattern       string   `json:"dayPattern"` // WEEKDAYS, WEEKEND or ALL
	TimeSlots        []string `json:"timeSlots"`  // "HH:MM"
	PositionPolicy   string   `json:"positionPolicy"`
	Enabled          bool     `json:"enabled"`
}

// MissingSong statuses.
const (
	MissingStatusMissing     = "missing"
	MissingStatusDownloading = "downloading"
	MissingStatusDownloaded  = "downloaded"
	MissingStatusError       = "error"
)

// MissingSong is a song the cascade wanted but the library does not have.
type MissingSong struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	StationID string    `json:"stationId"`
	Status    string    `json:"status"`
	Urgency   int       `json:"urgency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DownloadHistoryEntry records one download attempt outcome.
type DownloadHistoryEntry struct {
	ID         int64     `json:"id"`
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GradeHistoryEntry records one grade build.
type GradeHistoryEntry struct {
	ID             int64     `json:"id"`
	Block          string    `json:"block"` // "HH:MM" or "full day"
	Program        string    `json:"program"`
	SongsProcessed int       `json:"songsProcessed"`
	SongsFound     int       `json:"songsFound"`
	SongsMissing   int       `json:"songsMissing"`
	CreatedAt      time.Time `json:"createdAt"`
}

// --- stations ---

// UpsertStation inserts or replaces a station definition.
func (s *Store) UpsertStation(ctx context.Context, st Station) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO stations (id, name, url, now_playing_selector, recent_selector, enabled, regional, style, prioritize_downloads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			now_playing_selector = excluded.now_playing_selector,
			recent_selector = excluded.recent_selector,
			enabled = excluded.enabled,
			regional = excluded.regional,
			style = excluded.style,
			prioritize_downloads = excluded.prioritize_downloads`,
		st.ID, st.Name, st.URL, st.NowPlayingSelector, st.RecentSelector,
		st.Enabled, st.Regional, st.Style, st.PrioritizeDownloads)
	if err != nil {
		return fmt.Errorf("upsert station %q: %w", st.ID, err)
	}
	return nil
}

// GetStation returns one station by id.
func (s *Store) GetStation(ctx context.Context, id string) (*Station, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, name, url, now_playing_selector, recent_selector, enabled, regional, style, prioritize_downloads
		FROM stations WHERE id = ?`, id)
	st, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

// ListStations returns all stations ordered by id.
func (s *Store) ListStations(ctx context.Context) ([]*Station, error) {
	return s.queryStations(ctx, `
		SELECT id, name, url, now_playing_selector, recent_selector, enabled, regional, style, prioritize_downloads
		FROM stations ORDER BY id`)
}

// ListEnabledStations returns stations eligible for scraping.
func (s *Store) ListEnabledStations(ctx context.Context) ([]*Station, error) {
	return s.queryStations(ctx, `
		SELECT id, name, url, now_playing_selector, recent_selector, enabled, regional, style, prioritize_downloads
		FROM stations WHERE enabled = 1 ORDER BY id`)
}

func (s *Store) queryStations(ctx context.Context, query string, args ...any) ([]*Station, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (*Station, error) {
	st := &Station{}
	err := row.Scan(&st.ID, &st.Name, &st.URL, &st.NowPlayingSelector, &st.RecentSelector,
		&st.Enabled, &st.Regional, &st.Style, &st.PrioritizeDownloads)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// --- pool entries ---

// UpsertPoolEntry records a captured song; a newer capture of the same
// normalized (title, artist) on the same station supersedes the old row.
func (s *Store) UpsertPoolEntry(ctx context.Context, e PoolEntry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO pool_entries (station_id, title, artist, norm_title, norm_artist, captured_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id, norm_title, norm_artist) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			captured_at = MAX(captured_at, excluded.captured_at)`,
		e.StationID, e.Title, e.Artist,
		songtext.Normalize(e.Title), songtext.Normalize(e.Artist), e.CapturedAt)
	if err != nil {
		return fmt.Errorf("upsert pool entry: %w", err)
	}
	return nil
}

// ListPoolByStation returns a station's pool, freshest captures first.
func (s *Store) ListPoolByStation(ctx context.Context, stationID string) ([]*PoolEntry, error) {
	return s.queryPool(ctx, `
		SELECT id, station_id, title, artist, captured_at
		FROM pool_entries WHERE station_id = ? ORDER BY captured_at DESC, id`, stationID)
}

// ListPool returns the full combined pool, freshest first.
func (s *Store) ListPool(ctx context.Context) ([]*PoolEntry, error) {
	return s.queryPool(ctx, `
		SELECT id, station_id, title, artist, captured_at
		FROM pool_entries ORDER BY captured_at DESC, id`)
}

// ListPoolByStyle returns entries captured from stations carrying the style tag.
func (s *Store) ListPoolByStyle(ctx context.Context, style string) ([]*PoolEntry, error) {
	return s.queryPool(ctx, `
		SELECT p.id, p.station_id, p.title, p.artist, p.captured_at
		FROM pool_entries p
		JOIN stations st ON st.id = p.station_id
		WHERE st.style = ? ORDER BY p.captured_at DESC, p.id`, style)
}

// ListRegionalPool returns entries from stations flagged regional.
func (s *Store) ListRegionalPool(ctx context.Context) ([]*PoolEntry, error) {
	return s.queryPool(ctx, `
		SELECT p.id, p.station_id, p.title, p.artist, p.captured_at
		FROM pool_entries p
		JOIN stations st ON st.id = p.station_id
		WHERE st.regional = 1 ORDER BY p.captured_at DESC, p.id`)
}

func (s *Store) queryPool(ctx context.Context, query string, args ...any) ([]*PoolEntry, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pool entries: %w", err)
	}
	defer rows.Close()

	var entries []*PoolEntry
	for rows.Next() {
		e := &PoolEntry{}
		if err := rows.Scan(&e.ID, &e.StationID, &e.Title, &e.Artist, &e.CapturedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- ranking ---

// IncrementRanking bumps a song's play count, creating it when unseen.
func (s *Store) IncrementRanking(ctx context.Context, title, artist, style string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO ranking_songs (title, artist, norm_title, norm_artist, play_count, style)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(norm_artist, norm_title) DO UPDATE SET
			play_count = play_count + 1,
			trend = 1`,
		title, artist, songtext.Normalize(title), songtext.Normalize(artist), style)
	if err != nil {
		return fmt.Errorf("increment ranking: %w", err)
	}
	return nil
}

// TopRanking returns the ranking sorted descending by play count.
func (s *Store) TopRanking(ctx context.Context, limit int) ([]*RankingSong, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, artist, play_count, style, trend
		FROM ranking_songs ORDER BY play_count DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top ranking: %w", err)
	}
	defer rows.Close()

	var songs []*RankingSong
	for rows.Next() {
		r := &RankingSong{}
		if err := rows.Scan(&r.ID, &r.Title, &r.Artist, &r.PlayCount, &r.Style, &r.Trend); err != nil {
			return nil, err
		}
		songs = append(songs, r)
	}
	return songs, rows.Err()
}

// RankingPosition returns the zero-based rank of a song, or -1 when unranked.
func (s *Store) RankingPosition(ctx context.Context, artist, title string) (int, error) {
	exists, err := s.RankingExists(ctx, artist, title)
	if err != nil {
		return -1, fmt.Errorf("ranking position: %w", err)
	}
	if !exists {
		return -1, nil
	}

	row := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM ranking_songs
		WHERE play_count > (
			SELECT play_count FROM ranking_songs WHERE norm_artist = ? AND norm_title = ?)`,
		songtext.Normalize(artist), songtext.Normalize(title))

	var position int
	if err := row.Scan(&position); err != nil {
		return -1, fmt.Errorf("ranking position: %w", err)
	}
	return position, nil
}

// RankingExists reports whether a song is part of the ranking at all.
func (s *Store) RankingExists(ctx context.Context, artist, title string) (bool, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ranking_songs WHERE norm_artist = ? AND norm_title = ?`,
		songtext.Normalize(artist), songtext.Normalize(title))
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- sequences ---

// UpsertSequence inserts or updates a sequence definition.
func (s *Store) UpsertSequence(ctx context.Context, seq Sequence) (int64, error) {
	weekdays := joinInts(seq.Weekdays)
	tokens := strings.Join(seq.Tokens, ",")

	if seq.ID > 0 {
		_, err := s.conn.ExecContext(ctx, `
			UPDATE sequences SET name=?, is_default=?, enabled=?, weekdays=?, start_time=?, end_time=?, priority=?, tokens=?
			WHERE id=?`,
			seq.Name, seq.IsDefault, seq.Enabled, weekdays, seq.StartTime, seq.EndTime, seq.Priority, tokens, seq.ID)
		if err != nil {
			return 0, fmt.Errorf("update sequence: %w", err)
		}
		return seq.ID, nil
	}

	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO sequences (name, is_default, enabled, weekdays, start_time, end_time, priority, tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		seq.Name, seq.IsDefault, seq.Enabled, weekdays, seq.StartTime, seq.EndTime, seq.Priority, tokens)
	if err != nil {
		return 0, fmt.Errorf("insert sequence: %w", err)
	}
	return res.LastInsertId()
}

// ListSequences returns every sequence, default first then by priority descending.
func (s *Store) ListSequences(ctx context.Context) ([]*Sequence, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, is_default, enabled, weekdays, start_time, end_time, priority, tokens
		FROM sequences ORDER BY is_default DESC, priority DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sequences: %w", err)
	}
	defer rows.Close()

	var seqs []*Sequence
	for rows.Next() {
		seq := &Sequence{}
		var weekdays, tokens string
		if err := rows.Scan(&seq.ID, &seq.Name, &seq.IsDefault, &seq.Enabled,
			&weekdays, &seq.StartTime, &seq.EndTime, &seq.Priority, &tokens); err != nil {
			return nil, err
		}
		seq.Weekdays = splitInts(weekdays)
		seq.Tokens = splitList(tokens)
		seqs = append(seqs, seq)
	}
	return seqs, rows.Err()
}

// --- fixed content ---

// UpsertFixedContent inserts or updates a fixed content item.
func (s *Store) UpsertFixedContent(ctx context.Context, fc FixedContent) (int64, error) {
	slots := strings.Join(fc.TimeSlots, ",")

	if fc.ID > 0 {
		_, err := s.conn.ExecContext(ctx, `
			UPDATE fixed_contents SET name=?, filename_template=?, day_pattern=?, time_slots=?, position_policy=?, enabled=?
			WHERE id=?`,
			fc.Name, fc.FilenameTemplate, fc.DayPattern, slots, fc.PositionPolicy, fc.Enabled, fc.ID)
		if err != nil {
			return 0, fmt.Errorf("update fixed content: %w", err)
		}
		return fc.ID, nil
	}

	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO fixed_contents (name, filename_template, day_pattern, time_slots, position_policy, enabled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fc.Name, fc.FilenameTemplate, fc.DayPattern, slots, fc.PositionPolicy, fc.Enabled)
	if err != nil {
		return 0, fmt.Errorf("insert fixed content: %w", err)
	}
	return res.LastInsertId()
}

// ListFixedContents returns all fixed content items ordered by id, which is
// also the precedence order when multiple items claim the same time slot.
func (s *Store) ListFixedContents(ctx context.Context) ([]*FixedContent, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, filename_template, day_pattern, time_slots, position_policy, enabled
		FROM fixed_contents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list fixed contents: %w", err)
	}
	defer rows.Close()

	var items []*FixedContent
	for rows.Next() {
		fc := &FixedContent{}
		var slots string
		if err := rows.Scan(&fc.ID, &fc.Name, &fc.FilenameTemplate, &fc.DayPattern,
			&slots, &fc.PositionPolicy, &fc.Enabled); err != nil {
			return nil, err
		}
		fc.TimeSlots = splitList(slots)
		items = append(items, fc)
	}
	return items, rows.Err()
}

// --- missing songs ---

// GetMissingBySong returns the missing record for a normalized (artist, title), if any.
func (s *Store) GetMissingBySong(ctx context.Context, artist, title string) (*MissingSong, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, artist, station_id, status, urgency, created_at, updated_at
		FROM missing_songs WHERE norm_artist = ? AND norm_title = ?`,
		songtext.Normalize(artist), songtext.Normalize(title))
	m, err := scanMissing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// CreateMissing inserts a new missing song record.
func (s *Store) CreateMissing(ctx context.Context, m MissingSong) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO missing_songs (id, title, artist, norm_title, norm_artist, station_id, status, urgency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Artist,
		songtext.Normalize(m.Title), songtext.Normalize(m.Artist),
		m.StationID, m.Status, m.Urgency)
	if err != nil {
		return fmt.Errorf("create missing song: %w", err)
	}
	return nil
}

// UpdateMissingStatus transitions a missing song's status.
func (s *Store) UpdateMissingStatus(ctx context.Context, id, status string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE missing_songs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("update missing status: %w", err)
	}
	return nil
}

// ListMissing returns missing songs, optionally filtered by status.
func (s *Store) ListMissing(ctx context.Context, status string) ([]*MissingSong, error) {
	query := `
		SELECT id, title, artist, station_id, status, urgency, created_at, updated_at
		FROM missing_songs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY urgency DESC, created_at`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list missing songs: %w", err)
	}
	defer rows.Close()

	var songs []*MissingSong
	for rows.Next() {
		m, err := scanMissing(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, m)
	}
	return songs, rows.Err()
}

// DeleteMissing removes one missing song record.
func (s *Store) DeleteMissing(ctx context.Context, id string) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM missing_songs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete missing song: %w", err)
	}
	return nil
}

// ClearMissing removes every missing song record.
func (s *Store) ClearMissing(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM missing_songs`)
	if err != nil {
		return fmt.Errorf("clear missing songs: %w", err)
	}
	return nil
}

func scanMissing(row rowScanner) (*MissingSong, error) {
	m := &MissingSong{}
	err := row.Scan(&m.ID, &m.Title, &m.Artist, &m.StationID, &m.Status,
		&m.Urgency, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// --- histories ---

// CreateDownloadHistory appends one download attempt record.
func (s *Store) CreateDownloadHistory(ctx context.Context, e DownloadHistoryEntry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO download_history (artist, title, status, duration_ms, error)
		VALUES (?, ?, ?, ?, ?)`,
		e.Artist, e.Title, e.Status, e.DurationMs, e.Error)
	if err != nil {
		return fmt.Errorf("create download history: %w", err)
	}
	return nil
}

// ListDownloadHistory returns the most recent download attempts.
func (s *Store) ListDownloadHistory(ctx context.Context, limit int) ([]*DownloadHistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, artist, title, status, duration_ms, error, created_at
		FROM download_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list download history: %w", err)
	}
	defer rows.Close()

	var entries []*DownloadHistoryEntry
	for rows.Next() {
		e := &DownloadHistoryEntry{}
		if err := rows.Scan(&e.ID, &e.Artist, &e.Title, &e.Status, &e.DurationMs, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateGradeHistory appends one grade build record.
func (s *Store) CreateGradeHistory(ctx context.Context, e GradeHistoryEntry) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO grade_history (block, program, songs_processed, songs_found, songs_missing)
		VALUES (?, ?, ?, ?, ?)`,
		e.Block, e.Program, e.SongsProcessed, e.SongsFound, e.SongsMissing)
	if err != nil {
		return fmt.Errorf("create grade history: %w", err)
	}
	return nil
}

// ListGradeHistory returns the most recent grade builds.
func (s *Store) ListGradeHistory(ctx context.Context, limit int) ([]*GradeHistoryEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, block, program, songs_processed, songs_found, songs_missing, created_at
		FROM grade_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list grade history: %w", err)
	}
	defer rows.Close()

	var entries []*GradeHistoryEntry
	for rows.Next() {
		e := &GradeHistoryEntry{}
		if err := rows.Scan(&e.ID, &e.Block, &e.Program, &e.SongsProcessed, &e.SongsFound, &e.SongsMissing, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- settings ---

// GetSetting returns a settings value, or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// --- helpers ---

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	var values []int
	for _, part := range strings.Split(s, ",") {
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &v); err == nil {
			values = append(values, v)
		}
	}
	return values
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
