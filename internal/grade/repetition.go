package grade

import (
	"sync"

	"github.com/gradecast/gradecast/internal/songtext"
)

const (
	trackerCapacity = 100
	minutesPerDay   = 24 * 60
)

// UsedSongRecord remembers one accepted selection.
type UsedSongRecord struct {
	Title  string
	Artist string
	Time   BlockTime
}

// Tracker is a bounded ring of recently used songs. It answers whether a
// title or artist was played within the repetition window of a block time,
// with midnight wraparound.
type Tracker struct {
	window        int // minutes, normal builds
	fullDayWindow int // minutes, full-day builds

	mu      sync.Mutex
	records []UsedSongRecord
	next    int
	count   int
}

// NewTracker creates a tracker with the given windows in minutes.
func NewTracker(windowMinutes, fullDayWindowMinutes int) *Tracker {
	if windowMinutes <= 0 {
		windowMinutes = 60
	}
	if fullDayWindowMinutes <= 0 {
		fullDayWindowMinutes = 30
	}
	return &Tracker{
		window:        windowMinutes,
		fullDayWindow: fullDayWindowMinutes,
		records:       make([]UsedSongRecord, trackerCapacity),
	}
}

// MarkUsed appends a selection, evicting the oldest once full.
func (t *Tracker) MarkUsed(title, artist string, bt BlockTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[t.next] = UsedSongRecord{Title: title, Artist: artist, Time: bt}
	t.next = (t.next + 1) % len(t.records)
	if t.count < len(t.records) {
		t.count++
	}
}

// IsRecentlyUsed reports whether the title or the artist was used within
// the active window of bt. Full-day builds use the shorter window so a
// 48-block run keeps some variety instead of blocking half the pool.
func (t *Tracker) IsRecentlyUsed(title, artist string, bt BlockTime, fullDay bool) bool {
	window := t.window
	if fullDay {
		window = t.fullDayWindow
	}

	normTitle := songtext.Normalize(title)
	normArtist := songtext.Normalize(artist)

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < t.count; i++ {
		rec := &t.records[i]
		if wrapDistance(bt.MinuteOfDay(), rec.Time.MinuteOfDay()) > window {
			continue
		}
		if songtext.Normalize(rec.Title) == normTitle || songtext.Normalize(rec.Artist) == normArtist {
			return true
		}
	}
	return false
}

// Reset clears the tracker.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next = 0
	t.count = 0
}

// wrapDistance is the minute distance between two minutes-of-day, taking
// the short way around midnight.
func wrapDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > minutesPerDay/2 {
		d = minutesPerDay - d
	}
	return d
}
