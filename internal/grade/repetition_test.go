package grade

import (
	"fmt"
	"testing"
)

func TestTrackerWindow(t *testing.T) {
	tracker := NewTracker(60, 30)
	tracker.MarkUsed("Oceano", "Djavan", BlockTime{Hour: 10})

	t.Run("SameTitleInsideWindow", func(t *testing.T) {
		if !tracker.IsRecentlyUsed("Oceano", "Outro Artista", BlockTime{Hour: 10, Minute: 30}, false) {
			t.Fatal("title inside the window should be blocked")
		}
	})

	t.Run("SameArtistInsideWindow", func(t *testing.T) {
		if !tracker.IsRecentlyUsed("Outra Musica", "Djavan", BlockTime{Hour: 10, Minute: 30}, false) {
			t.Fatal("artist inside the window should be blocked")
		}
	})

	t.Run("OutsideWindow", func(t *testing.T) {
		if tracker.IsRecentlyUsed("Oceano", "Djavan", BlockTime{Hour: 12}, false) {
			t.Fatal("song outside the window should be allowed")
		}
	})

	t.Run("AccentInsensitive", func(t *testing.T) {
		tracker.MarkUsed("Evidências", "Chitãozinho", BlockTime{Hour: 14})
		if !tracker.IsRecentlyUsed("evidencias", "outro", BlockTime{Hour: 14, Minute: 30}, false) {
			t.Fatal("matching should ignore accents and case")
		}
	})
}

func TestTrackerFullDayWindow(t *testing.T) {
	tracker := NewTracker(60, 30)
	tracker.MarkUsed("Oceano", "Djavan", BlockTime{Hour: 10})

	// 45 minutes away: inside the 60-minute incremental window but outside
	// the 30-minute full-day window.
	bt := BlockTime{Hour: 10, Minute: 45}
	if !tracker.IsRecentlyUsed("Oceano", "Djavan", bt, false) {
		t.Fatal("should be blocked for incremental builds")
	}
	if tracker.IsRecentlyUsed("Oceano", "Djavan", bt, true) {
		t.Fatal("should be allowed for full-day builds")
	}
}

func TestTrackerMidnightWraparound(t *testing.T) {
	tracker := NewTracker(60, 30)
	tracker.MarkUsed("Oceano", "Djavan", BlockTime{Hour: 23, Minute: 30})

	if !tracker.IsRecentlyUsed("Oceano", "Djavan", BlockTime{Hour: 0}, false) {
		t.Fatal("23:30 and 00:00 are 30 minutes apart across midnight")
	}
}

func TestTrackerCapacity(t *testing.T) {
	tracker := NewTracker(60, 30)
	for i := 0; i < trackerCapacity+10; i++ {
		tracker.MarkUsed(fmt.Sprintf("song-%d", i), fmt.Sprintf("artist-%d", i), BlockTime{Hour: 10})
	}

	// The first records were evicted by the ring.
	if tracker.IsRecentlyUsed("song-0", "artist-0", BlockTime{Hour: 10}, false) {
		t.Fatal("oldest record should have been evicted")
	}
	if !tracker.IsRecentlyUsed(fmt.Sprintf("song-%d", trackerCapacity+9), "x", BlockTime{Hour: 10}, false) {
		t.Fatal("newest record should still be present")
	}
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker(60, 30)
	tracker.MarkUsed("Oceano", "Djavan", BlockTime{Hour: 10})
	tracker.Reset()

	if tracker.IsRecentlyUsed("Oceano", "Djavan", BlockTime{Hour: 10}, false) {
		t.Fatal("reset should clear all records")
	}
}
